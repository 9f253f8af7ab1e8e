package superopt

import (
	"database/sql/driver"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

const IDSize = 32

// ID identifies a problem by the hash of its input and output.
type ID [IDSize]byte

// idEncoding is URL safe, and sorts the same way as the bytes it encodes.
var idEncoding = base64.NewEncoding("-0123456789" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" + "_" +
	"abcdefghijklmnopqrstuvwxyz").WithPadding(base64.NoPadding)

func (id ID) String() string {
	return idEncoding.EncodeToString(id[:])
}

// ParseID decodes an ID from its String form.
func ParseID(s string) (ID, error) {
	var id ID
	if idEncoding.DecodedLen(len(s)) != IDSize {
		return ID{}, fmt.Errorf("%q is not an ID: wrong length", s)
	}
	if _, err := idEncoding.Decode(id[:], []byte(s)); err != nil {
		return ID{}, fmt.Errorf("%q is not an ID: %w", s, err)
	}
	return id, nil
}

func (id ID) IsZero() bool {
	return id == (ID{})
}

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Scan implements sql.Scanner. IDs are stored as 32 byte blobs.
func (id *ID) Scan(x any) error {
	data, ok := x.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into an ID", x)
	}
	if len(data) != IDSize {
		return fmt.Errorf("cannot scan %d bytes into an ID", len(data))
	}
	copy(id[:], data)
	return nil
}

func (id ID) Value() (driver.Value, error) {
	return id[:], nil
}
