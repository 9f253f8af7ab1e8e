package search

import (
	"fmt"

	"tis100.dev/superopt"
)

// Config bounds a search.
type Config struct {
	// MaxCycles is the number of program passes each candidate may take.
	MaxCycles uint64
	// MaxProgramLength is the longest candidate, in instructions, the search will try.
	MaxProgramLength int

	// Progress, if set, is called each time the search moves on to longer programs.
	Progress func(Progress) `json:"-"`
}

func NewConfig(maxCycles uint64, maxProgramLength int) Config {
	return Config{MaxCycles: maxCycles, MaxProgramLength: maxProgramLength}
}

func DefaultConfig() Config {
	return NewConfig(superopt.DefaultMaxCycles, superopt.DefaultMaxProgramLength)
}

func (c Config) Validate() error {
	if c.MaxProgramLength < 0 {
		return fmt.Errorf("max program length must be >= 0. HAVE %d", c.MaxProgramLength)
	}
	return nil
}

// Progress is reported when the search starts on programs of a new length.
type Progress struct {
	Length int `json:"length"`
	// Tried is the number of candidates checked so far.
	Tried uint64 `json:"tried"`
}

func (c Config) report(p Progress) {
	if c.Progress != nil {
		c.Progress(p)
	}
}
