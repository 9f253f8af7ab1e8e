package main

import (
	"go.brendoncarroll.net/star"

	"tis100.dev/superopt/tiscmd"
)

func main() {
	star.Main(tiscmd.Root())
}
