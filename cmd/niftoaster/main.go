// Command niftoaster casts optimization and fix spells on a directory of
// scene files.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
