// Command gparse parses arithmetic sentences against a world with the
// built-in arith grammar.
//
// Usage:
//
//	gparse parse [flags] words...
//	gparse lexicon [--lexicon file]
//	gparse config [--config file]
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
