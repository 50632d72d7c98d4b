// Command bplusdb serves the line-oriented database REPL described in
// repl over a single named file.
package main

import (
	"fmt"
	"os"

	"bplusdb/repl"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Must supply a database filename.")
		os.Exit(1)
	}

	if err := repl.Run(os.Args[1]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
