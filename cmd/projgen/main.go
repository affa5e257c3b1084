// Package main provides the CLI entrypoint for projgen.
//
// projgen compiles declarative projections into Go:
//   - Loads the packages holding source and target types
//   - Reads a manifest of selection call sites
//   - Generates record types and one projection function per call site
//   - Reports missing captures and structural conflicts per call site
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			if !exitErr.printed {
				fmt.Fprintln(os.Stderr, exitErr)
			}

			os.Exit(exitErr.code)
		}

		fmt.Fprintln(os.Stderr, "projgen:", err)
		os.Exit(exitGeneralError)
	}
}
