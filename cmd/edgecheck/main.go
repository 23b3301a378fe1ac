// Command edgecheck is the editor-integration front end for the EdgeCheck
// fuzzing engine: it scans Python files, reports findings, and serves LSP.
package main

import (
	"fmt"
	"os"

	"github.com/edgecheck/edgecheck-go/cmd/edgecheck/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
