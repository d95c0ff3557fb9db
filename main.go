// ABOUTME: Entry point for the py3ide CLI
// ABOUTME: Gateway Python 3 client, CI/CD checks and terminal IDE

package main

import (
	"fmt"
	"os"

	"github.com/nigelgwork/ignition-module-python3-sub000/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
