// Command calcctl lists the calculation tools, runs their tabs from the
// terminal and manages fan performance presets.
package main

import (
	"os"

	"engcalc/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
