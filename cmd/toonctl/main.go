// Package main provides the entry point for the toonctl CLI.
package main

import (
	"os"

	"github.com/toonrec/toonrec/cmd/toonctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
