// Package main provides the entry point for the gen-file-index CLI.
package main

import (
	"os"

	"github.com/airspacemap/gen-file-index/cmd/gen-file-index/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
