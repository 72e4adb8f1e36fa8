// Package main is the entry point for billctl.
package main

import (
	"os"

	"github.com/garyjia/billed/cmd/billctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
