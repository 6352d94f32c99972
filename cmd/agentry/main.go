// Package main provides the entry point for the Agentry CLI.
package main

import (
	"fmt"
	"os"

	"github.com/agentry-ai/agentry/cmd/agentry/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
