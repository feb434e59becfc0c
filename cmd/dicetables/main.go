// Package main provides the entry point for the dicetables CLI tool.
package main

import (
	"os"

	"github.com/fatih/color"

	"github.com/Sumatoshi-tech/dicetables/cmd/dicetables/commands"
)

func main() {
	err := commands.NewRootCommand().Execute()
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
