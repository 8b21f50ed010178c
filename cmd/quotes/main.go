// Package main is the entry point for the quotes command line tool.
package main

import (
	"os"

	"github.com/jsamuelsen/quote-keeper/internal/adapters/cli"
)

// Version is injected via ldflags.
var Version = "dev"

func main() {
	if err := cli.NewRootCommand(Version).Execute(); err != nil {
		os.Exit(1)
	}
}
