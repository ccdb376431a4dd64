// Command ledger turns scanned register pages into clean records.
package main

import (
	"os"

	"github.com/tsawler/ledger/internal/cli"
)

// Set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
