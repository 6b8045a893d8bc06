// Package main is the entry point for the fondsnet-import CLI.
package main

import (
	"github.com/v-the-cmd/fondsnet-import/cmd/fondsnet-import/cmd"
)

// Version information - set via ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd.Version = version
	cmd.Commit = commit
	cmd.Date = date
	cmd.Execute()
}
