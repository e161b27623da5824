// Package main is the entry point for the trickle CLI.
package main

import (
	"os"

	"github.com/mrz1836/trickle/internal/cli"
	buildversion "github.com/mrz1836/trickle/internal/version"
)

// Set at link time with -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
//
//nolint:gochecknoglobals // ldflags targets
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	err := cli.Execute(buildversion.BuildInfo{Version: version, Commit: commit, Date: date})
	os.Exit(cli.ExitCode(err))
}
