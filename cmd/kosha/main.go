// cmd/kosha/main.go
package main

import (
	"github.com/koshalabs/kosha/internal/cli"
)

// Build metadata, set via -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	cli.Execute()
}
