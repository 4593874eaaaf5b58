// Package main provides the entry point for the igmigrate CLI tool.
package main

import (
	"github.com/igtools/igmigrate/cmd/igmigrate/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
