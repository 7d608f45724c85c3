// Package main is the single-binary entrypoint for Veloce.
package main

import "github.com/veloce-app/veloce/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
