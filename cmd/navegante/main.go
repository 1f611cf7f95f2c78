// navegante - file manager engine for the command line
package main

import (
	"os"

	"github.com/navegante/navegante/internal/cli"
	"github.com/navegante/navegante/internal/version"
)

// Version information - injected via LDFLAGS by the Makefile for releases
var (
	Version   = "v0.3.0"
	BuildTime = "unknown"
)

func main() {
	version.Version = Version
	version.BuildTime = BuildTime

	if err := cli.Execute(); err != nil {
		// Cobra already printed the error
		os.Exit(1)
	}
}
