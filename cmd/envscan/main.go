package main

import (
	"os"

	"github.com/jenian/envscan/internal/cli"
)

// Version is set at build time via -ldflags "-X main.Version=..."
var Version = "dev"

func main() {
	cli.Version = Version
	os.Exit(cli.Execute())
}
