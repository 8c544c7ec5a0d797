package main

import (
	"os"

	"github.com/roach88/kiln/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
