package main

import (
	"os"

	"github.com/quantfolio/quantfolio/cmd/quantfolio/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
