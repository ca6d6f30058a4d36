package main

import (
	"os"

	"github.com/nrfta/keyset-paging/cmd/pagectl/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
