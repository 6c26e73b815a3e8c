package main

import (
	"os"

	"github.com/ByLCY/storeshot/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
