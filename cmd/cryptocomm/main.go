package main

import (
	"os"

	"cryptocomm/cmd/cryptocomm/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
