package main

import (
	"os"

	"github.com/lukasberglund/inspect-ai/cmd/inspect/commands"
)

func main() {
	root := commands.NewRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
