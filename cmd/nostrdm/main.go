package main

import (
	"fmt"
	"os"

	"nostrdm/cmd/nostrdm/commands"
)

func main() {
	err := commands.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	os.Exit(commands.ExitCode(err))
}
