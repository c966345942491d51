package main

import (
	"fmt"
	"os"

	"download-portal/cmd/pagectl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
