package main

import (
	"os"

	"TAScan/cmd/tacli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
