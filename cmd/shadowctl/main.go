package main

import (
	"os"

	"github.com/shadowmode/shadowctl/cmd/shadowctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
