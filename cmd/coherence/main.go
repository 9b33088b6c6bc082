package main

import (
	"os"

	"github.com/rcliao/coherence/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
