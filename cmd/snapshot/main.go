package main

import (
	"os"

	"github.com/rcliao/file-snapshot/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
