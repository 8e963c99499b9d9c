package main

import (
	"os"

	"github.com/hotelprocure/procure/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
