package main

import (
	"fmt"
	"os"

	"departure-optimizer-service/internal/cli"

	"github.com/joho/godotenv"
)

var version = "dev"

func main() {
	// Flag defaults read the environment, so .env must be loaded first.
	_ = godotenv.Load()
	cli.SetVersion(version)

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err))
		os.Exit(1)
	}
}
