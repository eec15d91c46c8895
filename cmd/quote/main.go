package main

import (
	"os"

	"github.com/noah-isme/parking-fee/internal/cli"
)

func main() {
	if err := cli.NewQuoteCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
