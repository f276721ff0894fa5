package main

import (
	"fmt"
	"os"

	"github.com/silenceobjects/sentinel/internal/adapters/inbound/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		if !cli.Reported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
