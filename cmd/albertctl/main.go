package main

import (
	"fmt"
	"os"

	"github.com/albert-labs/albert-go/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		if !cli.IsHandledError(err) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}
