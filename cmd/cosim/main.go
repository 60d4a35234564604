// Package main provides the entry point for the cosim CLI.
package main

import (
	"fmt"
	"os"

	"github.com/metehan777/cosine-similarity-aio/cmd/cosim/cmd"
	cosimerrors "github.com/metehan777/cosine-similarity-aio/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		// Diagnostics go to stdout alongside the status lines; there is
		// no separate error stream in this CLI.
		fmt.Println(cosimerrors.UserMessage(err))
		os.Exit(1)
	}
}
