// Package main is the entry point for the bookpipe application.
package main

import (
	"os"

	"github.com/hostfolio/bookpipe/cmd/bookpipe/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
