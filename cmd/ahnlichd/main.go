// Package main provides the entry point for the ahnlichd CLI.
package main

import (
	"os"

	"github.com/ahnlich/ahnlich-go/cmd/ahnlichd/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
