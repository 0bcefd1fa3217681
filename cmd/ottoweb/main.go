// ottoweb reads recipes from the web and walks you through cooking them.
//
// Usage:
//
//	ottoweb serve               HTTP API: GET /api/recipe?url=...
//	ottoweb cook <url|file>     guided cooking in the terminal
//	ottoweb extract <url|file>  print the extracted recipe as JSON
//	ottoweb config [init]       show or create the config file
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
