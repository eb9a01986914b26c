// Command finscout runs the research aggregation CLI and HTTP server.
package main

import (
	"os"

	"github.com/finscout/finscout/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
