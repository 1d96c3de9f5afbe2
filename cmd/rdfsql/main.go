// Command rdfsql exposes an RDF graph as SQL tables.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/rdfsql/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Commands report their own failures; only print what they did not.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
