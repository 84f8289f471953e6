// Command craftledger tracks a workshop's materials, products, crafting,
// sales and attendance in a local SQLite ledger.
//
// Run `craftledger --help` for the command list, or `craftledger serve` for
// the HTTP API used by the chat front end.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/craftledger/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		if cli.IsReported(err) {
			os.Exit(cli.GetExitCode(err))
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		// Flag and argument errors from cobra are usage errors.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			os.Exit(cli.ExitCommandError)
		}
		os.Exit(exitErr.Code)
	}
}
