// Command dbtask is the command-line front end for the chat store.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/dbtask/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
