// Command todolists serves and manages todo lists.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/todolists/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
