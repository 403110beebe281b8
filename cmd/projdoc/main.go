// Command projdoc inspects, evaluates and edits project files.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/projdoc/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
