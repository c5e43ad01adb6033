// Command lizard explores quad-mesh topologies generated by a string grammar.
package main

import (
	"os"

	"github.com/roach88/lizard/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
