// Command snakeguard runs the server-side anti-cheat pipeline for a
// grid-based snake game.
package main

import (
	"fmt"
	"os"

	"github.com/snakeguard/snakeguard/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
