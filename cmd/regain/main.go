// Regain - two-stage purge injection for multi-material G-code
package main

import (
	"os"

	"github.com/regain3d/regain/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
