package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tcnksm/go-latest"
)

// releaseSource is where `version --check` looks for newer tags.
var releaseSource = &latest.GithubTag{
	Owner:      "regain3d",
	Repository: "regain",
}

func newVersionCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "regain %s\n", Version)

			if !check {
				return nil
			}
			current := strings.TrimPrefix(Version, "v")
			if current == "dev" {
				printWarning(out, "Development build, skipping update check")
				return nil
			}

			res, err := latest.Check(releaseSource, current)
			if err != nil {
				printWarning(out, "Could not check for updates: %v", err)
				return nil
			}
			if res.Outdated {
				printWarning(out, "A new version is available: %s (you have %s)", res.Current, current)
				fmt.Fprintln(out, "  Download it from https://github.com/regain3d/regain/releases")
			} else {
				printSuccess(out, "You are using the latest version")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "check GitHub for a newer release")
	return cmd
}
