package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze <file.gcode>",
		Short: "Show the detected printer and filament changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if err := a.loadProfiles(cmd.ErrOrStderr()); err != nil {
				return err
			}

			analysis, err := a.svc.AnalyzeFile(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(out, analysis)
			}

			if analysis.Profile == "" {
				printWarning(out, "No suitable printer profile found")
				return nil
			}

			printSuccess(out, "%s %s", analysis.Brand, analysis.Printer)
			printInfo(out, "Profile", info(analysis.Profile))
			printInfo(out, "Tool changes", fmt.Sprintf("%d", analysis.ToolChanges))

			spools := make([]string, len(analysis.Spools))
			for i, s := range analysis.Spools {
				spools[i] = fmt.Sprintf("T%d %s", s.Tool, s.Plastic)
			}
			if len(spools) > 0 {
				printInfo(out, "Spools", strings.Join(spools, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the analysis as JSON")
	return cmd
}
