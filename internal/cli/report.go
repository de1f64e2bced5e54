package cli

import (
	"github.com/regain3d/regain/internal/errors"
	"github.com/regain3d/regain/internal/report"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "report <file_report.json>",
		Short: "Show a saved processing report",
		Example: `  regain report plate_report.json
  regain report optimized/plate_report.json --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := report.Read(args[0])
			if err != nil {
				return errors.Wrap(errors.ErrProcessingFailed, "failed to read report",
					"Pass a *_report.json file written by `regain process` or `regain batch`", err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), r)
			}
			printReport(cmd.OutOrStdout(), r)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}
