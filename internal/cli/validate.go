package cli

import (
	"fmt"

	"github.com/regain3d/regain/internal/errors"
	"github.com/spf13/cobra"
)

// maxListedErrors caps the problems printed by validate.
const maxListedErrors = 20

func newValidateCmd(a *app) *cobra.Command {
	var (
		strict bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "validate <file.gcode>",
		Short: "Check G-code lines for syntax problems",
		Long: `Checks that every non-comment line starts with a G, M, T or F command and
that M620 lines carry an S parameter. --strict also checks parameter syntax.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			res, err := a.svc.ValidateFile(args[0], strict)
			if err != nil {
				return err
			}
			if asJSON {
				if err := writeJSON(out, res); err != nil {
					return err
				}
			} else if res.Valid {
				printSuccess(out, "%s is valid (%d lines)", args[0], res.TotalLines)
			} else {
				for i, e := range res.Errors {
					if i == maxListedErrors {
						fmt.Fprintf(out, "  %s\n", dim(fmt.Sprintf("... and %d more", len(res.Errors)-i)))
						break
					}
					fmt.Fprintf(out, "  %s %s\n", warning(fmt.Sprintf("line %d:", e.Line)), e.Error)
				}
			}

			if !res.Valid {
				return errors.New(errors.ErrProcessingFailed,
					fmt.Sprintf("%s has %d problems", args[0], len(res.Errors)), "")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "also check parameter syntax")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}
