package cli

import (
	"fmt"

	"github.com/regain3d/regain/internal/config"
	"github.com/regain3d/regain/internal/errors"
	"github.com/regain3d/regain/internal/report"
	"github.com/regain3d/regain/internal/service"
	"github.com/spf13/cobra"
)

const parallelFlagName = "parallel"

func newBatchCmd(a *app) *cobra.Command {
	opts := &processOptions{}
	var outputDir string

	cmd := &cobra.Command{
		Use:   "batch <file-or-dir>...",
		Short: "Optimize many G-code files concurrently",
		Long: `Processes every given .gcode file and every .gcode file directly inside
the given directories. Output goes to <dir>/optimized/ unless --output-dir
is set.`,
		Example: `  regain batch ./plates
  regain batch a.gcode b.gcode --output-dir ./out --parallel 8`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if err := a.loadProfiles(cmd.ErrOrStderr()); err != nil {
				return err
			}

			inputs, err := service.CollectInputs(args)
			if err != nil {
				return err
			}

			res, err := a.svc.ProcessBatch(cmd.Context(), inputs, service.BatchOptions{
				FileOptions: opts.fileOptions(),
				OutputDir:   outputDir,
			})
			if err != nil {
				return err
			}

			if opts.json {
				if err := writeJSON(out, res); err != nil {
					return err
				}
			} else {
				report.RenderBatchTable(out, res.Results)
			}

			if res.Summary.Failed > 0 {
				return errors.New(errors.ErrProcessingFailed,
					fmt.Sprintf("%d of %d files failed", res.Summary.Failed, res.Summary.Total), "")
			}
			if !opts.json {
				printSuccess(out, "Processed %d files, saved %.2fg of filament", res.Summary.Successful, res.Summary.TotalSaved)
			}
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVar(&opts.json, "json", false, "print results as JSON")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory for optimized files")
	cmd.Flags().Int(parallelFlagName, a.v.GetInt(config.KeyBatchParallel), "files processed at once")
	bindFlagToConfig(a.v, cmd.Flags().Lookup(parallelFlagName), config.KeyBatchParallel)

	return cmd
}
