package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/regain3d/regain/internal/report"
	"github.com/regain3d/regain/internal/service"
	"github.com/spf13/cobra"
)

type processOptions struct {
	profile  string
	noBackup bool
	noReport bool
	noESP    bool
	strict   bool
	json     bool
}

func (o *processOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.profile, "profile", "p", "", "printer profile ID (default: auto-detect)")
	cmd.Flags().BoolVar(&o.noBackup, "no-backup", false, "don't write <name>_original.gcode")
	cmd.Flags().BoolVar(&o.noReport, "no-report", false, "don't write <name>_report.json")
	cmd.Flags().BoolVar(&o.noESP, "no-esp", false, "omit flushing controller messages")
	cmd.Flags().BoolVar(&o.strict, "strict", false, "warn about unresolved template placeholders")
}

func (o *processOptions) fileOptions() service.FileOptions {
	return service.FileOptions{
		ProfileID:       o.profile,
		NoBackup:        o.noBackup,
		NoReport:        o.noReport,
		DisableESP:      o.noESP,
		StrictTemplates: o.strict,
	}
}

func newProcessCmd(a *app) *cobra.Command {
	opts := &processOptions{}

	cmd := &cobra.Command{
		Use:   "process <file.gcode> [output.gcode]",
		Short: "Rewrite filament changes as two-stage purges",
		Long: `Detects the printer profile, rewrites every filament-change block into
a pure purge and a mixed purge, and writes <name>_optimized.gcode.

A backup (<name>_original.gcode) and a JSON report (<name>_report.json) are
written next to the input unless disabled in the config or by flag.`,
		Example: `  regain process plate_1.gcode
  regain process plate_1.gcode out.gcode --profile bambulab-x1c
  regain process plate_1.gcode --no-backup --no-esp`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, a, opts, args)
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the report as JSON")

	return cmd
}

func runProcess(cmd *cobra.Command, a *app, opts *processOptions, args []string) error {
	out := cmd.OutOrStdout()
	if err := a.loadProfiles(cmd.ErrOrStderr()); err != nil {
		return err
	}

	fileOpts := opts.fileOptions()
	if len(args) == 2 {
		fileOpts.OutputPath = args[1]
	}

	res, err := a.svc.ProcessFile(cmd.Context(), args[0], fileOpts)
	if err != nil {
		return err
	}

	if opts.json {
		return writeJSON(out, res.Report)
	}

	for _, w := range res.Warnings {
		printWarning(out, "%s", w)
	}
	printReport(out, res.Report)
	if res.BackupPath != "" {
		printInfo(out, "Backup", res.BackupPath)
	}
	if res.ReportPath != "" {
		printInfo(out, "Report", res.ReportPath)
	}
	return nil
}

func printReport(w io.Writer, r *report.Report) {
	printSuccess(w, "Optimized %s", r.InputFile)
	printInfo(w, "Output", r.OutputFile)
	printInfo(w, "Profile", info(r.Profile))
	printInfo(w, "Changes", fmt.Sprintf("%d", r.TotalChanges))
	printInfo(w, "Filament", fmt.Sprintf("%.2fg -> %.2fg (%s)",
		r.OriginalWaste, r.OptimizedWaste, success(fmt.Sprintf("%.1f%% saved", r.SavingsPercent))))

	if r.TotalChanges > 0 {
		fmt.Fprintln(w)
		report.RenderTable(w, r)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
