// Package cli implements the regain command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/regain3d/regain/internal/config"
	"github.com/regain3d/regain/internal/errors"
	"github.com/regain3d/regain/internal/logging"
	"github.com/regain3d/regain/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	// Version is set at build time.
	Version = "dev"

	// Output helpers.
	successIcon = color.New(color.FgGreen).Sprint("✓")
	warningIcon = color.New(color.FgYellow).Sprint("⚠")
	errorIcon   = color.New(color.FgRed).Sprint("✗")

	success = color.New(color.FgGreen).SprintFunc()
	warning = color.New(color.FgYellow).SprintFunc()
	info    = color.New(color.FgCyan).SprintFunc()
	dim     = color.New(color.Faint).SprintFunc()
)

const (
	configFlagName      = "config"
	verboseFlagName     = "verbose"
	profilesDirFlagName = "profiles-dir"
	logLevelFlagName    = "log-level"
)

// app is the state shared by every command of one invocation.
type app struct {
	paths      *config.Paths
	v          *viper.Viper
	configFile string
	verbose    bool

	cfg       *config.Config
	svc       *service.Service
	logCloser io.Closer
}

func newApp(paths *config.Paths) *app {
	return &app{
		paths: paths,
		v:     config.NewViper(paths),
	}
}

// setup reads configuration and builds the service. It runs before every
// command.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Flags().Changed(configFlagName) {
		if _, err := os.Stat(a.configFile); os.IsNotExist(err) {
			return errors.ConfigNotFound(a.configFile)
		}
	}
	if err := config.ReadFile(a.v, a.configFile); err != nil {
		return err
	}

	cfg, err := config.Decode(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, closer := logging.Configure(logging.Options{
		Filename:   cfg.Log.Filename,
		Level:      cfg.Log.Level,
		Verbose:    a.verbose,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})
	a.logCloser = closer
	logger.Debug("configuration loaded", "file", a.configFile, "profiles", cfg.Profiles.Dir)

	a.svc = service.New(cfg, service.WithPaths(a.paths), service.WithLogger(logger))
	return nil
}

func (a *app) teardown(_ *cobra.Command, _ []string) {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}

// loadProfiles fills the service registry, reporting skipped files on w.
func (a *app) loadProfiles(w io.Writer) error {
	rep, err := a.svc.LoadProfiles()
	if err != nil {
		return err
	}
	for _, skipped := range rep.Skipped {
		printWarning(w, "Skipped profile %s: %s", skipped.Path, skipped.Reason)
	}
	return nil
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	return newRootCmd(newApp(config.NewPaths()))
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "regain",
		Short: "Two-stage purge injection for multi-material G-code",
		Long: `Regain rewrites the filament-change blocks of sliced G-code into a
two-stage purge: a short pure purge sized to the hot end's melt zone,
followed by a mixed purge that a flushing controller can divert.

Printer profiles describe how each printer's slicer emits filament changes
and which G-code to emit in their place.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: a.teardown,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, configFlagName, a.paths.ConfigFile, "config file")
	flags.BoolVarP(&a.verbose, verboseFlagName, "v", false, "enable debug logging")

	flags.String(profilesDirFlagName, a.v.GetString(config.KeyProfilesDir), "printer profiles directory")
	bindFlagToConfig(a.v, flags.Lookup(profilesDirFlagName), config.KeyProfilesDir)

	flags.String(logLevelFlagName, a.v.GetString(config.KeyLogLevel), "log level (debug, info, warn, error)")
	bindFlagToConfig(a.v, flags.Lookup(logLevelFlagName), config.KeyLogLevel)

	rootCmd.AddCommand(newProcessCmd(a))
	rootCmd.AddCommand(newAnalyzeCmd(a))
	rootCmd.AddCommand(newBatchCmd(a))
	rootCmd.AddCommand(newValidateCmd(a))
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newProfilesCmd(a))
	rootCmd.AddCommand(newInitCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(v *viper.Viper, flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(v.BindPFlag(key, flag))
}

// Execute runs the CLI.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		printErr(os.Stderr, err)
		return err
	}
	return nil
}

// printErr prints err with its hint when it carries one.
func printErr(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %s\n", errorIcon, err.Error())
	if hint := errors.HintOf(err); hint != "" {
		fmt.Fprintf(w, "  %s\n", dim(hint))
	}
}

// printSuccess prints a success message.
func printSuccess(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", successIcon, fmt.Sprintf(format, args...))
}

// printWarning prints a warning message.
func printWarning(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "%s %s\n", warningIcon, fmt.Sprintf(format, args...))
}

// printInfo prints an info line.
func printInfo(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %s: %s\n", dim(label), value)
}
