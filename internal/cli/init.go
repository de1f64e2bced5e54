package cli

import (
	"fmt"
	"os"

	"github.com/regain3d/regain/internal/config"
	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the configuration file and profiles directory",
		Long: `Writes the current settings (defaults, REGAIN_* environment and flags) to
the config file and creates the local profiles directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if _, err := os.Stat(a.configFile); err == nil && !force {
				printWarning(out, "Regain is already configured: %s", a.configFile)
				fmt.Fprintln(out, "  Use --force to overwrite it.")
				return nil
			}

			if err := config.SaveTo(a.cfg, a.configFile); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			printSuccess(out, "Config saved to %s", a.configFile)

			if err := os.MkdirAll(a.cfg.Profiles.Dir, 0755); err != nil {
				return fmt.Errorf("failed to create profiles directory: %w", err)
			}
			printInfo(out, "Profiles", a.cfg.Profiles.Dir)

			fmt.Fprintln(out)
			fmt.Fprintln(out, "Next steps:")
			fmt.Fprintf(out, "  Add printer profiles to %s\n", info(a.cfg.Profiles.Dir))
			fmt.Fprintf(out, "  or set profiles.source and run %s\n", info("regain profiles sync"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}
