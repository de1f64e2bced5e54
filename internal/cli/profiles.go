package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/regain3d/regain/internal/cache"
	"github.com/regain3d/regain/internal/config"
	"github.com/regain3d/regain/internal/errors"
	"github.com/regain3d/regain/internal/github"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const sourceFlagName = "source"

func newProfilesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Manage printer profiles",
	}

	cmd.AddCommand(newProfilesListCmd(a))
	cmd.AddCommand(newProfilesShowCmd(a))
	cmd.AddCommand(newProfilesSyncCmd(a))
	cmd.AddCommand(newProfilesCleanCmd(a))

	return cmd
}

func newProfilesListCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List loaded printer profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if err := a.loadProfiles(cmd.ErrOrStderr()); err != nil {
				return err
			}

			if asJSON {
				return writeJSON(out, a.svc.Profiles())
			}

			if a.cfg.Profiles.Source != "" {
				printSyncStatus(out, a)
			}

			if a.svc.Registry().Count() == 0 {
				printWarning(out, "No printer profiles in %s", a.cfg.Profiles.Dir)
				return nil
			}

			title := cases.Title(language.English)
			table := tablewriter.NewWriter(out)
			table.SetHeader([]string{"ID", "Manufacturer", "Model", "Name"})
			table.SetBorder(false)
			table.SetCenterSeparator("")
			table.SetAutoWrapText(false)
			for _, s := range a.svc.Profiles() {
				table.Append([]string{s.ID, title.String(s.Manufacturer), s.Model, s.Name})
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print profiles as JSON")
	return cmd
}

func printSyncStatus(w io.Writer, a *app) {
	owner, repo, err := a.cfg.ProfilesOwnerRepo()
	if err != nil {
		return
	}
	meta, err := cache.New(a.paths).GetMetadata(owner, repo)
	if err != nil {
		printWarning(w, "Profiles from %s/%s not synced yet (run `regain profiles sync`)", owner, repo)
		return
	}
	age := meta.Age()
	if meta.IsStale(a.cfg.Cache.TTLDuration()) {
		age = warning(age)
	}
	printInfo(w, "Synced", fmt.Sprintf("%s (%d files, %s)", meta.RepoString(), meta.Files, age))
	fmt.Fprintln(w)
}

func newProfilesShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a printer profile after defaults are applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if err := a.loadProfiles(cmd.ErrOrStderr()); err != nil {
				return err
			}

			p, err := a.svc.Profile(args[0])
			if err != nil {
				return err
			}

			data, err := yaml.Marshal(p)
			if err != nil {
				return fmt.Errorf("failed to encode profile: %w", err)
			}
			fmt.Fprintf(out, "# %s\n", dim(p.Source))
			_, err = out.Write(data)
			return err
		},
	}
}

type syncOptions struct {
	force bool
	yes   bool
}

func newProfilesSyncCmd(a *app) *cobra.Command {
	opts := &syncOptions{}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch shared printer profiles from GitHub",
		Long: `Downloads the profiles directory (profiles.path) of the configured
repository (profiles.source) into the local cache. Synced profiles load
before local ones; a local profile with the same ID wins.`,
		Example: `  regain profiles sync
  regain profiles sync --source regain3d/regain-profiles --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfilesSync(cmd.Context(), cmd, a, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.force, "force", false, "re-fetch even if the cache is fresh")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "don't ask before syncing from an untrusted source")
	cmd.Flags().String(sourceFlagName, a.v.GetString(config.KeyProfilesSource), "GitHub repository holding profiles (owner/repo)")
	bindFlagToConfig(a.v, cmd.Flags().Lookup(sourceFlagName), config.KeyProfilesSource)

	return cmd
}

func runProfilesSync(ctx context.Context, cmd *cobra.Command, a *app, opts *syncOptions) error {
	out := cmd.OutOrStdout()
	cfg := a.cfg

	if cfg.Profiles.Source == "" {
		return errors.New(errors.ErrConfigInvalid, "no profile source configured",
			"Set profiles.source in your config or pass --source owner/repo")
	}
	owner, repo, err := cfg.ProfilesOwnerRepo()
	if err != nil {
		return err
	}
	source := owner + "/" + repo

	c := cache.New(a.paths)

	if !opts.force && c.Exists(owner, repo) {
		meta, err := c.GetMetadata(owner, repo)
		if err == nil && !meta.IsStale(cfg.Cache.TTLDuration()) {
			printSuccess(out, "Profiles are fresh (%s)", meta.Age())
			fmt.Fprintln(out, "  Use --force to re-fetch anyway.")
			return nil
		}
	}

	if !opts.yes && !cfg.IsTrustedSource(source) {
		fmt.Fprintln(out, config.TrustWarning(source))
		if !promptYesNo(cmd.InOrStdin(), out, "Sync anyway?") {
			printWarning(out, "Sync cancelled")
			return nil
		}
	}

	client, err := newGitHubClient()
	if err != nil {
		return err
	}
	printAuthMethod(out)

	info, err := client.Repository(ctx, owner, repo)
	if err != nil {
		return errors.GitHubFetchFailed(source, err)
	}
	if info == nil {
		return errors.New(errors.ErrGitHubFetchFailed, fmt.Sprintf("repository %s not found", source),
			"Check profiles.source, or authenticate if the repository is private")
	}

	ref := cfg.Profiles.Ref
	if ref == "" {
		ref = info.DefaultBranch
	}

	fmt.Fprintf(out, "Fetching %s...\n", source)

	files, err := github.FetchProfiles(ctx, client, owner, repo, cfg.Profiles.Path, ref)
	if err != nil {
		return errors.GitHubFetchFailed(source, err)
	}

	meta := &cache.Metadata{Ref: ref, Path: cfg.Profiles.Path}
	if err := c.Write(owner, repo, files, meta); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}

	printSuccess(out, "Synced %d profile files", len(files))
	printInfo(out, "Ref", ref)
	printInfo(out, "Path", cfg.Profiles.Path)
	printInfo(out, "Cache", c.Dir(owner, repo))
	return nil
}

// newGitHubClient uses the gh host config first, then the token chain
// (gh auth token, REGAIN_GITHUB_TOKEN), then anonymous access (public
// repositories only).
func newGitHubClient() (*github.Client, error) {
	if client, err := github.NewClient(); err == nil {
		return client, nil
	}
	if token, err := github.GetToken(); err == nil {
		client, err := github.NewClientWithToken(token)
		if err != nil {
			return nil, errors.GitHubAuthFailed(err)
		}
		return client, nil
	}
	client, err := github.NewUnauthenticatedClient()
	if err != nil {
		return nil, errors.GitHubAuthFailed(err)
	}
	return client, nil
}

func printAuthMethod(w io.Writer) {
	method := github.AuthMethod()
	if method != github.SourceNone {
		printInfo(w, "Auth", method)
		return
	}
	if github.IsGHCLIInstalled() {
		fmt.Fprintln(w, dim("  Not authenticated; run `gh auth login` to reach private repositories."))
	} else {
		fmt.Fprintln(w, dim("  Not authenticated; set "+github.EnvGitHubToken+" to reach private repositories."))
	}
}

func newProfilesCleanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clean [owner/repo]",
		Short: "Remove synced printer profiles from the cache",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			c := cache.New(a.paths)

			if len(args) == 1 {
				owner, repo, err := config.ParseRepo(args[0])
				if err != nil {
					return err
				}
				if err := c.Clear(owner, repo); err != nil {
					return err
				}
				printSuccess(out, "Removed synced profiles of %s/%s", owner, repo)
				return nil
			}

			cached, err := c.ListCached()
			if err != nil {
				return fmt.Errorf("failed to list cache: %w", err)
			}
			if len(cached) == 0 {
				printInfo(out, "Nothing cached in", c.CacheDir())
				return nil
			}
			for _, meta := range cached {
				if err := c.Clear(meta.Owner, meta.Repo); err != nil {
					return err
				}
				printSuccess(out, "Removed %s (%d files, %s)", meta.RepoString(), meta.Files, meta.Age())
			}
			return nil
		},
	}
}

// promptYesNo prompts for a yes/no input.
func promptYesNo(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N] ", prompt)
	reader := bufio.NewReader(in)
	input, _ := reader.ReadString('\n')
	input = strings.ToLower(strings.TrimSpace(input))
	return input == "y" || input == "yes"
}
