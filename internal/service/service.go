// Package service ties configuration, profiles and the injector together
// into the file-level operations exposed by the CLI.
package service

import (
	"log/slog"
	"os"

	"github.com/regain3d/regain/internal/cache"
	"github.com/regain3d/regain/internal/config"
	"github.com/regain3d/regain/internal/errors"
	"github.com/regain3d/regain/internal/inject"
	"github.com/regain3d/regain/internal/profile"
)

// SuggestionLimit caps "did you mean" suggestions for unknown profile IDs.
const SuggestionLimit = 3

// Service processes G-code files with the configured profiles.
type Service struct {
	cfg      *config.Config
	paths    *config.Paths
	registry *profile.Registry
	injector *inject.Injector
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for the service and its injector.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithPaths overrides the config and cache directories.
func WithPaths(paths *config.Paths) Option {
	return func(s *Service) {
		s.paths = paths
	}
}

// New creates a service with an empty registry. Call LoadProfiles before
// processing.
func New(cfg *config.Config, opts ...Option) *Service {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Service{
		cfg:      cfg,
		registry: profile.NewRegistry(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.paths == nil {
		s.paths = config.NewPaths()
	}
	s.injector = inject.New(s.registry, inject.WithLogger(s.logger))
	return s
}

// Config returns the service configuration.
func (s *Service) Config() *config.Config {
	return s.cfg
}

// Registry returns the profile registry.
func (s *Service) Registry() *profile.Registry {
	return s.registry
}

// LoadProfiles replaces the registry contents with synced profiles followed
// by local ones. A local profile replaces a synced profile with the same ID.
// It fails only when neither location yields a directory.
func (s *Service) LoadProfiles() (*profile.LoadReport, error) {
	s.registry.Clear()

	opts := profile.LoadOptions{DefaultSafetyFactor: s.cfg.DefaultSafetyFactor}
	total := &profile.LoadReport{}
	found := false

	for _, dir := range s.profileDirs() {
		profiles, rep, err := profile.LoadDir(dir, opts)
		if err != nil {
			if errors.IsCode(err, errors.ErrProfilesDirNotFound) {
				s.logger.Debug("profiles directory missing", "dir", dir)
				continue
			}
			return nil, err
		}
		found = true
		s.registry.RegisterAll(profiles)
		total.Loaded += rep.Loaded
		total.Skipped = append(total.Skipped, rep.Skipped...)
	}

	for _, skipped := range total.Skipped {
		s.logger.Warn("skipped printer profile", "path", skipped.Path, "reason", skipped.Reason)
	}

	if !found {
		return nil, errors.ProfilesDirNotFound(s.cfg.Profiles.Dir)
	}

	s.logger.Info("loaded printer profiles", "count", s.registry.Count(), "skipped", len(total.Skipped))
	return total, nil
}

// profileDirs lists profile directories in load order.
func (s *Service) profileDirs() []string {
	var dirs []string
	if owner, repo, err := s.cfg.ProfilesOwnerRepo(); err == nil && s.cfg.Profiles.Source != "" {
		c := cache.New(s.paths)
		if c.Exists(owner, repo) {
			dirs = append(dirs, c.Dir(owner, repo))
		}
	}
	return append(dirs, s.cfg.Profiles.Dir)
}

// Profiles returns the identity of every loaded profile.
func (s *Service) Profiles() []profile.Summary {
	return s.registry.Summaries()
}

// Profile returns a loaded profile by ID, or a PROFILE_NOT_FOUND error
// carrying close matches as a hint.
func (s *Service) Profile(id string) (*profile.Profile, error) {
	if p := s.registry.Get(id); p != nil {
		return p, nil
	}
	return nil, errors.ProfileNotFound(id, s.registry.Suggest(id, SuggestionLimit))
}

// injectOptions resolves the profile and ESP setting for one run.
func (s *Service) injectOptions(profileID string, disableESP, strict bool) (inject.Options, error) {
	opts := inject.Options{
		DisableESP:      disableESP || !s.cfg.EnableESP,
		StrictTemplates: strict,
	}
	if profileID != "" {
		p, err := s.Profile(profileID)
		if err != nil {
			return opts, err
		}
		opts.Profile = p
	}
	return opts, nil
}

// GCodeOptions controls ProcessGCode.
type GCodeOptions struct {
	ProfileID       string
	AddComments     bool
	DisableESP      bool
	StrictTemplates bool
}

// ProcessGCode runs the injector over text without touching the filesystem.
func (s *Service) ProcessGCode(text string, opts GCodeOptions) (*inject.Result, error) {
	injectOpts, err := s.injectOptions(opts.ProfileID, opts.DisableESP, opts.StrictTemplates)
	if err != nil {
		return nil, err
	}
	injectOpts.AddComments = opts.AddComments
	return s.injector.Process(text, injectOpts), nil
}

func readGCode(path string) (string, error) {
	if !isGCodePath(path) {
		return "", errors.UnsupportedFile(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
