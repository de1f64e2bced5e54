package integration

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/regain3d/regain/internal/config"
	"github.com/regain3d/regain/internal/service"
	"gopkg.in/yaml.v3"
)

// Fixture represents a test scenario loaded from YAML.
type Fixture struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Setup       FixtureSetup      `yaml:"setup"`
	Run         FixtureRun        `yaml:"run"`
	Assertions  FixtureAssertions `yaml:"assertions"`
}

// FixtureSetup defines the test environment setup.
type FixtureSetup struct {
	Profiles map[string]string `yaml:"profiles"` // path under the profiles dir -> content
	Synced   *SyncedSetup      `yaml:"synced"`
	Config   *ConfigSetup      `yaml:"config"`
	GCode    string            `yaml:"gcode"`
}

// SyncedSetup simulates profiles fetched by `profiles sync`.
type SyncedSetup struct {
	Source string            `yaml:"source"`
	Files  map[string]string `yaml:"files"`
}

// ConfigSetup defines the regain config.yaml content.
type ConfigSetup struct {
	EnableESP           *bool   `yaml:"enable_esp"`
	DefaultSafetyFactor float64 `yaml:"default_safety_factor"`
}

// FixtureRun holds the process options.
type FixtureRun struct {
	Profile string `yaml:"profile"`
	NoESP   bool   `yaml:"no_esp"`
	Strict  bool   `yaml:"strict"`
}

// FixtureAssertions defines what to verify.
type FixtureAssertions struct {
	Error       string         `yaml:"error"` // expected error substring; empty means success
	Profile     string         `yaml:"profile"`
	Changes     int            `yaml:"changes"`
	Warnings    []string       `yaml:"warnings"`
	Savings     *float64       `yaml:"savings_percent"`
	Contains    []string       `yaml:"contains"`
	NotContains []string       `yaml:"not_contains"`
	Order       []string       `yaml:"order"`
	LineCounts  map[string]int `yaml:"line_counts"`
}

// LoadFixture loads a fixture from a YAML file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fixture Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, err
	}

	if err := fixture.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fixture %s: %w", path, err)
	}

	return &fixture, nil
}

// Validate checks that the fixture has all required fields.
func (f *Fixture) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("missing required field: name")
	}
	if f.Setup.GCode == "" {
		return fmt.Errorf("missing required field: setup.gcode")
	}
	if len(f.Setup.Profiles) == 0 && f.Setup.Synced == nil {
		return fmt.Errorf("fixture needs setup.profiles or setup.synced")
	}
	if f.Setup.Synced != nil && f.Setup.Synced.Source == "" {
		return fmt.Errorf("missing required field: setup.synced.source")
	}
	return nil
}

// LoadAllFixtures loads all fixtures from a directory.
func LoadAllFixtures(dir string) ([]*Fixture, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var fixtures []*Fixture
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) != ".yaml" && filepath.Ext(name) != ".yml" {
			continue
		}

		fixture, err := LoadFixture(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, fixture)
	}

	return fixtures, nil
}

// ToConfig converts fixture config setup to a config.Config.
func (c *ConfigSetup) ToConfig(paths *config.Paths) *config.Config {
	cfg := &config.Config{
		EnableESP:           true,
		AutoBackup:          true,
		GenerateReport:      true,
		DefaultSafetyFactor: c.DefaultSafetyFactor,
	}
	cfg.Profiles.Dir = paths.ProfilesDir
	if c.EnableESP != nil {
		cfg.EnableESP = *c.EnableESP
	}
	return cfg
}

// FileOptions converts the run section to service options.
func (r FixtureRun) FileOptions() service.FileOptions {
	return service.FileOptions{
		ProfileID:       r.Profile,
		DisableESP:      r.NoESP,
		StrictTemplates: r.Strict,
	}
}

// ApplySetup applies the fixture setup to a test environment.
func ApplySetup(env *TestEnv, setup FixtureSetup) error {
	for rel, content := range setup.Profiles {
		if err := env.SetupProfile(rel, content); err != nil {
			return err
		}
	}

	var cfg *config.Config
	if setup.Config != nil {
		cfg = setup.Config.ToConfig(env.Paths)
	}

	if setup.Synced != nil {
		owner, repo, err := config.ParseRepo(setup.Synced.Source)
		if err != nil {
			return err
		}
		if err := env.SetupSyncedProfiles(owner, repo, setup.Synced.Files); err != nil {
			return err
		}
		if cfg == nil {
			cfg = (&ConfigSetup{}).ToConfig(env.Paths)
		}
		cfg.Profiles.Source = setup.Synced.Source
	}

	if cfg != nil {
		if err := env.SetupConfig(cfg); err != nil {
			return err
		}
	}

	_, err := env.WriteGCode(fixtureInput, setup.GCode)
	return err
}

// fixtureInput is the work-dir file name fixtures write their G-code to.
const fixtureInput = "plate.gcode"

// parseOwnerRepo splits "owner/repo" into owner and repo.
func parseOwnerRepo(source string) (string, string) {
	owner, repo, err := config.ParseRepo(source)
	if err != nil {
		return source, ""
	}
	return owner, repo
}
