// Package config handles regain configuration.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/regain3d/regain/internal/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ProfilesConfig locates printer profiles.
type ProfilesConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`                 // local profiles directory
	Source string `yaml:"source,omitempty" mapstructure:"source"` // GitHub repo synced by `profiles sync`
	Path   string `yaml:"path,omitempty" mapstructure:"path"`     // directory inside the source repo
	Ref    string `yaml:"ref,omitempty" mapstructure:"ref"`       // branch or tag, default branch when empty
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	Parallel int `yaml:"parallel" mapstructure:"parallel"`
}

// CacheConfig contains cache settings.
type CacheConfig struct {
	TTL string `yaml:"ttl" mapstructure:"ttl"` // e.g., "24h"
}

// LogConfig contains log file settings.
type LogConfig struct {
	Filename   string `yaml:"filename" mapstructure:"filename"`
	Level      string `yaml:"level" mapstructure:"level"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"`
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
}

// Config represents the regain configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	Profiles ProfilesConfig `yaml:"profiles" mapstructure:"profiles"`

	// Trusted is a list of repos/orgs that don't require confirmation on sync.
	// Examples: "regain3d" (trusts all repos from org), "user/repo" (specific repo)
	Trusted []string `yaml:"trusted,omitempty" mapstructure:"trusted"`

	EnableESP           bool    `yaml:"enable_esp" mapstructure:"enable_esp"`
	DefaultSafetyFactor float64 `yaml:"default_safety_factor" mapstructure:"default_safety_factor"`
	AutoBackup          bool    `yaml:"auto_backup" mapstructure:"auto_backup"`
	GenerateReport      bool    `yaml:"generate_report" mapstructure:"generate_report"`

	Batch BatchConfig `yaml:"batch" mapstructure:"batch"`
	Cache CacheConfig `yaml:"cache" mapstructure:"cache"`
	Log   LogConfig   `yaml:"log" mapstructure:"log"`
}

// Viper keys.
const (
	KeyVersion             = "version"
	KeyProfilesDir         = "profiles.dir"
	KeyProfilesSource      = "profiles.source"
	KeyProfilesPath        = "profiles.path"
	KeyProfilesRef         = "profiles.ref"
	KeyTrusted             = "trusted"
	KeyEnableESP           = "enable_esp"
	KeyDefaultSafetyFactor = "default_safety_factor"
	KeyAutoBackup          = "auto_backup"
	KeyGenerateReport      = "generate_report"
	KeyBatchParallel       = "batch.parallel"
	KeyCacheTTL            = "cache.ttl"
	KeyLogFilename         = "log.filename"
	KeyLogLevel            = "log.level"
	KeyLogMaxSize          = "log.max_size"
	KeyLogMaxBackups       = "log.max_backups"
	KeyLogMaxAge           = "log.max_age"
	KeyLogCompress         = "log.compress"
)

// Default values.
const (
	DefaultVersion       = 1
	DefaultProfilesPath  = "printerConfigs"
	DefaultSafetyFactor  = 0.9
	DefaultBatchParallel = 4
	DefaultCacheTTL      = "24h"
	DefaultLogLevel      = "info"
	DefaultLogMaxSize    = 10
	DefaultLogMaxBackups = 3
	DefaultLogMaxAge     = 28
	DefaultLogCompress   = true
	EnvPrefix            = "REGAIN"
)

// NewViper returns a viper instance with regain's defaults and REGAIN_*
// environment overrides (REGAIN_PROFILES_DIR, REGAIN_BATCH_PARALLEL, ...).
func NewViper(paths *Paths) *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyVersion, DefaultVersion)
	v.SetDefault(KeyProfilesDir, paths.ProfilesDir)
	v.SetDefault(KeyProfilesSource, "")
	v.SetDefault(KeyProfilesPath, DefaultProfilesPath)
	v.SetDefault(KeyProfilesRef, "")
	v.SetDefault(KeyTrusted, []string{})
	v.SetDefault(KeyEnableESP, true)
	v.SetDefault(KeyDefaultSafetyFactor, DefaultSafetyFactor)
	v.SetDefault(KeyAutoBackup, true)
	v.SetDefault(KeyGenerateReport, true)
	v.SetDefault(KeyBatchParallel, DefaultBatchParallel)
	v.SetDefault(KeyCacheTTL, DefaultCacheTTL)

	v.SetDefault(KeyLogFilename, paths.LogFile)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogMaxSize, DefaultLogMaxSize)
	v.SetDefault(KeyLogMaxBackups, DefaultLogMaxBackups)
	v.SetDefault(KeyLogMaxAge, DefaultLogMaxAge)
	v.SetDefault(KeyLogCompress, DefaultLogCompress)

	return v
}

// ReadFile merges the config file at path into v.
// A missing file is not an error; defaults and environment still apply.
func ReadFile(v *viper.Viper, path string) error {
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(errors.ErrConfigInvalid, "failed to parse config YAML", "Check config syntax", err)
	}
	return nil
}

// Decode builds a validated Config from v.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrConfigInvalid, "failed to decode config", "Check config value types", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFrom reads and validates config from a specific path. The file
// must exist.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(errors.ErrConfigInvalid, "failed to read config", "", err)
	}

	v := NewViper(NewPaths())
	if err := ReadFile(v, path); err != nil {
		return nil, err
	}
	return Decode(v)
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg, err := Decode(NewViper(NewPaths()))
	if err != nil {
		cfg = &Config{EnableESP: true, AutoBackup: true, GenerateReport: true}
		cfg.applyDefaults()
	}
	return cfg
}

// SaveTo writes config to a specific path.
func SaveTo(cfg *Config, path string) error {
	cfg.applyDefaults()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(errors.ErrConfigInvalid, "failed to marshal config", "", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.ErrConfigInvalid, "failed to create config directory", "", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks config for valid values.
func (c *Config) Validate() error {
	if c.Profiles.Source != "" {
		if _, _, err := ParseRepo(c.Profiles.Source); err != nil {
			return errors.ConfigInvalid("profiles.source: " + err.Error())
		}
	}

	if sf := c.DefaultSafetyFactor; sf <= 0 || sf > 1 {
		return errors.ConfigInvalid("default_safety_factor must be in (0, 1]")
	}

	if c.Batch.Parallel < 1 {
		return errors.ConfigInvalid("batch.parallel must be at least 1")
	}

	if c.Cache.TTL != "" {
		if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
			return errors.ConfigInvalid("invalid cache.ttl format, use Go duration format (e.g., 24h)")
		}
	}

	return nil
}

// applyDefaults sets default values for fields a hand-built Config leaves empty.
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = DefaultVersion
	}
	if c.Profiles.Dir == "" {
		c.Profiles.Dir = NewPaths().ProfilesDir
	}
	if c.Profiles.Path == "" {
		c.Profiles.Path = DefaultProfilesPath
	}
	if c.DefaultSafetyFactor == 0 {
		c.DefaultSafetyFactor = DefaultSafetyFactor
	}
	if c.Batch.Parallel == 0 {
		c.Batch.Parallel = DefaultBatchParallel
	}
	if c.Cache.TTL == "" {
		c.Cache.TTL = DefaultCacheTTL
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// TTLDuration returns the cache TTL as a time.Duration.
func (c *CacheConfig) TTLDuration() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		d, _ = time.ParseDuration(DefaultCacheTTL)
	}
	return d
}

// IsTrustedSource checks if a repo is trusted according to this config.
// It checks both the user's trusted list and the default trusted sources.
func (c *Config) IsTrustedSource(repo string) bool {
	if IsTrusted(repo, c.Trusted) {
		return true
	}
	return IsTrusted(repo, DefaultTrustedSources)
}

// ProfilesOwnerRepo returns the owner and repo of the profile source.
func (c *Config) ProfilesOwnerRepo() (owner, repo string, err error) {
	return ParseRepo(c.Profiles.Source)
}
