package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/regain3d/regain/internal/errors"
	"gopkg.in/yaml.v3"
)

// LoadOptions controls how profile files become profiles.
type LoadOptions struct {
	// DefaultSafetyFactor is used when a profile leaves calculations.safetyFactor unset.
	DefaultSafetyFactor float64
}

// Skipped records a profile file that could not be used.
type Skipped struct {
	Path   string
	Reason string
}

// LoadReport summarizes a directory load.
type LoadReport struct {
	Loaded  int
	Skipped []Skipped
}

// isProfileFile reports whether a file name has a supported extension.
func isProfileFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// LoadDir loads every profile below dir.
//
// Layout:
//
//	dir/<manufacturer>/<manufacturer>.json   shared partial profile (optional)
//	dir/<manufacturer>/<model>.json          model-specific profile
//	dir/<model>.yaml                         standalone profile
//
// Model documents are merged over the shared document key by key at the top
// level. Invalid files are reported in the LoadReport and skipped.
func LoadDir(dir string, opts LoadOptions) ([]*Profile, *LoadReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.ProfilesDirNotFound(dir)
		}
		return nil, nil, fmt.Errorf("failed to read profiles directory: %w", err)
	}

	report := &LoadReport{}
	var profiles []*Profile

	add := func(path string, docs ...map[string]any) {
		p, err := Build(opts, docs...)
		if err != nil {
			report.Skipped = append(report.Skipped, Skipped{Path: path, Reason: err.Error()})
			return
		}
		p.Source = path
		profiles = append(profiles, p)
		report.Loaded++
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if !entry.IsDir() {
			if !isProfileFile(entry.Name()) {
				continue
			}
			doc, err := ReadDocument(path)
			if err != nil {
				report.Skipped = append(report.Skipped, Skipped{Path: path, Reason: err.Error()})
				continue
			}
			add(path, doc)
			continue
		}

		manufacturer := entry.Name()
		files, err := os.ReadDir(path)
		if err != nil {
			report.Skipped = append(report.Skipped, Skipped{Path: path, Reason: err.Error()})
			continue
		}

		shared := map[string]any{}
		for _, f := range files {
			if f.IsDir() || !isProfileFile(f.Name()) || !isSharedFile(f.Name(), manufacturer) {
				continue
			}
			sharedPath := filepath.Join(path, f.Name())
			doc, err := ReadDocument(sharedPath)
			if err != nil {
				report.Skipped = append(report.Skipped, Skipped{Path: sharedPath, Reason: err.Error()})
				continue
			}
			shared = doc
			break
		}

		for _, f := range files {
			if f.IsDir() || !isProfileFile(f.Name()) || isSharedFile(f.Name(), manufacturer) {
				continue
			}
			modelPath := filepath.Join(path, f.Name())
			doc, err := ReadDocument(modelPath)
			if err != nil {
				report.Skipped = append(report.Skipped, Skipped{Path: modelPath, Reason: err.Error()})
				continue
			}
			add(modelPath, shared, doc)
		}
	}

	return profiles, report, nil
}

// isSharedFile reports whether name is the manufacturer's shared document.
func isSharedFile(name, manufacturer string) bool {
	return strings.TrimSuffix(name, filepath.Ext(name)) == manufacturer
}

// ReadDocument reads a JSON or YAML profile document into a generic map.
func ReadDocument(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}
	return ParseDocument(data, strings.ToLower(filepath.Ext(path)) == ".json")
}

// ParseDocument decodes a profile document.
func ParseDocument(data []byte, isJSON bool) (map[string]any, error) {
	doc := map[string]any{}
	if isJSON {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid profile JSON: %w", err)
		}
		return doc, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid profile YAML: %w", err)
	}
	return doc, nil
}

// Merge overlays documents left to right. Later documents replace whole
// top-level keys of earlier ones.
func Merge(docs ...map[string]any) map[string]any {
	merged := map[string]any{}
	for _, doc := range docs {
		for k, v := range doc {
			merged[k] = v
		}
	}
	return merged
}

// Build merges documents into a profile, applies defaults and validates it.
func Build(opts LoadOptions, docs ...map[string]any) (*Profile, error) {
	data, err := yaml.Marshal(Merge(docs...))
	if err != nil {
		return nil, fmt.Errorf("failed to encode merged profile: %w", err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}

	if p.Calculations.SafetyFactor <= 0 && opts.DefaultSafetyFactor > 0 {
		p.Calculations.SafetyFactor = opts.DefaultSafetyFactor
	}
	p.ApplyDefaults()

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}
