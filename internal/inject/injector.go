package inject

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/regain3d/regain/internal/gcode"
	"github.com/regain3d/regain/internal/profile"
)

// Messages reported in a Result.
const (
	MsgNoProfile       = "No suitable printer profile found"
	MsgNoChanges       = "No filament changes detected"
	msgProcessingError = "Processing error: %v"
)

// Options controls a single Process call.
type Options struct {
	// Profile forces a profile instead of detecting one.
	Profile *profile.Profile
	// AddComments prepends a summary comment block to each rewritten change.
	AddComments bool
	// DisableESP drops the espPause template from rewritten blocks.
	DisableESP bool
	// StrictTemplates reports placeholders left unresolved as warnings.
	StrictTemplates bool
}

// Result is the outcome of one Process call. OriginalGCode is always set.
type Result struct {
	Success       bool               `json:"success"`
	ModifiedGCode *string            `json:"modifiedGCode,omitempty"`
	OriginalGCode string             `json:"originalGCode"`
	Changes       []*FilamentChange  `json:"changes"`
	Calculations  []PurgeCalculation `json:"calculations"`
	WasteEstimate *WasteEstimate     `json:"wasteEstimate,omitempty"`
	Profile       *profile.Profile   `json:"profile"`
	Errors        []string           `json:"errors"`
	Warnings      []string           `json:"warnings"`
}

// Injector rewrites G-code using the profiles of a registry.
type Injector struct {
	registry *profile.Registry
	logger   *slog.Logger
}

// Option configures an Injector.
type Option func(*Injector)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(in *Injector) {
		in.logger = logger
	}
}

// New creates an injector that detects profiles from registry.
// A nil registry behaves as an empty one.
func New(registry *profile.Registry, opts ...Option) *Injector {
	if registry == nil {
		registry = profile.NewRegistry()
	}
	in := &Injector{
		registry: registry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Registry returns the profile registry used for detection.
func (in *Injector) Registry() *profile.Registry {
	return in.registry
}

// Process tokenizes text, resolves a profile, detects changes and rewrites
// them. It never panics; every failure is reported in the Result.
func (in *Injector) Process(text string, opts Options) (res *Result) {
	res = &Result{
		OriginalGCode: text,
		Changes:       []*FilamentChange{},
		Calculations:  []PurgeCalculation{},
		Errors:        []string{},
		Warnings:      []string{},
	}

	defer func() {
		if r := recover(); r != nil {
			res.Success = false
			res.ModifiedGCode = nil
			res.Errors = append(res.Errors, fmt.Sprintf(msgProcessingError, r))
		}
	}()

	f := gcode.Tokenize(text)

	p := opts.Profile
	if p == nil {
		var score float64
		p, score = in.registry.Detect(f)
		if p != nil {
			in.logger.Debug("detected printer profile", "profile", p.ID, "score", score)
		}
	}
	if p == nil {
		res.Errors = append(res.Errors, MsgNoProfile)
		return res
	}
	res.Profile = p

	if p.Hardware.FilamentDiameter <= 0 {
		res.Errors = append(res.Errors, fmt.Sprintf(msgProcessingError,
			fmt.Sprintf("profile %s has no filament diameter", p.ID)))
		return res
	}

	changes := DetectChanges(f, p)
	in.logger.Debug("detected filament changes", "profile", p.ID, "count", len(changes))
	if len(changes) == 0 {
		res.Warnings = append(res.Warnings, MsgNoChanges)
		res.Success = true
		res.ModifiedGCode = &text
		return res
	}
	res.Changes = changes

	calcs := make([]PurgeCalculation, len(changes))
	for i, change := range changes {
		calcs[i] = CalculatePurge(change, p)
		change.Calculation = &calcs[i]
	}
	res.Calculations = calcs

	blockOpts := BlockOptions{
		AddComments: opts.AddComments,
		ESPEnabled:  !opts.DisableESP,
	}
	segments := make([]Segment, 0, len(changes))
	for _, change := range changes {
		block := RewriteBlock(change, *change.Calculation, p, blockOpts)
		if opts.StrictTemplates {
			for _, name := range UnresolvedPlaceholders(block) {
				res.Warnings = append(res.Warnings,
					fmt.Sprintf("Unresolved template placeholder {%s} in change %d", name, change.Index+1))
			}
		}
		segments = append(segments, Segment{Start: change.StartLine, End: change.EndLine, Lines: block})
	}

	modified := strings.Join(Rewrite(f.Lines, segments), "\n")
	res.ModifiedGCode = &modified

	waste := EstimateWaste(changes, calcs)
	res.WasteEstimate = &waste

	res.Success = true
	return res
}
