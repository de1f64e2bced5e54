package profile

import (
	"sort"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/regain3d/regain/internal/gcode"
)

// Registry is the ordered set of profiles available for detection.
// Registration order decides ties during detection.
type Registry struct {
	mu       sync.RWMutex
	profiles []*Profile
}

// NewRegistry creates an empty profile registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a profile. A profile whose ID is already registered
// replaces the earlier one in place, keeping its position.
func (r *Registry) Register(p *Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.profiles {
		if existing.ID == p.ID {
			r.profiles[i] = p
			return
		}
	}
	r.profiles = append(r.profiles, p)
}

// RegisterAll adds profiles in order.
func (r *Registry) RegisterAll(profiles []*Profile) {
	for _, p := range profiles {
		r.Register(p)
	}
}

// Clear removes every profile.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles = nil
}

// All returns a snapshot of the profiles in registration order.
func (r *Registry) All() []*Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Profile, len(r.profiles))
	copy(out, r.profiles)
	return out
}

// Get returns a profile by ID, or nil.
func (r *Registry) Get(id string) *Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.profiles {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Count returns the number of registered profiles.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.profiles)
}

// IDs returns the registered profile IDs in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, len(r.profiles))
	for i, p := range r.profiles {
		ids[i] = p.ID
	}
	return ids
}

// Summaries returns identity summaries sorted by manufacturer then model.
func (r *Registry) Summaries() []Summary {
	profiles := r.All()
	out := make([]Summary, len(profiles))
	for i, p := range profiles {
		out[i] = p.Summary()
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Manufacturer != out[j].Manufacturer {
			return out[i].Manufacturer < out[j].Manufacturer
		}
		return out[i].Model < out[j].Model
	})
	return out
}

// Detect selects the best matching profile for a tokenized file.
func (r *Registry) Detect(f *gcode.File) (*Profile, float64) {
	return Select(f, r.All())
}

// Suggest returns up to limit registered IDs that look like id.
func (r *Registry) Suggest(id string, limit int) []string {
	ranks := fuzzy.RankFindFold(id, r.IDs())
	sort.Sort(ranks)

	var out []string
	for _, rank := range ranks {
		if len(out) == limit {
			break
		}
		out = append(out, rank.Target)
	}
	return out
}
