// Package cache manages printer profiles synced from a GitHub repository.
package cache

import (
	"fmt"
	"time"
)

// Metadata records where and when synced profiles were fetched.
type Metadata struct {
	Owner       string    `json:"owner"`
	Repo        string    `json:"repo"`
	Ref         string    `json:"ref,omitempty"`
	Path        string    `json:"path,omitempty"`
	Files       int       `json:"files"`
	LastFetched time.Time `json:"last_fetched"`
}

// IsStale reports whether the profiles were fetched at least ttl ago.
func (m *Metadata) IsStale(ttl time.Duration) bool {
	return time.Since(m.LastFetched) >= ttl
}

// Age describes the time since the last fetch ("3 hours ago").
func (m *Metadata) Age() string {
	d := time.Since(m.LastFetched)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return ago(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return ago(int(d.Hours()), "hour")
	default:
		return ago(int(d.Hours()/24), "day")
	}
}

func ago(n int, unit string) string {
	if n != 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s ago", n, unit)
}

// RepoString returns "owner/repo".
func (m *Metadata) RepoString() string {
	return m.Owner + "/" + m.Repo
}
