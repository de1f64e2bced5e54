package config

import (
	"fmt"
	"strings"
)

// DefaultTrustedSources are profile sources synced without confirmation.
var DefaultTrustedSources = []string{
	"regain3d/regain-profiles",
}

// IsTrusted reports whether repo matches an entry of trusted. An entry is
// either "owner/repo" or a bare "owner", which trusts every repository of
// that owner. Comparison ignores case.
func IsTrusted(repo string, trusted []string) bool {
	owner, name, err := ParseRepo(repo)
	if err != nil {
		return false
	}

	for _, entry := range trusted {
		entry = strings.TrimSpace(entry)
		switch {
		case entry == "":
		case !strings.Contains(entry, "/"):
			if strings.EqualFold(entry, owner) {
				return true
			}
		default:
			tOwner, tName, err := ParseRepo(entry)
			if err == nil && strings.EqualFold(tOwner, owner) && strings.EqualFold(tName, name) {
				return true
			}
		}
	}
	return false
}

// TrustWarning is shown before syncing from a source that is not trusted.
func TrustWarning(repo string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚠️  You're syncing printer profiles from an untrusted source: %s\n\n", repo)
	b.WriteString("    Profiles decide which G-code is injected at every tool change.\n")
	fmt.Fprintf(&b, "    Review them first: https://github.com/%s\n\n", repo)
	b.WriteString("    To trust this source, add it to your config:\n")
	fmt.Fprintf(&b, "      trusted:\n        - %s\n", repo)
	return b.String()
}
