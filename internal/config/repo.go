package config

import (
	"regexp"
	"strings"

	"github.com/regain3d/regain/internal/errors"
)

var repoPart = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// ParseRepo accepts "owner/repo" or a github.com URL (with or without
// scheme, .git suffix, or a /tree/<ref> or /blob/<ref>/<file> tail) and
// returns its owner and repository name.
func ParseRepo(s string) (owner, repo string, err error) {
	trimmed := strings.TrimSpace(s)
	if i := strings.Index(trimmed, "://"); i >= 0 {
		trimmed = trimmed[i+3:]
	}
	trimmed = strings.TrimPrefix(trimmed, "github.com/")

	parts := strings.SplitN(strings.Trim(trimmed, "/"), "/", 3)
	if len(parts) < 2 {
		return "", "", errors.InvalidRepo(s)
	}
	owner, repo = parts[0], strings.TrimSuffix(parts[1], ".git")
	if !repoPart.MatchString(owner) || !repoPart.MatchString(repo) {
		return "", "", errors.InvalidRepo(s)
	}
	return owner, repo, nil
}
