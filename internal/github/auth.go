// Package github syncs printer profiles from GitHub repositories.
package github

import (
	"os"
	"os/exec"
	"strings"

	"github.com/regain3d/regain/internal/errors"
)

// EnvGitHubToken is consulted when the gh CLI has no token.
const EnvGitHubToken = "REGAIN_GITHUB_TOKEN"

// Token sources reported by ResolveToken and AuthMethod.
const (
	SourceGHCLI = "gh CLI"
	SourceEnv   = EnvGitHubToken
	SourceNone  = "none"
)

// ResolveToken walks the auth chain (gh auth token, then REGAIN_GITHUB_TOKEN)
// and reports which source produced the token.
func ResolveToken() (token, source string, err error) {
	token, err = GetTokenFromGHCLI()
	if err == nil && token != "" {
		return token, SourceGHCLI, nil
	}
	if token = GetTokenFromEnv(); token != "" {
		return token, SourceEnv, nil
	}
	return "", SourceNone, errors.GitHubAuthFailed(err)
}

// GetToken returns the first token the auth chain yields.
func GetToken() (string, error) {
	token, _, err := ResolveToken()
	return token, err
}

// GetTokenFromGHCLI runs `gh auth token`.
func GetTokenFromGHCLI() (string, error) {
	out, err := exec.Command("gh", "auth", "token").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// GetTokenFromEnv reads REGAIN_GITHUB_TOKEN.
func GetTokenFromEnv() string {
	return strings.TrimSpace(os.Getenv(EnvGitHubToken))
}

// IsGHCLIInstalled reports whether a gh binary is on PATH, logged in or not.
func IsGHCLIInstalled() bool {
	_, err := exec.LookPath("gh")
	return err == nil
}

// AuthMethod names the source sync will authenticate with.
func AuthMethod() string {
	_, source, _ := ResolveToken()
	return source
}
