// Package errors provides typed errors for regain.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode identifies the type of error.
type ErrorCode string

const (
	ErrConfigNotFound      ErrorCode = "CONFIG_NOT_FOUND"
	ErrConfigInvalid       ErrorCode = "CONFIG_INVALID"
	ErrProfileNotFound     ErrorCode = "PROFILE_NOT_FOUND"
	ErrProfileInvalid      ErrorCode = "PROFILE_INVALID"
	ErrProfilesDirNotFound ErrorCode = "PROFILES_DIR_NOT_FOUND"
	ErrNoChangesDetected   ErrorCode = "NO_CHANGES_DETECTED"
	ErrProcessingFailed    ErrorCode = "PROCESSING_FAILED"
	ErrUnsupportedFile     ErrorCode = "UNSUPPORTED_FILE"
	ErrGitHubAuthFailed    ErrorCode = "GITHUB_AUTH_FAILED"
	ErrGitHubFetchFailed   ErrorCode = "GITHUB_FETCH_FAILED"
	ErrCacheNotFound       ErrorCode = "CACHE_NOT_FOUND"
	ErrInvalidRepo         ErrorCode = "INVALID_REPO"
)

// RegainError represents a typed error with user-friendly hints.
type RegainError struct {
	Code    ErrorCode
	Message string
	Hint    string
	Cause   error
}

func (e *RegainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *RegainError) Unwrap() error {
	return e.Cause
}

// New creates a new RegainError.
func New(code ErrorCode, message, hint string) *RegainError {
	return &RegainError{
		Code:    code,
		Message: message,
		Hint:    hint,
	}
}

// Wrap creates a new RegainError wrapping an existing error.
func Wrap(code ErrorCode, message, hint string, cause error) *RegainError {
	return &RegainError{
		Code:    code,
		Message: message,
		Hint:    hint,
		Cause:   cause,
	}
}

// CodeOf returns the code of the first RegainError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var re *RegainError
	if stderrors.As(err, &re) {
		return re.Code
	}
	return ""
}

// HintOf returns the hint of the first RegainError in err's chain, or "".
func HintOf(err error) string {
	var re *RegainError
	if stderrors.As(err, &re) {
		return re.Hint
	}
	return ""
}

// IsCode reports whether err carries code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// ConfigNotFound returns an error for missing config file.
func ConfigNotFound(path string) *RegainError {
	return &RegainError{
		Code:    ErrConfigNotFound,
		Message: fmt.Sprintf("config file not found: %s", path),
		Hint:    "Run `regain init` to create a configuration",
	}
}

// ConfigInvalid returns an error for invalid config.
func ConfigInvalid(reason string) *RegainError {
	return &RegainError{
		Code:    ErrConfigInvalid,
		Message: fmt.Sprintf("invalid config: %s", reason),
		Hint:    "Check your config file at ~/.config/regain/config.yaml",
	}
}

// ProfileNotFound returns an error when no printer profile applies.
// suggestions may be empty.
func ProfileNotFound(id string, suggestions []string) *RegainError {
	err := &RegainError{
		Code: ErrProfileNotFound,
		Hint: "Run `regain profiles list` to see available profiles",
	}
	if id == "" {
		err.Message = "no suitable printer profile found"
	} else {
		err.Message = fmt.Sprintf("printer profile not found: %s", id)
	}
	if len(suggestions) > 0 {
		err.Hint = fmt.Sprintf("Did you mean: %s?", strings.Join(suggestions, ", "))
	}
	return err
}

// ProfileInvalid returns an error for a profile that fails validation.
func ProfileInvalid(id, reason string) *RegainError {
	return &RegainError{
		Code:    ErrProfileInvalid,
		Message: fmt.Sprintf("invalid printer profile %s: %s", id, reason),
		Hint:    "Fix the profile file or remove it from the profiles directory",
	}
}

// ProfilesDirNotFound returns an error for a missing profiles directory.
func ProfilesDirNotFound(path string) *RegainError {
	return &RegainError{
		Code:    ErrProfilesDirNotFound,
		Message: fmt.Sprintf("profiles directory not found: %s", path),
		Hint:    "Run `regain profiles sync` or set profiles.dir in your config",
	}
}

// ProcessingFailed returns an error for an injection run that did not succeed.
func ProcessingFailed(reasons []string) *RegainError {
	return &RegainError{
		Code:    ErrProcessingFailed,
		Message: fmt.Sprintf("processing failed: %s", strings.Join(reasons, ", ")),
		Hint:    "Use --profile to pick a printer profile explicitly",
	}
}

// UnsupportedFile returns an error for inputs that are not G-code files.
func UnsupportedFile(path string) *RegainError {
	return &RegainError{
		Code:    ErrUnsupportedFile,
		Message: fmt.Sprintf("only .gcode files are supported: %s", path),
		Hint:    "Export the plate as plain G-code from your slicer",
	}
}

// GitHubAuthFailed returns an error for authentication failures.
func GitHubAuthFailed(cause error) *RegainError {
	return &RegainError{
		Code:    ErrGitHubAuthFailed,
		Message: "GitHub authentication failed",
		Hint:    "Run `gh auth login` or set REGAIN_GITHUB_TOKEN environment variable",
		Cause:   cause,
	}
}

// GitHubFetchFailed returns an error for fetch failures.
func GitHubFetchFailed(repo string, cause error) *RegainError {
	return &RegainError{
		Code:    ErrGitHubFetchFailed,
		Message: fmt.Sprintf("failed to fetch from %s", repo),
		Hint:    "Check that the repository exists and you have access",
		Cause:   cause,
	}
}

// CacheNotFound returns an error when cache doesn't exist.
func CacheNotFound(repo string) *RegainError {
	return &RegainError{
		Code:    ErrCacheNotFound,
		Message: fmt.Sprintf("no cached profiles for %s", repo),
		Hint:    "Run `regain profiles sync` to fetch shared printer profiles",
	}
}

// InvalidRepo returns an error for malformed repo strings.
func InvalidRepo(repo string) *RegainError {
	return &RegainError{
		Code:    ErrInvalidRepo,
		Message: fmt.Sprintf("invalid repository format: %s", repo),
		Hint:    "Use format: github.com/owner/repo or owner/repo",
	}
}
