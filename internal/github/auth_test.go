package github

import (
	"testing"

	"github.com/regain3d/regain/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveToken(t *testing.T) {
	// No gh binary on PATH.
	t.Setenv("PATH", t.TempDir())

	t.Run("env token", func(t *testing.T) {
		t.Setenv(EnvGitHubToken, " ghp_test \n")
		token, source, err := ResolveToken()
		require.NoError(t, err)
		assert.Equal(t, "ghp_test", token)
		assert.Equal(t, SourceEnv, source)
		assert.Equal(t, SourceEnv, AuthMethod())
	})

	t.Run("nothing configured", func(t *testing.T) {
		t.Setenv(EnvGitHubToken, "")
		_, source, err := ResolveToken()
		assert.Equal(t, SourceNone, source)
		assert.True(t, errors.IsCode(err, errors.ErrGitHubAuthFailed))
		assert.False(t, IsGHCLIInstalled())
	})
}
