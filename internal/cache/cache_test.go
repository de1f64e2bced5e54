package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/regain3d/regain/internal/config"
	"github.com/regain3d/regain/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	dir := t.TempDir()
	return New(config.NewPathsWithOverrides(filepath.Join(dir, "config"), filepath.Join(dir, "cache")))
}

func TestCacheWrite(t *testing.T) {
	c := newTestCache(t)

	files := map[string][]byte{
		"bambulab/bambulab.json": []byte(`{"manufacturer": "Bambu Lab"}`),
		"bambulab/x1c.json":      []byte(`{"id": "bambulab-x1c"}`),
		"prusa-mk4.yaml":         []byte("id: prusa-mk4\n"),
	}
	require.NoError(t, c.Write("acme", "profiles", files, &Metadata{Ref: "main", Path: "printerConfigs"}))
	assert.True(t, c.Exists("acme", "profiles"))

	data, err := os.ReadFile(filepath.Join(c.Dir("acme", "profiles"), "bambulab", "x1c.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": "bambulab-x1c"}`, string(data))

	meta, err := c.GetMetadata("acme", "profiles")
	require.NoError(t, err)
	assert.Equal(t, "acme", meta.Owner)
	assert.Equal(t, "profiles", meta.Repo)
	assert.Equal(t, "main", meta.Ref)
	assert.Equal(t, 3, meta.Files)
	assert.False(t, meta.IsStale(time.Hour))
}

func TestCacheWrite_ReplacesPreviousSync(t *testing.T) {
	c := newTestCache(t)

	require.NoError(t, c.Write("acme", "profiles", map[string][]byte{"old.json": []byte("{}")}, &Metadata{}))
	require.NoError(t, c.Write("acme", "profiles", map[string][]byte{"new.json": []byte("{}")}, &Metadata{}))

	_, err := os.Stat(filepath.Join(c.Dir("acme", "profiles"), "old.json"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(c.Dir("acme", "profiles"), "new.json"))
	assert.NoError(t, err)
}

func TestCacheWrite_RejectsEscapingPaths(t *testing.T) {
	c := newTestCache(t)
	err := c.Write("acme", "profiles", map[string][]byte{"../evil.json": []byte("{}")}, &Metadata{})
	assert.Error(t, err)
	assert.False(t, c.Exists("acme", "profiles"))
}

func TestCacheNotFound(t *testing.T) {
	c := newTestCache(t)

	assert.False(t, c.Exists("nobody", "nothing"))
	_, err := c.GetMetadata("nobody", "nothing")
	var re *errors.RegainError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, errors.ErrCacheNotFound, re.Code)
}

func TestCacheClear(t *testing.T) {
	c := newTestCache(t)
	require.NoError(t, c.Write("acme", "profiles", map[string][]byte{"a.json": []byte("{}")}, &Metadata{}))

	require.NoError(t, c.Clear("acme", "profiles"))
	assert.False(t, c.Exists("acme", "profiles"))
	require.NoError(t, c.Clear("acme", "profiles"), "clearing twice is fine")
}

func TestListCached(t *testing.T) {
	c := newTestCache(t)

	list, err := c.ListCached()
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, c.Write("zeta", "p", map[string][]byte{"a.json": []byte("{}")}, &Metadata{}))
	require.NoError(t, c.Write("acme", "profiles", map[string][]byte{"a.json": []byte("{}")}, &Metadata{}))

	list, err = c.ListCached()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "acme/profiles", list[0].RepoString())
	assert.Equal(t, "zeta/p", list[1].RepoString())

	require.NoError(t, c.Clear("zeta", "p"))
	list, err = c.ListCached()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "acme", list[0].Owner)
}

func TestMetadata_Freshness(t *testing.T) {
	const ttl = 24 * time.Hour
	tests := []struct {
		age       time.Duration
		wantStale bool
		wantAge   string
	}{
		{30 * time.Second, false, "just now"},
		{time.Minute + time.Second, false, "1 minute ago"},
		{5*time.Minute + time.Second, false, "5 minutes ago"},
		{time.Hour + time.Second, false, "1 hour ago"},
		{3*time.Hour + time.Second, false, "3 hours ago"},
		{ttl, true, "1 day ago"},
		{3*ttl + time.Second, true, "3 days ago"},
	}

	for _, tt := range tests {
		t.Run(tt.wantAge, func(t *testing.T) {
			meta := &Metadata{Owner: "regain3d", Repo: "regain-profiles", LastFetched: time.Now().Add(-tt.age)}
			assert.Equal(t, tt.wantStale, meta.IsStale(ttl))
			assert.Equal(t, tt.wantAge, meta.Age())
			assert.Equal(t, "regain3d/regain-profiles", meta.RepoString())
		})
	}
}
