package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, public, private string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "public.yaml"), []byte(public), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "private.yaml"), []byte(private), 0o600))
}

func TestMustLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir,
		"base_url: http://api:8080/api\nrequest_timeout: 3s\npage_size: 25\nlike_reconcile_delay: 0s\n",
		"username: ann\npassword: secret\n",
	)

	cfg := MustLoad(dir)

	assert.Equal(t, "http://api:8080/api", cfg.Public.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Public.RequestTimeout)
	assert.Equal(t, 25, cfg.Public.PageSize)
	assert.Equal(t, time.Duration(0), cfg.Public.LikeReconcileDelay)
	// untouched keys keep their defaults
	assert.Equal(t, 10, cfg.Public.RecentLimit)
	assert.Equal(t, int64(2*1024*1024), cfg.Public.AvatarMaxBytes)
	assert.Equal(t, "ann", cfg.Username())
	assert.Equal(t, "secret", cfg.Password())
}

func TestMustLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "base_url: http://from-file/api\n", "username: ann\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FORUM_PASSWORD=from-dotenv\n"), 0o600))
	t.Setenv("FORUM_BASE_URL", "http://from-env/api")
	t.Setenv("FORUM_PASSWORD", "")
	os.Unsetenv("FORUM_PASSWORD")

	cfg := MustLoad(dir)

	assert.Equal(t, "http://from-env/api", cfg.Public.BaseURL)
	assert.Equal(t, "ann", cfg.Username())
	assert.Equal(t, "from-dotenv", cfg.Password())
}

func TestMustLoad_RequiredFields(t *testing.T) {
	// Create temp config with a missing required field to ensure validation panics
	dir := t.TempDir()
	writeConfig(t, dir, "base_url: ''\npage_size: 20\n", "username: ann\n")
	t.Setenv("FORUM_BASE_URL", "")

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic due to missing required field, got none")
		}
	}()

	_ = MustLoad(dir)
}

func TestMustLoad_MissingFile(t *testing.T) {
	assert.Panics(t, func() { MustLoad(t.TempDir()) })
}

func TestWithCredentials(t *testing.T) {
	base := Default()
	withCreds := base.WithCredentials("bob", "pw")

	assert.Equal(t, "bob", withCreds.Username())
	assert.Equal(t, "", base.Username(), "original is not modified")
	assert.Equal(t, base.Public, withCreds.Public)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("FORUM_BASE_URL", "http://forum.test/api")
	t.Setenv("FORUM_USERNAME", "bob")

	cfg := FromEnv()

	assert.Equal(t, "http://forum.test/api", cfg.Public.BaseURL)
	assert.Equal(t, "bob", cfg.Username())
	assert.Equal(t, 10, cfg.Public.PageSize)
}
