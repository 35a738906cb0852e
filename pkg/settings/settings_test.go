package settings_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markc/pablo/pkg/nav"
	"github.com/markc/pablo/pkg/settings"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pablo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	s, err := settings.Load(settings.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "Pablo", s.App.Name)
	assert.Equal(t, "go1.23", s.App.MinRuntime)
	assert.Equal(t, ":8080", s.Server.Address)
	assert.Equal(t, 15*time.Second, s.Server.ReadTimeout)
	assert.Equal(t, settings.StoreMemory, s.Session.Store)
	assert.Equal(t, "plugins", s.Plugins.Dir)
	assert.Equal(t, []string{"lhsNav", "rhsNav"}, s.Output.Sections)
	assert.Equal(t, "schema_migrations", s.Database.MigrationsTable)

	remotes := s.Remotes()
	assert.Equal(t, "Remotes", remotes.Name)
	assert.Len(t, remotes.Entries, 2)
}

func TestLoad_File(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
app:
  name: Admin
  debug: true
server:
  address: ":9000"
  read_timeout: 5s
nav:
  remotes:
    - label: prod
      url: "?o=remote&r=prod"
docs:
  dir: /srv/docs
`)

	s, err := settings.Load(settings.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "Admin", s.App.Name)
	assert.True(t, s.App.Debug)
	assert.Equal(t, ":9000", s.Server.Address)
	assert.Equal(t, 5*time.Second, s.Server.ReadTimeout)
	assert.Equal(t, "/srv/docs", s.Docs.Dir)

	remotes := s.Remotes()
	require.Len(t, remotes.Entries, 1)
	assert.Equal(t, "prod", remotes.Entries[0].Label)
	assert.Equal(t, nav.RemoteIcon, remotes.Entries[0].Icon)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PABLO_SERVER_ADDRESS", ":7000")
	t.Setenv("PABLO_APP_DEBUG", "true")

	s, err := settings.Load(settings.New(), "")
	require.NoError(t, err)
	assert.Equal(t, ":7000", s.Server.Address)
	assert.True(t, s.App.Debug)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing explicit file", func(t *testing.T) {
		t.Parallel()

		_, err := settings.Load(settings.New(), filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, settings.ErrReadConfig)
	})

	t.Run("redis store without url", func(t *testing.T) {
		t.Parallel()

		_, err := settings.Load(settings.New(), writeConfig(t, "session:\n  store: redis\n"))
		assert.ErrorIs(t, err, settings.ErrInvalid)
	})

	t.Run("unknown store and short secret", func(t *testing.T) {
		t.Parallel()

		_, err := settings.Load(settings.New(), writeConfig(t, "session:\n  store: disk\n  secret: short\n"))
		require.ErrorIs(t, err, settings.ErrInvalid)
		assert.Contains(t, err.Error(), "disk")
		assert.Contains(t, err.Error(), "session.secret")
	})
}

func TestSshmSettings_SSHDir(t *testing.T) {
	t.Parallel()

	dir, err := settings.SshmSettings{Dir: "/srv/ssh"}.SSHDir()
	require.NoError(t, err)
	assert.Equal(t, "/srv/ssh", dir)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	dir, err = settings.SshmSettings{}.SSHDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".ssh"), dir)
}
