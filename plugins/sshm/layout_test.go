package sshm_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markc/pablo/plugins/sshm"
)

func TestLayout_Init(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), ".ssh")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "id_old"), []byte("k"), 0o644))

	l := sshm.NewLayout(dir)
	require.NoError(t, l.Init())

	modes := map[string]os.FileMode{
		"":                0o700,
		"config.d":        0o700,
		"authorized_keys": 0o600,
		"config":          0o600,
		"id_old":          0o600,
	}
	for name, want := range modes {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Equal(t, want, info.Mode().Perm(), name)
	}

	b, err := os.ReadFile(filepath.Join(dir, "config"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "# Created by pablo on "))
	assert.Contains(t, string(b), "\nInclude ~/.ssh/config.d/*\n")
	assert.Contains(t, string(b), "Host *\n  TCPKeepAlive yes\n")

	t.Run("existing files are kept", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config"), []byte("mine\n"), 0o600))
		require.NoError(t, sshm.NewLayout(dir).Init())
		b, err := os.ReadFile(filepath.Join(dir, "config"))
		require.NoError(t, err)
		assert.Equal(t, "mine\n", string(b))
	})
}

func TestHostConfig(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"Host web\n    Hostname web.test\n    Port 22\n    User root\n",
		sshm.HostConfig(sshm.Host{Name: "web", Hostname: "web.test", Port: 22, User: "root"}))
	assert.Equal(t,
		"Host db\n    Hostname 10.0.0.5\n    Port 2222\n    User pg\n    IdentityFile ~/.ssh/db\n",
		sshm.HostConfig(sshm.Host{Name: "db", Hostname: "10.0.0.5", Port: 2222, User: "pg", IdentityFile: "~/.ssh/db"}))
}

func TestLayout_Files(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), ".ssh")
	l := sshm.NewLayout(dir)
	require.NoError(t, l.Init())

	t.Run("host files", func(t *testing.T) {
		h := sshm.Host{Name: "web", Hostname: "web.test", Port: 22, User: "root"}
		require.NoError(t, l.WriteHost(h))

		hosts, err := l.ReadHosts()
		require.NoError(t, err)
		assert.Equal(t, []sshm.Host{h}, hosts)

		require.NoError(t, l.RemoveHost("web"))
		require.NoError(t, l.RemoveHost("web"), "removing a missing host is fine")
		hosts, err = l.ReadHosts()
		require.NoError(t, err)
		assert.Empty(t, hosts)
	})

	t.Run("paths stay inside the directory", func(t *testing.T) {
		path, err := l.KeyPath("../../etc/passwd")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(path, dir+string(filepath.Separator)), path)

		require.NoError(t, l.WriteHost(sshm.Host{Name: "../escape", Hostname: "x.test", Port: 22, User: "root"}))
		assert.NoFileExists(t, filepath.Join(dir, "escape"))
		assert.NoFileExists(t, filepath.Join(filepath.Dir(dir), "escape"))
	})

	t.Run("key pairs", func(t *testing.T) {
		found, err := l.KeyExists("lan")
		require.NoError(t, err)
		assert.False(t, found)

		require.NoError(t, os.WriteFile(filepath.Join(dir, "lan"), []byte("PRIVATE"), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "lan.pub"), []byte("ssh-ed25519 AAAA me@lan\n"), 0o644))

		found, err = l.KeyExists("lan")
		require.NoError(t, err)
		assert.True(t, found)

		pub, err := l.PublicKey("lan")
		require.NoError(t, err)
		assert.Equal(t, "ssh-ed25519 AAAA me@lan", pub)

		require.NoError(t, l.RemoveKey("lan"))
		assert.NoFileExists(t, filepath.Join(dir, "lan"))
		assert.NoFileExists(t, filepath.Join(dir, "lan.pub"))
		require.NoError(t, l.RemoveKey("lan"))
	})
}
