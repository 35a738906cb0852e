package sshm_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markc/pablo"
	"github.com/markc/pablo/pkg/csrf"
	"github.com/markc/pablo/pkg/session"
	"github.com/markc/pablo/plugins/sshm"
	"github.com/markc/pablo/themes/defaulttheme"
)

type fakeStore struct {
	mu     sync.Mutex
	nextID int64
	hosts  map[int64]sshm.Host
	keys   map[int64]sshm.Key
	keyErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{hosts: map[int64]sshm.Host{}, keys: map[int64]sshm.Key{}}
}

func sorted[T any](m map[int64]T, name func(T) string) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b T) int { return strings.Compare(name(a), name(b)) })
	return out
}

func (s *fakeStore) Hosts(context.Context) ([]sshm.Host, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sorted(s.hosts, func(h sshm.Host) string { return h.Name }), nil
}

func (s *fakeStore) Host(_ context.Context, id int64) (sshm.Host, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hosts[id]
	if !ok {
		return sshm.Host{}, sshm.ErrNotFound
	}
	return h, nil
}

func (s *fakeStore) CreateHost(_ context.Context, h sshm.Host) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.hosts {
		if o.Name == h.Name {
			return 0, sshm.ErrExists
		}
	}
	s.nextID++
	h.ID = s.nextID
	s.hosts[h.ID] = h
	return h.ID, nil
}

func (s *fakeStore) UpdateHost(_ context.Context, h sshm.Host) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.hosts[h.ID]; !ok {
		return sshm.ErrNotFound
	}
	for _, o := range s.hosts {
		if o.Name == h.Name && o.ID != h.ID {
			return sshm.ErrExists
		}
	}
	s.hosts[h.ID] = h
	return nil
}

func (s *fakeStore) DeleteHost(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hosts, id)
	return nil
}

func (s *fakeStore) Keys(context.Context) ([]sshm.Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sorted(s.keys, func(k sshm.Key) string { return k.Name }), nil
}

func (s *fakeStore) Key(_ context.Context, id int64) (sshm.Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.keys[id]
	if !ok {
		return sshm.Key{}, sshm.ErrNotFound
	}
	return k, nil
}

func (s *fakeStore) CreateKey(_ context.Context, k sshm.Key) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keyErr != nil {
		return 0, s.keyErr
	}
	s.nextID++
	k.ID = s.nextID
	s.keys[k.ID] = k
	return k.ID, nil
}

func (s *fakeStore) DeleteKey(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, id)
	return nil
}

type call struct {
	name string
	args []string
}

// fakeRunner records calls. ssh-keygen writes a key pair at its -f path.
type fakeRunner struct {
	mu    sync.Mutex
	calls []call
	err   error
}

func (r *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{name, args})
	if r.err != nil {
		return nil, r.err
	}
	if name == "ssh-keygen" {
		path := args[slices.Index(args, "-f")+1]
		comment := args[slices.Index(args, "-C")+1]
		if err := os.WriteFile(path, []byte("PRIVATE"), 0o600); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path+".pub", []byte("ssh-ed25519 AAAAC3Nza "+comment+"\n"), 0o644); err != nil {
			return nil, err
		}
	}
	return []byte("ok"), nil
}

type harness struct {
	plugin *sshm.Plugin
	store  *fakeStore
	runner *fakeRunner
	dir    string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{store: newFakeStore(), runner: &fakeRunner{}, dir: filepath.Join(t.TempDir(), ".ssh")}
	h.plugin = sshm.New(h.store, h.runner, sshm.NewLayout(h.dir), sshm.WithDefaultComment("pablo@lan"))
	return h
}

// do runs the plugin directly. The dispatcher's CSRF check is covered by
// TestSshm_RequiresCSRFHeader.
func (h *harness) do(t *testing.T, method, query string, body url.Values) (any, error) {
	t.Helper()
	r := httptest.NewRequest(method, "/?"+query, strings.NewReader(body.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	in, err := pablo.ParseInput(r)
	require.NoError(t, err)
	return h.run(t, r, in)
}

func (h *harness) doJSON(t *testing.T, query, body string) (any, error) {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/?"+query, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	in, err := pablo.ParseInput(r)
	require.NoError(t, err)
	return h.run(t, r, in)
}

func (h *harness) run(t *testing.T, r *http.Request, in pablo.Input) (any, error) {
	t.Helper()
	cfg := pablo.NewConfig(nil, in)
	cfg.SanitizeInput()
	rc := pablo.NewRequestContext(httptest.NewRecorder(), r, cfg, pablo.NewSessionManager(session.NewMemoryStore()), nil)
	p, err := h.plugin.Factory()(rc, nil)
	require.NoError(t, err)
	return p.Execute(context.Background())
}

// api posts a form to action and returns the decoded Result and status.
func (h *harness) api(t *testing.T, action string, query url.Values, form url.Values) (sshm.Result, int) {
	t.Helper()
	if query == nil {
		query = url.Values{}
	}
	query.Set("plugin", "sshm")
	query.Set("api", action)
	out, err := h.do(t, http.MethodPost, query.Encode(), form)
	require.NoError(t, err)
	return result(t, out)
}

func result(t *testing.T, out any) (sshm.Result, int) {
	t.Helper()
	jr, ok := out.(pablo.JSONResult)
	require.True(t, ok, "want JSONResult, got %T", out)
	res, ok := jr.Value.(sshm.Result)
	require.True(t, ok, "want Result, got %T", jr.Value)
	if jr.Status == 0 {
		return res, http.StatusOK
	}
	return res, jr.Status
}

func hostForm(name, hostname string) url.Values {
	return url.Values{"name": {name}, "hostname": {hostname}}
}

func TestSshm_Page(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	_, err := h.store.CreateHost(context.Background(), sshm.Host{Name: "web<1>", Hostname: "web.example.com", Port: 2222, User: "deploy"})
	require.NoError(t, err)
	_, err = h.store.CreateKey(context.Background(), sshm.Key{Name: "lan", PublicKey: "ssh-ed25519 AAAA me@lan", Comment: "me@lan"})
	require.NoError(t, err)

	out, err := h.do(t, http.MethodGet, "plugin=sshm", nil)
	require.NoError(t, err)
	s, err := pablo.Stringify(context.Background(), out)
	require.NoError(t, err)

	assert.Contains(t, s, `<td>web&lt;1&gt;</td><td>web.example.com</td><td class="text-end">2222</td><td>deploy</td>`)
	assert.Contains(t, s, `<code>ssh-ed25519 AAAA me@lan</code>`)
	assert.Contains(t, s, `data-api="create_host"`)
	assert.Contains(t, s, `data-api="copy_key"`)
	assert.Contains(t, s, `data-confirm="Delete key lan?"`)

	_, err = os.Stat(h.dir)
	assert.ErrorIs(t, err, os.ErrNotExist, "rendering the page leaves the ssh dir alone")
}

func TestSshm_Data(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	out, err := h.do(t, http.MethodGet, "plugin=sshm&api=data", nil)
	require.NoError(t, err)
	jr, ok := out.(pablo.JSONResult)
	require.True(t, ok)
	b, err := json.Marshal(jr.Value)
	require.NoError(t, err)
	assert.JSONEq(t, `{"hosts":[],"keys":[]}`, string(b))

	_, status := h.api(t, "create_host", nil, hostForm("db", "10.0.0.5"))
	require.Equal(t, http.StatusOK, status)

	out, err = h.do(t, http.MethodGet, "plugin=sshm&api=data", nil)
	require.NoError(t, err)
	d := out.(pablo.JSONResult).Value.(sshm.Data)
	require.Len(t, d.Hosts, 1)
	assert.Equal(t, "10.0.0.5", d.Hosts[0].Hostname)
}

func TestSshm_CreateHost(t *testing.T) {
	t.Parallel()

	t.Run("form body with defaults", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		res, status := h.api(t, "create_host", nil, hostForm("web", "Web.Example.com"))
		require.Equal(t, http.StatusOK, status, res.Error)
		assert.True(t, res.Success)
		assert.Equal(t, int64(1), res.ID)

		got, err := h.store.Host(context.Background(), res.ID)
		require.NoError(t, err)
		assert.Equal(t, 22, got.Port)
		assert.Equal(t, "root", got.User)

		b, err := os.ReadFile(filepath.Join(h.dir, "config.d", "web"))
		require.NoError(t, err)
		assert.Equal(t, "Host web\n    Hostname web.example.com\n    Port 22\n    User root\n", string(b))

		info, err := os.Stat(filepath.Join(h.dir, "config.d", "web"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("json body", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		out, err := h.doJSON(t, "plugin=sshm&api=create_host",
			`{"name":"db","hostname":"10.0.0.5","port":2222,"username":"deploy","identity_file":"~/.ssh/lan"}`)
		require.NoError(t, err)
		res, status := result(t, out)
		require.Equal(t, http.StatusOK, status, res.Error)

		b, err := os.ReadFile(filepath.Join(h.dir, "config.d", "db"))
		require.NoError(t, err)
		assert.Equal(t, "Host db\n    Hostname 10.0.0.5\n    Port 2222\n    User deploy\n    IdentityFile ~/.ssh/lan\n", string(b))
	})

	t.Run("invalid input", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		tests := []struct {
			form url.Values
			want string
		}{
			{hostForm("", "h.test"), "Invalid host name"},
			{hostForm("../etc", "h.test"), "Invalid host name"},
			{hostForm("a b", "h.test"), "Invalid host name"},
			{hostForm("web", "bad host"), "Invalid hostname"},
			{hostForm("web", "h.test\nProxyCommand x"), "Invalid hostname"},
			{url.Values{"name": {"web"}, "hostname": {"h.test"}, "port": {"x"}}, "Invalid port"},
			{url.Values{"name": {"web"}, "hostname": {"h.test"}, "port": {"70000"}}, "Invalid port"},
			{url.Values{"name": {"web"}, "hostname": {"h.test"}, "username": {"Root!"}}, "Invalid username"},
			{url.Values{"name": {"web"}, "hostname": {"h.test"}, "identity_file": {"a\nb"}}, "Invalid identity file"},
		}
		for _, tt := range tests {
			res, status := h.api(t, "create_host", nil, tt.form)
			assert.Equal(t, http.StatusBadRequest, status, tt.form)
			assert.False(t, res.Success)
			assert.Equal(t, tt.want, res.Error, tt.form)
		}
		hosts, _ := h.store.Hosts(context.Background())
		assert.Empty(t, hosts)
	})

	t.Run("duplicate name", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		_, status := h.api(t, "create_host", nil, hostForm("web", "a.test"))
		require.Equal(t, http.StatusOK, status)
		res, status := h.api(t, "create_host", nil, hostForm("web", "b.test"))
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, "Host 'web' already exists", res.Error)
	})

	t.Run("malformed json", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		out, err := h.doJSON(t, "plugin=sshm&api=create_host", `{"name":`)
		require.NoError(t, err)
		res, status := result(t, out)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Invalid JSON body", res.Error)
	})
}

func TestSshm_EditHost(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	res, _ := h.api(t, "create_host", nil, hostForm("web", "a.test"))
	id := url.Values{"id": {"1"}}
	require.Equal(t, int64(1), res.ID)

	t.Run("rename moves the config file", func(t *testing.T) {
		form := hostForm("www", "b.test")
		form.Set("port", "2200")
		res, status := h.api(t, "edit_host", id, form)
		require.Equal(t, http.StatusOK, status, res.Error)

		assert.NoFileExists(t, filepath.Join(h.dir, "config.d", "web"))
		b, err := os.ReadFile(filepath.Join(h.dir, "config.d", "www"))
		require.NoError(t, err)
		assert.Contains(t, string(b), "Hostname b.test\n    Port 2200\n")

		got, err := h.store.Host(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "www", got.Name)
	})

	t.Run("unknown and malformed ids", func(t *testing.T) {
		_, status := h.api(t, "edit_host", url.Values{"id": {"99"}}, hostForm("x", "x.test"))
		assert.Equal(t, http.StatusNotFound, status)

		for _, bad := range []string{"", "0", "-1", "abc"} {
			res, status := h.api(t, "edit_host", url.Values{"id": {bad}}, hostForm("x", "x.test"))
			assert.Equal(t, http.StatusBadRequest, status, bad)
			assert.Equal(t, "Invalid host id", res.Error)
		}
	})
}

func TestSshm_DeleteHost(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.api(t, "create_host", nil, hostForm("web", "a.test"))
	require.FileExists(t, filepath.Join(h.dir, "config.d", "web"))

	res, status := h.api(t, "delete_host", url.Values{"id": {"1"}}, nil)
	require.Equal(t, http.StatusOK, status, res.Error)
	assert.Equal(t, "Removed host web", res.Message)
	assert.NoFileExists(t, filepath.Join(h.dir, "config.d", "web"))

	_, status = h.api(t, "delete_host", url.Values{"id": {"1"}}, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSshm_CreateKey(t *testing.T) {
	t.Parallel()

	t.Run("generates and records the key", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		res, status := h.api(t, "create_key", nil, url.Values{"name": {"lan"}, "password": {"s3cret pass"}})
		require.Equal(t, http.StatusOK, status, res.Error)

		path := filepath.Join(h.dir, "lan")
		require.Len(t, h.runner.calls, 1)
		assert.Equal(t, call{"ssh-keygen", []string{"-o", "-a", "100", "-t", "ed25519", "-f", path, "-C", "pablo@lan", "-N", "s3cret pass"}}, h.runner.calls[0])

		k, err := h.store.Key(context.Background(), res.ID)
		require.NoError(t, err)
		assert.Equal(t, "ssh-ed25519 AAAAC3Nza pablo@lan", k.PublicKey)
		assert.Equal(t, "pablo@lan", k.Comment)
	})

	t.Run("comment is passed as sent", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		_, status := h.api(t, "create_key", nil, url.Values{"name": {"ci"}, "comment": {"ci & deploy"}})
		require.Equal(t, http.StatusOK, status)
		args := h.runner.calls[0].args
		assert.Equal(t, []string{"-C", "ci & deploy", "-N", ""}, args[len(args)-4:])
	})

	t.Run("existing key file", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		_, status := h.api(t, "create_key", nil, url.Values{"name": {"lan"}})
		require.Equal(t, http.StatusOK, status)
		res, status := h.api(t, "create_key", nil, url.Values{"name": {"lan"}})
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, "SSH Key '~/.ssh/lan' already exists", res.Error)
		assert.Len(t, h.runner.calls, 1)
	})

	t.Run("invalid input", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		for msg, form := range map[string]url.Values{
			"Invalid key name":                         {"name": {"../id_rsa"}},
			"Invalid key comment":                      {"name": {"k"}, "comment": {"a\nb"}},
			"Passphrase must be at least 5 characters": {"name": {"k"}, "password": {"abc"}},
		} {
			res, status := h.api(t, "create_key", nil, form)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, msg, res.Error)
		}
		assert.Empty(t, h.runner.calls)
	})

	t.Run("keygen failure", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		h.runner.err = errors.New("ssh-keygen missing")

		_, err := h.do(t, http.MethodPost, "plugin=sshm&api=create_key", url.Values{"name": {"lan"}})
		require.ErrorContains(t, err, "ssh-keygen missing")
	})

	t.Run("store failure removes the key pair", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		h.store.keyErr = sshm.ErrStore

		_, err := h.do(t, http.MethodPost, "plugin=sshm&api=create_key", url.Values{"name": {"lan"}})
		require.ErrorIs(t, err, sshm.ErrStore)
		assert.NoFileExists(t, filepath.Join(h.dir, "lan"))
		assert.NoFileExists(t, filepath.Join(h.dir, "lan.pub"))
	})
}

func TestSshm_DeleteKey(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	res, _ := h.api(t, "create_key", nil, url.Values{"name": {"lan"}})
	require.FileExists(t, filepath.Join(h.dir, "lan.pub"))

	del, status := h.api(t, "delete_key", url.Values{"id": {"1"}}, nil)
	require.Equal(t, http.StatusOK, status, del.Error)
	assert.NoFileExists(t, filepath.Join(h.dir, "lan"))
	assert.NoFileExists(t, filepath.Join(h.dir, "lan.pub"))
	_, err := h.store.Key(context.Background(), res.ID)
	assert.ErrorIs(t, err, sshm.ErrNotFound)
}

func TestSshm_CopyKey(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.api(t, "create_key", nil, url.Values{"name": {"lan"}})
	form := hostForm("web", "web.test")
	form.Set("port", "2222")
	form.Set("username", "deploy")
	h.api(t, "create_host", nil, form)

	res, status := h.api(t, "copy_key", url.Values{"key_id": {"1"}, "host_id": {"2"}}, nil)
	require.Equal(t, http.StatusOK, status, res.Error)
	assert.Equal(t, "Copied key lan to web", res.Message)
	require.Len(t, h.runner.calls, 2)
	assert.Equal(t, call{"ssh-copy-id", []string{"-i", filepath.Join(h.dir, "lan.pub"), "-p", "2222", "deploy@web.test"}}, h.runner.calls[1])

	_, status = h.api(t, "copy_key", url.Values{"key_id": {"1"}, "host_id": {"9"}}, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSshm_ImportHosts(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.api(t, "create_host", nil, hostForm("known", "known.test"))

	cfg := `# imported
Host known
    Hostname other.test
Host new1
    Hostname 10.1.1.1
    Port 2200
    User admin
    IdentityFile ~/.ssh/lan
Host *.wild
    Hostname ignored.test
Host nohost
    User x
`
	require.NoError(t, os.WriteFile(filepath.Join(h.dir, "config.d", "legacy"), []byte(cfg), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(h.dir, "config.d", "new2"), []byte("Host new2\n  HostName n2.test\n"), 0o600))

	res, status := h.api(t, "import_hosts", nil, nil)
	require.Equal(t, http.StatusOK, status, res.Error)
	assert.Equal(t, "Imported 2 hosts", res.Message)

	hosts, err := h.store.Hosts(context.Background())
	require.NoError(t, err)
	require.Len(t, hosts, 3)
	assert.Equal(t, "known.test", hosts[0].Hostname, "existing hosts are kept")
	assert.Equal(t, sshm.Host{ID: 2, Name: "new1", Hostname: "10.1.1.1", Port: 2200, User: "admin", IdentityFile: "~/.ssh/lan"}, hosts[1])
	assert.Equal(t, "n2.test", hosts[2].Hostname)
	assert.Equal(t, 22, hosts[2].Port)

	res, _ = h.api(t, "import_hosts", nil, nil)
	assert.Equal(t, "Imported 0 hosts", res.Message)
}

func TestSshm_Requests(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	t.Run("unknown action", func(t *testing.T) {
		res, status := h.api(t, "reboot", nil, nil)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Invalid API request", res.Error)
	})

	t.Run("changes need POST", func(t *testing.T) {
		out, err := h.do(t, http.MethodGet, "plugin=sshm&api=delete_host&id=1", nil)
		require.NoError(t, err)
		res, status := result(t, out)
		assert.Equal(t, http.StatusMethodNotAllowed, status)
		assert.Equal(t, "Use POST for delete_host", res.Error)
	})

	t.Run("api=0 renders the page", func(t *testing.T) {
		out, err := h.do(t, http.MethodGet, "plugin=sshm&api=0", nil)
		require.NoError(t, err)
		_, isJSON := out.(pablo.JSONResult)
		assert.False(t, isJSON)
	})
}

func TestSshm_RequiresCSRFHeader(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	app := pablo.New(append(defaulttheme.Options(),
		pablo.WithPluginsDir(t.TempDir()),
		pablo.WithMinRuntime(""),
		pablo.WithPlugin(sshm.ID, h.plugin.Factory()),
	)...)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?plugin=sshm", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var sid *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "pablo_sid" {
			sid = c
		}
	}
	require.NotNil(t, sid)
	sess, err := app.Sessions().Store().Get(context.Background(), sid.Value)
	require.NoError(t, err)
	token := session.ValueOr(sess, csrf.SessionKey, "")
	require.NotEmpty(t, token)

	post := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/?plugin=sshm&api=create_host", strings.NewReader(hostForm("web", "a.test").Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(sid)
		if header != "" {
			req.Header.Set(csrf.HeaderName, header)
		}
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusInternalServerError, post("").Code)
	assert.Equal(t, http.StatusInternalServerError, post("nope").Code)
	hosts, _ := h.store.Hosts(context.Background())
	assert.Empty(t, hosts)
	assert.NoDirExists(t, h.dir)

	ok := post(token)
	require.Equal(t, http.StatusOK, ok.Code, ok.Body.String())
	assert.JSONEq(t, `{"success":true,"message":"Created host web","id":1}`, ok.Body.String())
}
