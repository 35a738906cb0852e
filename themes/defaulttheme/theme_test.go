package defaulttheme_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markc/pablo"
	"github.com/markc/pablo/themes/defaulttheme"
)

const greeting = "<h1>Welcome</h1>"

func newApp(t *testing.T, opts ...pablo.Option) *pablo.App {
	t.Helper()

	dir := t.TempDir()
	for _, name := range []string{"Home", "Docs"} {
		require.NoError(t, os.Mkdir(filepath.Join(dir, name), 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Home", "plugin.yaml"), []byte("order: 1\nicon: bi bi-house fw\n"), 0o644))

	static := func(out string) pablo.PluginFactory {
		return func(*pablo.RequestContext, pablo.Theme) (pablo.Plugin, error) {
			return pablo.PluginFunc(func(context.Context) (any, error) { return out, nil }), nil
		}
	}

	base := append(defaulttheme.Options(),
		pablo.WithPluginsDir(dir),
		pablo.WithMinRuntime(""),
		pablo.WithSettings(map[string]string{pablo.CfgAppName: "Test <App>"}),
		pablo.WithPlugin("Home", static(greeting)),
		pablo.WithPlugin("Docs", static("<p>docs</p>")),
		pablo.WithPlugin("Flash", func(rc *pablo.RequestContext, _ pablo.Theme) (pablo.Plugin, error) {
			return pablo.PluginFunc(func(context.Context) (any, error) {
				if err := rc.AddFlash(pablo.FlashSuccess, "Saved <ok>"); err != nil {
					return nil, err
				}
				return pablo.RedirectTo("?plugin=home"), nil
			}), nil
		}),
	)
	return pablo.New(append(base, opts...)...)
}

func do(app *pablo.App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func TestTheme_FullPage(t *testing.T) {
	t.Parallel()

	app := newApp(t)
	rec := do(app, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "<!DOCTYPE html>"))
	assert.Contains(t, body, "<title>Test &lt;App&gt;</title>")
	assert.Contains(t, body, `<div id="content-section">`+greeting+`</div>`)
	assert.Regexp(t, `<meta name="csrf-token" content="[0-9a-f]{64}">`, body)
	assert.Contains(t, body, `<script src="/assets/pablo.js"></script>`)

	assert.Contains(t, body, `id="PluginsSubmenu"`)
	assert.Contains(t, body, `<a class="nav-link active" href="?plugin=home"><i class="bi bi-house fw"></i> Home</a>`)
	assert.Contains(t, body, `href="?plugin=docs"`)
	assert.Contains(t, body, `id="RemotesSubmenu"`)
	assert.Contains(t, body, `href="?o=remote&amp;r=local"`)
	assert.Equal(t, 1, strings.Count(body, "nav-link active"))
}

func TestTheme_ActiveEntryFollowsPlugin(t *testing.T) {
	t.Parallel()

	app := newApp(t)
	body := do(app, httptest.NewRequest(http.MethodGet, "/?plugin=docs", nil)).Body.String()
	assert.Contains(t, body, `<a class="nav-link active" href="?plugin=docs">`)
	assert.Contains(t, body, `<div id="content-section"><p>docs</p></div>`)
}

func TestTheme_AJAX(t *testing.T) {
	t.Parallel()

	app := newApp(t)
	for _, h := range [][2]string{{"X-Requested-With", "XMLHttpRequest"}, {"HX-Request", "true"}} {
		req := httptest.NewRequest(http.MethodGet, "/?plugin=home", nil)
		req.Header.Set(h[0], h[1])
		assert.Equal(t, greeting, do(app, req).Body.String(), h[0])
	}
}

func TestTheme_PartialSections(t *testing.T) {
	t.Parallel()

	app := newApp(t)

	rec := do(app, httptest.NewRequest(http.MethodGet, "/?format=partial&section=lhsNav", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "PluginsSubmenu")

	rec = do(app, httptest.NewRequest(http.MethodGet, "/?format=partial&section=rhsNav&partial=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `""`, rec.Body.String())
}

func TestTheme_Flashes(t *testing.T) {
	t.Parallel()

	app := newApp(t)

	rec := do(app, httptest.NewRequest(http.MethodPost, "/?plugin=flash", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		next.AddCookie(c)
	}
	body := do(app, next).Body.String()
	assert.Contains(t, body, `<div class="alert alert-success alert-dismissible fade show" role="alert">Saved &lt;ok&gt;`)

	again := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		again.AddCookie(c)
	}
	assert.NotContains(t, do(app, again).Body.String(), "alert-success")
}

func TestTheme_Assets(t *testing.T) {
	t.Parallel()

	app := newApp(t)
	for _, name := range []string{"pablo.js", "pablo.css"} {
		rec := do(app, httptest.NewRequest(http.MethodGet, defaulttheme.AssetsPrefix+name, nil))
		assert.Equal(t, http.StatusOK, rec.Code, name)
		assert.NotEmpty(t, rec.Body.String(), name)
	}
}

func TestTheme_SecondaryOutput(t *testing.T) {
	t.Parallel()

	th, err := defaulttheme.New(nil, nil)
	require.NoError(t, err)
	so, ok := th.(pablo.SecondaryOutputs)
	require.True(t, ok)

	for _, name := range []string{defaulttheme.SectionLHSNav, defaulttheme.SectionRHSNav} {
		_, ok := so.SecondaryOutput(name)
		assert.True(t, ok, name)
	}
	_, ok = so.SecondaryOutput(pablo.OutMain)
	assert.False(t, ok)
}

func TestFlashes_UnknownKindFallsBackToInfo(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	require.NoError(t, defaulttheme.Flashes([]pablo.Flash{{Kind: "bogus", Text: "x"}}).Render(context.Background(), &b))
	assert.Contains(t, b.String(), "alert-info")
}
