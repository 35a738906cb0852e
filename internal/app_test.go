package internal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markc/pablo/pkg/health"
)

func TestApp_Reconcile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"home", "docs", "blog"} {
		require.NoError(t, os.Mkdir(filepath.Join(dir, name), 0o755))
	}

	app := New(
		WithPluginsDir(dir),
		WithPlugin("Home", staticPlugin("home")),
		WithPlugin("Docs", staticPlugin("docs")),
	)

	assert.Equal(t, []string{"Blog"}, app.Reconcile())
	assert.Equal(t, []string{"Docs", "Home"}, app.Plugins())
	assert.Empty(t, app.Themes())
	assert.Equal(t, dir, app.Scanner().Dir())
}

func TestApp_Health(t *testing.T) {
	t.Parallel()

	failing := New(WithHealthChecks(health.Checks{
		"db": func(context.Context) error { return errors.New("down") },
	}))
	healthy := New()

	rec := serve(healthy, httptest.NewRequest(http.MethodGet, LivenessPath, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(healthy, httptest.NewRequest(http.MethodGet, ReadinessPath, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(failing, httptest.NewRequest(http.MethodGet, ReadinessPath, nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestApp_StaticFiles(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"assets/pablo.css": {Data: []byte("body{}")},
	}
	app := New(WithStaticFiles("/assets/", fsys, "assets"))

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/assets/pablo.css", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body{}", rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = serve(app, httptest.NewRequest(http.MethodGet, "/assets/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type pingHandler struct{}

func (pingHandler) Routes(r Router) {
	r.Route("/ping", func(r Router) {
		r.GET("/", func(rc *RequestContext) error {
			_, err := rc.Response().Write([]byte("pong:" + ContextValue[string](rc, ctxKey{})))
			return err
		}, func(next HandlerFunc) HandlerFunc {
			return func(rc *RequestContext) error {
				rc.Set(ctxKey{}, "route")
				return next(rc)
			}
		})
		r.POST("/fail", func(*RequestContext) error {
			return ErrForbidden("nope")
		})
	})
}

func TestApp_HandlersAndMiddleware(t *testing.T) {
	t.Parallel()

	var order []string
	mw := func(name string) Middleware {
		return func(next HandlerFunc) HandlerFunc {
			return func(rc *RequestContext) error {
				order = append(order, name)
				return next(rc)
			}
		}
	}

	app := New(
		WithHandlers(pingHandler{}),
		WithMiddleware(mw("first"), mw("second")),
	)

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/ping/", nil))
	assert.Equal(t, "pong:route", rec.Body.String())
	assert.Equal(t, []string{"first", "second"}, order)

	rec = serve(app, httptest.NewRequest(http.MethodPost, "/ping/fail", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "nope", rec.Body.String())
}

func TestApp_MiddlewareError(t *testing.T) {
	t.Parallel()

	app := New(WithMiddleware(func(HandlerFunc) HandlerFunc {
		return func(*RequestContext) error { return ErrNotFound("gone") }
	}))

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "gone", rec.Body.String())
}

func TestApp_CustomErrorHandler(t *testing.T) {
	t.Parallel()

	var got error
	app := New(
		WithPluginsDir(t.TempDir()),
		WithMinRuntime(""),
		WithErrorHandler(func(rc *RequestContext, err error) error {
			got = err
			rc.Response().WriteHeader(http.StatusTeapot)
			return nil
		}),
	)

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.ErrorIs(t, got, ErrThemeNotFound)
}

func TestApp_NotFound(t *testing.T) {
	t.Parallel()

	app := New(WithNotFoundHandler(func(rc *RequestContext) error {
		rc.Response().WriteHeader(http.StatusNotFound)
		_, err := rc.Response().Write([]byte("custom"))
		return err
	}))

	rec := serve(app, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "custom", rec.Body.String())
}

func TestApp_DuplicateRegistrationKeepsFirst(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, WithPlugin(DefaultPlugin, staticPlugin("second")))
	rec := get(app, "")
	assert.Contains(t, rec.Body.String(), "<h1>Hi</h1>")
}
