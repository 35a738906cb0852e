package internal

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markc/pablo/pkg/logger"
	"github.com/markc/pablo/pkg/session"
)

type ctxKey struct{}

func newTestRC(t *testing.T) (*RequestContext, *httptest.ResponseRecorder, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore()
	rec := httptest.NewRecorder()
	rc := NewRequestContext(rec, httptest.NewRequest(http.MethodGet, "/?q=1", nil), nil, NewSessionManager(store), nil)
	return rc, rec, store
}

func TestRequestContext_SetGet(t *testing.T) {
	t.Parallel()

	rc, _, _ := newTestRC(t)
	assert.Nil(t, rc.Get(ctxKey{}))

	rc.Set(ctxKey{}, "v")
	assert.Equal(t, "v", rc.Get(ctxKey{}))
	assert.Equal(t, "v", rc.Value(ctxKey{}), "RequestContext is a context.Context")
	assert.Equal(t, "v", rc.Request().Context().Value(ctxKey{}))
	assert.Equal(t, "v", ContextValue[string](rc, ctxKey{}))
	assert.Equal(t, 0, ContextValue[int](rc, ctxKey{}))
}

func TestRequestContext_Session(t *testing.T) {
	t.Parallel()

	rc, rec, store := newTestRC(t)

	sess, err := rc.Session()
	require.NoError(t, err)
	again, err := rc.Session()
	require.NoError(t, err)
	assert.Same(t, sess, again)

	sess.SetValue("k", "v")
	rc.SetHeader("X-Test", "1")
	_, err = rc.Response().Write([]byte("ok"))
	require.NoError(t, err)

	require.Len(t, rec.Result().Cookies(), 1)
	stored, err := store.Get(rc, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "v", session.ValueOr(stored, "k", ""))
	assert.Equal(t, "1", rec.Header().Get("X-Test"))
	assert.True(t, rc.Written())
}

func TestRequestContext_SessionWithoutManager(t *testing.T) {
	t.Parallel()

	rc := NewRequestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), nil, nil, nil)
	_, err := rc.Session()
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.Nil(t, rc.Flashes())
	assert.Error(t, rc.AddFlash(FlashInfo, "x"))
}

func TestRequestContext_CSRFToken(t *testing.T) {
	t.Parallel()

	rc, _, _ := newTestRC(t)
	tok, err := rc.CSRFToken()
	require.NoError(t, err)
	assert.Len(t, tok, 64)

	again, err := rc.CSRFToken()
	require.NoError(t, err)
	assert.Equal(t, tok, again)
}

func TestRequestContext_Flashes(t *testing.T) {
	t.Parallel()

	rc, _, _ := newTestRC(t)
	require.NoError(t, rc.AddFlash(FlashSuccess, "Created"))
	require.NoError(t, rc.AddFlash(FlashDanger, "Failed"))

	assert.Equal(t, []Flash{
		{Kind: FlashSuccess, Text: "Created"},
		{Kind: FlashDanger, Text: "Failed"},
	}, rc.Flashes())
	assert.Empty(t, rc.Flashes(), "flashes are consumed on read")
}

func TestRequestContext_InputAndOut(t *testing.T) {
	t.Parallel()

	cfg := NewConfig(nil, Input{"q": "1"})
	rc := NewRequestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), cfg, nil, nil)

	assert.Equal(t, "1", rc.Input().String("q"))
	rc.SetOut("extra", "x")
	assert.Equal(t, "x", rc.Config().Out["extra"])
}

func TestPluginExtractor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "debug", Format: logger.FormatJSON, Output: &buf}, PluginExtractor())
	rc := NewRequestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), nil, nil, log)

	rc.LogInfo("before")
	assert.NotContains(t, buf.String(), `"plugin"`)

	rc.Set(pluginKey{}, "Docs")
	rc.LogInfo("after")
	assert.Contains(t, buf.String(), `"plugin":"Docs"`)
}
