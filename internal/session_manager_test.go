package internal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markc/pablo/pkg/session"
)

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestSessionManager_LoadOrCreate(t *testing.T) {
	t.Parallel()

	t.Run("creates a session without cookie", func(t *testing.T) {
		t.Parallel()

		store := session.NewMemoryStore()
		sm := NewSessionManager(store)

		sess, created, err := sm.LoadOrCreate(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotEmpty(t, sess.ID)
		assert.NotEmpty(t, sess.Token)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("loads the session named by the cookie", func(t *testing.T) {
		t.Parallel()

		sm := NewSessionManager(session.NewMemoryStore())
		first, _, err := sm.LoadOrCreate(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: defaultSessionCookieName, Value: first.Token})

		got, created, err := sm.LoadOrCreate(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, got.ID)
	})

	t.Run("replaces an unknown token", func(t *testing.T) {
		t.Parallel()

		sm := NewSessionManager(session.NewMemoryStore())
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: defaultSessionCookieName, Value: "stale"})

		sess, created, err := sm.LoadOrCreate(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, created)
		assert.NotEqual(t, "stale", sess.Token)
	})
}

func TestSessionManager_SaveSession(t *testing.T) {
	t.Parallel()

	sm := NewSessionManager(session.NewMemoryStore(),
		WithSessionCookieName("sid"),
		WithSessionMaxAge(60),
		WithSessionSecure(true),
	)
	sess, err := sm.CreateSession(context.Background())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), sess.ExpiresAt, 5*time.Second)

	rec := httptest.NewRecorder()
	sm.SaveSession(rec, sess)

	c := sessionCookie(t, rec, "sid")
	assert.Equal(t, sess.Token, c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, 60, c.MaxAge)
}

func TestSessionManager_SignedCookie(t *testing.T) {
	t.Parallel()

	sm := NewSessionManager(session.NewMemoryStore(),
		WithSessionSecret("0123456789abcdef0123456789abcdef"),
	)
	sess, err := sm.CreateSession(context.Background())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	sm.SaveSession(rec, sess)
	c := sessionCookie(t, rec, defaultSessionCookieName)
	assert.NotEqual(t, sess.Token, c.Value)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	got, err := sm.LoadSession(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sess.ID, got.ID)

	tampered := httptest.NewRequest(http.MethodGet, "/", nil)
	tampered.AddCookie(&http.Cookie{Name: defaultSessionCookieName, Value: sess.Token})
	got, err = sm.LoadSession(context.Background(), tampered)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionManager_Persist(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	sm := NewSessionManager(store)
	ctx := context.Background()

	sess, err := sm.CreateSession(ctx)
	require.NoError(t, err)
	require.NoError(t, sm.Persist(ctx, sess))

	sess.SetValue("k", "v")
	require.NoError(t, sm.Persist(ctx, sess))
	assert.False(t, sess.IsDirty())

	stored, err := store.Get(ctx, sess.Token)
	require.NoError(t, err)
	v, ok := stored.GetValue("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, sm.Persist(ctx, nil))
}

func TestSessionManager_RotateToken(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	sm := NewSessionManager(store)
	ctx := context.Background()

	sess, err := sm.CreateSession(ctx)
	require.NoError(t, err)
	old := sess.Token

	require.NoError(t, sm.RotateToken(ctx, sess))
	assert.NotEqual(t, old, sess.Token)

	_, err = store.Get(ctx, old)
	assert.ErrorIs(t, err, session.ErrNotFound)
	_, err = store.Get(ctx, sess.Token)
	assert.NoError(t, err)
}

func TestSessionManager_DeleteSession(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	sm := NewSessionManager(store)
	ctx := context.Background()

	sess, err := sm.CreateSession(ctx)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, sm.DeleteSession(ctx, rec, sess))
	assert.Equal(t, 0, store.Len())
	assert.Less(t, sessionCookie(t, rec, defaultSessionCookieName).MaxAge, 0)
}
