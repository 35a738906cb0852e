package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	r := NewRegistry[string]()
	require.NoError(t, r.Register("Home", "home"))
	require.NoError(t, r.Register("Docs", "docs"))

	assert.ErrorIs(t, r.Register("Home", "again"), ErrDuplicateID)
	assert.ErrorIs(t, r.Register("", "x"), ErrEmptyID)

	got, ok := r.Lookup("Home")
	assert.True(t, ok)
	assert.Equal(t, "home", got)

	_, ok = r.Lookup("home")
	assert.False(t, ok, "lookup is case-sensitive")

	assert.Equal(t, []string{"Docs", "Home"}, r.IDs())
	assert.Equal(t, 2, r.Len())
	assert.Panics(t, func() { r.MustRegister("Docs", "x") })
}
