package csrf_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markc/pablo/pkg/csrf"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	a, err := csrf.Generate()
	require.NoError(t, err)
	b, err := csrf.Generate()
	require.NoError(t, err)

	assert.Len(t, a, csrf.TokenBytes*2)
	assert.Regexp(t, "^[0-9a-f]+$", a)
	assert.NotEqual(t, a, b)
}

func TestValid(t *testing.T) {
	t.Parallel()

	assert.True(t, csrf.Valid("abc", "abc"))
	assert.False(t, csrf.Valid("abc", "abd"))
	assert.False(t, csrf.Valid("abc", "ab"))
	assert.False(t, csrf.Valid("", ""))
}

func TestCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   error
	}{
		{name: "match", header: "tok", want: nil},
		{name: "missing", header: "", want: csrf.ErrMissing},
		{name: "mismatch", header: "other", want: csrf.ErrMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set(csrf.HeaderName, tt.header)
			}
			err := csrf.Check(r, "tok")
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
