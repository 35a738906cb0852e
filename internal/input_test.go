package internal

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInput(t *testing.T) {
	t.Parallel()

	t.Run("query values", func(t *testing.T) {
		t.Parallel()

		in, err := ParseInput(httptest.NewRequest(http.MethodGet, "/?plugin=docs&tags[]=a&tags[]=b&x=1&x=2", nil))
		require.NoError(t, err)
		assert.Equal(t, "docs", in.String("plugin"))
		assert.Equal(t, []string{"a", "b"}, in.Strings("tags"))
		assert.Equal(t, "2", in.String("x"), "last value wins")
		assert.False(t, in.Has("tags[]"))
	})

	t.Run("urlencoded body", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/?a=query&b=query", strings.NewReader("a=form"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		in, err := ParseInput(req)
		require.NoError(t, err)
		assert.Equal(t, "form", in.String("a"))
		assert.Equal(t, "query", in.String("b"))
	})

	t.Run("multipart body", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("domain", "example.com"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		in, err := ParseInput(req)
		require.NoError(t, err)
		assert.Equal(t, "example.com", in.String("domain"))
	})

	t.Run("json body is ignored", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/?plugin=blog", strings.NewReader(`{"a":1}`))
		req.Header.Set("Content-Type", "application/json")
		in, err := ParseInput(req)
		require.NoError(t, err)
		assert.Equal(t, Input{"plugin": "blog"}, in)
	})
}

func TestInput_Flag(t *testing.T) {
	t.Parallel()

	in := Input{
		"zero":  "0",
		"false": "false",
		"empty": "",
		"one":   "1",
		"yes":   "yes",
		"list":  []string{"a"},
	}

	assert.False(t, in.Flag("missing"))
	assert.False(t, in.Flag("zero"))
	assert.True(t, in.Flag("false"))
	assert.False(t, in.Flag("empty"))
	assert.True(t, in.Flag("one"))
	assert.True(t, in.Flag("yes"))
	assert.True(t, in.Flag("list"))
}

func TestInput_Accessors(t *testing.T) {
	t.Parallel()

	in := Input{"page": "3", "name": "", "tags": []string{"x", "y"}}

	assert.Equal(t, "fallback", in.Default("name", "fallback"))
	assert.Equal(t, "x", in.String("tags"))
	assert.Equal(t, []string{"3"}, in.Strings("page"))
	assert.Nil(t, in.Strings("missing"))
	assert.Equal(t, 3, InputDefault(in, "page", 1))
	assert.Equal(t, 1, InputDefault(in, "missing", 1))
	assert.Equal(t, 7, InputDefault(Input{"page": "x"}, "page", 7))
	assert.True(t, InputDefault(Input{"on": "true"}, "on", false))

	clone := in.Clone()
	clone["page"] = "4"
	assert.Equal(t, "3", in.String("page"))
}
