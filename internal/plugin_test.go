package internal

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type named string

func (n named) String() string { return "named:" + string(n) }

func TestStringify(t *testing.T) {
	t.Parallel()

	component := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<p>component</p>")
		return err
	})

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "<b>x</b>", "<b>x</b>"},
		{"bytes", []byte("raw"), "raw"},
		{"stringer", named("a"), "named:a"},
		{"component", component, "<p>component</p>"},
		{"redirect", RedirectTo("?plugin=home"), "?plugin=home"},
		{"json result", JSON(map[string]string{"a": "<b>"}), "{\n    \"a\": \"<b>\"\n}"},
		{"struct", struct {
			Total int `json:"total"`
		}{2}, "{\n    \"total\": 2\n}"},
		{"unicode", []string{"ünï"}, "[\n    \"ünï\"\n]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Stringify(context.Background(), tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStringify_Errors(t *testing.T) {
	t.Parallel()

	_, err := Stringify(context.Background(), make(chan int))
	assert.Error(t, err)

	failing := templ.ComponentFunc(func(context.Context, io.Writer) error { return io.ErrUnexpectedEOF })
	_, err = Stringify(context.Background(), failing)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestJSONResult_Status(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusOK, JSON(nil).status())
	assert.Equal(t, http.StatusAccepted, JSONResult{Status: http.StatusAccepted}.status())
}
