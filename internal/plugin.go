package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/a-h/templ"
)

// Plugin handles one dispatched request. The result is stringified into
// Out["main"]; see Stringify for the accepted result types.
type Plugin interface {
	Execute(ctx context.Context) (any, error)
}

// PluginFactory builds a plugin for one request. The theme is the one
// resolved for the same request. Returning a nil Plugin is an error.
type PluginFactory func(rc *RequestContext, theme Theme) (Plugin, error)

// PluginFunc adapts a function to the Plugin interface.
type PluginFunc func(ctx context.Context) (any, error)

// Execute calls f.
func (f PluginFunc) Execute(ctx context.Context) (any, error) {
	return f(ctx)
}

// JSONResult asks the dispatcher to answer with the JSON encoding of Value
// as application/json instead of wrapping it in the theme.
type JSONResult struct {
	Value  any
	Status int // 200 when zero
}

// JSON wraps v in a JSONResult.
func JSON(v any) JSONResult {
	return JSONResult{Value: v}
}

// Redirect asks the dispatcher to redirect the client to URL after the
// plugin ran, typically after handling a form POST.
type Redirect struct {
	URL string
}

// RedirectTo returns a Redirect result.
func RedirectTo(url string) *Redirect {
	return &Redirect{URL: url}
}

// Stringify converts a plugin result to the text stored in Out["main"].
//
//   - nil yields ""
//   - string, []byte and fmt.Stringer are used as is
//   - templ.Component is rendered with ctx
//   - *Redirect yields its URL
//   - JSONResult and any other value are encoded as indented JSON
func Stringify(ctx context.Context, v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case templ.Component:
		var buf strings.Builder
		if err := v.Render(ctx, &buf); err != nil {
			return "", fmt.Errorf("render plugin component: %w", err)
		}
		return buf.String(), nil
	case *Redirect:
		return v.URL, nil
	case Redirect:
		return v.URL, nil
	case JSONResult:
		return encodeJSON(v.Value)
	case *JSONResult:
		return encodeJSON(v.Value)
	case fmt.Stringer:
		return v.String(), nil
	default:
		return encodeJSON(v)
	}
}

// encodeJSON pretty-prints v with a four space indent and without HTML
// escaping. The trailing newline added by the encoder is removed.
func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encode json: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// status returns the HTTP status of a JSON result.
func (r JSONResult) status() int {
	if r.Status == 0 {
		return http.StatusOK
	}
	return r.Status
}
