// Package example is a minimal plugin rendering a templ component.
package example

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/markc/pablo"
)

// ID is the registry id of the plugin.
const ID = "Example"

// Content is the data shown by the plugin.
type Content struct {
	Title string
	Body  string
}

// DefaultContent is what New renders.
var DefaultContent = Content{
	Title: "Example Plugin",
	Body:  "This is an example plugin output.",
}

// New is the pablo.PluginFactory of the example plugin.
func New(*pablo.RequestContext, pablo.Theme) (pablo.Plugin, error) {
	return pablo.PluginFunc(func(context.Context) (any, error) {
		return View(DefaultContent), nil
	}), nil
}

// View renders c as a heading and a paragraph.
func View(c Content) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<h1>"+templ.EscapeString(c.Title)+"</h1><p>"+templ.EscapeString(c.Body)+"</p>")
		return err
	})
}
