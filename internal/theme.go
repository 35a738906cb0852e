package internal

import (
	"context"

	"github.com/markc/pablo/pkg/htmx"
)

// Theme turns the request's Config into a response body.
//
// Render produces the full document. HTML is what the dispatcher calls for
// the html format; most themes implement it with RenderHTML so AJAX requests
// get only the main fragment.
type Theme interface {
	Render(ctx context.Context) (string, error)
	HTML(ctx context.Context) (string, error)
}

// SectionFunc renders one named output section.
type SectionFunc func(ctx context.Context) (string, error)

// SecondaryOutputs is implemented by themes that render extra Out sections,
// such as navigation. After the plugin ran, every Out key for which the
// theme returns a SectionFunc is overwritten with its result.
type SecondaryOutputs interface {
	SecondaryOutput(name string) (SectionFunc, bool)
}

// ThemeFactory builds a theme for one request.
type ThemeFactory func(cfg *Config, init *Init) (Theme, error)

// RenderHTML implements the shared Theme.HTML behavior: AJAX requests
// (X-Requested-With: XMLHttpRequest or HX-Request: true) receive Out["main"]
// unchanged, everything else the result of render.
func RenderHTML(ctx context.Context, init *Init, render func(ctx context.Context) (string, error)) (string, error) {
	if htmx.IsAJAX(init.Request()) {
		return init.Config().Out[OutMain], nil
	}
	return render(ctx)
}
