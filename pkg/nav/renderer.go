package nav

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// DefaultCurrent is the selected plugin when the request names none.
const DefaultCurrent = "Home"

// Renderer turns sections into collapsible Bootstrap nav markup.
// It highlights the entry whose label matches the current plugin.
type Renderer struct {
	current string
}

// NewRenderer creates a renderer for the given selected plugin identifier.
// An empty identifier selects DefaultCurrent.
func NewRenderer(current string) *Renderer {
	if current == "" {
		current = DefaultCurrent
	}
	return &Renderer{current: current}
}

// IsActive reports whether e is the currently selected entry.
func (r *Renderer) IsActive(e Entry) bool {
	return strings.EqualFold(r.current, e.Label)
}

// RenderSection renders s to a string.
// A section without entries renders as an empty string.
func (r *Renderer) RenderSection(ctx context.Context, s Section) (string, error) {
	if s.Empty() {
		return "", nil
	}
	var b strings.Builder
	if err := r.Section(s).Render(ctx, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Section returns s as a templ component.
func (r *Renderer) Section(s Section) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if s.Empty() {
			return nil
		}
		id := templ.EscapeString(submenuID(s.Name))
		sw := &stickyWriter{w: w}
		sw.write(`<ul class="nav flex-column"><li class="nav-item">`)
		sw.write(`<a class="nav-link" data-bs-toggle="collapse" href="#` + id + `" role="button" aria-expanded="false" aria-controls="` + id + `">`)
		sw.write(icon(s.Icon) + templ.EscapeString(s.Name))
		sw.write(` <i class="bi bi-chevron-right chevron-icon fw ms-auto"></i></a>`)
		sw.write(`<div class="collapse submenu" id="` + id + `"><ul class="nav flex-column">`)

		// Labels are unique per section, so at most one entry matches.
		activeSeen := false
		for _, e := range s.Entries {
			class := "nav-link"
			if !activeSeen && r.IsActive(e) {
				class += " active"
				activeSeen = true
			}
			sw.write(`<li class="nav-item"><a class="` + class + `" href="` + templ.EscapeString(e.URL) + `">`)
			sw.write(icon(e.Icon) + templ.EscapeString(e.Label) + `</a></li>`)
		}

		sw.write(`</ul></div></li></ul>`)
		return sw.err
	})
}

func submenuID(name string) string {
	return strings.ReplaceAll(name, " ", "-") + "Submenu"
}

func icon(class string) string {
	if class == "" {
		return ""
	}
	return `<i class="` + templ.EscapeString(class) + `"></i> `
}

// stickyWriter keeps the first write error and skips later writes.
type stickyWriter struct {
	w   io.Writer
	err error
}

func (s *stickyWriter) write(str string) {
	if s.err != nil {
		return
	}
	_, s.err = io.WriteString(s.w, str)
}
