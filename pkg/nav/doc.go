// Package nav holds navigation data and its HTML rendering.
//
// A Section is a named list of Entry values. Sections come from two places:
// the plugin scanner (pkg/scanner) builds the "Plugins" section from the
// plugin directories, and the application configuration provides the static
// "Remotes" section.
//
// Renderer writes a section as a collapsible Bootstrap nav group and marks
// the entry whose label case-insensitively equals the selected plugin:
//
//	r := nav.NewRenderer("docs")
//	html, err := r.RenderSection(ctx, section)
//
// Renderer.Section returns the same markup as a templ.Component so it can be
// composed into larger templ layouts.
package nav
