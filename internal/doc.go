// Package internal implements the Pablo dispatcher.
//
// Import "github.com/markc/pablo" instead; it re-exports the public API.
//
// # Dispatch
//
// Every request to "/" or "/index.php" runs through Init, a fixed pipeline:
//
//	environment-check → session-init → config-setup → nav-scan →
//	theme-resolve → plugin-resolve → plugin-execute → theme-postprocess →
//	format-render
//
// Each stage is fatal: the first error reaches the App's ErrorHandler.
// The "plugin" input selects a registered PluginFactory (normalized to
// "Docs" for ?plugin=docs), the "theme" input a ThemeFactory. The plugin
// result becomes Out["main"] (see Stringify). The "format" input picks the
// response: html (the theme), text, json or partial.
//
// # RequestContext
//
// RequestContext implements context.Context and is handed to plugins,
// themes, handlers and middleware. It gives access to the request, the
// parsed Input, the Out sections, the lazily loaded session, the CSRF token
// and flash messages:
//
//	func newNotes(rc *pablo.RequestContext, _ pablo.Theme) (pablo.Plugin, error) {
//	    return pablo.PluginFunc(func(ctx context.Context) (any, error) {
//	        if err := rc.AddFlash(pablo.FlashSuccess, "Saved"); err != nil {
//	            return nil, err
//	        }
//	        return pablo.RedirectTo("?plugin=notes"), nil
//	    }), nil
//	}
//
// # Sessions
//
// SessionManager keeps the session token in an HttpOnly, SameSite=Strict
// cookie and the data in a session.Store. Changes are persisted right
// before the response is written.
package internal
