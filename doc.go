// Package pablo is a small plugin/theme web framework.
//
// A single front controller ("/" and "/index.php") dispatches every request
// to a plugin chosen by the "plugin" query or form value. The plugin's
// result is placed into a theme, which also renders the navigation built
// from the plugins directory.
//
// # Quick Start
//
//	app := pablo.New(
//	    pablo.WithTheme(pablo.DefaultTheme, defaulttheme.New),
//	    pablo.WithOutputSections(defaulttheme.SectionLHSNav, defaulttheme.SectionRHSNav),
//	    pablo.WithPlugin("Home", home.New),
//	    pablo.WithPlugin("Docs", docs.New("docs")),
//	    pablo.WithMiddleware(middlewares.Recover(), middlewares.AccessLog()),
//	)
//
//	if err := app.Run(":8080"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Plugins
//
// A plugin is registered under the name its directory carries in the
// plugins folder, first letter upper-cased. It receives the
// RequestContext and returns any value; see Stringify:
//
//	func New(rc *pablo.RequestContext, _ pablo.Theme) (pablo.Plugin, error) {
//	    return pablo.PluginFunc(func(ctx context.Context) (any, error) {
//	        return "<h1>Hello</h1>", nil
//	    }), nil
//	}
//
// Returning a *Redirect redirects the client (with HX-Redirect for htmx).
// Returning a JSONResult answers application/json directly.
//
// # Formats
//
// The "format" input selects the response: html (default), text (markup
// stripped), json (Out["main"] as a JSON string) or partial (the Out entry
// named by "section" as a JSON string). Requests with api=1 must carry the
// session CSRF token in the X-CSRF-TOKEN header.
//
// # Errors
//
// Pipeline errors go to the ErrorHandler. DefaultErrorHandler answers 500
// with GenericErrorMessage, or with the error text in debug mode.
package pablo
