package internal

import (
	"errors"
	"fmt"
	"go/version"
	"maps"
	"net/http"
	"runtime"
	"slices"
	"strings"

	"github.com/markc/pablo/pkg/csrf"
	"github.com/markc/pablo/pkg/nav"
	"github.com/markc/pablo/pkg/session"
)

// Input defaults.
const (
	DefaultTheme  = "Default"
	DefaultPlugin = "Home"
)

// Init runs the dispatch pipeline for one request and holds its state.
// Every stage is fatal on failure; NewInit returns the first error.
type Init struct {
	app *App
	rc  *RequestContext
	cfg *Config

	pluginNav nav.Section
	remotes   nav.Section

	themeID    string
	theme      Theme
	pluginName string
	plugin     Plugin
	result     any
}

type stage struct {
	name string
	run  func() error
}

// NewInit runs every dispatch stage up to and including theme
// post-processing. Call Render on the result to produce the response.
func NewInit(app *App, rc *RequestContext) (*Init, error) {
	i := &Init{app: app, rc: rc}

	stages := []stage{
		{"environment-check", i.checkEnvironment},
		{"session-init", i.initSession},
		{"config-setup", i.setupConfig},
		{"nav-scan", i.scanNav},
		{"theme-resolve", i.resolveTheme},
		{"plugin-resolve", i.resolvePlugin},
		{"plugin-execute", i.executePlugin},
		{"theme-postprocess", i.postProcess},
	}
	for _, s := range stages {
		if err := s.run(); err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return i, nil
}

func (i *Init) checkEnvironment() error {
	return checkRuntime(runtime.Version(), i.app.minRuntime)
}

// checkRuntime fails when current is older than minimum. Versions that
// go/version cannot parse, such as development builds, are accepted.
func checkRuntime(current, minimum string) error {
	if minimum == "" || !version.IsValid(current) {
		return nil
	}
	if version.Compare(current, minimum) < 0 {
		return fmt.Errorf("%w: running %s, need %s or newer", ErrEnvironment, current, minimum)
	}
	return nil
}

func (i *Init) initSession() error {
	if _, err := i.rc.CSRFToken(); err != nil {
		return err
	}
	if i.app.debug {
		sess, _ := i.rc.Session()
		i.rc.LogDebug("request",
			"method", i.rc.Request().Method,
			"uri", i.rc.Request().RequestURI,
			"session", sessionValues(sess),
		)
	}
	return nil
}

func (i *Init) setupConfig() error {
	r := i.rc.Request()
	in, err := ParseInput(r)
	if err != nil {
		return errors.Join(ErrInvalidInput, err)
	}

	cfg := NewConfig(i.app.settings, in)
	cfg.SetDefault(CfgHost, r.Host)
	cfg.SetDefault(CfgBasePath, i.app.root)
	cfg.SetDefault(CfgBaseURL, baseURL(r.URL.Path))
	cfg.SanitizeInput()

	cfg.Out[OutMain] = ""
	for _, name := range i.app.outputSections {
		cfg.Out[name] = ""
	}

	if i.app.debug {
		i.rc.LogDebug("request input", "input", map[string]any(cfg.In))
	}

	i.cfg = cfg
	i.rc.config = cfg
	return nil
}

// baseURL strips a trailing front controller name from the request path.
func baseURL(path string) string {
	for _, suffix := range []string{"index.php", "index.html"} {
		if p, ok := strings.CutSuffix(path, suffix); ok {
			path = p
			break
		}
	}
	if path == "" {
		return "/"
	}
	return path
}

func (i *Init) scanNav() error {
	i.pluginNav = i.app.scanner.Scan()
	i.remotes = i.app.remotes
	return nil
}

func (i *Init) resolveTheme() error {
	id := i.cfg.In.Default("theme", DefaultTheme)
	factory, ok := i.app.themes.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrThemeNotFound, id)
	}

	theme, err := factory(i.cfg, i)
	if err != nil {
		return err
	}
	if theme == nil {
		return fmt.Errorf("%w: %q built no theme", ErrThemeNotFound, id)
	}

	i.themeID = id
	i.theme = theme
	return nil
}

func (i *Init) resolvePlugin() error {
	name := normalizePluginName(i.cfg.In.Default("plugin", DefaultPlugin))
	i.pluginName = name
	i.rc.Set(pluginKey{}, name)

	if i.cfg.In.Flag("api") {
		token, err := i.rc.CSRFToken()
		if err != nil {
			return err
		}
		if err := csrf.Check(i.rc.Request(), token); err != nil {
			return errors.Join(ErrCSRF, err)
		}
	}

	factory, ok := i.app.plugins.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrPluginNotFound, name)
	}

	p, err := factory(i.rc, i.theme)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("%w: %q", ErrInvalidPlugin, name)
	}
	i.plugin = p
	return nil
}

// normalizePluginName lower-cases name and upper-cases its first letter,
// so "docs", "DOCS" and "Docs" all resolve to "Docs".
func normalizePluginName(name string) string {
	name = strings.ToLower(name)
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func (i *Init) executePlugin() error {
	result, err := i.plugin.Execute(i.rc)
	if err != nil {
		return err
	}
	out, err := Stringify(i.rc, result)
	if err != nil {
		return err
	}
	i.result = result
	i.cfg.Out[OutMain] = out
	return nil
}

func (i *Init) postProcess() error {
	if i.cfg.In.Flag("partial") {
		return nil
	}
	so, ok := i.theme.(SecondaryOutputs)
	if !ok {
		return nil
	}
	for _, key := range slices.Sorted(maps.Keys(i.cfg.Out)) {
		fn, ok := so.SecondaryOutput(key)
		if !ok {
			continue
		}
		out, err := fn(i.rc)
		if err != nil {
			return fmt.Errorf("section %q: %w", key, err)
		}
		i.cfg.Out[key] = out
	}
	return nil
}

// Config returns the request Config.
func (i *Init) Config() *Config { return i.cfg }

// RequestContext returns the handle of the request being dispatched.
func (i *Init) RequestContext() *RequestContext { return i.rc }

// Request returns the request being dispatched.
func (i *Init) Request() *http.Request { return i.rc.Request() }

// PluginNav returns the scanned "Plugins" navigation section.
func (i *Init) PluginNav() nav.Section { return i.pluginNav }

// Remotes returns the static "Remotes" navigation section.
func (i *Init) Remotes() nav.Section { return i.remotes }

// Theme returns the resolved theme. It is nil while the theme factory runs.
func (i *Init) Theme() Theme { return i.theme }

// ThemeID returns the resolved theme id.
func (i *Init) ThemeID() string { return i.themeID }

// PluginName returns the normalized plugin name, set once the
// plugin-resolve stage started.
func (i *Init) PluginName() string { return i.pluginName }

// Result returns the plugin's raw result.
func (i *Init) Result() any { return i.result }

func sessionValues(sess *session.Session) map[string]any {
	if sess == nil {
		return nil
	}
	return maps.Clone(sess.Values)
}
