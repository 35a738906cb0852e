package defaulttheme

import (
	"context"
	"embed"
	"strings"

	"github.com/markc/pablo"
	"github.com/markc/pablo/pkg/nav"
)

// ID is the registry id of the theme. It is also the default "theme" input.
const ID = pablo.DefaultTheme

// Out sections rendered by the theme.
const (
	SectionLHSNav = "lhsNav"
	SectionRHSNav = "rhsNav"
)

// AssetsPrefix is the URL prefix the shell loads pablo.css and pablo.js from.
const AssetsPrefix = "/assets/"

// DefaultAppName is the page title when Cfg has no app_name.
const DefaultAppName = "Pablo"

// Assets holds pablo.css and pablo.js under assets/.
//
//go:embed assets
var Assets embed.FS

// Options registers the theme, its output sections and its assets.
func Options() []pablo.Option {
	return []pablo.Option{
		pablo.WithTheme(ID, New),
		pablo.WithOutputSections(SectionLHSNav, SectionRHSNav),
		pablo.WithStaticFiles(AssetsPrefix, Assets, "assets"),
	}
}

// Theme is the Bootstrap shell with a plugin sidebar on the left and the
// remotes sidebar on the right.
type Theme struct {
	cfg  *pablo.Config
	init *pablo.Init
}

// New is the pablo.ThemeFactory of the default theme.
func New(cfg *pablo.Config, init *pablo.Init) (pablo.Theme, error) {
	return &Theme{cfg: cfg, init: init}, nil
}

// SecondaryOutput implements pablo.SecondaryOutputs.
func (t *Theme) SecondaryOutput(name string) (pablo.SectionFunc, bool) {
	switch name {
	case SectionLHSNav:
		return t.LHSNav, true
	case SectionRHSNav:
		return t.RHSNav, true
	}
	return nil, false
}

// LHSNav renders the scanned plugin navigation.
func (t *Theme) LHSNav(ctx context.Context) (string, error) {
	return t.navRenderer().RenderSection(ctx, t.init.PluginNav())
}

// RHSNav renders the remotes navigation.
func (t *Theme) RHSNav(ctx context.Context) (string, error) {
	return t.navRenderer().RenderSection(ctx, t.init.Remotes())
}

func (t *Theme) navRenderer() *nav.Renderer {
	return nav.NewRenderer(t.cfg.In.Default("plugin", pablo.DefaultPlugin))
}

// HTML returns the main fragment for AJAX requests and the full page otherwise.
func (t *Theme) HTML(ctx context.Context) (string, error) {
	return pablo.RenderHTML(ctx, t.init, t.Render)
}

// Render renders the full page. Pending flash messages are consumed.
func (t *Theme) Render(ctx context.Context) (string, error) {
	rc := t.init.RequestContext()
	token, err := rc.CSRFToken()
	if err != nil {
		return "", err
	}

	appName := t.cfg.Cfg[pablo.CfgAppName]
	if appName == "" {
		appName = DefaultAppName
	}
	baseURL := t.cfg.Cfg[pablo.CfgBaseURL]
	if baseURL == "" {
		baseURL = "/"
	}

	var b strings.Builder
	err = Page(PageData{
		AppName:   appName,
		BaseURL:   baseURL,
		CSRFToken: token,
		Flashes:   rc.Flashes(),
		Main:      t.cfg.Out[pablo.OutMain],
		LHSNav:    t.cfg.Out[SectionLHSNav],
		RHSNav:    t.cfg.Out[SectionRHSNav],
	}).Render(ctx, &b)
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
