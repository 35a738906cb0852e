package defaulttheme

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/markc/pablo"
)

const (
	bootstrapCSS   = "https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css"
	bootstrapIcons = "https://cdn.jsdelivr.net/npm/bootstrap-icons@1.11.3/font/bootstrap-icons.min.css"
	bootstrapJS    = "https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/js/bootstrap.bundle.min.js"
)

// PageData is what Page renders. Main, LHSNav and RHSNav are trusted HTML
// produced by plugins and the nav renderer; everything else is escaped.
type PageData struct {
	AppName   string
	BaseURL   string
	CSRFToken string
	Flashes   []pablo.Flash
	Main      string
	LHSNav    string
	RHSNav    string
}

// Page is the document shell.
func Page(d PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		ew := &errWriter{w: w}
		ew.write(`<!DOCTYPE html><html lang="en"><head>`)
		ew.write(`<meta charset="UTF-8"><meta name="viewport" content="width=device-width, initial-scale=1.0">`)
		ew.write(`<meta name="csrf-token" content="` + templ.EscapeString(d.CSRFToken) + `">`)
		ew.write(`<title>` + templ.EscapeString(d.AppName) + `</title>`)
		ew.write(`<link href="` + bootstrapCSS + `" rel="stylesheet">`)
		ew.write(`<link href="` + bootstrapIcons + `" rel="stylesheet">`)
		ew.write(`<link href="` + AssetsPrefix + `pablo.css" rel="stylesheet">`)
		ew.write(`</head><body>`)

		ew.write(`<nav class="navbar fixed-top bg-body-tertiary border-bottom"><div class="container-fluid">`)
		ew.write(`<button id="leftSidebarToggle" class="btn btn-link" type="button" aria-label="Toggle plugins"><i class="bi bi-list"></i></button>`)
		ew.write(`<a class="navbar-brand" href="` + templ.EscapeString(d.BaseURL) + `">` + templ.EscapeString(d.AppName) + `</a>`)
		ew.write(`<button id="rightSidebarToggle" class="btn btn-link" type="button" aria-label="Toggle remotes"><i class="bi bi-three-dots-vertical"></i></button>`)
		ew.write(`</div></nav>`)

		ew.write(`<aside id="leftSidebar" class="sidebar sidebar-left">` + d.LHSNav + `</aside>`)
		ew.write(`<aside id="rightSidebar" class="sidebar sidebar-right">` + d.RHSNav + `</aside>`)

		ew.write(`<main id="main" class="main-content"><div id="flashes">`)
		if ew.err == nil {
			ew.err = Flashes(d.Flashes).Render(ctx, w)
		}
		ew.write(`</div><div id="content-section">` + d.Main + `</div></main>`)

		ew.write(`<script src="` + bootstrapJS + `"></script>`)
		ew.write(`<script src="` + AssetsPrefix + `pablo.js"></script>`)
		ew.write(`</body></html>`)
		return ew.err
	})
}

// Flashes renders dismissible Bootstrap alerts.
func Flashes(flashes []pablo.Flash) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		ew := &errWriter{w: w}
		for _, f := range flashes {
			ew.write(`<div class="alert alert-` + alertKind(f.Kind) + ` alert-dismissible fade show" role="alert">`)
			ew.write(templ.EscapeString(f.Text))
			ew.write(`<button type="button" class="btn-close" data-bs-dismiss="alert" aria-label="Close"></button></div>`)
		}
		return ew.err
	})
}

func alertKind(kind string) string {
	switch kind {
	case pablo.FlashSuccess, pablo.FlashWarning, pablo.FlashDanger:
		return kind
	}
	return pablo.FlashInfo
}

// errWriter keeps the first write error and skips later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) write(s string) {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, s)
}
