// Package docs renders the markdown files of a directory.
//
// ?plugin=docs lists the *.md files; ?plugin=docs&doc=<name> renders one of
// them with GitHub flavored markdown. Relative image paths are served from
// the assets/ subdirectory under /docs/assets/.
package docs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/a-h/templ"
	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/markc/pablo"
	"github.com/markc/pablo/pkg/cache"
	"github.com/markc/pablo/pkg/sanitizer"
)

// ID is the registry id of the plugin.
const ID = "Docs"

// DefaultDir is the docs directory relative to the app root.
const DefaultDir = "docs"

// AssetsPath is the URL prefix of images referenced by documents.
const AssetsPath = "/docs/assets/"

var (
	// ErrNotFound is returned for a document outside the docs directory,
	// missing, or without the .md extension.
	ErrNotFound = errors.New("docs: document not found or invalid")

	imageRe  = regexp.MustCompile(`!\[(.*?)\]\((.*?)\)`)
	prefixRe = regexp.MustCompile(`^\d+[_-]`)
)

// Doc is a listed document.
type Doc struct {
	Name  string // file name without extension
	Slug  string // doc input value, underscores replaced by hyphens
	Title string
}

// Library reads and renders the documents of one directory.
type Library struct {
	dir    string
	md     goldmark.Markdown
	cached *cache.Group[string]
}

// Option configures a Library.
type Option func(*Library)

// WithCache keeps rendered documents in c. Entries are keyed by file
// path, size and modification time, so edited files render again.
func WithCache(c cache.Cache[string], ttl time.Duration) Option {
	return func(l *Library) {
		if c != nil {
			l.cached = cache.NewGroup(c, ttl)
		}
	}
}

// NewLibrary creates a Library on dir. An empty dir means DefaultDir.
func NewLibrary(dir string, opts ...Option) *Library {
	if dir == "" {
		dir = DefaultDir
	}
	l := &Library{
		dir: dir,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dir returns the docs directory.
func (l *Library) Dir() string {
	return l.dir
}

// Factory returns the pablo.PluginFactory serving this library.
func (l *Library) Factory() pablo.PluginFactory {
	return func(rc *pablo.RequestContext, _ pablo.Theme) (pablo.Plugin, error) {
		return pablo.PluginFunc(func(ctx context.Context) (any, error) {
			if doc := rc.RawInput().String("doc"); doc != "" {
				return l.Page(ctx, doc), nil
			}
			docs, err := l.List()
			if err != nil {
				return nil, err
			}
			return ListView(docs), nil
		}), nil
	}
}

// Routes serves the assets directory under AssetsPath.
func (l *Library) Routes(r pablo.Router) {
	r.Mount(AssetsPath, assetHandler(filepath.Join(l.dir, "assets")))
}

// List returns the *.md documents in lexical file order.
func (l *Library) List() ([]Doc, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("docs: list %s: %w", l.dir, err)
	}

	var docs []Doc
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".md")
		if e.IsDir() || !ok {
			continue
		}
		docs = append(docs, Doc{
			Name:  name,
			Slug:  strings.ReplaceAll(name, "_", "-"),
			Title: Title(name),
		})
	}
	slices.SortFunc(docs, func(a, b Doc) int { return strings.Compare(a.Name, b.Name) })
	return docs, nil
}

// Title turns a file name into a display title: the numeric ordering
// prefix is dropped and words are title-cased ("01_getting-started" gives
// "Getting Started").
func Title(name string) string {
	name = prefixRe.ReplaceAllString(name, "")
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return cases.Title(language.English).String(name)
}

// Page renders doc, or an error alert when it cannot be read.
func (l *Library) Page(ctx context.Context, doc string) templ.Component {
	html, err := l.Render(ctx, doc)
	if err != nil {
		return Alert(err.Error())
	}
	return DocumentView(html)
}

// Render converts doc to sanitized HTML.
func (l *Library) Render(ctx context.Context, doc string) (string, error) {
	path, info, err := l.resolve(doc)
	if err != nil {
		return "", err
	}
	if l.cached == nil {
		return l.convert(path, doc)
	}

	key := fmt.Sprintf("docs:%s:%d:%d", path, info.Size(), info.ModTime().UnixNano())
	return l.cached.Get(ctx, key, func(context.Context) (string, error) {
		return l.convert(path, doc)
	})
}

func (l *Library) convert(path, doc string) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w (%s)", ErrNotFound, doc)
	}

	var buf bytes.Buffer
	if err := l.md.Convert(RewriteImages(src), &buf); err != nil {
		return "", fmt.Errorf("docs: convert %s: %w", doc, err)
	}
	return sanitizer.SanitizeDocument(buf.String()), nil
}

// resolve maps a doc input to a file inside the docs directory. Hyphenated
// slugs fall back to the underscored file name they were derived from.
func (l *Library) resolve(doc string) (string, fs.FileInfo, error) {
	if !strings.HasSuffix(strings.ToLower(doc), ".md") {
		doc += ".md"
	}

	candidates := []string{doc}
	if alt := strings.ReplaceAll(doc, "-", "_"); alt != doc {
		candidates = append(candidates, alt)
	}

	for _, name := range candidates {
		path, err := securejoin.SecureJoin(l.dir, name)
		if err != nil {
			continue
		}
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() || filepath.Ext(path) != ".md" {
			continue
		}
		return path, info, nil
	}
	return "", nil, fmt.Errorf("%w (%s)", ErrNotFound, doc)
}

// RewriteImages points relative markdown image paths at AssetsPath.
// Absolute paths and http(s) URLs are left alone.
func RewriteImages(src []byte) []byte {
	return imageRe.ReplaceAllFunc(src, func(m []byte) []byte {
		sm := imageRe.FindSubmatch(m)
		target := string(sm[2])
		if strings.HasPrefix(target, "http") || strings.HasPrefix(target, "/") {
			return m
		}
		return []byte("![" + string(sm[1]) + "](" + AssetsPath + target + ")")
	})
}

// ListView renders the document index.
func ListView(docs []Doc) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div class="documentation-container"><h1>Documentation</h1><div class="list-group">`)
		for _, d := range docs {
			b.WriteString(`<a href="?plugin=docs&amp;doc=` + templ.EscapeString(url.QueryEscape(d.Slug)) + `" class="list-group-item list-group-item-action">`)
			b.WriteString(templ.EscapeString(d.Title) + `</a>`)
		}
		b.WriteString(`</div></div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// DocumentView wraps rendered markdown.
func DocumentView(html string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div class="markdown-body">`+html+`</div>`)
		return err
	})
}

// Alert renders an escaped error message.
func Alert(msg string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div class="alert alert-danger">`+templ.EscapeString(msg)+`</div>`)
		return err
	})
}
