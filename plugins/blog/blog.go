// Package blog lists posts in a searchable, sortable table.
//
// The page markup is a table marked with data-datatable; the theme script
// fetches ?plugin=blog&api=data with the CSRF header and fills the rows
// from the JSON answer.
package blog

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/markc/pablo"
)

// ID is the registry id of the plugin.
const ID = "Blog"

// New returns the factory of the blog plugin backed by store.
func New(store Store) pablo.PluginFactory {
	return func(rc *pablo.RequestContext, _ pablo.Theme) (pablo.Plugin, error) {
		return pablo.PluginFunc(func(ctx context.Context) (any, error) {
			in := rc.RawInput()
			if in.String("api") != "data" {
				return Table(), nil
			}

			q := Query{
				Page:      pablo.InputDefault(in, "page", 1),
				Search:    in.String("search"),
				Sort:      in.Default("sort", "id"),
				Direction: in.Default("direction", "ASC"),
			}
			result, err := store.Search(ctx, q)
			if err != nil {
				return nil, err
			}
			if result.Data == nil {
				result.Data = []Post{}
			}
			rc.LogDebug("blog search", "page", q.Page, "search", q.Search, "total", result.Total)
			return pablo.JSON(result), nil
		}), nil
	}
}

const tableMarkup = `<div class="container">
<h1>Blog Posts</h1>
<div class="row mb-3"><div class="col"><input type="text" id="blog-search" class="form-control" placeholder="Search..."></div></div>
<table id="blog-table" class="table table-striped" data-datatable="?plugin=blog" data-search="blog-search" data-pager="blog-pagination">
<thead><tr><th data-sort="id">ID</th><th data-sort="title">Title</th><th data-sort="excerpt">Excerpt</th><th data-sort="created_at">Created At</th></tr></thead>
<tbody></tbody>
</table>
<nav><ul class="pagination" id="blog-pagination"></ul></nav>
</div>`

// Table renders the empty datatable.
func Table() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, tableMarkup)
		return err
	})
}
