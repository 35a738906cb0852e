package vhosts

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/markc/pablo/pkg/csrf"
)

var esc = templ.EscapeString[string]

func component(render func(b *strings.Builder)) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		render(&b)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func csrfField(token string) string {
	return `<input type="hidden" name="` + csrf.FormField + `" value="` + esc(token) + `">`
}

func megabytes(n int64) string {
	return strconv.FormatInt(n/megabyte, 10)
}

// List renders the vhost table and the create modal.
func List(token string, list []Vhost) templ.Component {
	return component(func(b *strings.Builder) {
		b.WriteString(`<div class="container-fluid">
<div class="d-flex justify-content-between align-items-center mb-4">
<h2><i class="bi bi-globe me-2"></i>Vhosts</h2>
<button type="button" class="btn btn-primary btn-sm" data-bs-toggle="modal" data-bs-target="#createModal"><i class="bi bi-plus-lg me-1"></i>Add Vhost</button>
</div>
<div class="table-responsive"><table id="vhosts" class="table table-hover">
<thead><tr><th>Domain</th><th class="text-end">Aliases</th><th class="text-end">Mailboxes</th><th class="text-end">Mail Quota (MB)</th><th class="text-end">Disk Quota (MB)</th><th class="text-center">Active</th></tr></thead>
<tbody>`)
		if len(list) == 0 {
			b.WriteString(`<tr><td colspan="6" class="text-center text-muted">No vhosts</td></tr>`)
		}
		for _, v := range list {
			active := `<i class="bi bi-x-circle text-secondary"></i>`
			if v.Active {
				active = `<i class="bi bi-check-circle text-success"></i>`
			}
			fmt.Fprintf(b,
				`<tr><td class="text-truncate"><a href="?plugin=vhosts&amp;action=update&amp;id=%d">%s</a></td><td class="text-end">%d</td><td class="text-end">%d</td><td class="text-end">%s</td><td class="text-end">%s</td><td class="text-center">%s</td></tr>`,
				v.ID, esc(v.Domain), v.Aliases, v.Mailboxes, megabytes(v.MailQuota), megabytes(v.DiskQuota), active,
			)
		}
		b.WriteString(`</tbody></table></div></div>`)
		writeModal(b, "createModal", "Create New Vhost", createFormBody(token, ""))
	})
}

// CreateForm renders the standalone create form.
func CreateForm(token, domain string) templ.Component {
	return component(func(b *strings.Builder) {
		b.WriteString(`<div class="container-fluid"><h2><a href="` + ListURL + `" class="text-decoration-none"><i class="bi bi-arrow-left me-2"></i>Vhosts</a></h2>`)
		b.WriteString(createFormBody(token, domain))
		b.WriteString(`</div>`)
	})
}

func createFormBody(token, domain string) string {
	return `<form method="post" action="?plugin=vhosts&amp;action=create">` + csrfField(token) + `
<div class="mb-3"><label for="domain" class="form-label">Vhost</label><input type="text" class="form-control" id="domain" name="domain" value="` + esc(domain) + `" required></div>
<div class="row mb-3">
<div class="col-12 col-sm-6"><div class="form-check"><input type="checkbox" class="form-check-input" name="cms" id="cms" checked><label class="form-check-label" for="cms">WordPress</label></div></div>
<div class="col-12 col-sm-6"><div class="form-check"><input type="checkbox" class="form-check-input" name="ssl" id="ssl"><label class="form-check-label" for="ssl">Self Signed SSL</label></div></div>
</div>
<div class="row mb-3">
<div class="col-12 col-sm-6"><label for="ip" class="form-label">IP (optional)</label><input type="text" class="form-control" id="ip" name="ip"></div>
<div class="col-12 col-sm-6"><label for="uuser" class="form-label">Custom User</label><input type="text" class="form-control" id="uuser" name="uuser"></div>
</div>
<div class="text-end"><a href="` + ListURL + `" class="btn btn-secondary" data-bs-dismiss="modal">Cancel</a> <button type="submit" class="btn btn-primary">Create</button></div>
</form>`
}

// UpdateForm renders the limits editor and the delete confirmation for v.
func UpdateForm(token string, v Vhost) templ.Component {
	return component(func(b *strings.Builder) {
		checked := ""
		if v.Active {
			checked = " checked"
		}
		fmt.Fprintf(b, `<div class="container-fluid">
<div class="d-flex justify-content-between align-items-center mb-4">
<h2><a href="%s" class="text-decoration-none"><i class="bi bi-arrow-left me-2"></i>Vhosts</a></h2>
<button type="button" class="btn btn-danger btn-sm" data-bs-toggle="modal" data-bs-target="#deleteModal"><i class="bi bi-trash me-1"></i>Delete</button>
</div>
<form method="post" action="?plugin=vhosts&amp;action=update&amp;id=%d">%s
<div class="row g-3">
<div class="col-12 col-md-6 col-lg-4"><label class="form-label">Domain</label><input type="text" class="form-control" value="%s" disabled></div>
<div class="col-6 col-md-3 col-lg-2"><label for="aliases" class="form-label">Max Aliases</label><input type="number" min="0" class="form-control" name="aliases" id="aliases" value="%d"></div>
<div class="col-6 col-md-3 col-lg-2"><label for="mailboxes" class="form-label">Max Mailboxes</label><input type="number" min="0" class="form-control" name="mailboxes" id="mailboxes" value="%d"></div>
<div class="col-6 col-md-3 col-lg-2"><label for="mailquota" class="form-label">Mail Quota (MB)</label><input type="number" min="0" class="form-control" name="mailquota" id="mailquota" value="%s"></div>
<div class="col-6 col-md-3 col-lg-2"><label for="diskquota" class="form-label">Disk Quota (MB)</label><input type="number" min="0" class="form-control" name="diskquota" id="diskquota" value="%s"></div>
</div>
<div class="row mt-4">
<div class="col-12 col-sm-6"><div class="form-check"><input type="checkbox" class="form-check-input" name="active" id="active"%s><label class="form-check-label" for="active">Active</label></div></div>
<div class="col-12 col-sm-6 text-end"><a href="%s" class="btn btn-secondary me-2">Cancel</a><button type="submit" class="btn btn-primary">Save Changes</button></div>
</div>
</form>
</div>`,
			ListURL, v.ID, csrfField(token), esc(v.Domain), v.Aliases, v.Mailboxes,
			megabytes(v.MailQuota), megabytes(v.DiskQuota), checked, ListURL,
		)

		writeModal(b, "deleteModal", "Delete Vhost", fmt.Sprintf(
			`<form method="post" action="?plugin=vhosts&amp;action=delete&amp;id=%d">%s<input type="hidden" name="domain" value="%s">
<p class="text-center">Are you sure you want to delete this vhost?<br><strong>%s</strong></p>
<div class="text-end"><button type="button" class="btn btn-secondary" data-bs-dismiss="modal">Cancel</button> <button type="submit" class="btn btn-danger">Delete</button></div>
</form>`,
			v.ID, csrfField(token), esc(v.Domain), esc(v.Domain),
		))
	})
}

func writeModal(b *strings.Builder, id, title, body string) {
	fmt.Fprintf(b, `<div class="modal fade" id="%[1]s" tabindex="-1" aria-labelledby="%[1]sLabel" aria-hidden="true">
<div class="modal-dialog"><div class="modal-content">
<div class="modal-header"><h5 class="modal-title" id="%[1]sLabel">%[2]s</h5><button type="button" class="btn-close" data-bs-dismiss="modal" aria-label="Close"></button></div>
<div class="modal-body">%[3]s</div>
</div></div></div>`, id, esc(title), body)
}
