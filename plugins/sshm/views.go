package sshm

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// PageURL is the plugin page the api forms post to.
const PageURL = "?plugin=sshm"

var esc = templ.EscapeString[string]

// Page renders the hosts and keys tables with the forms that drive the
// api actions. Forms marked data-api are submitted by pablo.js.
func Page(d Data) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div class="container-fluid">
<div class="d-flex justify-content-between align-items-center mb-4">
<h2><i class="bi bi-key me-2"></i>SSH Manager</h2>
<div>`)
		writeAPIForm(&b, "import_hosts", "", `<button type="submit" class="btn btn-outline-secondary btn-sm"><i class="bi bi-download me-1"></i>Import Hosts</button>`)
		b.WriteString(` <button type="button" class="btn btn-primary btn-sm" data-bs-toggle="modal" data-bs-target="#hostModal"><i class="bi bi-plus-lg me-1"></i>Add Host</button>
<button type="button" class="btn btn-primary btn-sm" data-bs-toggle="modal" data-bs-target="#keyModal"><i class="bi bi-plus-lg me-1"></i>Add Key</button>
</div></div>`)

		writeHosts(&b, d.Hosts)
		writeKeys(&b, d.Keys, d.Hosts)
		b.WriteString(`</div>`)

		writeModal(&b, "hostModal", "Add Host", apiForm("create_host", "", hostFields(Host{Port: DefaultPort, User: DefaultUser})+submit("Create")))
		writeModal(&b, "keyModal", "Add Key", apiForm("create_key", "", keyFields()+submit("Generate")))

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeHosts(b *strings.Builder, hosts []Host) {
	b.WriteString(`<h4 class="mt-2">Hosts</h4>
<div class="table-responsive"><table id="sshm-hosts" class="table table-hover">
<thead><tr><th>Name</th><th>Hostname</th><th class="text-end">Port</th><th>User</th><th>Identity File</th><th class="text-end"></th></tr></thead>
<tbody>`)
	if len(hosts) == 0 {
		b.WriteString(`<tr><td colspan="6" class="text-center text-muted">No hosts</td></tr>`)
	}
	for _, h := range hosts {
		fmt.Fprintf(b, `<tr><td>%s</td><td>%s</td><td class="text-end">%d</td><td>%s</td><td>%s</td><td class="text-end">`,
			esc(h.Name), esc(h.Hostname), h.Port, esc(h.User), esc(h.IdentityFile))
		fmt.Fprintf(b, `<button type="button" class="btn btn-link btn-sm" data-bs-toggle="modal" data-bs-target="#hostModal%d" title="Edit"><i class="bi bi-pencil"></i></button>`, h.ID)
		writeAPIForm(b, "delete_host", fmt.Sprintf("Delete host %s?", h.Name),
			idField("id", h.ID)+`<button type="submit" class="btn btn-link btn-sm text-danger" title="Delete"><i class="bi bi-trash"></i></button>`)
		b.WriteString(`</td></tr>`)
	}
	b.WriteString(`</tbody></table></div>`)

	for _, h := range hosts {
		writeModal(b, fmt.Sprintf("hostModal%d", h.ID), "Edit Host "+h.Name,
			apiForm("edit_host", "", idField("id", h.ID)+hostFields(h)+submit("Save Changes")))
	}
}

func writeKeys(b *strings.Builder, keys []Key, hosts []Host) {
	b.WriteString(`<h4 class="mt-4">Keys</h4>
<div class="table-responsive"><table id="sshm-keys" class="table table-hover">
<thead><tr><th>Name</th><th>Comment</th><th>Public Key</th><th class="text-end"></th></tr></thead>
<tbody>`)
	if len(keys) == 0 {
		b.WriteString(`<tr><td colspan="4" class="text-center text-muted">No keys</td></tr>`)
	}
	for _, k := range keys {
		fmt.Fprintf(b, `<tr><td>%s</td><td>%s</td><td class="text-truncate" style="max-width: 20rem"><code>%s</code></td><td class="text-end">`,
			esc(k.Name), esc(k.Comment), esc(k.PublicKey))
		if len(hosts) > 0 {
			var opts strings.Builder
			for _, h := range hosts {
				fmt.Fprintf(&opts, `<option value="%d">%s</option>`, h.ID, esc(h.Name))
			}
			writeAPIForm(b, "copy_key", "",
				idField("key_id", k.ID)+`<select name="host_id" class="form-select form-select-sm d-inline-block w-auto">`+opts.String()+`</select> <button type="submit" class="btn btn-link btn-sm" title="Copy to host"><i class="bi bi-send"></i></button>`)
		}
		writeAPIForm(b, "delete_key", fmt.Sprintf("Delete key %s?", k.Name),
			idField("id", k.ID)+`<button type="submit" class="btn btn-link btn-sm text-danger" title="Delete"><i class="bi bi-trash"></i></button>`)
		b.WriteString(`</td></tr>`)
	}
	b.WriteString(`</tbody></table></div>`)
}

func hostFields(h Host) string {
	return fmt.Sprintf(`<div class="mb-3"><label class="form-label">Name</label><input type="text" class="form-control" name="name" value="%s" required></div>
<div class="mb-3"><label class="form-label">Hostname</label><input type="text" class="form-control" name="hostname" value="%s" required></div>
<div class="row mb-3">
<div class="col-6"><label class="form-label">Port</label><input type="number" min="1" max="65535" class="form-control" name="port" value="%d"></div>
<div class="col-6"><label class="form-label">User</label><input type="text" class="form-control" name="username" value="%s"></div>
</div>
<div class="mb-3"><label class="form-label">Identity File (optional)</label><input type="text" class="form-control" name="identity_file" value="%s"></div>`,
		esc(h.Name), esc(h.Hostname), h.Port, esc(h.User), esc(h.IdentityFile))
}

func keyFields() string {
	return `<div class="mb-3"><label class="form-label">Name</label><input type="text" class="form-control" name="name" required></div>
<div class="mb-3"><label class="form-label">Comment (optional)</label><input type="text" class="form-control" name="comment"></div>
<div class="mb-3"><label class="form-label">Passphrase (optional)</label><input type="password" class="form-control" name="password" autocomplete="new-password"></div>`
}

func idField(name string, id int64) string {
	return fmt.Sprintf(`<input type="hidden" name="%s" value="%d">`, name, id)
}

func submit(label string) string {
	return `<div class="text-end"><button type="button" class="btn btn-secondary" data-bs-dismiss="modal">Cancel</button> <button type="submit" class="btn btn-primary">` + esc(label) + `</button></div>`
}

func apiForm(action, confirm, body string) string {
	attr := ""
	if confirm != "" {
		attr = ` data-confirm="` + esc(confirm) + `"`
	}
	return `<form method="post" action="` + PageURL + `" data-api="` + action + `"` + attr + `>` + body + `</form>`
}

func writeAPIForm(b *strings.Builder, action, confirm, body string) {
	b.WriteString(strings.Replace(apiForm(action, confirm, body), "<form ", `<form class="d-inline" `, 1))
}

func writeModal(b *strings.Builder, id, title, body string) {
	fmt.Fprintf(b, `<div class="modal fade" id="%[1]s" tabindex="-1" aria-labelledby="%[1]sLabel" aria-hidden="true">
<div class="modal-dialog"><div class="modal-content">
<div class="modal-header"><h5 class="modal-title" id="%[1]sLabel">%[2]s</h5><button type="button" class="btn-close" data-bs-dismiss="modal" aria-label="Close"></button></div>
<div class="modal-body">%[3]s</div>
</div></div></div>`, id, esc(title), body)
}
