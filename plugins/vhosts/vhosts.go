// Package vhosts manages hosted domains.
//
// GET requests render the vhost list, the create form (action=create) or
// the edit form (action=update&id=N). POST requests with the same actions
// provision, edit or remove a vhost and redirect back to the list with a
// flash message. Provisioning is done by the addvhost and delvhost host
// scripts, started in the background through a Runner.
package vhosts

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/markc/pablo"
	"github.com/markc/pablo/pkg/csrf"
)

// ID is the registry id of the plugin.
const ID = "Vhosts"

const (
	// DefaultHomeDir holds one directory per provisioned domain.
	DefaultHomeDir = "/home/u"

	// ListURL is where successful form posts redirect to.
	ListURL = "?plugin=vhosts"

	megabyte = 1_000_000
)

var (
	domainRe = regexp.MustCompile(`^(?i)[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?(\.[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?)+$`)
	userRe   = regexp.MustCompile(`^[a-z_][a-z0-9_-]{0,31}$`)
)

// Runner starts a host provisioning command without waiting for it.
// *command.Runner satisfies it.
type Runner interface {
	Start(ctx context.Context, name string, args ...string) error
}

// Plugin serves the vhosts pages.
type Plugin struct {
	store      Store
	runner     Runner
	homeDir    string
	addCommand string
	delCommand string
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithHomeDir sets the directory checked for existing domains.
func WithHomeDir(dir string) Option {
	return func(p *Plugin) {
		if dir != "" {
			p.homeDir = dir
		}
	}
}

// WithCommands overrides the provisioning command names.
func WithCommands(add, del string) Option {
	return func(p *Plugin) {
		if add != "" {
			p.addCommand = add
		}
		if del != "" {
			p.delCommand = del
		}
	}
}

// New creates the plugin.
func New(store Store, runner Runner, opts ...Option) *Plugin {
	p := &Plugin{
		store:      store,
		runner:     runner,
		homeDir:    DefaultHomeDir,
		addCommand: "addvhost",
		delCommand: "delvhost",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Factory returns the pablo.PluginFactory of p.
func (p *Plugin) Factory() pablo.PluginFactory {
	return func(rc *pablo.RequestContext, _ pablo.Theme) (pablo.Plugin, error) {
		return pablo.PluginFunc(func(ctx context.Context) (any, error) {
			return p.execute(ctx, rc)
		}), nil
	}
}

func (p *Plugin) execute(ctx context.Context, rc *pablo.RequestContext) (any, error) {
	token, err := rc.CSRFToken()
	if err != nil {
		return nil, err
	}
	in := rc.RawInput()
	action := in.Default("action", "list")

	if rc.Request().Method != http.MethodPost {
		switch action {
		case "create":
			return CreateForm(token, ""), nil
		case "update":
			v, err := p.lookup(ctx, pablo.InputDefault(in, "id", int64(0)))
			if err != nil {
				return nil, err
			}
			return UpdateForm(token, v), nil
		default:
			return p.list(ctx, token)
		}
	}

	if !csrf.Valid(token, in.String(csrf.FormField)) {
		return nil, pablo.ErrForbidden("Invalid form token").Wrap(pablo.ErrCSRF)
	}

	switch action {
	case "create":
		return p.create(ctx, rc, token)
	case "update":
		return p.update(ctx, rc, token)
	case "delete":
		return p.remove(ctx, rc)
	default:
		return p.list(ctx, token)
	}
}

func (p *Plugin) list(ctx context.Context, token string) (any, error) {
	list, err := p.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return List(token, list), nil
}

// lookup loads the vhost with id. Ids below 1, malformed ones included,
// are a bad request.
func (p *Plugin) lookup(ctx context.Context, id int64) (Vhost, error) {
	if id <= 0 {
		return Vhost{}, pablo.ErrBadRequest("Invalid vhost id")
	}
	v, err := p.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Vhost{}, pablo.ErrNotFound("Vhost not found").Wrap(err)
	}
	return v, err
}

func (p *Plugin) create(ctx context.Context, rc *pablo.RequestContext, token string) (any, error) {
	in := rc.RawInput()
	domain := strings.ToLower(strings.TrimSpace(in.String("domain")))
	user := strings.TrimSpace(in.String("uuser"))
	ip := strings.TrimSpace(in.String("ip"))

	if msg := validateCreate(domain, user, ip); msg != "" {
		return p.retry(rc, pablo.FlashDanger, msg, CreateForm(token, domain))
	}

	if _, err := os.Stat(filepath.Join(p.homeDir, domain)); err == nil {
		return p.retry(rc, pablo.FlashWarning, fmt.Sprintf("%s already exists", filepath.Join(p.homeDir, domain)), CreateForm(token, domain))
	}

	cms := "none"
	if in.Flag("cms") {
		cms = "wp"
	}
	ssl := "le"
	if in.Flag("ssl") {
		ssl = "self"
	}
	vhost := domain
	if user != "" {
		vhost = user + "@" + domain
	}

	if err := p.runner.Start(ctx, p.addCommand, vhost, cms, ssl, ip); err != nil {
		return nil, err
	}
	if err := rc.AddFlash(pablo.FlashSuccess, fmt.Sprintf("Added %s, please wait for setup to complete", domain)); err != nil {
		return nil, err
	}
	return pablo.RedirectTo(ListURL), nil
}

func (p *Plugin) update(ctx context.Context, rc *pablo.RequestContext, token string) (any, error) {
	in := rc.RawInput()
	v, err := p.lookup(ctx, pablo.InputDefault(in, "id", int64(0)))
	if err != nil {
		return nil, err
	}

	l, msg := parseLimits(in)
	if msg != "" {
		return p.retry(rc, pablo.FlashDanger, msg, UpdateForm(token, v))
	}

	if err := p.store.Update(ctx, v.ID, l); err != nil {
		return nil, err
	}
	if err := rc.AddFlash(pablo.FlashSuccess, fmt.Sprintf("Vhost ID %d updated", v.ID)); err != nil {
		return nil, err
	}
	return pablo.RedirectTo(ListURL), nil
}

func (p *Plugin) remove(ctx context.Context, rc *pablo.RequestContext) (any, error) {
	domain := strings.ToLower(strings.TrimSpace(rc.RawInput().String("domain")))
	if domain == "" || !validDomain(domain) {
		if err := rc.AddFlash(pablo.FlashDanger, "ERROR: domain does not exist"); err != nil {
			return nil, err
		}
		return pablo.RedirectTo(ListURL), nil
	}

	if err := p.runner.Start(ctx, p.delCommand, domain); err != nil {
		return nil, err
	}
	if err := rc.AddFlash(pablo.FlashSuccess, "Removed "+domain); err != nil {
		return nil, err
	}
	return pablo.RedirectTo(ListURL), nil
}

// retry re-renders a form with a flash explaining why the post was refused.
func (p *Plugin) retry(rc *pablo.RequestContext, kind, msg string, form any) (any, error) {
	if err := rc.AddFlash(kind, msg); err != nil {
		return nil, err
	}
	rc.LogInfo("vhosts form refused", "reason", msg)
	return form, nil
}

func validDomain(domain string) bool {
	return len(domain) <= 253 && domainRe.MatchString(domain)
}

func validateCreate(domain, user, ip string) string {
	if !validDomain(domain) {
		return "Invalid domain name"
	}
	if user != "" && !userRe.MatchString(user) {
		return "Invalid custom user name"
	}
	if ip != "" {
		if _, err := netip.ParseAddr(ip); err != nil {
			return "Invalid IP address"
		}
	}
	return ""
}

// parseLimits reads the edit form. Quotas are entered in MB.
func parseLimits(in pablo.Input) (Limits, string) {
	var l Limits
	ints := []struct {
		field string
		dst   *int64
	}{
		{"mailquota", &l.MailQuota},
		{"diskquota", &l.DiskQuota},
	}
	for _, f := range ints {
		n, err := strconv.ParseInt(in.Default(f.field, "0"), 10, 64)
		if err != nil || n < 0 {
			return Limits{}, "Invalid " + f.field
		}
		*f.dst = n * megabyte
	}

	var err error
	if l.Aliases, err = strconv.Atoi(in.Default("aliases", "0")); err != nil || l.Aliases < 0 {
		return Limits{}, "Invalid aliases"
	}
	if l.Mailboxes, err = strconv.Atoi(in.Default("mailboxes", "0")); err != nil || l.Mailboxes < 0 {
		return Limits{}, "Invalid mailboxes"
	}
	l.Active = in.Flag("active")

	if l.MailQuota > l.DiskQuota {
		return Limits{}, "Mailbox quota exceeds disk quota"
	}
	return l, ""
}
