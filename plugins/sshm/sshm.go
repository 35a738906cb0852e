// Package sshm manages the SSH hosts and keys of the server account.
//
// A GET request renders the hosts and keys tables. Everything else goes
// through api=<action> requests, which the dispatcher only runs when they
// carry a valid X-CSRF-TOKEN header:
//
//	data                         hosts and keys as JSON (GET)
//	create_host, edit_host&id=N  write config.d/<name> (POST)
//	delete_host&id=N             remove the host and its config file (POST)
//	create_key                   run ssh-keygen and record the public key (POST)
//	delete_key&id=N              remove the key pair (POST)
//	copy_key&key_id=N&host_id=M  run ssh-copy-id for the key (POST)
//	import_hosts                 record config.d hosts missing from the store (POST)
//
// POST bodies are form encoded or a JSON object with the same field names.
// Every action answers with a Result.
package sshm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/netip"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/markc/pablo"
)

// ID is the registry id of the plugin.
const ID = "Sshm"

const (
	// DefaultPort is used when a host has no port.
	DefaultPort = 22

	// DefaultUser is used when a host has no user.
	DefaultUser = "root"

	maxBody    = 64 << 10
	maxComment = 255
	minPass    = 5
)

var (
	nameRe     = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)
	hostnameRe = regexp.MustCompile(`^(?i)[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?(\.[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?)*$`)
	userRe     = regexp.MustCompile(`^[a-z_][a-z0-9_.-]{0,31}$`)
)

// Runner runs a command to completion. *command.Runner satisfies it.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Result is the JSON answer of every api action except data.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	ID      int64  `json:"id,omitempty"`
}

// Data is the answer of api=data.
type Data struct {
	Hosts []Host `json:"hosts"`
	Keys  []Key  `json:"keys"`
}

// Plugin serves the SSH manager.
type Plugin struct {
	store   Store
	runner  Runner
	layout  *Layout
	comment string
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithDefaultComment sets the key comment used when none is given.
// Default: <hostname>@lan.
func WithDefaultComment(comment string) Option {
	return func(p *Plugin) {
		if comment != "" {
			p.comment = comment
		}
	}
}

// New creates the plugin. Keys and host files live in layout.
func New(store Store, runner Runner, layout *Layout, opts ...Option) *Plugin {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "localhost"
	}
	p := &Plugin{store: store, runner: runner, layout: layout, comment: host + "@lan"}
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
	in := rc.RawInput()
	if !in.Flag("api") {
		return p.page(ctx)
	}

	action := in.String("api")
	if action == "data" {
		return p.data(ctx)
	}
	if rc.Request().Method != http.MethodPost {
		return failure(http.StatusMethodNotAllowed, "Use POST for "+action), nil
	}

	body, err := bodyInput(rc)
	if err != nil {
		return reply(rc, err)
	}
	if err := p.layout.Init(); err != nil {
		return nil, err
	}

	var res Result
	switch action {
	case "create_host":
		res, err = p.createHost(ctx, body)
	case "edit_host":
		res, err = p.editHost(ctx, body)
	case "delete_host":
		res, err = p.deleteHost(ctx, body)
	case "create_key":
		res, err = p.createKey(ctx, body)
	case "delete_key":
		res, err = p.deleteKey(ctx, body)
	case "copy_key":
		res, err = p.copyKey(ctx, body)
	case "import_hosts":
		res, err = p.importHosts(ctx)
	default:
		err = pablo.ErrBadRequest("Invalid API request")
	}
	if err != nil {
		return reply(rc, err)
	}
	res.Success = true
	rc.LogInfo("sshm action", "action", action, "id", res.ID)
	return pablo.JSON(res), nil
}

// reply turns an HTTPError into a failed Result. Other errors go to the
// dispatcher.
func reply(rc *pablo.RequestContext, err error) (any, error) {
	he := pablo.AsHTTPError(err)
	if he == nil {
		return nil, err
	}
	rc.LogWarn("sshm action refused", "error", err, "status", he.Code)
	return failure(he.Code, he.Message), nil
}

func failure(code int, msg string) pablo.JSONResult {
	return pablo.JSONResult{Value: Result{Error: msg}, Status: code}
}

func (p *Plugin) page(ctx context.Context) (any, error) {
	d, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	return Page(d), nil
}

func (p *Plugin) data(ctx context.Context) (any, error) {
	d, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	return pablo.JSON(d), nil
}

func (p *Plugin) load(ctx context.Context) (Data, error) {
	hosts, err := p.store.Hosts(ctx)
	if err != nil {
		return Data{}, err
	}
	keys, err := p.store.Keys(ctx)
	if err != nil {
		return Data{}, err
	}
	return Data{Hosts: nonNil(hosts), Keys: nonNil(keys)}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (p *Plugin) createHost(ctx context.Context, in pablo.Input) (Result, error) {
	h, err := parseHost(in)
	if err != nil {
		return Result{}, err
	}
	id, err := p.store.CreateHost(ctx, h)
	if err != nil {
		return Result{}, exists(err, "Host '%s' already exists", h.Name)
	}
	if err := p.layout.WriteHost(h); err != nil {
		return Result{}, err
	}
	return Result{ID: id, Message: "Created host " + h.Name}, nil
}

func (p *Plugin) editHost(ctx context.Context, in pablo.Input) (Result, error) {
	old, err := p.host(ctx, pablo.InputDefault(in, "id", int64(0)))
	if err != nil {
		return Result{}, err
	}
	h, err := parseHost(in)
	if err != nil {
		return Result{}, err
	}
	h.ID = old.ID
	if err := p.store.UpdateHost(ctx, h); err != nil {
		return Result{}, exists(err, "Host '%s' already exists", h.Name)
	}
	if old.Name != h.Name {
		if err := p.layout.RemoveHost(old.Name); err != nil {
			return Result{}, err
		}
	}
	if err := p.layout.WriteHost(h); err != nil {
		return Result{}, err
	}
	return Result{ID: h.ID, Message: "Updated host " + h.Name}, nil
}

func (p *Plugin) deleteHost(ctx context.Context, in pablo.Input) (Result, error) {
	h, err := p.host(ctx, pablo.InputDefault(in, "id", int64(0)))
	if err != nil {
		return Result{}, err
	}
	if err := p.store.DeleteHost(ctx, h.ID); err != nil {
		return Result{}, err
	}
	if err := p.layout.RemoveHost(h.Name); err != nil {
		return Result{}, err
	}
	return Result{ID: h.ID, Message: "Removed host " + h.Name}, nil
}

func (p *Plugin) createKey(ctx context.Context, in pablo.Input) (Result, error) {
	name := strings.TrimSpace(in.String("name"))
	comment := strings.TrimSpace(in.String("comment"))
	if comment == "" {
		comment = p.comment
	}
	password := in.String("password")
	switch {
	case !validName(name):
		return Result{}, pablo.ErrBadRequest("Invalid key name")
	case len(comment) > maxComment || strings.ContainsAny(comment, "\r\n"):
		return Result{}, pablo.ErrBadRequest("Invalid key comment")
	case password != "" && len(password) < minPass:
		return Result{}, pablo.ErrBadRequest(fmt.Sprintf("Passphrase must be at least %d characters", minPass))
	}

	found, err := p.layout.KeyExists(name)
	if err != nil {
		return Result{}, err
	}
	if found {
		return Result{}, pablo.NewHTTPError(http.StatusConflict, fmt.Sprintf("SSH Key '~/.ssh/%s' already exists", name), nil)
	}

	path, err := p.layout.KeyPath(name)
	if err != nil {
		return Result{}, err
	}
	if _, err := p.runner.Run(ctx, "ssh-keygen", "-o", "-a", "100", "-t", "ed25519", "-f", path, "-C", comment, "-N", password); err != nil {
		return Result{}, err
	}

	pub, err := p.layout.PublicKey(name)
	if err == nil {
		var id int64
		if id, err = p.store.CreateKey(ctx, Key{Name: name, PublicKey: pub, Comment: comment}); err == nil {
			return Result{ID: id, Message: "Created key " + name}, nil
		}
	}
	return Result{}, errors.Join(exists(err, "Key '%s' already exists", name), p.layout.RemoveKey(name))
}

func (p *Plugin) deleteKey(ctx context.Context, in pablo.Input) (Result, error) {
	k, err := p.key(ctx, pablo.InputDefault(in, "id", int64(0)))
	if err != nil {
		return Result{}, err
	}
	if err := p.layout.RemoveKey(k.Name); err != nil {
		return Result{}, err
	}
	if err := p.store.DeleteKey(ctx, k.ID); err != nil {
		return Result{}, err
	}
	return Result{ID: k.ID, Message: "Removed key " + k.Name}, nil
}

func (p *Plugin) copyKey(ctx context.Context, in pablo.Input) (Result, error) {
	k, err := p.key(ctx, pablo.InputDefault(in, "key_id", int64(0)))
	if err != nil {
		return Result{}, err
	}
	h, err := p.host(ctx, pablo.InputDefault(in, "host_id", int64(0)))
	if err != nil {
		return Result{}, err
	}
	path, err := p.layout.KeyPath(k.Name)
	if err != nil {
		return Result{}, err
	}
	if _, err := p.runner.Run(ctx, "ssh-copy-id", "-i", path+".pub", "-p", strconv.Itoa(h.Port), h.User+"@"+h.Hostname); err != nil {
		return Result{}, err
	}
	return Result{ID: k.ID, Message: fmt.Sprintf("Copied key %s to %s", k.Name, h.Name)}, nil
}

func (p *Plugin) importHosts(ctx context.Context) (Result, error) {
	found, err := p.layout.ReadHosts()
	if err != nil {
		return Result{}, err
	}
	known, err := p.store.Hosts(ctx)
	if err != nil {
		return Result{}, err
	}
	names := make(map[string]bool, len(known))
	for _, h := range known {
		names[h.Name] = true
	}

	n := 0
	for _, h := range found {
		if names[h.Name] || validateHost(h) != "" {
			continue
		}
		if _, err := p.store.CreateHost(ctx, h); err != nil && !errors.Is(err, ErrExists) {
			return Result{}, err
		}
		names[h.Name] = true
		n++
	}
	return Result{Message: fmt.Sprintf("Imported %d hosts", n)}, nil
}

func (p *Plugin) host(ctx context.Context, id int64) (Host, error) {
	if id <= 0 {
		return Host{}, pablo.ErrBadRequest("Invalid host id")
	}
	h, err := p.store.Host(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Host{}, pablo.ErrNotFound("Host not found").Wrap(err)
	}
	return h, err
}

func (p *Plugin) key(ctx context.Context, id int64) (Key, error) {
	if id <= 0 {
		return Key{}, pablo.ErrBadRequest("Invalid key id")
	}
	k, err := p.store.Key(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Key{}, pablo.ErrNotFound("Key not found").Wrap(err)
	}
	return k, err
}

// exists maps ErrExists to a 409 with the formatted name.
func exists(err error, format, name string) error {
	if errors.Is(err, ErrExists) {
		return pablo.NewHTTPError(http.StatusConflict, fmt.Sprintf(format, name), err)
	}
	return err
}

func validName(name string) bool {
	return nameRe.MatchString(name)
}

func parseHost(in pablo.Input) (Host, error) {
	h := Host{
		Name:         strings.TrimSpace(in.String("name")),
		Hostname:     strings.ToLower(strings.TrimSpace(in.String("hostname"))),
		Port:         DefaultPort,
		User:         strings.TrimSpace(in.Default("username", DefaultUser)),
		IdentityFile: strings.TrimSpace(in.String("identity_file")),
	}
	if raw := strings.TrimSpace(in.String("port")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Host{}, pablo.ErrBadRequest("Invalid port")
		}
		h.Port = n
	}
	if h.User == "" {
		h.User = DefaultUser
	}
	if msg := validateHost(h); msg != "" {
		return Host{}, pablo.ErrBadRequest(msg)
	}
	return h, nil
}

func validateHost(h Host) string {
	switch {
	case !validName(h.Name):
		return "Invalid host name"
	case !validHostname(h.Hostname):
		return "Invalid hostname"
	case h.Port < 1 || h.Port > 65535:
		return "Invalid port"
	case !userRe.MatchString(h.User):
		return "Invalid username"
	case strings.ContainsFunc(h.IdentityFile, func(r rune) bool { return r <= ' ' }):
		return "Invalid identity file"
	}
	return ""
}

func validHostname(s string) bool {
	if _, err := netip.ParseAddr(s); err == nil {
		return true
	}
	return len(s) <= 253 && hostnameRe.MatchString(s)
}

// bodyInput returns the raw request input, merged with the fields of a
// JSON object body when the request carries one.
func bodyInput(rc *pablo.RequestContext) (pablo.Input, error) {
	in := rc.RawInput()
	ct, _, _ := mime.ParseMediaType(rc.Header("Content-Type"))
	if ct != "application/json" {
		return in, nil
	}

	var fields map[string]any
	dec := json.NewDecoder(io.LimitReader(rc.Request().Body, maxBody))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return nil, pablo.ErrBadRequest("Invalid JSON body").Wrap(err)
	}

	out := in.Clone()
	for k, v := range fields {
		switch v := v.(type) {
		case string:
			out[k] = v
		case json.Number:
			out[k] = v.String()
		case bool:
			out[k] = "0"
			if v {
				out[k] = "1"
			}
		}
	}
	return out, nil
}
