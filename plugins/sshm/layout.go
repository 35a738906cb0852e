package sshm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// ErrLayout wraps failures reading or writing the SSH directory.
var ErrLayout = errors.New("sshm: ssh directory")

const (
	configDir = "config.d"

	dirMode  fs.FileMode = 0o700
	fileMode fs.FileMode = 0o600
)

const baseConfig = `Ciphers aes128-ctr,aes192-ctr,aes256-ctr,aes128-gcm@openssh.com,aes256-gcm@openssh.com,chacha20-poly1305@openssh.com

Include ~/.ssh/config.d/*

Host *
  TCPKeepAlive yes
  ServerAliveInterval 30
  ForwardAgent yes
  AddKeysToAgent yes
  IdentitiesOnly yes
`

// Layout owns an SSH directory: key pairs at its root and one config file
// per host under config.d.
type Layout struct {
	dir string

	mu    sync.Mutex
	ready bool
}

// NewLayout returns the Layout of dir. Nothing is created until Init.
func NewLayout(dir string) *Layout {
	return &Layout{dir: dir}
}

// Dir returns the SSH directory.
func (l *Layout) Dir() string { return l.dir }

// Init creates the directory, authorized_keys, config.d and the base
// config when missing, then resets permissions to 0700 for directories
// and 0600 for files. It runs once per Layout unless it fails.
func (l *Layout) Init() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ready {
		return nil
	}

	if err := os.MkdirAll(filepath.Join(l.dir, configDir), dirMode); err != nil {
		return fmt.Errorf("%w: %w", ErrLayout, err)
	}
	if err := createIfMissing(filepath.Join(l.dir, "authorized_keys"), ""); err != nil {
		return err
	}
	header := "# Created by pablo on " + time.Now().Format("20060102") + "\n"
	if err := createIfMissing(filepath.Join(l.dir, "config"), header+baseConfig); err != nil {
		return err
	}

	err := filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		switch {
		case err != nil:
			return err
		case d.Type()&fs.ModeSymlink != 0:
			return nil
		case d.IsDir():
			return os.Chmod(path, dirMode)
		default:
			return os.Chmod(path, fileMode)
		}
	})
	if err != nil {
		return fmt.Errorf("%w: fix permissions: %w", ErrLayout, err)
	}
	l.ready = true
	return nil
}

func createIfMissing(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fileMode)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLayout, err)
	}
	_, err = f.WriteString(content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLayout, err)
	}
	return nil
}

// join resolves name inside the sub directory of the layout. Names cannot
// leave it, whatever their dots or symlinks.
func (l *Layout) join(sub, name string) (string, error) {
	p, err := securejoin.SecureJoin(filepath.Join(l.dir, sub), name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrLayout, err)
	}
	return p, nil
}

// HostConfig renders the config.d entry of h.
func HostConfig(h Host) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Host %s\n    Hostname %s\n    Port %d\n    User %s\n", h.Name, h.Hostname, h.Port, h.User)
	if h.IdentityFile != "" {
		fmt.Fprintf(&b, "    IdentityFile %s\n", h.IdentityFile)
	}
	return b.String()
}

// WriteHost writes config.d/<h.Name>.
func (l *Layout) WriteHost(h Host) error {
	path, err := l.join(configDir, h.Name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(HostConfig(h)), fileMode); err != nil {
		return fmt.Errorf("%w: %w", ErrLayout, err)
	}
	return nil
}

// RemoveHost deletes config.d/<name>. A missing file is not an error.
func (l *Layout) RemoveHost(name string) error {
	path, err := l.join(configDir, name)
	if err != nil {
		return err
	}
	return remove(path)
}

// ReadHosts parses every file under config.d. Wildcard patterns and
// entries with an invalid name are skipped. Port defaults to 22 and User
// to root.
func (l *Layout) ReadHosts() ([]Host, error) {
	entries, err := os.ReadDir(filepath.Join(l.dir, configDir))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLayout, err)
	}

	var hosts []Host
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		f, err := os.Open(filepath.Join(l.dir, configDir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLayout, err)
		}
		hosts = append(hosts, parseHosts(f)...)
		_ = f.Close()
	}
	return hosts, nil
}

func parseHosts(r io.Reader) []Host {
	var (
		hosts []Host
		cur   *Host
	)
	flush := func() {
		if cur != nil && validName(cur.Name) && cur.Hostname != "" {
			hosts = append(hosts, *cur)
		}
		cur = nil
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		key, value := strings.ToLower(fields[0]), fields[1]
		if key == "host" {
			flush()
			cur = &Host{Name: value, Port: DefaultPort, User: DefaultUser}
			continue
		}
		if cur == nil {
			continue
		}
		switch key {
		case "hostname":
			cur.Hostname = value
		case "port":
			if n, err := strconv.Atoi(value); err == nil {
				cur.Port = n
			}
		case "user":
			cur.User = value
		case "identityfile":
			cur.IdentityFile = value
		}
	}
	flush()
	return hosts
}

// KeyPath returns the private key path of name.
func (l *Layout) KeyPath(name string) (string, error) {
	return l.join("", name)
}

// KeyExists reports whether the private key of name is present.
func (l *Layout) KeyExists(name string) (bool, error) {
	path, err := l.KeyPath(name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %w", ErrLayout, err)
	}
}

// PublicKey reads <name>.pub.
func (l *Layout) PublicKey(name string) (string, error) {
	path, err := l.join("", name+".pub")
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrLayout, err)
	}
	return strings.TrimSpace(string(b)), nil
}

// RemoveKey deletes both halves of the key pair name.
func (l *Layout) RemoveKey(name string) error {
	var errs []error
	for _, n := range []string{name, name + ".pub"} {
		path, err := l.join("", n)
		if err == nil {
			err = remove(path)
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrLayout, err)
	}
	return nil
}
