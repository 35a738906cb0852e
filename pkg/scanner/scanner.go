package scanner

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/markc/pablo/pkg/logger"
	"github.com/markc/pablo/pkg/nav"
)

const (
	// DefaultDir is the conventional plugins location, relative to the app root.
	DefaultDir = "plugins"

	// MetadataFile is the optional per-plugin descriptor.
	MetadataFile = "plugin.yaml"

	// DefaultOrder is the priority of plugins that do not declare one.
	DefaultOrder = 999

	// SectionName labels the scanned navigation section.
	SectionName = "Plugins"
)

// Metadata is the content of a plugin.yaml file.
// All fields are optional.
type Metadata struct {
	Name  string `yaml:"name"`
	Icon  string `yaml:"icon"`
	Order *int   `yaml:"order"`
}

// Plugin is a scanned plugin directory with its resolved metadata.
type Plugin struct {
	Dir   string // directory base name
	Name  string
	Icon  string
	Order int
}

// Entry converts p to a navigation entry.
func (p Plugin) Entry() nav.Entry {
	return nav.Entry{
		Label: p.Name,
		URL:   "?plugin=" + strings.ToLower(p.Dir),
		Icon:  p.Icon,
	}
}

// Scanner lists plugin directories and builds the plugin navigation.
// It only reads from the filesystem.
type Scanner struct {
	dir    string
	logger *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger used to report unreadable metadata files.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Scanner rooted at dir. An empty dir means DefaultDir.
func New(dir string, opts ...Option) *Scanner {
	if dir == "" {
		dir = DefaultDir
	}
	s := &Scanner{
		dir:    dir,
		logger: logger.NewNope(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the scanned base directory.
func (s *Scanner) Dir() string {
	return s.dir
}

// Plugins returns the plugin directories sorted by ascending order.
// Directories with equal order keep their enumeration order.
// A missing base directory yields no plugins and no error.
func (s *Scanner) Plugins() ([]Plugin, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Join(ErrReadDir, err)
	}

	plugins := make([]Plugin, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		plugins = append(plugins, s.resolve(e.Name()))
	}

	slices.SortStableFunc(plugins, func(a, b Plugin) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return plugins, nil
}

// Scan builds the "Plugins" navigation section.
// Read failures are logged and produce an empty section.
func (s *Scanner) Scan() nav.Section {
	section := nav.Section{
		Name:    SectionName,
		Icon:    nav.DefaultSectionIcon,
		Entries: []nav.Entry{},
	}

	plugins, err := s.Plugins()
	if err != nil {
		s.logger.Warn("plugin scan failed", slog.String("dir", s.dir), slog.Any("error", err))
		return section
	}

	for _, p := range plugins {
		section.Entries = append(section.Entries, p.Entry())
	}
	return section
}

// resolve reads the metadata for one plugin directory, falling back to
// defaults for a missing or malformed file.
func (s *Scanner) resolve(dir string) Plugin {
	p := Plugin{
		Dir:   dir,
		Name:  dir,
		Icon:  nav.DefaultEntryIcon,
		Order: DefaultOrder,
	}

	meta, err := readMetadata(filepath.Join(s.dir, dir, MetadataFile))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("ignoring plugin metadata",
				slog.String("plugin", dir),
				slog.Any("error", err),
			)
		}
		return p
	}

	if meta.Name != "" {
		p.Name = meta.Name
	}
	if meta.Icon != "" {
		p.Icon = meta.Icon
	}
	if meta.Order != nil {
		p.Order = *meta.Order
	}
	return p
}

func readMetadata(path string) (Metadata, error) {
	var meta Metadata
	data, err := os.ReadFile(path)
	if err != nil {
		return meta, err
	}
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return Metadata{}, fmt.Errorf("%w: %s: %w", ErrBadMetadata, filepath.Base(filepath.Dir(path)), err)
	}
	return meta, nil
}
