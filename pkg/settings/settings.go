package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/markc/pablo/pkg/cookie"
	"github.com/markc/pablo/pkg/db"
	"github.com/markc/pablo/pkg/nav"
	"github.com/markc/pablo/pkg/redis"
)

// EnvPrefix is prepended to every environment override, e.g. PABLO_SERVER_ADDRESS.
const EnvPrefix = "PABLO"

// Session store kinds.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Settings is the complete runtime configuration.
type Settings struct {
	App      AppSettings     `mapstructure:"app"`
	Server   ServerSettings  `mapstructure:"server"`
	Session  SessionSettings `mapstructure:"session"`
	Redis    redis.Config    `mapstructure:"redis"`
	Database db.Config       `mapstructure:"database"`
	Log      LogSettings     `mapstructure:"log"`
	Plugins  PluginSettings  `mapstructure:"plugins"`
	Docs     DocsSettings    `mapstructure:"docs"`
	Nav      NavSettings     `mapstructure:"nav"`
	Output   OutputSettings  `mapstructure:"output"`
	Vhosts   VhostsSettings  `mapstructure:"vhosts"`
	Sshm     SshmSettings    `mapstructure:"sshm"`
}

type AppSettings struct {
	Name       string `mapstructure:"name"`
	Debug      bool   `mapstructure:"debug"`
	Root       string `mapstructure:"root"` // base_path seed
	MinRuntime string `mapstructure:"min_runtime"`
}

type ServerSettings struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type SessionSettings struct {
	Store      string `mapstructure:"store"`
	CookieName string `mapstructure:"cookie_name"`
	MaxAge     int    `mapstructure:"max_age"`
	Secure     bool   `mapstructure:"secure"`
	Secret     string `mapstructure:"secret"`
}

type LogSettings struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	SentryDSN   string `mapstructure:"sentry_dsn"`
	Environment string `mapstructure:"environment"`
}

type PluginSettings struct {
	Dir string `mapstructure:"dir"`
}

type DocsSettings struct {
	Dir string `mapstructure:"dir"`
}

type NavSettings struct {
	Remotes []nav.Entry `mapstructure:"remotes"`
}

type OutputSettings struct {
	Sections []string `mapstructure:"sections"`
}

type VhostsSettings struct {
	HomeDir    string `mapstructure:"home_dir"`
	AddCommand string `mapstructure:"add_command"`
	DelCommand string `mapstructure:"del_command"`
	Sudo       bool   `mapstructure:"sudo"`
}

// SshmSettings locates the SSH directory managed by the Sshm plugin.
// An empty Dir means ~/.ssh of the server account.
type SshmSettings struct {
	Dir     string `mapstructure:"dir"`
	Comment string `mapstructure:"comment"`
}

// SSHDir returns Dir, or ~/.ssh when it is empty.
func (s SshmSettings) SSHDir() (string, error) {
	if s.Dir != "" {
		return s.Dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ssh"), nil
}

// SetDefaults registers every key with its default value. Keys must be known
// to viper for environment overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	dbDef := db.DefaultConfig()
	redisDef := redis.DefaultConfig()

	v.SetDefault("app.name", "Pablo")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.root", "")
	v.SetDefault("app.min_runtime", "go1.23")

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("session.store", StoreMemory)
	v.SetDefault("session.cookie_name", "pablo_sid")
	v.SetDefault("session.max_age", 86400)
	v.SetDefault("session.secure", false)
	v.SetDefault("session.secret", "")

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.pool_size", redisDef.PoolSize)
	v.SetDefault("redis.min_idle_conns", redisDef.MinIdleConns)
	v.SetDefault("redis.dial_timeout", redisDef.DialTimeout)
	v.SetDefault("redis.read_timeout", redisDef.ReadTimeout)
	v.SetDefault("redis.write_timeout", redisDef.WriteTimeout)
	v.SetDefault("redis.retry_attempts", redisDef.RetryAttempts)
	v.SetDefault("redis.retry_interval", redisDef.RetryInterval)

	v.SetDefault("database.url", "")
	v.SetDefault("database.migrations_table", dbDef.MigrationsTable)
	v.SetDefault("database.max_conns", dbDef.MaxConns)
	v.SetDefault("database.min_conns", dbDef.MinConns)
	v.SetDefault("database.max_conn_idle_time", dbDef.MaxConnIdleTime)
	v.SetDefault("database.max_conn_lifetime", dbDef.MaxConnLifetime)
	v.SetDefault("database.health_check_period", dbDef.HealthCheck)
	v.SetDefault("database.retry_attempts", dbDef.RetryAttempts)
	v.SetDefault("database.retry_interval", dbDef.RetryInterval)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.sentry_dsn", "")
	v.SetDefault("log.environment", "production")

	v.SetDefault("plugins.dir", "plugins")
	v.SetDefault("docs.dir", "docs")
	v.SetDefault("nav.remotes", []map[string]any{})
	v.SetDefault("output.sections", []string{"lhsNav", "rhsNav"})

	v.SetDefault("vhosts.home_dir", "/home/u")
	v.SetDefault("vhosts.add_command", "addvhost")
	v.SetDefault("vhosts.del_command", "delvhost")
	v.SetDefault("vhosts.sudo", true)

	v.SetDefault("sshm.dir", "")
	v.SetDefault("sshm.comment", "")
}

// New returns a viper instance with defaults, the PABLO_ environment prefix
// and the pablo.yaml search path (working directory, then /etc/pablo).
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigName("pablo")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/pablo")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file (an explicit path, or the search path when file
// is empty) and decodes v into Settings. A missing file on the search path is
// not an error; a missing explicit file is.
func Load(v *viper.Viper, file string) (*Settings, error) {
	if file != "" {
		v.SetConfigFile(file)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, errors.Join(ErrReadConfig, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, errors.Join(ErrDecodeConfig, err)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &s, nil
}

// Validate checks cross-field constraints.
func (s *Settings) Validate() error {
	var errs []error

	if s.Server.Address == "" {
		errs = append(errs, fmt.Errorf("%w: server.address is empty", ErrInvalid))
	}

	switch s.Session.Store {
	case StoreMemory:
	case StoreRedis:
		if s.Redis.URL == "" {
			errs = append(errs, fmt.Errorf("%w: session.store=redis requires redis.url", ErrInvalid))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: unknown session.store %q", ErrInvalid, s.Session.Store))
	}

	if err := cookie.ValidateSecret(s.Session.Secret); err != nil {
		errs = append(errs, fmt.Errorf("%w: session.secret: %w", ErrInvalid, err))
	}

	switch strings.ToLower(s.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("%w: unknown log.format %q", ErrInvalid, s.Log.Format))
	}

	for i, e := range s.Nav.Remotes {
		if e.Label == "" || e.URL == "" {
			errs = append(errs, fmt.Errorf("%w: nav.remotes[%d] needs label and url", ErrInvalid, i))
		}
	}

	return errors.Join(errs...)
}

// Remotes returns the configured remotes section, falling back to the
// built-in entries when none are configured.
func (s *Settings) Remotes() nav.Section {
	if len(s.Nav.Remotes) == 0 {
		return nav.Remotes(nav.DefaultRemotes()...)
	}
	return nav.Remotes(s.Nav.Remotes...)
}
