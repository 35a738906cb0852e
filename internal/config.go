package internal

import (
	"html"
	"maps"
)

// Well-known Cfg keys.
const (
	CfgAppName  = "app_name"
	CfgHost     = "host"
	CfgBasePath = "base_path"
	CfgBaseURL  = "base_url"
)

// OutMain is the Out key holding the plugin's rendered result.
const OutMain = "main"

// Config is the per-request state shared by the dispatcher, the theme and
// the plugin: static settings (Cfg), request input (In) and output fragments
// (Out).
type Config struct {
	Cfg map[string]string
	In  Input
	Out map[string]string

	raw Input
}

// NewConfig creates a Config with a private copy of cfg and an empty Out.
func NewConfig(cfg map[string]string, in Input) *Config {
	c := &Config{
		Cfg: maps.Clone(cfg),
		In:  in,
		Out: make(map[string]string),
	}
	if c.Cfg == nil {
		c.Cfg = make(map[string]string)
	}
	if c.In == nil {
		c.In = make(Input)
	}
	return c
}

// GetConfig returns a copy of the static settings.
func (c *Config) GetConfig() map[string]string {
	return maps.Clone(c.Cfg)
}

// SanitizeInput HTML-escapes every string value of In (& < > " ').
// List values are left as they are. The values as received stay
// available through Raw.
func (c *Config) SanitizeInput() {
	if c.raw == nil {
		c.raw = c.In.Clone()
	}
	for k, v := range c.In {
		if s, ok := v.(string); ok {
			c.In[k] = html.EscapeString(s)
		}
	}
}

// Raw returns the input as received, before SanitizeInput escaped it.
// Values bound into SQL parameters or command arguments come from here;
// values written into markup come from In.
func (c *Config) Raw() Input {
	if c.raw == nil {
		return c.In
	}
	return c.raw
}

// SetDefault sets a Cfg key when it is missing or empty.
func (c *Config) SetDefault(key, value string) {
	if c.Cfg[key] == "" {
		c.Cfg[key] = value
	}
}
