// Package settings loads the runtime configuration with viper.
//
// Values come from, in increasing priority: built-in defaults, an optional
// pablo.yaml (working directory or /etc/pablo, or an explicit --config path),
// and PABLO_* environment variables where dots become underscores:
//
//	PABLO_SERVER_ADDRESS=:9000
//	PABLO_SESSION_STORE=redis
//	PABLO_REDIS_URL=redis://localhost:6379/0
//
//	v := settings.New()
//	s, err := settings.Load(v, "")
package settings
