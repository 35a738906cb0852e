package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/markc/pablo/pkg/settings"
)

// cli carries the state shared by the subcommands.
type cli struct {
	v          *viper.Viper
	configFile string
}

func (c *cli) load() (*settings.Settings, error) {
	return settings.Load(c.v, c.configFile)
}

func newRootCmd() *cobra.Command {
	c := &cli{v: settings.New()}

	root := &cobra.Command{
		Use:   "pablo",
		Short: "Plugin based web admin panel",
		Long: `Pablo serves a plugin based admin panel: a front controller dispatches
every request to a plugin and wraps its output in a theme.

Configuration is read from pablo.yaml (working directory, then /etc/pablo)
and PABLO_<SECTION>_<KEY> environment variables, e.g. PABLO_SERVER_ADDRESS.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "config file (default is ./pablo.yaml or /etc/pablo/pablo.yaml)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (json, text)")
	mustBind(c.v, flags, map[string]string{
		"log.level":  "log-level",
		"log.format": "log-format",
	})

	root.AddCommand(
		newServeCmd(c),
		newMigrateCmd(c),
		newPluginsCmd(c),
		newVersionCmd(),
	)
	return root
}

// mustBind binds viper keys to flags. The flags are declared next to the
// call, so a missing one is a programming error.
func mustBind(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		f := fs.Lookup(name)
		if f == nil {
			panic(fmt.Sprintf("pablo: flag --%s is not declared", name))
		}
		if err := v.BindPFlag(key, f); err != nil {
			panic(err)
		}
	}
}
