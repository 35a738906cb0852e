package main

import (
	"github.com/spf13/cobra"

	"github.com/markc/pablo"
)

func newServeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"s"},
		Short:   "Start the HTTP server",
		Long: `Start the HTTP server. When database.url is set the embedded
migrations are applied first; when redis.url is set sessions and rendered
documents can be kept in Redis.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.load()
			if err != nil {
				return err
			}
			log := newLogger(s, cmd.ErrOrStderr())
			ctx := cmd.Context()

			res, err := openResources(ctx, s, log)
			if err != nil {
				return err
			}

			app, err := buildApp(s, log, res)
			if err != nil {
				_ = res.Close(ctx)
				return err
			}

			return app.Run(s.Server.Address,
				pablo.ReadTimeout(s.Server.ReadTimeout),
				pablo.WriteTimeout(s.Server.WriteTimeout),
				pablo.ShutdownTimeout(s.Server.ShutdownTimeout),
				pablo.ShutdownHook(res.Close),
				pablo.WithContext(ctx),
			)
		},
	}

	flags := cmd.Flags()
	flags.String("addr", "", "listen address (default :8080)")
	flags.Bool("debug", false, "show error details and log request input")
	flags.String("plugins-dir", "", "directory scanned for plugin navigation")
	mustBind(c.v, flags, map[string]string{
		"server.address": "addr",
		"app.debug":      "debug",
		"plugins.dir":    "plugins-dir",
	})
	return cmd
}
