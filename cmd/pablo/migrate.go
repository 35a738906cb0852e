package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/markc/pablo/migrations"
	"github.com/markc/pablo/pkg/db"
)

// errNoDatabase is returned by commands that need database.url.
var errNoDatabase = errors.New("pablo: database.url is not configured")

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.load()
			if err != nil {
				return err
			}
			if s.Database.URL == "" {
				return errNoDatabase
			}
			log := newLogger(s, cmd.ErrOrStderr())

			pool, err := db.Connect(cmd.Context(), s.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := db.Migrate(cmd.Context(), pool, migrations.FS, s.Database.MigrationsTable, log); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
