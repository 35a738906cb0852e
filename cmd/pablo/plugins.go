package main

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/markc/pablo/pkg/logger"
	"github.com/markc/pablo/pkg/scanner"
)

func newPluginsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "plugins",
		Aliases: []string{"ls"},
		Short:   "List plugin directories and whether a plugin is registered for them",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.load()
			if err != nil {
				return err
			}

			app, err := buildApp(s, logger.NewNope(), &resources{})
			if err != nil {
				return err
			}
			missing := app.Reconcile()

			found, err := scanner.New(s.Plugins.Dir).Plugins()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DIR\tNAME\tORDER\tREGISTERED")
			for _, p := range found {
				ok := "yes"
				if slices.ContainsFunc(missing, func(id string) bool { return strings.EqualFold(id, p.Dir) }) {
					ok = "no"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", p.Dir, p.Name, p.Order, ok)
			}
			return w.Flush()
		},
	}
}
