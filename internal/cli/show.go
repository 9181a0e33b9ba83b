package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/pokedex-client/pkg/app"
)

func newShowCmd(opts *options) *cobra.Command {
	var showHistory bool

	cmd := &cobra.Command{
		Use:   "show <name|id>...",
		Short: "Show details for one or more pokemon",
		Example: `  pokedex show pikachu
  pokedex show bulbasaur 4 squirtle --history`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := opts.newDeps(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			out := newTextRenderer(cmd.OutOrStdout())
			ctrl := app.New(d.api, out, opts.cfg.AppConfig())

			for i, key := range args {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				ctrl.Select(cmd.Context(), key)
			}

			if showHistory {
				fmt.Fprintf(cmd.OutOrStdout(), "\nHistory: %s\n", strings.Join(ctrl.History(), ", "))
			}
			if n := out.Failures(); n > 0 {
				return fmt.Errorf("%d of %d lookups failed", n, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showHistory, "history", false, "print the resulting history")
	return cmd
}
