package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/pokedex-client/pkg/app"
)

func newListCmd(opts *options) *cobra.Command {
	var offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of pokemon sorted by id",
		Example: `  pokedex list
  pokedex list --offset 300`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if offset < 0 {
				return fmt.Errorf("offset must be >= 0, got %d", offset)
			}

			d, err := opts.newDeps(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			out := newTextRenderer(cmd.OutOrStdout())
			ctrl := app.New(d.api, out, opts.cfg.AppConfig())
			if err := ctrl.LoadPage(cmd.Context(), offset); err != nil {
				return err
			}

			st := ctrl.Pagination()
			var nav []string
			if st.CanPrev() {
				nav = append(nav, fmt.Sprintf("prev: --offset %d", max(0, st.Offset-st.PageSize)))
			}
			if st.CanNext() {
				nav = append(nav, fmt.Sprintf("next: --offset %d", st.Offset+st.PageSize))
			}
			if len(nav) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "\n(%s)\n", strings.Join(nav, " | "))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "list offset")
	return cmd
}
