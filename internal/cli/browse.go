package cli

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/pokedex-client/internal/tui"
	"github.com/Sternrassler/pokedex-client/pkg/app"
	"github.com/Sternrassler/pokedex-client/pkg/logging"
)

func newBrowseCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Interactive terminal browser",
		Long: `Opens the interactive browser. Logs would corrupt the screen, so they
go to log.file when it is set and are discarded otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var logOut io.Writer = io.Discard
			if path := opts.cfg.Log.File; path != "" {
				f, err := logging.OpenFile(path)
				if err != nil {
					return err
				}
				defer f.Close()
				logOut = f
			}
			opts.cfg.Log.Pretty = false
			opts.setupLogging(logOut)

			d, err := opts.newDeps(cmd.Context())
			if err != nil {
				return err
			}
			defer d.Close()

			model := tui.New(cmd.Context())
			program := tea.NewProgram(model,
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
			)
			model.Attach(app.New(d.api, tui.NewRenderer(program), opts.cfg.AppConfig()))

			if _, err := program.Run(); err != nil {
				return fmt.Errorf("run browser: %w", err)
			}
			return nil
		},
	}
}
