package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/pokedex-client/internal/server"
	"github.com/Sternrassler/pokedex-client/pkg/aggregate"
)

func newServeCmd(opts *options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve aggregated pages and details as JSON",
		Long: `Starts an HTTP server with:
  GET /health               liveness
  GET /ready                readiness (pings redis when the cache is enabled)
  GET /metrics              Prometheus metrics
  GET /api/pokemon?offset=  one aggregated page, sorted by id
  GET /api/pokemon/{name}   one detail record`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			d, err := opts.newDeps(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			appCfg := opts.cfg.AppConfig()
			srvCfg := server.DefaultConfig()
			srvCfg.Addr = opts.cfg.Server.Addr
			if addr != "" {
				srvCfg.Addr = addr
			}
			srvCfg.PageSize = appCfg.PageSize

			var ready server.Pinger
			if c := d.client.GetCache(); c != nil {
				ready = c
			}

			srv := server.New(d.api, aggregate.New(d.api, appCfg.Aggregate), ready, srvCfg)
			opts.logger.Info().
				Str("addr", srvCfg.Addr).
				Str("base_url", opts.cfg.BaseURL).
				Bool("cache", ready != nil).
				Msg("Serving PokeAPI facade")
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
