// Package cli implements the pokedex command line.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/pokedex-client/internal/config"
	"github.com/Sternrassler/pokedex-client/pkg/client"
	"github.com/Sternrassler/pokedex-client/pkg/logging"
	"github.com/Sternrassler/pokedex-client/pkg/pokeapi"
)

// options carries the resolved configuration from PersistentPreRunE to the
// subcommands.
type options struct {
	configPath string
	debug      bool
	cfg        config.Config
	logger     zerolog.Logger
}

// NewRootCmd creates the root Cobra command for the pokedex CLI.
func NewRootCmd(ver string) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "pokedex",
		Short:         "Browse PokeAPI from the terminal",
		Long:          "pokedex: list, search and browse pokemon from the public PokeAPI",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: user config dir/pokedex/config.yaml)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().String("base-url", "", "PokeAPI base URL (overrides config)")
	cmd.PersistentFlags().String("redis", "", "redis address for the response cache (overrides config)")

	cmd.AddCommand(
		newListCmd(opts),
		newShowCmd(opts),
		newBrowseCmd(opts),
		newServeCmd(opts),
		newConfigCmd(opts),
	)

	return cmd
}

const rootCmdExample = `  # Print the first page, sorted by id
  pokedex list

  # Print the page starting at offset 150
  pokedex list --offset 150

  # Show details for one or more pokemon
  pokedex show pikachu 7

  # Interactive browser
  pokedex browse

  # JSON facade with metrics
  pokedex serve

  # Write a default config file
  pokedex config init`

func (o *options) load(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if v, _ := cmd.Flags().GetString("base-url"); v != "" {
		cfg.BaseURL = v
	}
	if v, _ := cmd.Flags().GetString("redis"); v != "" {
		cfg.Redis.Addr = v
	}
	if o.debug {
		cfg.Log.Level = string(logging.LevelDebug)
		cfg.Log.Pretty = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.cfg = cfg

	o.setupLogging(cmd.ErrOrStderr())
	return nil
}

func (o *options) setupLogging(w io.Writer) {
	logCfg := o.cfg.LoggingConfig()
	logCfg.Output = w
	logging.Setup(logCfg)
	o.logger = logging.NewLogger("cli")
}

// deps is the set of long-lived objects a command needs.
type deps struct {
	client *client.Client
	redis  *redis.Client
	api    *pokeapi.API
}

func (d *deps) Close() {
	d.client.Close()
	if d.redis != nil {
		d.redis.Close()
	}
}

// newDeps builds the fetch client. When a redis address is configured but
// unreachable, the cache stays off and requests go straight upstream.
func (o *options) newDeps(ctx context.Context) (*deps, error) {
	clientCfg := o.cfg.ClientConfig()

	var redisClient *redis.Client
	if o.cfg.CacheEnabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     o.cfg.Redis.Addr,
			DB:       o.cfg.Redis.DB,
			Password: o.cfg.Redis.Password,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			o.logger.Warn().Err(err).Str("addr", o.cfg.Redis.Addr).Msg("Redis unavailable, cache disabled")
			redisClient.Close()
			redisClient = nil
		} else {
			o.logger.Debug().Str("addr", o.cfg.Redis.Addr).Msg("Connected to Redis")
			clientCfg.Redis = redisClient
		}
	}

	c, err := client.New(clientCfg)
	if err != nil {
		if redisClient != nil {
			redisClient.Close()
		}
		return nil, fmt.Errorf("create client: %w", err)
	}

	return &deps{client: c, redis: redisClient, api: pokeapi.New(c)}, nil
}
