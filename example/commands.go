package main

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/unchained"
	"github.com/dmitrymomot/unchained/example/app"
	"github.com/dmitrymomot/unchained/middlewares"
	"github.com/dmitrymomot/unchained/pkg/db"
	"github.com/dmitrymomot/unchained/pkg/logger"
	"github.com/dmitrymomot/unchained/pkg/redis"
)

type rootOptions struct {
	env        string
	configFile string
	quiet      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "example",
		Short:         "Run and inspect the unchained example application",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.env, "env", envOr("UNCHAINED_ENV", string(unchained.Development)),
		"environment: development|production|staging|test")
	root.PersistentFlags().StringVar(&opts.configFile, "config", os.Getenv("UNCHAINED_CONFIG"), "YAML config file")
	root.PersistentFlags().BoolVar(&opts.quiet, "quiet", false, "discard application logs")

	root.AddCommand(newServeCmd(opts), newRoutesCmd(opts), newShellCmd(opts))
	return root
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		addr    string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the application over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(opts)
			if err != nil {
				return err
			}
			if addr == "" {
				if cfg, ok := unchained.ConfigAs[*app.Config](a, a.AppBundle().Name()); ok {
					addr = cfg.Address
				}
			}
			return a.Run(addr,
				unchained.ShutdownTimeout(timeout),
				unchained.WithContext(cmd.Context()),
			)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to the configured address)")
	cmd.Flags().DurationVar(&timeout, "shutdown-timeout", 30*time.Second, "graceful shutdown timeout")
	return cmd
}

func newRoutesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the registered URL rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(opts)
			if err != nil {
				return err
			}
			defer a.Shutdown(cmd.Context())

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RULE\tMETHODS\tENDPOINT\tVIEW")
			for _, r := range a.URLRules() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Rule, strings.Join(r.Methods, ","), r.Endpoint, r.ViewName)
			}
			return w.Flush()
		},
	}
}

func newShellCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "List the names an interactive session gets from the application",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(opts)
			if err != nil {
				return err
			}
			defer a.Shutdown(cmd.Context())

			ctx := a.ShellContext()
			names := make([]string, 0, len(ctx))
			for name := range ctx {
				names = append(names, name)
			}
			slices.Sort(names)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, name := range names {
				fmt.Fprintf(w, "%s\t%T\n", name, ctx[name])
			}
			return w.Flush()
		},
	}
}

// buildApp creates the application. PostgreSQL and Redis are used when
// DATABASE_CONN_URL and REDIS_URL are set.
func buildApp(opts *rootOptions) (*unchained.App, error) {
	env, err := unchained.ParseEnv(opts.env)
	if err != nil {
		return nil, err
	}

	var appOpts app.Options
	dbCfg, err := db.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	if dbCfg.ConnectionString != "" {
		appOpts.DB = &dbCfg
	}
	redisCfg, err := redis.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	if redisCfg.URL != "" {
		appOpts.Redis = &redisCfg
	}

	log := logger.NewNope()
	if !opts.quiet {
		logCfg, err := logger.LoadConfig()
		if err != nil {
			return nil, err
		}
		log = logger.NewFromConfig(logCfg, middlewares.RequestIDExtractor())
	}

	options := []unchained.Option{
		unchained.WithBundles(app.Bundles(appOpts)...),
		unchained.WithLogger(log.With(slog.String("env", string(env)))),
		unchained.WithErrorHandler(middlewares.ErrorHandler()),
		unchained.WithHealthChecks(),
	}
	if opts.configFile != "" {
		options = append(options, unchained.WithConfigFile(opts.configFile))
	}
	return unchained.CreateApp(env, options...)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
