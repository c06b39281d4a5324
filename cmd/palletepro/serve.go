package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/palletepro/palletepro/internal/httpapi"
	"github.com/palletepro/palletepro/pkg/httpserver"
	"github.com/palletepro/palletepro/pkg/logger"
	"github.com/palletepro/palletepro/pkg/ratelimiter"
)

func newServeCmd(envFiles *[]string) *cobra.Command {
	var autoMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(*envFiles)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			a, err := newApp(ctx, cfg, log, autoMigrate)
			if err != nil {
				log.ErrorContext(ctx, "failed to start", logger.Error(err))
				return err
			}
			defer a.Close()

			var limiter *ratelimiter.Limiter
			if cfg.RateLimit.Enabled {
				if limiter, err = ratelimiter.New(cfg.RateLimit); err != nil {
					return err
				}
				go limiter.RunSweeper(ctx, time.Minute)
			}

			handler := httpapi.New(httpapi.Deps{
				Subscriptions: a.subs,
				Records:       a.records,
				Verifier:      a.verifier,
				Hub:           a.hub,
				Metrics:       a.metrics,
				RateLimiter:   limiter,
				Webhook:       cfg.PushinPay,
				Checks:        a.checks,
				Location:      a.loc,
				PollInterval:  cfg.PaymentPollInterval,
				Logger:        log.With(logger.Component("http")),
			})

			srv := httpserver.New(cfg.HTTP,
				httpserver.WithLogger(log),
				httpserver.WithOnShutdown(a.hub.Close),
			)
			log.InfoContext(ctx, "starting server",
				"addr", cfg.HTTP.Addr,
				"version", Version,
				"data_store", cfg.DataStore,
			)
			return srv.Run(ctx, handler)
		},
	}
	cmd.Flags().BoolVar(&autoMigrate, "migrate", false, "apply database migrations before serving")
	return cmd
}
