package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/egannguyen/earphones-support/internal/action"
	delivery "github.com/egannguyen/earphones-support/internal/delivery/http"
	"github.com/egannguyen/earphones-support/internal/observability"
	"github.com/egannguyen/earphones-support/internal/service"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and action server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			h := delivery.NewHandler(a.svc, action.NewRegistry(a.svc, logger), a.db, logger, delivery.HandlerConfig{
				ServiceName:       cfg.Observability.ServiceName,
				DecodeATSymbEmail: cfg.API.DecodeATSymbEmail,
			})
			httpServer := &http.Server{
				Addr:         cfg.Addr(),
				Handler:      delivery.NewRouter(h, a.metrics.Handler(), cfg.Server.RequestTimeout),
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}

			var workers []func(context.Context)
			// escalation topic -> agent desk log
			if a.broker != nil {
				workers = append(workers, func(ctx context.Context) {
					logger.Info().Str("topic", cfg.Kafka.EscalationTopic).Msg("escalation consumer started")
					a.broker.Consume(ctx, cfg.Kafka.EscalationTopic, cfg.Kafka.ConsumerGroup,
						service.NewEscalationHandler(logger.WithOperation("agent_desk")))
				})
			}

			logger.Info().Str("addr", httpServer.Addr).Str("driver", cfg.Database.Driver).Msg("HTTP server starting")
			return runServer(ctx, httpServer, cfg.Server.GracefulShutdown, logger, workers...)
		},
	}
}

// runServer serves srv and runs each worker until ctx is cancelled or the
// listener fails. It returns only after the server has shut down and every
// worker has returned, so callers may release shared resources afterwards.
func runServer(ctx context.Context, srv *http.Server, grace time.Duration, logger *observability.Logger, workers ...func(context.Context)) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, work := range workers {
		work := work
		g.Go(func() error {
			work(gctx)
			return nil
		})
	}

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")

		shutdownCtx, stop := context.WithTimeout(context.Background(), grace)
		defer stop()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
