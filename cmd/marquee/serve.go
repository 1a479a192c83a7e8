package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/marquee-kit/marquee"
	"github.com/marquee-kit/marquee/internal/config"
	"github.com/marquee-kit/marquee/internal/logging"
	"github.com/marquee-kit/marquee/pkg/adapters/redis"
	"github.com/marquee-kit/marquee/pkg/kit"
	"github.com/marquee-kit/marquee/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Slack listener with a demo counter surface",
	Long:  `Starts the Marquee engine with a built-in demo counter component, exposing the Slack interaction and event endpoints over HTTP. Configuration is read from marquee.toml or MARQUEE_* environment variables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.Slack.Token == "" {
			return fmt.Errorf("slack token is required (set MARQUEE_SLACK_TOKEN)")
		}

		logger := logging.New(logging.ParseLevel(cfg.Logging.Level))

		opts := []marquee.Option{marquee.WithLogger(logger)}

		if cfg.Redis.Addr != "" {
			store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
			defer store.Close()
			opts = append(opts, marquee.WithStore(store))
			if cfg.Redis.Lock {
				opts = append(opts, marquee.WithLocker(redis.NewLocker(store.Client(), "marquee:lock:")))
			}
		}

		reg := prometheus.NewRegistry()
		if cfg.Server.Metrics {
			opts = append(opts, marquee.WithMetrics(observability.NewMetrics(reg)))
		}

		app := marquee.New(cfg.Slack.Token, cfg.Slack.SigningSecret, opts...)
		app.RegisterMessage("counter", counterDemo)

		r := chi.NewRouter()
		r.Mount("/", app.Handler())
		if cfg.Server.Metrics {
			r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		}

		srv := &http.Server{
			Addr:    cfg.Server.Addr,
			Handler: r,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("listener started", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "error", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("close server: %w", err)
				}
			}
			logger.Info("listener stopped")
		}
		return nil
	},
}

// counterDemo is the surface served by default so a fresh install can be
// exercised end to end with `marquee post` and a couple of clicks.
func counterDemo(c *marquee.Context) kit.Element {
	n, setN := marquee.UseState(c, "count", 0)
	return &kit.Message{
		Text: "Counter",
		Blocks: []kit.Element{
			&kit.Section{Text: kit.Mrkdwn(fmt.Sprintf("Clicked *%d* times", n))},
			&kit.Actions{Elements: []kit.Element{
				&kit.Button{
					Action: "increment",
					Label:  "Click me",
					OnClick: func(ctx context.Context, ev marquee.InteractionEvent) error {
						setN(n + 1)
						return nil
					},
				},
			}},
		},
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
