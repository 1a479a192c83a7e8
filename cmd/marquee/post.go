package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marquee-kit/marquee"
	"github.com/marquee-kit/marquee/internal/config"
	"github.com/marquee-kit/marquee/internal/logging"
	"github.com/marquee-kit/marquee/pkg/adapters/redis"
)

var postCmd = &cobra.Command{
	Use:   "post <channel-id>",
	Short: "Post the demo counter surface to a channel",
	Long:  `Posts the built-in demo counter to the given channel. Pair with a running "marquee serve" on the same store so clicks reach the engine.`,
	Args:  cobra.ExactArgs(1),
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

		if cfg.Redis.Addr == "" {
			return fmt.Errorf("post requires a redis store so the serving process sees the surface (set MARQUEE_REDIS_ADDR)")
		}
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer store.Close()
		opts = append(opts, marquee.WithStore(store))

		app := marquee.New(cfg.Slack.Token, cfg.Slack.SigningSecret, opts...)
		app.RegisterMessage("counter", counterDemo)

		surfaceID, err := app.PostMessage(cmd.Context(), "counter", args[0], nil)
		if err != nil {
			return err
		}
		fmt.Printf("posted counter surface %s\n", surfaceID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(postCmd)
}
