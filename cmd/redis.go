package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tweetwatch/internal/redisclient"

	"github.com/spf13/cobra"
)

// redisCmd groups utilities for the cycle history store.
var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Redis utilities",
}

// pingCmd checks that the cycle history backend is reachable.
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Ping the history Redis and print PONG",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg.Redis.Addr == "" {
			return errors.New("redis.addr is not set (REDIS_ADDR)")
		}

		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		res, err := rdb.Ping(ctx).Result()
		if err != nil {
			return fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), res)
		return nil
	},
}

func init() {
	redisCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(redisCmd)
}
