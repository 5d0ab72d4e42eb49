package cmd

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"tweetwatch/internal/redisclient"
	"tweetwatch/internal/storage"

	"github.com/spf13/cobra"
)

var historyLimit int

// historyCmd lists recent cycles recorded in Redis.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent dispatch cycles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg.Redis.Addr == "" {
			return errors.New("redis.addr is not set; cycle history is disabled")
		}
		rdb := redisclient.New(cfg.Redis)
		defer rdb.Close()
		store := storage.NewRedisStore(rdb, cfg.Redis.HistorySize)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		recs, err := store.RecentCycles(ctx, historyLimit)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no cycles recorded")
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "STARTED\tTRIGGER\tOK\tPROCESSED\tWATERMARK\tMESSAGE")
		for _, r := range recs {
			msg := r.Result.Message
			if r.Error != "" {
				msg = r.Error
			}
			fmt.Fprintf(tw, "%s\t%s\t%t\t%d\t%s\t%s\n",
				r.StartedAt.Local().Format(time.DateTime), r.Trigger, r.Result.Success,
				r.Result.ProcessedCount, r.Watermark, msg)
		}
		return tw.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of cycles to show")
	rootCmd.AddCommand(historyCmd)
}
