package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const defaultTestMessage = "測試訊息"

// sendCmd pushes a text message to the configured group, for checking credentials.
var sendCmd = &cobra.Command{
	Use:   "send [text]",
	Short: "Push a test message to the LINE group",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg.Line.ChannelToken == "" || cfg.Line.GroupID == "" {
			return errors.New("line config missing: set line.channel_token and line.group_id (LINE_BOT_TOKEN, LINE_GROUP_ID)")
		}
		text := defaultTestMessage
		if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
			text = args[0]
		}
		lc, err := newLineClient(cfg)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := lc.Push(ctx, cfg.Line.GroupID, text); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Sent message to %s\n", cfg.Line.GroupID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
}
