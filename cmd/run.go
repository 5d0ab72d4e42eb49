package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"tweetwatch/worker"

	"github.com/spf13/cobra"
)

var runAsEvent bool

// runCmd performs a single dispatch cycle, the way an HTTP or event trigger would.
var runCmd = &cobra.Command{
	Use:     "run",
	Short:   "Run one dispatch cycle and print the result",
	PreRunE: requireConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(GetConfig())
		if err != nil {
			return err
		}
		defer a.Close()

		trigger := worker.TriggerCLI
		if runAsEvent {
			trigger = worker.TriggerEvent
		}
		res, err := a.Scheduler.RunOnce(context.Background(), trigger)
		if runAsEvent {
			// Event mode surfaces the failure as a non-zero exit so the caller can retry.
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		}
		resp := worker.NewResponse(res, err)
		if err := printJSON(cmd, resp); err != nil {
			return err
		}
		if resp.StatusCode != 200 {
			return fmt.Errorf("cycle failed with status %d", resp.StatusCode)
		}
		return nil
	},
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func init() {
	runCmd.Flags().BoolVar(&runAsEvent, "event", false, "return an error on failure instead of a 500 response")
	rootCmd.AddCommand(runCmd)
}
