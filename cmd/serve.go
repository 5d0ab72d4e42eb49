package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"tweetwatch/internal/httpapi"
	"tweetwatch/worker"

	"github.com/spf13/cobra"
)

var noLoop bool

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Run the polling loop and the HTTP trigger server",
	PreRunE: requireConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		a, err := buildApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		ws := []worker.Worker{}
		if !noLoop {
			slog.Info("starting polling loop", "interval", cfg.Schedule.Interval, "cron", cfg.Schedule.Cron)
			ws = append(ws, a.Scheduler)
		}
		if cfg.HTTP.Addr != "" {
			ws = append(ws, &httpapi.Server{
				Addr:          cfg.HTTP.Addr,
				Runner:        a.Scheduler,
				Replier:       a.Line,
				ChannelSecret: cfg.Line.ChannelSecret,
				Status: func() any {
					return map[string]string{
						"state":     a.Scheduler.State().String(),
						"watermark": a.Scheduler.Watermark.LastSeen(),
					}
				},
			})
		}
		if len(ws) == 0 {
			slog.Warn("nothing to run: loop disabled and http.addr empty")
			return nil
		}

		mgr := worker.NewManager(ws...)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Signal handling for systemd
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			s := <-sigc
			slog.Info("received signal, shutting down", "signal", s.String())
			cancel()
		}()

		return mgr.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&noLoop, "no-loop", false, "serve HTTP triggers only, without the polling loop")
	rootCmd.AddCommand(serveCmd)
}
