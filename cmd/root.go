package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"tweetwatch/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	envFile string
	appCfg  config.Config
)

// rootCmd is the base command called without any subcommands.
var rootCmd = &cobra.Command{
	Use:          "tweetwatch",
	Short:        "Watch X posts and forward matches to a LINE group",
	Long:         "Polls the X recent search API for keywords or an account and pushes notifications to LINE.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// envBindings maps config keys to the environment variables they can be read from, in priority order.
var envBindings = map[string][]string{
	"x.bearer_token":      {"TWEETWATCH_X_BEARER_TOKEN", "X_BEARER_TOKEN"},
	"line.channel_token":  {"TWEETWATCH_LINE_CHANNEL_TOKEN", "LINE_BOT_TOKEN"},
	"line.channel_secret": {"TWEETWATCH_LINE_CHANNEL_SECRET", "CHANNEL_SECRET"},
	"line.group_id":       {"TWEETWATCH_LINE_GROUP_ID", "LINE_GROUP_ID"},
	"monitor.account":     {"TWEETWATCH_MONITOR_ACCOUNT", "TARGET_ACCOUNT"},
	"monitor.keywords":    {"TWEETWATCH_MONITOR_KEYWORDS", "KEYWORDS"},
	"redis.addr":          {"TWEETWATCH_REDIS_ADDR", "REDIS_ADDR"},
	"http.addr":           {"TWEETWATCH_HTTP_ADDR", "HTTP_ADDR"},
	"openai.api_key":      {"TWEETWATCH_OPENAI_API_KEY", "OPENAI_API_KEY"},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
}

func initConfig() {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "error reading %s: %v\n", envFile, err)
		os.Exit(1)
	}

	v := viper.GetViper()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/tweetwatch")
		v.AddConfigPath("configs")
	}

	v.SetEnvPrefix("TWEETWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range envBindings {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			fmt.Fprintf(os.Stderr, "error reading config: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", v.ConfigFileUsed())
	}

	if err := v.Unmarshal(&appCfg); err != nil {
		fmt.Fprintf(os.Stderr, "error parsing config: %v\n", err)
		os.Exit(1)
	}

	appCfg.FillDefaults()
	setupLogging(appCfg.App.LogLevel)
}

func setupLogging(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

// GetConfig exposes the loaded configuration to subcommands.
func GetConfig() config.Config {
	return appCfg
}

// requireConfig validates the configuration once before any cycle runs.
func requireConfig(cmd *cobra.Command, args []string) error {
	if err := appCfg.Validate(); err != nil {
		slog.Error("config: invalid", "error", err)
		return err
	}
	return nil
}
