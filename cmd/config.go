package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var checkConfig bool

// configCmd prints the effective configuration with secrets masked.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		out, err := yaml.Marshal(cfg.Redacted())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		if checkConfig {
			if err := cfg.Validate(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "# configuration is valid")
		}
		return nil
	},
}

func init() {
	configCmd.Flags().BoolVar(&checkConfig, "check", false, "also validate the configuration")
	rootCmd.AddCommand(configCmd)
}
