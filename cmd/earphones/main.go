// Package main is the earphones-store support backend: HTTP API, action
// server and database tooling.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/egannguyen/earphones-support/internal/config"
	"github.com/egannguyen/earphones-support/internal/observability"
)

var (
	cfgFile string

	cfg    *config.Config
	logger *observability.Logger
)

var rootCmd = &cobra.Command{
	Use:   "earphones",
	Short: "Customer support backend for the earphones store",
	Long: `earphones serves the support chatbot backend: product search and
recommendations, order tracking, complaints and escalation to a human agent.

Configuration comes from --config (YAML), a .env file and the environment.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger = observability.NewLogger(observability.LogConfig{
			Level:       cfg.Observability.LogLevel,
			Format:      cfg.Observability.LogFormat,
			Output:      os.Stderr,
			ServiceName: cfg.Observability.ServiceName,
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: env vars only)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSetupDBCmd())
	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newTrackCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
