package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gehuybre/investeringsuitgaven-gemeenten/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "gemeenten",
	Short: "Municipal investment data reconciliation",
	Long:  "Parses the published municipal and province investment exports, resolves fusions onto canonical entities, dissolves their geometry and cross-checks the independently reported totals.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
