package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var provincesOutDir string

var provincesCmd = &cobra.Command{
	Use:   "provinces",
	Short: "Check the province totals against the per-domain and per-account exports",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if provincesOutDir != "" {
			cfg.Output.Dir = provincesOutDir
		}

		p, err := initPipeline(cfg, "provinces")
		if err != nil {
			return err
		}

		rep, err := p.Provinces(ctx)
		if err != nil {
			return err
		}
		if err := p.WriteProvinces(ctx, rep); err != nil {
			return err
		}

		zap.L().Info("provinces complete",
			zap.String("run_id", p.RunID()),
			zap.Bool("all_match", rep.Validation.AllMatch),
		)
		return nil
	},
}

func init() {
	provincesCmd.Flags().StringVar(&provincesOutDir, "out", "", "output directory (default from config)")
	rootCmd.AddCommand(provincesCmd)
}
