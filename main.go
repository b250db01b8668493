package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/c14220110/klinik-dashboard/config"
	"github.com/c14220110/klinik-dashboard/pkg/logger"
)

var (
	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "klinik-dashboard",
	Short: "Backend dashboard klinik: breakdown appointment test dan paket",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.LoadConfig()
		if store, _ := cmd.Flags().GetString("store"); store != "" {
			cfg.DocStore = store
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		log = logger.Must(cfg.AppEnv)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("store", "", "override DOC_STORE (memory, mongo, redis, mariadb)")
	rootCmd.AddCommand(serveCmd, breakdownCmd, seedCmd, createAdminCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
