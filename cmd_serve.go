package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/c14220110/klinik-dashboard/internal/routes"
	"github.com/c14220110/klinik-dashboard/pkg/server"
	"github.com/c14220110/klinik-dashboard/ws"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Jalankan HTTP API dan websocket dashboard",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("seed", "", "file JSON appointment yang dimuat saat start (berguna untuk store memory)")
	serveCmd.Flags().Duration("shutdown-timeout", 10*time.Second, "batas waktu graceful shutdown")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateServer(); err != nil {
		return err
	}
	ctx := cmd.Context()
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Warn("gagal menutup document store", zap.Error(err))
		}
	}()

	if path, _ := cmd.Flags().GetString("seed"); path != "" {
		n, err := seedFile(ctx, store, path, false)
		if err != nil {
			return err
		}
		log.Info("appointment dimuat", zap.Int("count", n), zap.String("file", path))
	}

	hub := ws.NewHub(log.Named("ws"))
	e := server.New(log.Named("http"))
	pool := routes.Init(e, store, hub, cfg, log)
	defer pool.Close()

	timeout, _ := cmd.Flags().GetDuration("shutdown-timeout")
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error { return server.Serve(gctx, e, ":"+cfg.Port, timeout, log) })
	return g.Wait()
}
