/*
dircd bridges a remote chat platform onto plain IRC: it mirrors the platform's
servers and channels into a local IRC server, relays messages both ways, and
projects presence changes as channel voice modes.

This file is the composition root: it loads configuration, wires the
directory, relay, gateway, IRC listener, and optional status API together,
and coordinates graceful shutdown on SIGINT/SIGTERM.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"dircd/internal/bridge"
	"dircd/internal/configs"
	"dircd/internal/directory"
	"dircd/internal/handler"
	"dircd/internal/pkg/logx"
	"dircd/internal/platform"
)

// gatewayRetryDelay is the pause between gateway reconnect attempts.
const gatewayRetryDelay = 10 * time.Second

func main() {
	configPath := flag.String("c", "config.yaml", "path to the YAML configuration file")
	debug := flag.Bool("d", false, "enable debug logging (overrides the config file)")
	flag.Parse()

	cfg, err := configs.LoadConfig(*configPath)
	if err != nil {
		logx.InitGlobalLogger(*debug)
		logx.Fatal(err, "Failed to load configuration.")
	}
	if *debug {
		cfg.Debug = true
	}
	logx.InitGlobalLogger(cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dir := directory.New()
	registry := bridge.NewRegistry()
	relay := bridge.NewRelay(cfg, dir, registry)
	gateway := platform.NewGateway(cfg, dir, relay)
	server := bridge.NewServer(cfg, dir, registry, gateway)

	if err := server.Start(ctx); err != nil {
		logx.Fatal(err, "Failed to start IRC listener.")
	}

	go runGateway(ctx, gateway)

	var httpSrv *http.Server
	if cfg.HTTPPort != 0 {
		httpSrv = &http.Server{
			Addr: cfg.HTTPAddr(),
			Handler: handler.NewRouter(&handler.AppDeps{
				Config:    cfg,
				Directory: dir,
				Registry:  registry,
			}),
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			logx.Info("Status API listening.", "addr", cfg.HTTPAddr())
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logx.Error(err, "Status API server failed.")
			}
		}()
	}

	<-ctx.Done()
	logx.Info("Shutdown signal received.")

	if httpSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logx.Error(err, "Status API shutdown failed.")
		}
		cancel()
	}

	server.Wait()
	logx.Info("Bridge stopped.")
}

// runGateway keeps the platform connection alive for the process lifetime,
// reconnecting after a delay whenever the gateway drops. Connected sessions
// already received a NOTICE about the loss from the gateway itself.
func runGateway(ctx context.Context, gateway *platform.Gateway) {
	for {
		err := gateway.Run(ctx)
		if ctx.Err() != nil {
			return
		}
		logx.Error(err, "Gateway connection ended, reconnecting.", "delay", gatewayRetryDelay.String())

		select {
		case <-ctx.Done():
			return
		case <-time.After(gatewayRetryDelay):
		}
	}
}
