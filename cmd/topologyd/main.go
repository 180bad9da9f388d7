package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"avtopology/internal/config"
	"avtopology/internal/monitor"
	"avtopology/internal/network"
	"avtopology/internal/scheduler"
	"avtopology/internal/script"
	"avtopology/internal/server"
	"avtopology/internal/transport"
	"avtopology/internal/transport/bridge"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	if cfg.LogLevel != "" {
		level, err := zerolog.ParseLevel(cfg.LogLevel)
		if err != nil {
			log.Fatal().Err(err).Str("level", cfg.LogLevel).Msg("invalid log level")
		}
		zerolog.SetGlobalLevel(level)
	}

	var client transport.Client
	if cfg.Bridge.URL != "" {
		c, err := bridge.New(cfg.Bridge.URL,
			bridge.WithRateLimit(rate.Limit(cfg.Bridge.RateLimit), cfg.Bridge.Burst),
			bridge.WithTimeout(cfg.Bridge.Timeout),
			bridge.WithBackoff(cfg.Bridge.MinBackoff, cfg.Bridge.MaxBackoff),
		)
		if err != nil {
			log.Fatal().Err(err).Msg("configuring bridge")
		}
		client = c
		log.Info().Str("url", cfg.Bridge.URL).Msg("bridge configured")
	}

	th := scheduler.New(scheduler.WithName("topology"))
	// stopped explicitly, after the network is disposed
	th.Start(context.Background())
	defer th.Stop()

	n, err := network.Build(ctx, th, cfg, client)
	if err != nil {
		log.Fatal().Err(err).Msg("building network")
	}
	defer th.Execute(n.Dispose)

	if cfg.ScriptPath != "" {
		runScript(th, n, cfg.ScriptPath)
	}

	m := monitor.New(n)
	m.Start(ctx)
	defer m.Stop()

	var opts []server.Option
	if cfg.CORSOrigin != "" {
		opts = append(opts, server.WithCORSOrigin(cfg.CORSOrigin))
	}
	opts = append(opts, server.WithMonitor(m))
	srv := server.NewServer(n, opts...)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Int("devices", len(cfg.Devices)).Msg("topology listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}

// runScript applies a startup script to the mock devices. A failing line
// stops the script but not the host.
func runScript(s scheduler.Scheduler, n *network.Network, path string) {
	f, err := os.Open(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("opening startup script")
		return
	}
	defer f.Close()

	var executed int
	s.Execute(func() { executed, err = script.Run(f, n) })
	if err != nil {
		log.Error().Err(err).Str("path", path).Int("executed", executed).Msg("startup script failed")
		return
	}
	log.Info().Str("path", path).Int("executed", executed).Msg("startup script applied")
}
