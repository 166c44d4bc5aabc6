package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"econboard/internal/config"
	"econboard/internal/feed"
	appLog "econboard/internal/log"
	"econboard/internal/parse"
	"econboard/internal/refresh"
	"econboard/internal/store"
	"econboard/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	once       bool
}

func main() {
	appLog.Info("econboard starting", "version", "0.1.0")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"refresh", conf.RefreshCron,
		"default_window", conf.DefaultWindow,
		"api_base_url", conf.API.BaseURL,
		"api_model", conf.API.Model,
		"once", flags.once,
	)
	if conf.API.Key == "" {
		appLog.Warn("no API key configured; upstream queries will likely fail",
			"env", config.APIKeyEnv)
	}

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	client := feed.NewClient(feed.ClientConfig{
		BaseURL: conf.API.BaseURL,
		Model:   conf.API.Model,
		Key:     conf.API.Key,
		Timeout: conf.API.Timeout(),
	})
	parser := parse.New(parse.SessionHours{
		PreMarket:  *conf.SessionHours.PreMarket,
		PostMarket: *conf.SessionHours.PostMarket,
	})
	st := store.New()
	runner := refresh.NewRunner(client, parser, st, conf.Location())

	// Initial load. A failure is recorded in the store and surfaced as the
	// error view; the server still starts so the operator sees the state.
	if err := runner.Refresh(ctx); err != nil && flags.once {
		os.Exit(1)
	}
	if flags.once {
		appLog.Info("single refresh completed, exiting")
		return
	}

	cronRunner, err := runner.StartCron(ctx, conf.RefreshCron)
	if err != nil {
		appLog.Error("invalid refresh cron spec", err, "cron", conf.RefreshCron)
		os.Exit(1)
	}
	runner.StartTickers(ctx)

	server := web.NewServer(conf, st, runner)
	go func() {
		<-ctx.Done()
		cronStop := cronRunner.Stop()
		<-cronStop.Done()
		if err := server.Shutdown(); err != nil {
			appLog.Error("server shutdown failed", err)
		}
	}()

	if err := server.Listen(); err != nil {
		appLog.Error("server stopped", err)
		os.Exit(1)
	}

	// Give in-flight log writes a moment to flush.
	time.Sleep(100 * time.Millisecond)
	appLog.Info("econboard exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/econboard/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one fetch+parse cycle and exit")

	flag.Parse()

	return cfg
}
