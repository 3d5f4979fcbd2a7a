package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/socialmesh/socialmesh/actors"
	"github.com/socialmesh/socialmesh/config"
	"github.com/socialmesh/socialmesh/runtime"
	"github.com/socialmesh/socialmesh/snapshot"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configFile := flag.String("config", "", "configuration file (yaml or json)")
	flag.Parse()

	// .env is optional; environment overrides still apply without it.
	_ = godotenv.Load()

	loader := config.NewLoader()

	var cfg *config.Config
	var watcher *config.Watcher
	var err error
	if *configFile != "" {
		cfg, err = loader.LoadFromFile(*configFile)
	} else {
		cfg, err = loader.AutoLoad()
	}
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger, level, err := buildLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("starting",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment.String()),
		zap.String("storage", string(cfg.Storage.Backend)))

	store, err := openStore(cfg.Storage)
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}
	defer store.Close()

	sys := runtime.NewSystem(store, runtime.Options{
		MailboxSize:    cfg.Actor.MailboxSize,
		ProcessTimeout: cfg.Actor.ProcessTimeout,
	}, logger)

	actors.Register(sys, actors.Config{
		MaxComments:      cfg.Limits.MaxComments,
		MaxChatMessages:  cfg.Limits.MaxChatMessages,
		RegistryCapacity: cfg.Limits.RegistryCapacity,
		IndexShards:      cfg.Limits.IndexShards,
	})

	if *configFile != "" {
		watcher, err = config.NewWatcher(*configFile, loader, logger)
		if err != nil {
			return fmt.Errorf("watch configuration: %w", err)
		}
		watcher.OnConfigChange(func(_, newCfg *config.Config) {
			if lvl, perr := zapcore.ParseLevel(string(newCfg.Log.Level)); perr == nil {
				level.SetLevel(lvl)
			}
		})
		if err := watcher.Start(); err != nil {
			return fmt.Errorf("start config watcher: %w", err)
		}
		defer watcher.Stop()
	}

	stopSweep := startFanoutSweep(sys, cfg.Actor.FanoutSweep, logger)
	defer stopSweep()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Actor.ShutdownTimeout)
	defer cancel()
	return sys.Shutdown(ctx)
}

// buildLogger configures zap from the log section; the returned level
// can be adjusted at runtime by the config watcher.
func buildLogger(cfg config.LogConfig) (*zap.Logger, zap.AtomicLevel, error) {
	lvl, err := zapcore.ParseLevel(string(cfg.Level))
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := zcfg.Build()
	if err != nil {
		return nil, zap.AtomicLevel{}, err
	}
	return logger, zcfg.Level, nil
}

func openStore(cfg config.StorageConfig) (snapshot.Store, error) {
	switch cfg.Backend {
	case config.StorageFile:
		return snapshot.NewFileStore(cfg.Dir)
	case config.StoragePostgres:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return snapshot.NewPostgresStore(ctx, cfg.DSN)
	default:
		return snapshot.NewMemoryStore(), nil
	}
}

// startFanoutSweep periodically drains every live fan-out coordinator
// so deferred post updates reach timelines without an explicit
// processPendingUpdates call.
func startFanoutSweep(sys *runtime.System, interval time.Duration, logger *zap.Logger) func() {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				for _, addr := range sys.Addresses() {
					if addr.Kind != actors.KindFanout {
						continue
					}
					if err := sys.Tell(addr, actors.FanoutProcess{}); err != nil {
						logger.Warn("fanout sweep send failed",
							zap.String("actor", addr.String()), zap.Error(err))
					}
				}
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(done)
	}
}
