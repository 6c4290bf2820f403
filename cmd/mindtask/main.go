package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Joseda-hg/mindtask/internal/config"
	"github.com/Joseda-hg/mindtask/internal/db"
	"github.com/Joseda-hg/mindtask/internal/logging"
	"github.com/Joseda-hg/mindtask/internal/seed"
	"github.com/Joseda-hg/mindtask/internal/tui"
	"github.com/Joseda-hg/mindtask/internal/web"
)

func main() {
	configPathFlag := flag.String("config", "", "config file path")
	dbPathFlag := flag.String("db", "", "sqlite db path")
	webFlag := flag.Bool("web", false, "enable web server")
	webOnlyFlag := flag.Bool("web-only", false, "run web server only")
	portFlag := flag.Int("port", 0, "web server port")
	seedFlag := flag.Bool("seed", false, "load sample notes and tasks into an empty database")
	debugFlag := flag.Bool("debug", false, "log at debug level")
	flag.Parse()

	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfgPath, err := resolveConfigPath(*configPathFlag)
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	if *dbPathFlag != "" {
		cfg.DBPath = *dbPathFlag
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(filepath.Dir(cfgPath), "mindtask.db")
	}
	if *webFlag || *webOnlyFlag {
		cfg.WebEnabled = true
	}
	if *portFlag != 0 {
		cfg.WebPort = *portFlag
	}
	if *debugFlag {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(cfg, cfgPath, *webOnlyFlag)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := openStore(cfg.DBPath)
	if err != nil {
		logger.Fatal("open store", zap.String("path", cfg.DBPath), zap.Error(err))
	}

	if *seedFlag {
		seeded, err := seed.Load(context.Background(), store, time.Now(), logger.Named("seed"))
		if err != nil {
			logger.Fatal("seed store", zap.Error(err))
		}
		logger.Info("seed finished", zap.Bool("inserted", seeded))
	}

	if cfg.WebEnabled {
		ttl, err := cfg.CacheDuration()
		if err != nil {
			logger.Fatal("cache ttl", zap.Error(err))
		}
		addr := fmt.Sprintf(":%d", cfg.WebPort)
		handler := web.NewServer(store,
			web.WithLogger(logger.Named("web")),
			web.WithCacheTTL(ttl),
		).Handler()

		if *webOnlyFlag {
			logger.Info("web server running", zap.String("url", "http://localhost"+addr))
			if err := http.ListenAndServe(addr, handler); err != nil {
				logger.Fatal("web server", zap.Error(err))
			}
			return
		}

		go func() {
			logger.Info("web server running", zap.String("url", "http://localhost"+addr))
			if err := http.ListenAndServe(addr, handler); err != nil {
				logger.Error("web server", zap.Error(err))
			}
		}()
	}

	if err := tui.Run(store, logger.Named("tui")); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return config.DefaultConfigPath()
}

// newLogger keeps the console quiet while the terminal UI owns the screen and
// sends its lines to a log file next to the config instead.
func newLogger(cfg config.Config, cfgPath string, webOnly bool) (*zap.Logger, error) {
	opts := logging.Options{Level: cfg.LogLevel, File: cfg.LogFile}
	if cfg.Debug {
		opts.Level = "debug"
	}
	if !webOnly {
		opts.Console = io.Discard
		if opts.File == "" {
			opts.File = filepath.Join(filepath.Dir(cfgPath), "mindtask.log")
		}
	}
	return logging.New(opts)
}

func openStore(dbPath string) (*db.Store, error) {
	if err := config.EnsureDir(dbPath); err != nil {
		return nil, err
	}

	sqlDB, err := db.Open(dbPath)
	if err != nil {
		return nil, err
	}

	return db.NewStore(sqlDB), nil
}
