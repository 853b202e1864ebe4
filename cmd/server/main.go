package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/engine"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/engine/handlers"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/infrastructure/storage"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/server"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/internal/version"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/logger"
	"github.com/TheSlothFather/Character-Sheet-Project-sub001/pkg/rules"
)

// Config - конфигурация процесса из переменных окружения.
type Config struct {
	Port      string `env:"CS_PORT" envDefault:"8080"`
	RulesPath string `env:"CS_RULES_PATH"`
	DBPath    string `env:"CS_DB_PATH" envDefault:"aftermath.db"`
	Seed      int64  `env:"CS_SEED" envDefault:"0"`
}

func init() {
	logger.Init()
}

func main() {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		logger.Log.Fatal("Failed to parse environment config: ", err)
	}

	logger.Log.Info("Starting combat session server...")
	logger.Log.Info(version.String())

	// 1. Таблица правил: дефолты, опционально перекрытые YAML-файлом
	tbl, err := rules.Load(cfg.RulesPath)
	if err != nil {
		logger.Log.Fatal("Failed to load rules: ", err)
	}
	if cfg.RulesPath != "" {
		logger.Log.Infof("Rules loaded from %s", cfg.RulesPath)
	}

	// 2. Архив ран (пустой путь = персистентность выключена)
	var archive handlers.WoundArchive
	if cfg.DBPath != "" {
		store, err := storage.Open(cfg.DBPath)
		if err != nil {
			logger.Log.Fatal("Failed to open aftermath store: ", err)
		}
		defer store.Close()
		archive = store
		logger.Log.Infof("Aftermath store: %s", cfg.DBPath)
	}

	// 3. Мастер-сид бросков: 0 = случайный
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
		logger.Log.Infof("🎲 Using random master seed: %d", seed)
	} else {
		logger.Log.Infof("🎲 Using explicit master seed: %d", seed)
	}

	service := engine.NewService(tbl, archive, seed)

	// Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	srv := server.New(service, cfg.Port)
	go func() {
		if err := srv.Run(); err != nil {
			logger.Log.Fatal("Server start error: ", err)
		}
	}()

	<-stop
	logger.Log.Info("Shutting down...")
	service.Shutdown()
	logger.Log.Info("Done.")
}
