package db

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/XBigRoad/banquet-master/internal/config"
	"github.com/XBigRoad/banquet-master/internal/models"
)

// Open connects to the configured database. Postgres connections are retried
// a few times to give the server time to come up.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gcfg := &gorm.Config{}
	if cfg.Debug {
		gcfg.Logger = logger.Default.LogMode(logger.Info)
	} else {
		gcfg.Logger = logger.Default.LogMode(logger.Warn)
	}

	switch cfg.Driver {
	case "postgres":
		var conn *gorm.DB
		var err error
		for i := 0; i < 5; i++ {
			conn, err = gorm.Open(postgres.Open(cfg.DSN()), gcfg)
			if err == nil {
				return conn, nil
			}
			log.Printf("database connect attempt %d/5 failed: %v", i+1, err)
			time.Sleep(2 * time.Second)
		}
		return nil, fmt.Errorf("connect postgres: %w", err)
	case "sqlite", "":
		if dir := filepath.Dir(cfg.Path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create data dir: %w", err)
			}
		}
		conn, err := gorm.Open(sqlite.Open(cfg.Path), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return conn, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}

// Migrate creates or updates the tables used by the service.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(&models.LocalBlob{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
