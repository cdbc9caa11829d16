package database

import (
	"fmt"

	"github.com/tech-arch1tect/invitegate/config"
	"github.com/tech-arch1tect/invitegate/services/logging"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Migration runs after AutoMigrate for schema the struct tags cannot express.
type Migration func(db *gorm.DB) error

type ModelsOption struct {
	models     []any
	migrations []Migration
}

func WithModels(models ...any) *ModelsOption {
	return &ModelsOption{models: models}
}

func (m *ModelsOption) WithMigrations(migrations ...Migration) *ModelsOption {
	m.migrations = append(m.migrations, migrations...)
	return m
}

func (m *ModelsOption) Add(models ...any) *ModelsOption {
	m.models = append(m.models, models...)
	return m
}

func ProvideDatabase(cfg config.Config, modelsOpt *ModelsOption, logger *logging.Service) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormLogLevel(cfg.Log.Level)),
	}

	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.DSN)
	case "postgres", "postgresql":
		dialector = postgres.Open(cfg.Database.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.Database.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s (supported: sqlite, postgres, mysql)", cfg.Database.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Database.Driver == "sqlite" {
		// sqlite serialises writers; one connection also keeps :memory: databases shared.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
		if err := sqlDB.Ping(); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
	}

	if cfg.Database.AutoMigrate && modelsOpt != nil {
		if len(modelsOpt.models) > 0 {
			if err := db.AutoMigrate(modelsOpt.models...); err != nil {
				return nil, fmt.Errorf("failed to auto-migrate models: %w", err)
			}
		}
		for _, migrate := range modelsOpt.migrations {
			if err := migrate(db); err != nil {
				return nil, fmt.Errorf("failed to run migration: %w", err)
			}
		}
	}

	logger.Info("database connected",
		zap.String("driver", cfg.Database.Driver),
		zap.Bool("auto_migrate", cfg.Database.AutoMigrate))

	return db, nil
}

func gormLogLevel(level string) gormlogger.LogLevel {
	if level == string(logging.Debug) {
		return gormlogger.Info
	}
	return gormlogger.Silent
}
