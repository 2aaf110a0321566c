package database

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/rpupo63/plant-tag-config/config"
	"github.com/rpupo63/plant-tag-config/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

// Open connects to the store selected by DB_TYPE and migrates every model.
//
//   - memory (default): shared-cache in-memory sqlite, gone when the process exits
//   - sqlite: file at SQLITE_PATH
//   - postgres: DSN from DATABASE_URL
//   - supa: Supabase credentials from SUPABASE_DB_*
//
// For postgres and supa, DB_READ_REPLICAS lists DSNs that serve reads.
func Open(c map[string]string) (*gorm.DB, error) {
	dbType := strings.ToLower(config.GetString(c, "DB_TYPE", "memory"))
	gormConfig := &gorm.Config{
		PrepareStmt: false,
		Logger:      newGormLogger(config.GetString(c, "DB_LOG_LEVEL", "warn")),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch dbType {
	case "memory":
		return OpenInMemory(config.GetString(c, "MEMORY_DB_NAME", "tagconfig"), gormConfig)
	case "sqlite":
		path := config.GetString(c, "SQLITE_PATH", "tagconfig.db")
		db, err = gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), gormConfig)
	case "postgres":
		dsn := config.GetString(c, "DATABASE_URL", "")
		if dsn == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for DB_TYPE=postgres")
		}
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), gormConfig)
	case "supa":
		connStr := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=require",
			config.GetString(c, "SUPABASE_DB_HOST", ""),
			config.GetString(c, "SUPABASE_DB_USER", ""),
			config.GetString(c, "SUPABASE_DB_PASSWORD", ""),
			config.GetString(c, "SUPABASE_DB_NAME", ""),
			config.GetString(c, "SUPABASE_DB_PORT", "5432"),
		)
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  connStr,
			PreferSimpleProtocol: true,
		}), gormConfig)
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", dbType)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to %s database: %w", dbType, err)
	}

	if replicas := config.GetList(c, "DB_READ_REPLICAS"); len(replicas) > 0 && dbType != "sqlite" {
		if err := useReadReplicas(db, replicas); err != nil {
			return nil, err
		}
	}

	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("test %s database connection: %w", dbType, err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// useReadReplicas routes queries to the replicas and writes to the primary.
func useReadReplicas(db *gorm.DB, dsns []string) error {
	replicas := make([]gorm.Dialector, len(dsns))
	for i, dsn := range dsns {
		replicas[i] = postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true})
	}
	err := db.Use(dbresolver.Register(dbresolver.Config{
		Replicas: replicas,
		Policy:   dbresolver.RandomPolicy{},
	}))
	if err != nil {
		return fmt.Errorf("register read replicas: %w", err)
	}
	return nil
}

// OpenInMemory opens a named in-memory sqlite database. Connections opened
// with the same name share one database; distinct names are isolated.
func OpenInMemory(name string, gormConfig *gorm.Config) (*gorm.DB, error) {
	if gormConfig == nil {
		gormConfig = &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	}
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("open in-memory database %s: %w", name, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open in-memory database %s: %w", name, err)
	}
	// The database lives as long as one connection stays open.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the tables of every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate models: %w", err)
	}
	return nil
}

func newGormLogger(level string) logger.Interface {
	logLevel := logger.Warn
	switch strings.ToLower(level) {
	case "silent":
		logLevel = logger.Silent
	case "error":
		logLevel = logger.Error
	case "info":
		logLevel = logger.Info
	}

	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
}
