package database

import (
	"errors"
	"log"

	"github.com/authsvc/auth-service/config"
	"github.com/authsvc/auth-service/database/model"
	"github.com/authsvc/auth-service/util/common"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// Migrate synchronizes the schema with the models.
func Migrate(d *gorm.DB) error {
	for _, m := range model.Models() {
		if err := d.AutoMigrate(m); err != nil {
			log.Printf("Error auto migrating model: %v", err)
			return err
		}
	}
	return nil
}

// Reset drops every table and recreates the schema.
func Reset(d *gorm.DB) error {
	models := model.Models()
	for i := len(models) - 1; i >= 0; i-- {
		if err := d.Migrator().DropTable(models[i]); err != nil {
			return err
		}
	}
	return Migrate(d)
}

func dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Type {
	case config.DatabaseTypeSQLite:
		return sqlite.Open(cfg.GetDSN()), nil
	case config.DatabaseTypePostgreSQL:
		return postgres.Open(cfg.GetDSN()), nil
	default:
		return nil, common.NewErrorf("unsupported database type: %s", cfg.Type)
	}
}

// Open connects to the configured database and migrates the schema.
func Open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	if err := cfg.ValidateConfig(); err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectoryExists(); err != nil {
		return nil, err
	}

	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	var gormLogger logger.Interface
	if config.IsDebug() {
		gormLogger = logger.Default
	} else {
		gormLogger = logger.Discard
	}

	c := &gorm.Config{
		Logger:         gormLogger,
		PrepareStmt:    true,
		TranslateError: true,
	}

	conn, err := gorm.Open(d, c)
	if err != nil {
		return nil, err
	}

	if cfg.IsSQLite() {
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, err
		}
		if _, err := sqlDB.Exec("PRAGMA temp_store = MEMORY;"); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}

	if err := Migrate(conn); err != nil {
		_ = Close(conn)
		return nil, err
	}
	return conn, nil
}

// InitDB opens the database and makes it available through GetDB.
func InitDB(cfg *config.DatabaseConfig) error {
	conn, err := Open(cfg)
	if err != nil {
		return err
	}
	db = conn
	return nil
}

func Close(d *gorm.DB) error {
	if d == nil {
		return nil
	}
	sqlDB, err := d.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func CloseDB() error {
	if db != nil {
		if err := Checkpoint(); err != nil {
			log.Printf("error executing checkpoint: %v", err)
		}
		return Close(db)
	}
	return nil
}

func GetDB() *gorm.DB {
	return db
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateKey reports whether err is a unique constraint violation.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// Checkpoint flushes the SQLite WAL. It is a no-op on other databases.
func Checkpoint() error {
	if db == nil || db.Dialector.Name() != "sqlite" {
		return nil
	}
	return db.Exec("PRAGMA wal_checkpoint;").Error
}
