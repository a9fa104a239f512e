package database

import (
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/talkincode/slopeselector/config"
	"github.com/talkincode/slopeselector/internal/domain"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured database. SQLite file names are resolved
// below workdir/data unless they are absolute or in-memory.
func Open(cfg config.DBConfig, workdir string) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:                                   newLogger(cfg.Debug),
		DisableForeignKeyConstraintWhenMigrating: false,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var dialector gorm.Dialector
	switch cfg.Type {
	case "sqlite":
		dialector = sqlite.Open(sqliteDSN(cfg.Name, workdir))
	case "postgres", "":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			cfg.Host, cfg.Port, cfg.User, cfg.Passwd, cfg.Name, sslMode(cfg.SSLMode))
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Type, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Type == "sqlite" {
		// sqlite serialises writers, one connection avoids "database is locked"
		sqlDB.SetMaxOpenConns(1)
	} else {
		if cfg.MaxConn > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxConn)
		}
		if cfg.IdleConn > 0 {
			sqlDB.SetMaxIdleConns(cfg.IdleConn)
		}
		sqlDB.SetConnMaxLifetime(time.Hour)
	}
	return db, nil
}

// Migrate creates or updates every table of the domain
func Migrate(db *gorm.DB) error {
	return db.Migrator().AutoMigrate(domain.Tables...)
}

// DropAll removes every table of the domain, children first
func DropAll(db *gorm.DB) error {
	tables := make([]interface{}, 0, len(domain.Tables))
	for i := len(domain.Tables) - 1; i >= 0; i-- {
		tables = append(tables, domain.Tables[i])
	}
	return db.Migrator().DropTable(tables...)
}

func sqliteDSN(name, workdir string) string {
	if name == "" {
		name = "slopeselector.db"
	}
	memory := strings.Contains(name, ":memory:") || strings.Contains(name, "mode=memory")
	if !memory && !path.IsAbs(name) && !strings.HasPrefix(name, "file:") {
		dir := path.Join(workdir, "data")
		_ = os.MkdirAll(dir, 0o755)
		name = path.Join(dir, name)
	}
	sep := "?"
	if strings.Contains(name, "?") {
		sep = "&"
	}
	return name + sep + "_foreign_keys=1"
}

func sslMode(mode string) string {
	if mode == "" {
		return "disable"
	}
	return mode
}

func newLogger(debug bool) logger.Interface {
	level := logger.Silent
	if debug {
		level = logger.Info
	}
	return logger.New(zapWriter{}, logger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// zapWriter routes gorm's logger output through zap
type zapWriter struct{}

func (zapWriter) Printf(format string, args ...interface{}) {
	zap.S().Debugf(format, args...)
}
