package app

import (
	"github.com/robfig/cron/v3"
	"github.com/talkincode/slopeselector/config"
	"github.com/talkincode/slopeselector/internal/recommend"
	"gorm.io/gorm"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// RecommenderProvider provides the recommendation service
type RecommenderProvider interface {
	Recommender() *recommend.Service
	// AIConfigured reports whether the AI endpoint has credentials
	AIConfigured() bool
}

// AppContext combines all provider interfaces for full application context
// Handlers should depend on specific providers or this combined interface
type AppContext interface {
	DBProvider
	ConfigProvider
	SchedulerProvider
	RecommenderProvider

	// Application lifecycle methods
	MigrateDB(track bool) error
	InitDb()
	DropAll()
	// PurgeExpired deletes recommendation sets older than the retention window
	PurgeExpired(days int) (int, error)
}
