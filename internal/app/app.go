package app

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"github.com/talkincode/slopeselector/config"
	"github.com/talkincode/slopeselector/internal/database"
	"github.com/talkincode/slopeselector/internal/domain"
	"github.com/talkincode/slopeselector/internal/gemini"
	"github.com/talkincode/slopeselector/internal/recommend"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"
)

type Application struct {
	appConfig   *config.AppConfig
	gormDB      *gorm.DB
	sched       *cron.Cron
	ai          *gemini.Client
	recommender *recommend.Service
}

// Ensure Application implements all interfaces
var (
	_ DBProvider          = (*Application)(nil)
	_ ConfigProvider      = (*Application)(nil)
	_ SchedulerProvider   = (*Application)(nil)
	_ RecommenderProvider = (*Application)(nil)
	_ AppContext          = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
}

// OverrideRecommender replaces the recommendation service (used in tests).
func (a *Application) OverrideRecommender(s *recommend.Service) {
	a.recommender = s
}

func (a *Application) Recommender() *recommend.Service {
	return a.recommender
}

func (a *Application) AIConfigured() bool {
	if a.ai == nil {
		return a.appConfig.Gemini.ApiKey != ""
	}
	return a.ai.Configured()
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

// InitLogger installs the global zap logger described by cfg
func InitLogger(cfg *config.AppConfig) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	if cfg.System.Debug {
		zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		zapConfig.OutputPaths = []string{"stdout"}
		var err error
		logger, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)
}

// Init connects the database, seeds defaults, wires the AI client and
// starts the background jobs.
func (a *Application) Init(cfg *config.AppConfig) error {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	InitLogger(cfg)

	if a.gormDB == nil {
		a.gormDB, err = database.Open(cfg.Database, cfg.System.Workdir)
		if err != nil {
			return err
		}
		zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)
	}

	if err := a.MigrateDB(false); err != nil {
		return err
	}
	a.checkStores()

	a.ai = gemini.NewClient(gemini.Config{
		BaseURL:    cfg.Gemini.BaseURL,
		Model:      cfg.Gemini.Model,
		ApiKey:     cfg.Gemini.ApiKey,
		Timeout:    cfg.GeminiTimeout(),
		MaxRetries: cfg.Gemini.MaxRetries,
		RetryDelay: cfg.GeminiRetryDelay(),
	})
	if !a.ai.Configured() {
		zap.L().Warn("GEMINI_API_KEY is not set, recommendation requests will be rejected")
	} else {
		zap.L().Info("gemini client ready", zap.String("model", a.ai.Model()))
	}
	if a.recommender == nil {
		a.recommender = recommend.NewService(recommend.NewGormRepository(a.gormDB), a.ai)
	}

	a.initJob()
	return nil
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEGUB_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	db := a.gormDB
	if track {
		db = db.Debug()
	}
	if err := database.Migrate(db); err != nil {
		zap.S().Error(err)
		return err
	}
	return nil
}

func (a *Application) DropAll() {
	if err := database.DropAll(a.gormDB); err != nil {
		zap.S().Error(err)
	}
}

func (a *Application) InitDb() {
	if err := a.ResetDB(); err != nil {
		zap.S().Error(err)
	}
}

// ResetDB drops every table, recreates the schema and seeds the defaults
func (a *Application) ResetDB() error {
	if err := database.DropAll(a.gormDB); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	if err := database.Migrate(a.gormDB); err != nil {
		return fmt.Errorf("migrate tables: %w", err)
	}
	a.checkStores()
	return nil
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		<-a.sched.Stop().Done()
	}
	if a.gormDB != nil {
		if sqlDB, err := a.gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = zap.L().Sync()
}

// Tables lists the managed tables, used by the migrate command output
func Tables() []string {
	names := make([]string, 0, len(domain.Tables))
	for _, t := range domain.Tables {
		if tn, ok := t.(interface{ TableName() string }); ok {
			names = append(names, tn.TableName())
		}
	}
	return names
}
