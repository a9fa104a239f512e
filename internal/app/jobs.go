package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, err := time.LoadLocation(a.appConfig.System.Location)
	if err != nil {
		loc = time.UTC
	}
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	if days := a.appConfig.Recommend.HistoryRetentionDays; days > 0 {
		_, err = a.sched.AddFunc("@daily", func() {
			a.SchedPurgeExpiredTask(days)
		})
		if err != nil {
			zap.S().Errorf("init job error %s", err.Error())
		}
	}

	a.sched.Start()
}

// SchedPurgeExpiredTask removes recommendation history past retention
func (a *Application) SchedPurgeExpiredTask(days int) {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	n, err := a.PurgeExpired(days)
	if err != nil {
		zap.L().Error("purge expired recommendations failed", zap.Error(err))
		return
	}
	if n > 0 {
		zap.L().Info("purged expired recommendations", zap.Int("count", n), zap.Int("days", days))
	}
}

// PurgeExpired deletes every recommendation set older than days
func (a *Application) PurgeExpired(days int) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	return a.recommender.PurgeOlderThan(ctx, time.Now().Add(-time.Hour*24*time.Duration(days)))
}
