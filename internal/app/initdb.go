package app

import (
	"time"

	"github.com/talkincode/slopeselector/internal/domain"
	"go.uber.org/zap"
)

// checkStores initializes the default retailer rules used to name store links
func (a *Application) checkStores() {
	for _, r := range domain.DefaultStoreRules {
		var count int64
		a.gormDB.Model(&domain.StoreRule{}).Where("pattern = ?", r.Pattern).Count(&count)
		if count == 0 {
			r.CreatedAt = time.Now()
			r.UpdatedAt = time.Now()
			if err := a.gormDB.Create(&r).Error; err != nil {
				zap.L().Error("failed to create default store rule", zap.String("pattern", r.Pattern), zap.Error(err))
			} else {
				zap.L().Info("initialized default store rule", zap.String("pattern", r.Pattern), zap.String("name", r.Name))
			}
		}
	}
}
