package app

import (
	"errors"
	"strings"
	"time"

	"github.com/tiendaviva/tienda/internal/domain"
	"github.com/tiendaviva/tienda/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (a *Application) checkSuper() {
	const superUsername = "admin"
	const defaultPassword = "tienda"

	var operator domain.SysOpr
	err := a.gormDB.Where("username = ?", superUsername).First(&operator).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := a.gormDB.Create(&domain.SysOpr{
			ID:        common.UUIDint64(),
			Realname:  "administrator",
			Mobile:    "0000",
			Email:     "N/A",
			Username:  superUsername,
			Password:  common.HashPassword(defaultPassword),
			Level:     "super",
			Status:    common.ENABLED,
			Remark:    "super",
			LastLogin: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default super admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default super admin account", zap.String("username", superUsername))
		}
		return
	case err != nil:
		zap.L().Error("failed to query super admin", zap.Error(err))
		return
	}

	if !strings.EqualFold(operator.Status, common.ENABLED) {
		if err := a.gormDB.Model(&domain.SysOpr{}).Where("id = ?", operator.ID).
			Update("status", common.ENABLED).Error; err != nil {
			zap.L().Error("failed to repair super admin account", zap.Error(err))
		}
	}
}

func (a *Application) checkSettings() {
	defaults := []domain.SysConfig{
		{Type: SettingsTypeStore, Name: KeyStoreName, Value: "Tienda Viva", Remark: "Store display name"},
		{Type: SettingsTypeStore, Name: KeyLowStockThreshold, Value: "5", Remark: "Remaining units that trigger a low stock warning"},
		{Type: SettingsTypeStore, Name: KeyCurrency, Value: "ARS", Remark: "Currency code"},
		{Type: SettingsTypeStore, Name: KeyContactEmail, Value: "hola@tiendaviva.local", Remark: "Contact email shown to shoppers"},
	}
	for _, item := range defaults {
		var existing domain.SysConfig
		err := a.gormDB.Where("type = ? and name = ?", item.Type, item.Name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			item.ID = common.UUIDint64()
			item.CreatedAt = time.Now()
			item.UpdatedAt = time.Now()
			if err := a.gormDB.Create(&item).Error; err != nil {
				zap.L().Error("failed to seed setting", zap.String("name", item.Name), zap.Error(err))
			}
		}
	}
	a.settings.Invalidate(SettingsTypeStore)
}

// checkDemoCatalog seeds a small catalog in debug mode so a fresh install
// has something to browse
func (a *Application) checkDemoCatalog() {
	if !a.appConfig.System.Debug {
		return
	}
	var count int64
	if err := a.gormDB.Model(&domain.Product{}).Count(&count).Error; err != nil || count > 0 {
		return
	}

	demo := []domain.Product{
		{
			ID:    common.UUIDint64(),
			Name:  "Remera basica",
			Price: 1500,
			Variants: domain.VariantList{
				{
					Name: "Talle",
					Type: "size",
					Options: []domain.VariantOption{
						{Label: "S", Value: "S", Stock: 10},
						{Label: "M", Value: "M", Stock: 8},
						{Label: "L", Value: "L", Stock: 4},
					},
				},
			},
			Colors: domain.ColorList{
				{Name: "Rojo", Value: "#ff0000"},
				{Name: "Negro", Value: "#000000"},
			},
			Status: common.ENABLED,
		},
		{
			ID:        common.UUIDint64(),
			Name:      "Taza",
			Price:     900,
			BaseStock: 25,
			Status:    common.ENABLED,
		},
	}
	for i := range demo {
		if err := a.gormDB.Create(&demo[i]).Error; err != nil {
			zap.L().Error("failed to seed demo product", zap.String("name", demo[i].Name), zap.Error(err))
		}
	}
	zap.L().Info("seeded demo catalog", zap.Int("products", len(demo)))
}
