package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tiendaviva/tienda/internal/domain"
	"github.com/tiendaviva/tienda/internal/webserver"
	"github.com/tiendaviva/tienda/pkg/common"
)

type settingPayload struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

func registerSettingsRoutes() {
	webserver.ApiGET("/system/settings", listSettings)
	webserver.ApiPUT("/system/settings", updateSetting)
}

func listSettings(c echo.Context) error {
	db := GetDB(c).Model(&domain.SysConfig{})
	if ctype := strings.TrimSpace(c.QueryParam("type")); ctype != "" {
		db = db.Where("type = ?", ctype)
	}
	var rows []domain.SysConfig
	if err := db.Order("type, sort, name").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query settings", err.Error())
	}
	return ok(c, rows)
}

func updateSetting(c echo.Context) error {
	var payload settingPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse setting", err.Error())
	}
	payload.Type = strings.TrimSpace(payload.Type)
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Type == "" || payload.Name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Type and name are required", nil)
	}

	db := GetDB(c)
	var row domain.SysConfig
	err := db.Where("type = ? and name = ?", payload.Type, payload.Name).First(&row).Error
	if err != nil {
		row = domain.SysConfig{
			ID:        common.UUIDint64(),
			Type:      payload.Type,
			Name:      payload.Name,
			Value:     payload.Value,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := db.Create(&row).Error; err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create setting", err.Error())
		}
	} else {
		if err := db.Model(&domain.SysConfig{}).Where("id = ?", row.ID).
			Updates(map[string]interface{}{"value": payload.Value, "updated_at": time.Now()}).Error; err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update setting", err.Error())
		}
		row.Value = payload.Value
	}

	appCtx.InvalidateSettings(payload.Type)
	return ok(c, row)
}
