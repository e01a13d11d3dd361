package app

import (
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
	"github.com/tiendaviva/tienda/internal/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Settings categories and keys stored in sys_config
const (
	SettingsTypeStore = "store"

	KeyStoreName         = "StoreName"
	KeyLowStockThreshold = "LowStockThreshold"
	KeyCurrency          = "Currency"
	KeyContactEmail      = "ContactEmail"
)

// StoreSettings is the typed view of the "store" settings category
type StoreSettings struct {
	StoreName         string `mapstructure:"StoreName"`
	LowStockThreshold int    `mapstructure:"LowStockThreshold"`
	Currency          string `mapstructure:"Currency"`
	ContactEmail      string `mapstructure:"ContactEmail"`
}

// SettingsManager reads sys_config rows with a small cache. Admin updates
// call Invalidate to force a reload.
type SettingsManager struct {
	db    *gorm.DB
	mu    sync.RWMutex
	cache map[string]map[string]string
}

func NewSettingsManager(db *gorm.DB) *SettingsManager {
	return &SettingsManager{db: db, cache: map[string]map[string]string{}}
}

func (m *SettingsManager) category(ctype string) map[string]string {
	m.mu.RLock()
	values, ok := m.cache[ctype]
	m.mu.RUnlock()
	if ok {
		return values
	}

	var rows []domain.SysConfig
	if err := m.db.Where("type = ?", ctype).Find(&rows).Error; err != nil {
		zap.L().Error("settings query failed", zap.String("type", ctype), zap.Error(err))
		return map[string]string{}
	}
	values = make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Name] = row.Value
	}

	m.mu.Lock()
	m.cache[ctype] = values
	m.mu.Unlock()
	return values
}

// Invalidate drops the cached values for a settings category
func (m *SettingsManager) Invalidate(ctype string) {
	m.mu.Lock()
	delete(m.cache, ctype)
	m.mu.Unlock()
}

func (m *SettingsManager) GetString(ctype, name string) string {
	return m.category(ctype)[name]
}

func (m *SettingsManager) GetInt64(ctype, name string) int64 {
	return cast.ToInt64(m.category(ctype)[name])
}

func (m *SettingsManager) GetBool(ctype, name string) bool {
	return cast.ToBool(m.category(ctype)[name])
}

// StoreSettings decodes the whole "store" category into its typed form
func (m *SettingsManager) StoreSettings() StoreSettings {
	raw := m.category(SettingsTypeStore)
	var out StoreSettings
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
	})
	if err == nil {
		if err := decoder.Decode(raw); err != nil {
			zap.L().Warn("store settings decode failed", zap.Error(err))
		}
	}
	return out
}
