package app

import (
	"time"

	"github.com/montanaflynn/stats"
	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/tiendaviva/tienda/internal/domain"
	"github.com/tiendaviva/tienda/internal/store"
	"github.com/tiendaviva/tienda/pkg/common"
	"github.com/tiendaviva/tienda/pkg/metrics"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc := time.Local
	a.sched = cron.New(cron.WithParser(cronParser), cron.WithLocation(loc))

	if _, err := a.sched.AddFunc("@every 60s", a.collectSystemMetrics); err != nil {
		zap.L().Error("failed to schedule system metrics job", zap.Error(err))
	}
	if _, err := a.sched.AddFunc("0 0 7 * * *", a.runLowStockScan); err != nil {
		zap.L().Error("failed to schedule low stock scan", zap.Error(err))
	}
	if _, err := a.sched.AddFunc("0 30 2 * * *", a.runDailySalesReport); err != nil {
		zap.L().Error("failed to schedule sales report", zap.Error(err))
	}
}

func (a *Application) collectSystemMetrics() {
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		metrics.Record(metrics.SystemCPUUsage, percents[0])
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		metrics.Record(metrics.SystemMemUsage, vm.UsedPercent)
	}
}

// runLowStockScan walks the catalog and reports every option (or base
// counter) at or below the configured threshold
func (a *Application) runLowStockScan() {
	threshold := int(a.settings.GetInt64(SettingsTypeStore, KeyLowStockThreshold))
	if threshold <= 0 {
		threshold = store.DefaultLowStockThreshold
	}

	var products []domain.Product
	if err := a.gormDB.Where("status = ?", common.ENABLED).Find(&products).Error; err != nil {
		zap.L().Error("low stock scan query failed", zap.Error(err))
		return
	}

	low := 0
	for i := range products {
		p := &products[i]
		if !p.HasVariants() {
			if p.BaseStock <= threshold {
				low++
				zap.L().Warn("low stock",
					zap.String("product", p.Name),
					zap.Int("stock", p.BaseStock))
			}
			continue
		}
		for _, v := range p.Variants {
			for _, opt := range v.Options {
				if opt.Stock <= threshold {
					low++
					zap.L().Warn("low stock option",
						zap.String("product", p.Name),
						zap.String("variant", v.Name),
						zap.String("option", opt.Label),
						zap.Int("stock", opt.Stock))
				}
			}
		}
	}
	metrics.Record(metrics.LowStockOptions, float64(low))
	zap.L().Info("low stock scan finished",
		zap.Int("products", len(products)), zap.Int("low", low))
}

// runDailySalesReport summarizes the previous day's confirmed sales
func (a *Application) runDailySalesReport() {
	to := time.Now().Truncate(24 * time.Hour)
	from := to.Add(-24 * time.Hour)

	var orders []domain.Order
	err := a.gormDB.
		Where("created_at >= ? and created_at < ?", from, to).
		Where("status in ?", []string{domain.OrderStatusProcessing, domain.OrderStatusCompleted}).
		Find(&orders).Error
	if err != nil {
		zap.L().Error("sales report query failed", zap.Error(err))
		return
	}
	if len(orders) == 0 {
		zap.L().Info("sales report: no confirmed orders", zap.Time("day", from))
		return
	}

	totals := make([]float64, 0, len(orders))
	for _, o := range orders {
		totals = append(totals, o.Total)
	}
	sum, _ := stats.Sum(totals)
	mean, _ := stats.Mean(totals)
	median, _ := stats.Median(totals)

	zap.L().Info("daily sales report",
		zap.Time("day", from),
		zap.Int("orders", len(orders)),
		zap.Float64("revenue", sum),
		zap.Float64("avg_ticket", mean),
		zap.Float64("median_ticket", median))
}
