package metrics

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
	"go.uber.org/zap"
)

// Metric names recorded by the storefront
const (
	OrdersCreated   = "tienda_orders_created"
	StockReductions = "tienda_stock_reductions"
	OversellClamps  = "tienda_oversell_clamps"
	LowStockOptions = "tienda_low_stock_options"
	SystemCPUUsage  = "tienda_system_cpu_percent"
	SystemMemUsage  = "tienda_system_mem_percent"
)

var (
	storage tstorage.Storage
	mu      sync.Mutex
)

// InitMetrics opens the local time-series store under the application workdir
func InitMetrics(workdir string) error {
	mu.Lock()
	defer mu.Unlock()
	if storage != nil {
		return nil
	}
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(filepath.Join(workdir, "metrics")),
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithRetention(30*24*time.Hour),
	)
	if err != nil {
		return err
	}
	storage = s
	return nil
}

// Record stores a single data point for the named metric
func Record(name string, value float64) {
	mu.Lock()
	s := storage
	mu.Unlock()
	if s == nil {
		return
	}
	err := s.InsertRows([]tstorage.Row{
		{
			Metric:    name,
			DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: value},
		},
	})
	if err != nil {
		zap.L().Warn("metrics insert failed", zap.String("metric", name), zap.Error(err))
	}
}

// Counter records a unit increment for the named metric
func Counter(name string) {
	Record(name, 1)
}

// Select returns data points for a metric in the given time range
func Select(name string, start, end int64) ([]*tstorage.DataPoint, error) {
	mu.Lock()
	s := storage
	mu.Unlock()
	if s == nil {
		return nil, nil
	}
	return s.Select(name, nil, start, end)
}

// Close flushes and closes the metrics store
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if storage == nil {
		return nil
	}
	err := storage.Close()
	storage = nil
	return err
}
