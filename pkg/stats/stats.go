// Package stats exposes the engine's prometheus metrics and a periodic
// memory usage printer.
package stats

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
)

var operationsCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "localmoney_trade_operations_total",
		Help: "Number of trade lifecycle operations, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// CountOperation records one lifecycle operation and whether it succeeded.
func CountOperation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	operationsCounter.WithLabelValues(operation, outcome).Inc()
}

// EnableMemoryStatistics starts a goroutine that periodically prints the
// memory usage of the process until the context is canceled.
func EnableMemoryStatistics(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				printMemoryStatistics()
			case <-ctx.Done():
				return
			}
		}
	}()
}

func printMemoryStatistics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	log.Infof(
		"memory: heap %.2f MB, total allocated %.2f MB, goroutines %d",
		float64(memStats.HeapAlloc)/(1<<20),
		float64(memStats.TotalAlloc)/(1<<20),
		runtime.NumGoroutine(),
	)
}
