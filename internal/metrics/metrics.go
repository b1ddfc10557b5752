package metrics

import (
	"log"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

var (
	// HTTPRequestsTotal counts API requests by method, route and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discount_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration tracks request latency by route
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "discount_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// RequestsCreated counts coupon requests submitted by cashiers
	RequestsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "discount_requests_created_total",
		Help: "Coupon requests created",
	})

	// RequestsApproved counts approvals (a coupon bound per approval)
	RequestsApproved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "discount_requests_approved_total",
		Help: "Coupon requests approved",
	})

	// RequestsRejected counts rejections
	RequestsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "discount_requests_rejected_total",
		Help: "Coupon requests rejected",
	})

	// RequestsFinalized counts requests closed with an invoice
	RequestsFinalized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "discount_requests_finalized_total",
		Help: "Coupon requests finalized at the counter",
	})

	// NotificationFailures counts delivery failures by channel
	NotificationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discount_notification_failures_total",
			Help: "Notification deliveries that failed",
		},
		[]string{"channel"},
	)

	// FeedClients tracks connected dashboard websocket clients
	FeedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "discount_feed_clients",
		Help: "Connected dashboard feed clients",
	})

	cpuUsage = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "discount_system_cpu_percent",
		Help: "System CPU usage percent",
	})

	memUsage = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "discount_system_memory_percent",
		Help: "System memory usage percent",
	})

	goroutines = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "discount_goroutines",
		Help: "Number of running goroutines",
	})
)

// CollectSystem samples host CPU, memory and runtime stats on an interval.
// Run it in a goroutine; it returns only when the ticker is stopped by
// process exit.
func CollectSystem(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
			cpuUsage.Set(percents[0])
		} else if err != nil {
			log.Printf("Failed to sample CPU usage: %v", err)
		}

		if vm, err := mem.VirtualMemory(); err == nil {
			memUsage.Set(vm.UsedPercent)
		} else {
			log.Printf("Failed to sample memory usage: %v", err)
		}

		goroutines.Set(float64(runtime.NumGoroutine()))
	}
}
