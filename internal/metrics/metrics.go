// Package metrics объявляет метрики Prometheus, которые собирают сервисы менеджера.
// Метрики регистрируются в стандартном реестре и отдаются через /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Значения метки result.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	// Operations считает изменяющие операции менеджера по типу и результату.
	Operations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tvmanager_operations_total",
		Help: "Mutating ledger operations by operation and result",
	}, []string{"operation", "result"})

	// RenewalRevenue накапливает суммы, полученные при продлениях и новых подписках.
	RenewalRevenue = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tvmanager_renewal_revenue_total",
		Help: "Sum of payments recorded by renewals and new clients",
	})

	// FlushDuration: время сохранения коллекции в хранилище.
	FlushDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tvmanager_store_flush_duration_seconds",
		Help:    "Time spent writing a blob to the store",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	}, []string{"blob"})

	// ImportedRows считает строки CSV по результату разбора.
	ImportedRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tvmanager_csv_import_rows_total",
		Help: "CSV rows processed on committed imports by result",
	}, []string{"result"})

	// RemindersPublished считает напоминания, отправленные в очередь уведомлений.
	RemindersPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tvmanager_reminders_published_total",
		Help: "Reminders published to the notifications exchange by kind",
	}, []string{"kind"})

	// HTTPRequests считает HTTP-запросы по маршруту и коду ответа.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tvmanager_http_requests_total",
		Help: "HTTP requests by method, route and status code",
	}, []string{"method", "route", "status"})
)

// Observe записывает результат операции.
func Observe(operation string, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	Operations.WithLabelValues(operation, result).Inc()
}
