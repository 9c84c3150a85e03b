package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devconnector_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "devconnector_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// AuthEventsTotal counts registration, login and logout outcomes.
	AuthEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devconnector_auth_events_total",
		Help: "Total authentication events by type and outcome",
	}, []string{"event", "outcome"})

	// PostReactionsTotal counts likes, unlikes and comment changes.
	PostReactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devconnector_post_reactions_total",
		Help: "Total post reactions by kind",
	}, []string{"kind"})

	// RateLimitedTotal counts requests rejected by the rate limiter.
	RateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devconnector_rate_limited_total",
		Help: "Total requests rejected by the rate limiter",
	}, []string{"resource", "store"})
)

// RecordAuthEvent increments the auth counter.
func RecordAuthEvent(event, outcome string) {
	AuthEventsTotal.WithLabelValues(event, outcome).Inc()
}

// RecordPostReaction increments the reaction counter.
func RecordPostReaction(kind string) {
	PostReactionsTotal.WithLabelValues(kind).Inc()
}

const queryStartKey = "observability:query_start"

// RegisterGormMetrics installs callbacks that feed DatabaseQueryLatency for
// every create, query, update, delete, row and raw statement run through db.
func RegisterGormMetrics(db *gorm.DB) error {
	type hook struct {
		operation string
		before    func(name string, fn func(*gorm.DB)) error
		after     func(name string, fn func(*gorm.DB)) error
	}

	cb := db.Callback()
	hooks := []hook{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}

	for _, h := range hooks {
		if err := h.before("metrics:before_"+h.operation, startQueryTimer); err != nil {
			return err
		}
		if err := h.after("metrics:after_"+h.operation, observeQuery(h.operation)); err != nil {
			return err
		}
	}
	return nil
}

func startQueryTimer(db *gorm.DB) {
	db.InstanceSet(queryStartKey, time.Now())
}

func observeQuery(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(queryStartKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}
		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
