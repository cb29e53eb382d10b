package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangang/folio/backend/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

var startTime = time.Now()

// Metrics serves the default prometheus registry, plus uptime and the
// database pool statistics of db.
// GET /metrics
func Metrics(db *gorm.DB) gin.HandlerFunc {
	register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "folio_uptime_seconds",
		Help: "Time since server start in seconds",
	}, func() float64 { return time.Since(startTime).Seconds() }))

	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			register(collectors.NewDBStatsCollector(sqlDB, "folio"))
		}
	}

	return gin.WrapH(promhttp.Handler())
}

func register(c prometheus.Collector) {
	if err := prometheus.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			logger.Warn().Err(err).Msg("failed to register collector")
		}
	}
}
