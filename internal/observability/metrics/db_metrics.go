package metrics

import (
	"database/sql"
	"log"

	"github.com/prometheus/client_golang/prometheus"
)

// TableNames identifies the tables behind the row-count gauges. Empty
// fields fall back to the repositories' default table names.
type TableNames struct {
	Readings string
	Hourly   string
	Daily    string
	Monthly  string
}

func (t TableNames) withDefaults() TableNames {
	if t.Readings == "" {
		t.Readings = "solar_readings"
	}
	if t.Hourly == "" {
		t.Hourly = "solar_hourly"
	}
	if t.Daily == "" {
		t.Daily = "solar_daily"
	}
	if t.Monthly == "" {
		t.Monthly = "solar_monthly"
	}
	return t
}

func rowCountQueries(tables TableNames) map[string]string {
	tables = tables.withDefaults()
	return map[string]string{
		"readings_rows": "SELECT COUNT(*) FROM " + tables.Readings,
		"hourly_rows":   "SELECT COUNT(*) FROM " + tables.Hourly,
		"daily_rows":    "SELECT COUNT(*) FROM " + tables.Daily,
		"monthly_rows":  "SELECT COUNT(*) FROM " + tables.Monthly,
	}
}

func registerDBMetrics(db *sql.DB, logger *log.Logger, tables TableNames) {
	for name, query := range rowCountQueries(tables) {
		name, query := name, query
		prometheus.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: metricPrefix + name,
				Help: "Row count of " + name,
			},
			func() float64 {
				return queryCount(db, logger, query)
			},
		))
	}
}

func queryCount(db *sql.DB, logger *log.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if logger != nil {
			logger.Printf("metrics query failed: %v", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}
