package apihttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	analytics "solar-telemetry/internal/analytics/domain"
	"solar-telemetry/internal/audit"
	"solar-telemetry/internal/auth"
	"solar-telemetry/internal/observability/metrics"
	"solar-telemetry/internal/report"
)

// HourlyHandler serves hourly aggregate queries.
type HourlyHandler struct {
	repo analytics.HourlyRepository
}

// NewHourlyHandler constructs a HourlyHandler.
func NewHourlyHandler(repo analytics.HourlyRepository) *HourlyHandler {
	return &HourlyHandler{repo: repo}
}

// ServeHTTP handles GET /v1/hourly.
func (h *HourlyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.repo == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	dateInt, err := parseIntQuery(r, "date", 10000101, 99991231)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	records, err := h.repo.ListByDay(r.Context(), dateInt)
	if err != nil {
		http.Error(w, "query hourly error", http.StatusInternalServerError)
		return
	}

	rows := make([]hourlyRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, newHourlyRow(record))
	}
	writeJSON(w, rows)
}

// DailyHandler serves daily aggregate queries.
type DailyHandler struct {
	repo analytics.DailyRepository
}

// NewDailyHandler constructs a DailyHandler.
func NewDailyHandler(repo analytics.DailyRepository) *DailyHandler {
	return &DailyHandler{repo: repo}
}

// ServeHTTP handles GET /v1/daily.
func (h *DailyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.repo == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	monthInt, err := parseIntQuery(r, "month", 100001, 999912)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	records, err := h.repo.ListByMonth(r.Context(), monthInt)
	if err != nil {
		http.Error(w, "query daily error", http.StatusInternalServerError)
		return
	}

	rows := make([]dailyRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, newDailyRow(record))
	}
	writeJSON(w, rows)
}

// MonthlyHandler serves monthly aggregate queries.
type MonthlyHandler struct {
	repo analytics.MonthlyRepository
}

// NewMonthlyHandler constructs a MonthlyHandler.
func NewMonthlyHandler(repo analytics.MonthlyRepository) *MonthlyHandler {
	return &MonthlyHandler{repo: repo}
}

// ServeHTTP handles GET /v1/monthly.
func (h *MonthlyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.repo == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	year, err := parseIntQuery(r, "year", 1000, 9999)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	records, err := h.repo.ListByYear(r.Context(), year)
	if err != nil {
		http.Error(w, "query monthly error", http.StatusInternalServerError)
		return
	}

	rows := make([]monthlyRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, monthlyRow{MonthInt: record.MonthInt, ExportDeltaKWh: record.ExportDeltaKWh})
	}
	writeJSON(w, rows)
}

// ReportHandler serves monthly report downloads.
type ReportHandler struct {
	daily   analytics.DailyRepository
	monthly analytics.MonthlyRepository
	audits  audit.Logger
}

// NewReportHandler constructs a ReportHandler.
func NewReportHandler(daily analytics.DailyRepository, monthly analytics.MonthlyRepository, audits audit.Logger) *ReportHandler {
	return &ReportHandler{daily: daily, monthly: monthly, audits: audits}
}

// ServeHTTP handles GET /v1/report.
func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.daily == nil || h.monthly == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	monthInt, err := parseIntQuery(r, "month", 100001, 999912)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "pdf" {
		http.Error(w, "format must be xlsx or pdf", http.StatusBadRequest)
		return
	}

	months, err := h.monthly.ListByYear(r.Context(), monthInt/100)
	if err != nil {
		http.Error(w, "query monthly error", http.StatusInternalServerError)
		return
	}
	var month *analytics.MonthlyRecord
	for i := range months {
		if months[i].MonthInt == monthInt {
			month = &months[i]
			break
		}
	}
	if month == nil {
		http.Error(w, "month not found", http.StatusNotFound)
		return
	}

	days, err := h.daily.ListByMonth(r.Context(), monthInt)
	if err != nil {
		http.Error(w, "query daily error", http.StatusInternalServerError)
		return
	}

	rep := report.MonthlyReport{Month: *month, Days: days, GeneratedAt: time.Now().UTC()}
	var data []byte
	var contentType string
	switch format {
	case "pdf":
		data, err = report.BuildMonthlyReportPDF(rep)
		contentType = "application/pdf"
	default:
		data, err = report.BuildMonthlyReportXLSX(rep)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		metrics.IncReportExport(format, metrics.ResultError)
		http.Error(w, "render report error", http.StatusInternalServerError)
		return
	}

	metrics.IncReportExport(format, metrics.ResultSuccess)
	h.logAudit(r, monthInt, format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=solar-report-%d.%s", monthInt, format))
	_, _ = w.Write(data)
}

func (h *ReportHandler) logAudit(r *http.Request, monthInt int, format string) {
	if h.audits == nil {
		return
	}
	entry := audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       "report.export",
		ResourceType: "monthly_report",
		ResourceID:   strconv.Itoa(monthInt),
		Metadata:     json.RawMessage(fmt.Sprintf(`{"format":%q}`, format)),
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	}
	_ = h.audits.Log(r.Context(), entry)
}

// HealthzHandler reports process liveness.
type HealthzHandler struct{}

// ServeHTTP handles GET /healthz.
func (HealthzHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

type channelRow struct {
	Current       float64 `json:"current"`
	Voltage       float64 `json:"voltage"`
	GenerationKWh float64 `json:"generation_kwh"`
}

type hourlyRow struct {
	DateInt        int          `json:"date"`
	HourInt        int          `json:"hour"`
	Channels       []channelRow `json:"channels"`
	Irradiance     float64      `json:"irradiance"`
	Temperature    float64      `json:"temperature"`
	ExportDeltaKWh float64      `json:"export_delta_kwh"`
	ExportKWh      float64      `json:"export_kwh"`
	ObservedAt     time.Time    `json:"observed_at"`
}

type dailyRow struct {
	DateInt        int     `json:"date"`
	ExportDeltaKWh float64 `json:"export_delta_kwh"`
	ExportStartKWh float64 `json:"export_start_kwh"`
	ExportEndKWh   float64 `json:"export_end_kwh"`
}

type monthlyRow struct {
	MonthInt       int     `json:"month"`
	ExportDeltaKWh float64 `json:"export_delta_kwh"`
}

func newHourlyRow(record analytics.HourlyRecord) hourlyRow {
	channels := make([]channelRow, 0, len(record.Channels))
	for _, ch := range record.Channels {
		channels = append(channels, channelRow{
			Current:       ch.Current,
			Voltage:       ch.Voltage,
			GenerationKWh: ch.GenerationKWh,
		})
	}
	return hourlyRow{
		DateInt:        record.DateInt,
		HourInt:        record.HourInt,
		Channels:       channels,
		Irradiance:     record.Irradiance,
		Temperature:    record.Temperature,
		ExportDeltaKWh: record.ExportDeltaKWh,
		ExportKWh:      record.ExportKWh,
		ObservedAt:     record.ObservedAt.UTC(),
	}
}

func newDailyRow(record analytics.DailyRecord) dailyRow {
	return dailyRow{
		DateInt:        record.DateInt,
		ExportDeltaKWh: record.ExportDeltaKWh,
		ExportStartKWh: record.ExportStartKWh,
		ExportEndKWh:   record.ExportEndKWh,
	}
}

func parseIntQuery(r *http.Request, key string, min, max int) (int, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return 0, errors.New(key + " is required")
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < min || parsed > max {
		return 0, errors.New(key + " is invalid")
	}
	return parsed, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
