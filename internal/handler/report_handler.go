package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mertdogan/duesly/duesly-backend/internal/domain"
	"github.com/mertdogan/duesly/duesly-backend/internal/export"
	"github.com/mertdogan/duesly/duesly-backend/internal/observability/metrics"
	"github.com/mertdogan/duesly/duesly-backend/internal/service"
	"github.com/rs/zerolog/log"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler serves downloadable report exports
type ReportHandler struct {
	stats *service.StatsService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(stats *service.StatsService) *ReportHandler {
	return &ReportHandler{stats: stats}
}

// MonthlyXLSX handles GET /api/v1/reports/monthly/:period/xlsx
func (h *ReportHandler) MonthlyXLSX(c echo.Context) error {
	period, ok := parsePeriodParam(c)
	if !ok {
		return nil
	}

	stats, err := h.stats.MonthlyStats(period)
	if err != nil {
		log.Error().Err(err).Str("period", string(period)).Msg("Failed to compute monthly stats for export")
		return NewInternalError(c, "Failed to build monthly report")
	}
	rows, err := h.stats.PeriodSnapshot(period)
	if err != nil {
		log.Error().Err(err).Str("period", string(period)).Msg("Failed to load period snapshot for export")
		return NewInternalError(c, "Failed to build monthly report")
	}

	data, err := export.BuildMonthlyReportXLSX(stats, rows)
	metrics.ObserveExport("monthly_xlsx", err)
	if err != nil {
		log.Error().Err(err).Str("period", string(period)).Msg("Failed to render monthly report")
		return NewInternalError(c, "Failed to build monthly report")
	}

	filename := fmt.Sprintf("monthly-report-%s.xlsx", period)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, xlsxContentType, data)
}

// DailyPDF handles GET /api/v1/reports/daily/pdf. Query parameters as
// for the daily collection view.
func (h *ReportHandler) DailyPDF(c echo.Context) error {
	date := time.Now().UTC()
	if raw := c.QueryParam("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "date", Message: "Date must be in YYYY-MM-DD format"},
			})
		}
		date = parsed
	}

	period := domain.PeriodOf(date)
	if raw := c.QueryParam("period"); raw != "" {
		parsed, err := domain.ParsePeriod(raw)
		if err != nil {
			return NewValidationError(c, "Invalid period", []ValidationError{
				{Field: "period", Message: "Period must be in YYYY-MM format"},
			})
		}
		period = parsed
	}

	collection, err := h.stats.DailyCollectionForDate(date, period)
	if err != nil {
		log.Error().Err(err).Str("period", string(period)).Msg("Failed to compute daily collection for export")
		return NewInternalError(c, "Failed to build daily report")
	}

	data, err := export.BuildDailyCollectionPDF(collection)
	metrics.ObserveExport("daily_pdf", err)
	if err != nil {
		log.Error().Err(err).Str("period", string(period)).Msg("Failed to render daily report")
		return NewInternalError(c, "Failed to build daily report")
	}

	filename := fmt.Sprintf("daily-collection-%s.pdf", date.Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "application/pdf", data)
}
