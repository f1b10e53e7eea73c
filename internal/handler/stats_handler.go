package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mertdogan/duesly/duesly-backend/internal/domain"
	"github.com/mertdogan/duesly/duesly-backend/internal/service"
	"github.com/rs/zerolog/log"
)

// StatsHandler handles read-side projection HTTP requests
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// parsePeriodParam reads the period path parameter. On bad input it
// writes the validation response and reports false.
func parsePeriodParam(c echo.Context) (domain.Period, bool) {
	period, err := domain.ParsePeriod(c.Param("period"))
	if err != nil {
		NewValidationError(c, "Invalid period", []ValidationError{
			{Field: "period", Message: "Period must be in YYYY-MM format"},
		})
		return "", false
	}
	return period, true
}

// GetMonthlyStats handles GET /api/v1/stats/monthly/:period
func (h *StatsHandler) GetMonthlyStats(c echo.Context) error {
	period, ok := parsePeriodParam(c)
	if !ok {
		return nil
	}

	stats, err := h.stats.MonthlyStats(period)
	if err != nil {
		log.Error().Err(err).Str("period", string(period)).Msg("Failed to compute monthly stats")
		return NewInternalError(c, "Failed to compute monthly stats")
	}
	return c.JSON(http.StatusOK, stats)
}

// GetClientMonths handles GET /api/v1/stats/clients/:subscriberId/months
func (h *StatsHandler) GetClientMonths(c echo.Context) error {
	subscriberID, err := strconv.ParseInt(c.Param("subscriberId"), 10, 64)
	if err != nil || subscriberID <= 0 {
		return NewValidationError(c, "Invalid subscriber id", []ValidationError{
			{Field: "subscriberId", Message: "Subscriber id must be a positive integer"},
		})
	}

	rows, err := h.stats.ClientMonths(subscriberID)
	if err != nil {
		if errors.Is(err, domain.ErrSubscriberNotFound) {
			return NewNotFoundError(c, "Subscriber not found")
		}
		log.Error().Err(err).Int64("subscriber_id", subscriberID).Msg("Failed to compute client months")
		return NewInternalError(c, "Failed to compute client months")
	}
	return c.JSON(http.StatusOK, rows)
}

// GetTopUnpaid handles GET /api/v1/stats/monthly/:period/top-unpaid
func (h *StatsHandler) GetTopUnpaid(c echo.Context) error {
	period, ok := parsePeriodParam(c)
	if !ok {
		return nil
	}

	limit := 10
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return NewValidationError(c, "Invalid limit", []ValidationError{
				{Field: "limit", Message: "Limit must be a positive integer"},
			})
		}
		limit = parsed
	}

	ranks, err := h.stats.TopUnpaid(period, limit)
	if err != nil {
		log.Error().Err(err).Str("period", string(period)).Msg("Failed to compute top unpaid")
		return NewInternalError(c, "Failed to compute top unpaid")
	}
	return c.JSON(http.StatusOK, ranks)
}

// GetDailyCollection handles GET /api/v1/collections/daily. Query
// parameters: date (YYYY-MM-DD, default today) and period (YYYY-MM,
// default the date's month).
func (h *StatsHandler) GetDailyCollection(c echo.Context) error {
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
		log.Error().Err(err).Str("period", string(period)).Msg("Failed to compute daily collection")
		return NewInternalError(c, "Failed to compute daily collection")
	}
	return c.JSON(http.StatusOK, collection)
}
