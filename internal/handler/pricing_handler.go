package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/mertdogan/duesly/duesly-backend/internal/domain"
	"github.com/mertdogan/duesly/duesly-backend/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// PricingHandler handles price change HTTP requests
type PricingHandler struct {
	pricing *service.PricingService
}

// NewPricingHandler creates a new PricingHandler
func NewPricingHandler(pricing *service.PricingService) *PricingHandler {
	return &PricingHandler{pricing: pricing}
}

// PriceChangeRequest is the request body for applying a price change.
// FromPeriod is optional: when omitted the change starts at the
// subscriber's first clean month.
type PriceChangeRequest struct {
	NewAmount  string  `json:"newAmount"`
	FromPeriod *string `json:"fromPeriod,omitempty"`
}

// ApplyPriceChange handles POST /api/v1/subscribers/:id/price
func (h *PricingHandler) ApplyPriceChange(c echo.Context) error {
	subscriberID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || subscriberID <= 0 {
		return NewValidationError(c, "Invalid subscriber id", []ValidationError{
			{Field: "id", Message: "Subscriber id must be a positive integer"},
		})
	}

	var req PriceChangeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	newAmount, err := decimal.NewFromString(req.NewAmount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "newAmount", Message: "Amount must be a decimal number"},
		})
	}

	var result *service.PriceChangeResult
	if req.FromPeriod != nil {
		fromPeriod, err := domain.ParsePeriod(*req.FromPeriod)
		if err != nil {
			return NewValidationError(c, "Invalid period", []ValidationError{
				{Field: "fromPeriod", Message: "Period must be in YYYY-MM format"},
			})
		}
		result, err = h.pricing.ApplyFromMonth(subscriberID, fromPeriod, newAmount)
		if err != nil {
			return h.priceChangeError(c, subscriberID, err)
		}
	} else {
		result, err = h.pricing.ApplyFromNextCleanMonth(subscriberID, newAmount)
		if err != nil {
			return h.priceChangeError(c, subscriberID, err)
		}
	}

	return c.JSON(http.StatusOK, result)
}

func (h *PricingHandler) priceChangeError(c echo.Context, subscriberID int64, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "newAmount", Message: "Amount must be positive"},
		})
	case errors.Is(err, domain.ErrSubscriberNotFound):
		return NewNotFoundError(c, "Subscriber not found")
	case errors.Is(err, domain.ErrObligationNotFound):
		return NewConflictError(c, "No clean period available for a price change")
	}
	log.Error().Err(err).Int64("subscriber_id", subscriberID).Msg("Failed to apply price change")
	return NewInternalError(c, "Failed to apply price change")
}
