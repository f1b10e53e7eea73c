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

// SubscriberHandler handles subscriber directory HTTP requests
type SubscriberHandler struct {
	subscribers *service.SubscriberService
}

// NewSubscriberHandler creates a new SubscriberHandler
func NewSubscriberHandler(subscribers *service.SubscriberService) *SubscriberHandler {
	return &SubscriberHandler{subscribers: subscribers}
}

// SubscriberResponse represents a subscriber in API responses
type SubscriberResponse struct {
	ID          int64   `json:"id"`
	BuildingID  int64   `json:"buildingId"`
	Name        string  `json:"name"`
	Phone       *string `json:"phone,omitempty"`
	MonthlyFee  string  `json:"monthlyFee"`
	StartPeriod string  `json:"startPeriod"`
}

func toSubscriberResponse(s *domain.Subscriber) SubscriberResponse {
	return SubscriberResponse{
		ID:          s.ID,
		BuildingID:  s.BuildingID,
		Name:        s.Name,
		Phone:       s.Phone,
		MonthlyFee:  s.MonthlyFee.StringFixed(2),
		StartPeriod: string(s.StartPeriod),
	}
}

// CreateSubscriberRequest is the request body for creating a subscriber
type CreateSubscriberRequest struct {
	BuildingID       int64   `json:"buildingId"`
	Name             string  `json:"name"`
	Phone            *string `json:"phone,omitempty"`
	MonthlyFee       string  `json:"monthlyFee"`
	StartPeriod      string  `json:"startPeriod"`
	FirstMonthAmount *string `json:"firstMonthAmount,omitempty"`
}

// CreateSubscriber handles POST /api/v1/subscribers
func (h *SubscriberHandler) CreateSubscriber(c echo.Context) error {
	var req CreateSubscriberRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	fee, err := decimal.NewFromString(req.MonthlyFee)
	if err != nil {
		return NewValidationError(c, "Invalid monthly fee", []ValidationError{
			{Field: "monthlyFee", Message: "Amount must be a decimal number"},
		})
	}

	var firstMonthAmount *decimal.Decimal
	if req.FirstMonthAmount != nil {
		parsed, err := decimal.NewFromString(*req.FirstMonthAmount)
		if err != nil {
			return NewValidationError(c, "Invalid first month amount", []ValidationError{
				{Field: "firstMonthAmount", Message: "Amount must be a decimal number"},
			})
		}
		firstMonthAmount = &parsed
	}

	subscriber, err := h.subscribers.CreateSubscriber(service.CreateSubscriberInput{
		BuildingID:       req.BuildingID,
		Name:             req.Name,
		Phone:            req.Phone,
		MonthlyFee:       fee,
		StartPeriod:      domain.Period(req.StartPeriod),
		FirstMonthAmount: firstMonthAmount,
	})
	if err != nil {
		return h.subscriberError(c, err, "Failed to create subscriber")
	}

	return c.JSON(http.StatusCreated, toSubscriberResponse(subscriber))
}

// GetSubscribers handles GET /api/v1/subscribers
func (h *SubscriberHandler) GetSubscribers(c echo.Context) error {
	var (
		subscribers []*domain.Subscriber
		err         error
	)
	if raw := c.QueryParam("buildingId"); raw != "" {
		buildingID, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil || buildingID <= 0 {
			return NewValidationError(c, "Invalid building id", []ValidationError{
				{Field: "buildingId", Message: "Building id must be a positive integer"},
			})
		}
		subscribers, err = h.subscribers.GetSubscribersByBuilding(buildingID)
	} else {
		subscribers, err = h.subscribers.GetSubscribers()
	}
	if err != nil {
		if errors.Is(err, domain.ErrBuildingNotFound) {
			return NewNotFoundError(c, "Building not found")
		}
		log.Error().Err(err).Msg("Failed to get subscribers")
		return NewInternalError(c, "Failed to get subscribers")
	}

	response := make([]SubscriberResponse, len(subscribers))
	for i, s := range subscribers {
		response[i] = toSubscriberResponse(s)
	}
	return c.JSON(http.StatusOK, response)
}

// GetSubscriber handles GET /api/v1/subscribers/:id
func (h *SubscriberHandler) GetSubscriber(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return NewValidationError(c, "Invalid subscriber id", []ValidationError{
			{Field: "id", Message: "Subscriber id must be a positive integer"},
		})
	}

	subscriber, err := h.subscribers.GetSubscriberByID(id)
	if err != nil {
		if errors.Is(err, domain.ErrSubscriberNotFound) {
			return NewNotFoundError(c, "Subscriber not found")
		}
		log.Error().Err(err).Int64("subscriber_id", id).Msg("Failed to get subscriber")
		return NewInternalError(c, "Failed to get subscriber")
	}
	return c.JSON(http.StatusOK, toSubscriberResponse(subscriber))
}

// UpdateSubscriberRequest is the request body for updating a subscriber
type UpdateSubscriberRequest struct {
	BuildingID int64   `json:"buildingId"`
	Name       string  `json:"name"`
	Phone      *string `json:"phone,omitempty"`
}

// UpdateSubscriber handles PUT /api/v1/subscribers/:id
func (h *SubscriberHandler) UpdateSubscriber(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return NewValidationError(c, "Invalid subscriber id", []ValidationError{
			{Field: "id", Message: "Subscriber id must be a positive integer"},
		})
	}

	var req UpdateSubscriberRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	subscriber, err := h.subscribers.UpdateSubscriber(id, service.UpdateSubscriberInput{
		BuildingID: req.BuildingID,
		Name:       req.Name,
		Phone:      req.Phone,
	})
	if err != nil {
		return h.subscriberError(c, err, "Failed to update subscriber")
	}
	return c.JSON(http.StatusOK, toSubscriberResponse(subscriber))
}

// DeleteSubscriber handles DELETE /api/v1/subscribers/:id
func (h *SubscriberHandler) DeleteSubscriber(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return NewValidationError(c, "Invalid subscriber id", []ValidationError{
			{Field: "id", Message: "Subscriber id must be a positive integer"},
		})
	}

	if err := h.subscribers.DeleteSubscriber(id); err != nil {
		if errors.Is(err, domain.ErrSubscriberNotFound) {
			return NewNotFoundError(c, "Subscriber not found")
		}
		log.Error().Err(err).Int64("subscriber_id", id).Msg("Failed to delete subscriber")
		return NewInternalError(c, "Failed to delete subscriber")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *SubscriberHandler) subscriberError(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrNameRequired):
		return NewValidationError(c, "Name is required", []ValidationError{
			{Field: "name", Message: "Name must not be empty"},
		})
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Name too long", []ValidationError{
			{Field: "name", Message: "Name exceeds the maximum length"},
		})
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "monthlyFee", Message: "Amount must be positive"},
		})
	case errors.Is(err, domain.ErrInvalidPeriod):
		return NewValidationError(c, "Invalid period", []ValidationError{
			{Field: "startPeriod", Message: "Period must be in YYYY-MM format"},
		})
	case errors.Is(err, domain.ErrBuildingNotFound):
		return NewNotFoundError(c, "Building not found")
	case errors.Is(err, domain.ErrSubscriberNotFound):
		return NewNotFoundError(c, "Subscriber not found")
	}
	log.Error().Err(err).Msg(fallback)
	return NewInternalError(c, fallback)
}
