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
	"github.com/shopspring/decimal"
)

// PaymentHandler handles payment-related HTTP requests
type PaymentHandler struct {
	reconciliation *service.ReconciliationService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(reconciliation *service.ReconciliationService) *PaymentHandler {
	return &PaymentHandler{reconciliation: reconciliation}
}

// PaymentResponse represents a reconciliation outcome in API responses
type PaymentResponse struct {
	ObligationID  int64   `json:"obligationId"`
	SubscriberID  int64   `json:"subscriberId"`
	Period        string  `json:"period"`
	Amount        string  `json:"amount"`
	TotalPaid     string  `json:"totalPaid"`
	Status        string  `json:"status"`
	StatusDisplay string  `json:"statusDisplay"`
	PaidDate      *string `json:"paidDate,omitempty"`
}

func toPaymentResponse(r *service.PaymentResult) PaymentResponse {
	resp := PaymentResponse{
		ObligationID:  r.Obligation.ID,
		SubscriberID:  r.Obligation.SubscriberID,
		Period:        string(r.Obligation.Period),
		Amount:        r.Obligation.Amount.StringFixed(2),
		TotalPaid:     r.TotalPaid.StringFixed(2),
		Status:        string(r.Status),
		StatusDisplay: r.Status.Display(),
	}
	if r.Obligation.PaidDate != nil {
		formatted := r.Obligation.PaidDate.Format(time.RFC3339)
		resp.PaidDate = &formatted
	}
	return resp
}

// LedgerEntryResponse represents a ledger entry in API responses
type LedgerEntryResponse struct {
	ID           int64  `json:"id"`
	ObligationID int64  `json:"obligationId"`
	Amount       string `json:"amount"`
	Notes        string `json:"notes"`
	IsRefund     bool   `json:"isRefund"`
	EntryDate    string `json:"entryDate"`
}

// parsePaymentTarget reads the subscriber and period path parameters.
// On bad input it writes the validation response and reports false.
func parsePaymentTarget(c echo.Context) (int64, domain.Period, bool) {
	subscriberID, err := strconv.ParseInt(c.Param("subscriberId"), 10, 64)
	if err != nil || subscriberID <= 0 {
		NewValidationError(c, "Invalid subscriber id", []ValidationError{
			{Field: "subscriberId", Message: "Subscriber id must be a positive integer"},
		})
		return 0, "", false
	}
	period, err := domain.ParsePeriod(c.Param("period"))
	if err != nil {
		NewValidationError(c, "Invalid period", []ValidationError{
			{Field: "period", Message: "Period must be in YYYY-MM format"},
		})
		return 0, "", false
	}
	return subscriberID, period, true
}

// MarkFullRequest is the request body for marking a full payment
type MarkFullRequest struct {
	Amount string `json:"amount"`
}

// MarkFull handles POST /api/v1/payments/:subscriberId/:period/full
func (h *PaymentHandler) MarkFull(c echo.Context) error {
	subscriberID, period, ok := parsePaymentTarget(c)
	if !ok {
		return nil
	}

	var req MarkFullRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Amount must be a decimal number"},
		})
	}

	result, err := h.reconciliation.MarkFullPayment(subscriberID, period, amount)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAmount) {
			return NewValidationError(c, "Invalid amount", []ValidationError{
				{Field: "amount", Message: "Amount must be positive"},
			})
		}
		log.Error().Err(err).Int64("subscriber_id", subscriberID).Str("period", string(period)).Msg("Failed to mark full payment")
		return NewInternalError(c, "Failed to mark full payment")
	}

	return c.JSON(http.StatusOK, toPaymentResponse(result))
}

// PartialRequest is the request body for adding a partial payment
type PartialRequest struct {
	ObligationAmount string `json:"obligationAmount"`
	Amount           string `json:"amount"`
}

// AddPartial handles POST /api/v1/payments/:subscriberId/:period/partial
func (h *PaymentHandler) AddPartial(c echo.Context) error {
	subscriberID, period, ok := parsePaymentTarget(c)
	if !ok {
		return nil
	}

	var req PartialRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	obligationAmount, err := decimal.NewFromString(req.ObligationAmount)
	if err != nil {
		return NewValidationError(c, "Invalid obligation amount", []ValidationError{
			{Field: "obligationAmount", Message: "Amount must be a decimal number"},
		})
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Amount must be a decimal number"},
		})
	}

	result, err := h.reconciliation.AddPartialPayment(subscriberID, period, obligationAmount, amount)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAmount) {
			return NewValidationError(c, "Invalid amount", []ValidationError{
				{Field: "amount", Message: "Amount must be positive"},
			})
		}
		log.Error().Err(err).Int64("subscriber_id", subscriberID).Str("period", string(period)).Msg("Failed to add partial payment")
		return NewInternalError(c, "Failed to add partial payment")
	}

	return c.JSON(http.StatusOK, toPaymentResponse(result))
}

// ReverseRequest is the request body for recording a refund
type ReverseRequest struct {
	ObligationAmount string `json:"obligationAmount"`
	Amount           string `json:"amount"`
	Reason           string `json:"reason"`
}

// Reverse handles POST /api/v1/payments/:subscriberId/:period/reverse
func (h *PaymentHandler) Reverse(c echo.Context) error {
	subscriberID, period, ok := parsePaymentTarget(c)
	if !ok {
		return nil
	}

	var req ReverseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	obligationAmount, err := decimal.NewFromString(req.ObligationAmount)
	if err != nil {
		return NewValidationError(c, "Invalid obligation amount", []ValidationError{
			{Field: "obligationAmount", Message: "Amount must be a decimal number"},
		})
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Amount must be a decimal number"},
		})
	}

	result, err := h.reconciliation.AddReverseTransaction(subscriberID, period, obligationAmount, amount, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidAmount):
			return NewValidationError(c, "Invalid amount", []ValidationError{
				{Field: "amount", Message: "Amount must be positive"},
			})
		case errors.Is(err, domain.ErrNotesTooLong):
			return NewValidationError(c, "Reason too long", []ValidationError{
				{Field: "reason", Message: "Reason exceeds the maximum length"},
			})
		}
		log.Error().Err(err).Int64("subscriber_id", subscriberID).Str("period", string(period)).Msg("Failed to reverse payment")
		return NewInternalError(c, "Failed to reverse payment")
	}

	return c.JSON(http.StatusOK, toPaymentResponse(result))
}

// Unmark handles DELETE /api/v1/payments/:subscriberId/:period
func (h *PaymentHandler) Unmark(c echo.Context) error {
	subscriberID, period, ok := parsePaymentTarget(c)
	if !ok {
		return nil
	}

	if err := h.reconciliation.MarkAsUnpaid(subscriberID, period); err != nil {
		if errors.Is(err, domain.ErrObligationNotFound) {
			return NewNotFoundError(c, "Obligation not found")
		}
		log.Error().Err(err).Int64("subscriber_id", subscriberID).Str("period", string(period)).Msg("Failed to unmark payment")
		return NewInternalError(c, "Failed to unmark payment")
	}

	return c.NoContent(http.StatusNoContent)
}

// DeleteEntry handles DELETE /api/v1/payments/entries/:id
func (h *PaymentHandler) DeleteEntry(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return NewValidationError(c, "Invalid entry id", []ValidationError{
			{Field: "id", Message: "Entry id must be a positive integer"},
		})
	}

	if err := h.reconciliation.DeleteTransaction(id); err != nil {
		log.Error().Err(err).Int64("entry_id", id).Msg("Failed to delete ledger entry")
		return NewInternalError(c, "Failed to delete ledger entry")
	}

	return c.NoContent(http.StatusNoContent)
}

// ListEntries handles GET /api/v1/payments/:subscriberId/:period/entries
func (h *PaymentHandler) ListEntries(c echo.Context) error {
	subscriberID, period, ok := parsePaymentTarget(c)
	if !ok {
		return nil
	}

	entries, err := h.reconciliation.ListEntries(subscriberID, period)
	if err != nil {
		if errors.Is(err, domain.ErrObligationNotFound) {
			return NewNotFoundError(c, "Obligation not found")
		}
		log.Error().Err(err).Int64("subscriber_id", subscriberID).Str("period", string(period)).Msg("Failed to list ledger entries")
		return NewInternalError(c, "Failed to list ledger entries")
	}

	response := make([]LedgerEntryResponse, len(entries))
	for i, e := range entries {
		response[i] = LedgerEntryResponse{
			ID:           e.ID,
			ObligationID: e.ObligationID,
			Amount:       e.Amount.StringFixed(2),
			Notes:        e.Notes,
			IsRefund:     e.IsRefund(),
			EntryDate:    e.EntryDate.Format(time.RFC3339),
		}
	}
	return c.JSON(http.StatusOK, response)
}

// EnrollRequest is the request body for bulk obligation creation
type EnrollRequest struct {
	SubscriberID      int64   `json:"subscriberId"`
	StartPeriod       string  `json:"startPeriod"`
	EndPeriod         *string `json:"endPeriod,omitempty"`
	Amount            string  `json:"amount"`
	FirstPeriodAmount *string `json:"firstPeriodAmount,omitempty"`
}

// Enroll handles POST /api/v1/payments/enroll. It creates obligations
// for every period from startPeriod up to but excluding endPeriod
// (through the current period when endPeriod is omitted).
func (h *PaymentHandler) Enroll(c echo.Context) error {
	var req EnrollRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if req.SubscriberID <= 0 {
		return NewValidationError(c, "Invalid subscriber id", []ValidationError{
			{Field: "subscriberId", Message: "Subscriber id must be a positive integer"},
		})
	}
	startPeriod, err := domain.ParsePeriod(req.StartPeriod)
	if err != nil {
		return NewValidationError(c, "Invalid start period", []ValidationError{
			{Field: "startPeriod", Message: "Period must be in YYYY-MM format"},
		})
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Amount must be a decimal number"},
		})
	}

	var endPeriod *domain.Period
	rangeEnd := domain.CurrentPeriod()
	if req.EndPeriod != nil {
		parsed, err := domain.ParsePeriod(*req.EndPeriod)
		if err != nil {
			return NewValidationError(c, "Invalid end period", []ValidationError{
				{Field: "endPeriod", Message: "Period must be in YYYY-MM format"},
			})
		}
		endPeriod = &parsed
		rangeEnd = parsed
	}

	var firstPeriodAmount *decimal.Decimal
	if req.FirstPeriodAmount != nil {
		parsed, err := decimal.NewFromString(*req.FirstPeriodAmount)
		if err != nil {
			return NewValidationError(c, "Invalid first period amount", []ValidationError{
				{Field: "firstPeriodAmount", Message: "Amount must be a decimal number"},
			})
		}
		firstPeriodAmount = &parsed
	}

	periods := domain.PeriodRange(startPeriod, rangeEnd)
	results, err := h.reconciliation.CreatePaymentsForSubscriber(req.SubscriberID, startPeriod, endPeriod, amount, periods, firstPeriodAmount)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAmount) {
			return NewValidationError(c, "Invalid amount", []ValidationError{
				{Field: "amount", Message: "Amount must be positive"},
			})
		}
		log.Error().Err(err).Int64("subscriber_id", req.SubscriberID).Msg("Failed to enroll subscriber")
		return NewInternalError(c, "Failed to enroll subscriber")
	}

	response := make([]PaymentResponse, len(results))
	for i, r := range results {
		response[i] = toPaymentResponse(r)
	}
	return c.JSON(http.StatusCreated, response)
}
