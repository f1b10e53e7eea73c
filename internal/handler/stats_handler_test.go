package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/mertdogan/duesly/duesly-backend/internal/domain"
	"github.com/mertdogan/duesly/duesly-backend/internal/service"
	"github.com/mertdogan/duesly/duesly-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

func newStatsHandlerFixture(t *testing.T) (*testutil.Mocks, *StatsHandler) {
	t.Helper()
	mocks := testutil.NewMocks()
	building, err := mocks.Buildings.Create(&domain.Building{Name: "Cedar Court"})
	if err != nil {
		t.Fatalf("Failed to create building: %v", err)
	}
	for _, name := range []string{"Alice", "Bora"} {
		if _, err := mocks.Subscribers.Create(&domain.Subscriber{
			BuildingID:  building.ID,
			Name:        name,
			MonthlyFee:  decimal.NewFromInt(100),
			StartPeriod: "2026-01",
		}); err != nil {
			t.Fatalf("Failed to create subscriber: %v", err)
		}
	}
	stats := service.NewStatsService(mocks.Obligations, mocks.Ledger)
	return mocks, NewStatsHandler(stats)
}

func TestGetMonthlyStats_Success(t *testing.T) {
	e := echo.New()
	mocks, handler := newStatsHandlerFixture(t)

	reconciliation := service.NewReconciliationService(mocks.Obligations, mocks.Ledger)
	if _, err := reconciliation.MarkFullPayment(1, "2026-01", decimal.NewFromInt(100)); err != nil {
		t.Fatalf("Failed to mark payment: %v", err)
	}
	if _, err := mocks.Obligations.GetOrCreate(2, "2026-01", decimal.NewFromInt(100)); err != nil {
		t.Fatalf("Failed to create obligation: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("period")
	c.SetParamValues("2026-01")

	if err := handler.GetMonthlyStats(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var stats domain.MonthlyStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if stats.TotalCount != 2 {
		t.Errorf("Expected 2 obligations, got %d", stats.TotalCount)
	}
	if stats.FullCount != 1 {
		t.Errorf("Expected 1 full, got %d", stats.FullCount)
	}
	if stats.UnpaidCount != 1 {
		t.Errorf("Expected 1 unpaid, got %d", stats.UnpaidCount)
	}
}

func TestGetMonthlyStats_InvalidPeriod(t *testing.T) {
	e := echo.New()
	_, handler := newStatsHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("period")
	c.SetParamValues("January-2026")

	if err := handler.GetMonthlyStats(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetTopUnpaid_LimitValidation(t *testing.T) {
	e := echo.New()
	_, handler := newStatsHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/?limit=0", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("period")
	c.SetParamValues("2026-01")

	if err := handler.GetTopUnpaid(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetDailyCollection_Success(t *testing.T) {
	e := echo.New()
	mocks, handler := newStatsHandlerFixture(t)

	reconciliation := service.NewReconciliationService(mocks.Obligations, mocks.Ledger)
	if _, err := reconciliation.AddPartialPayment(1, "2026-01", decimal.NewFromInt(100), decimal.NewFromInt(25)); err != nil {
		t.Fatalf("Failed to add payment: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/?period=2026-01", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.GetDailyCollection(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var collection domain.DailyCollection
	if err := json.Unmarshal(rec.Body.Bytes(), &collection); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(collection.Buildings) != 1 {
		t.Fatalf("Expected 1 building group, got %d", len(collection.Buildings))
	}
	if !collection.TotalCollected.Equal(decimal.NewFromInt(25)) {
		t.Errorf("Expected total collected 25, got %s", collection.TotalCollected)
	}
}

func TestGetClientMonths_InvalidID(t *testing.T) {
	e := echo.New()
	_, handler := newStatsHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("subscriberId")
	c.SetParamValues("abc")

	if err := handler.GetClientMonths(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}
