package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/mertdogan/duesly/duesly-backend/internal/domain"
	"github.com/mertdogan/duesly/duesly-backend/internal/service"
	"github.com/mertdogan/duesly/duesly-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

func newReportFixture(t *testing.T) *ReportHandler {
	t.Helper()
	mocks := testutil.NewMocks()
	building, err := mocks.Buildings.Create(&domain.Building{Name: "Cedar Court"})
	if err != nil {
		t.Fatalf("Failed to create building: %v", err)
	}
	sub, err := mocks.Subscribers.Create(&domain.Subscriber{
		BuildingID:  building.ID,
		Name:        "Alice",
		MonthlyFee:  decimal.NewFromInt(100),
		StartPeriod: "2026-01",
	})
	if err != nil {
		t.Fatalf("Failed to create subscriber: %v", err)
	}
	reconciliation := service.NewReconciliationService(mocks.Obligations, mocks.Ledger)
	if _, err := reconciliation.AddPartialPayment(sub.ID, "2026-01", decimal.NewFromInt(100), decimal.NewFromInt(40)); err != nil {
		t.Fatalf("Failed to add payment: %v", err)
	}
	return NewReportHandler(service.NewStatsService(mocks.Obligations, mocks.Ledger))
}

func TestMonthlyXLSX_Success(t *testing.T) {
	e := echo.New()
	handler := newReportFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("period")
	c.SetParamValues("2026-01")

	if err := handler.MonthlyXLSX(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("Expected XLSX (zip) magic bytes")
	}
	if disposition := rec.Header().Get(echo.HeaderContentDisposition); disposition == "" {
		t.Error("Expected a Content-Disposition header")
	}
}

func TestMonthlyXLSX_InvalidPeriod(t *testing.T) {
	e := echo.New()
	handler := newReportFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("period")
	c.SetParamValues("2026-13")

	if err := handler.MonthlyXLSX(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestDailyPDF_Success(t *testing.T) {
	e := echo.New()
	handler := newReportFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/?period=2026-01", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.DailyPDF(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("Expected PDF magic bytes")
	}
}

func TestDailyPDF_InvalidDate(t *testing.T) {
	e := echo.New()
	handler := newReportFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/?date=01-02-2026", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.DailyPDF(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}
