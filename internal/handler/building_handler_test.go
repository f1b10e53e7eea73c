package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/mertdogan/duesly/duesly-backend/internal/domain"
	"github.com/mertdogan/duesly/duesly-backend/internal/service"
	"github.com/mertdogan/duesly/duesly-backend/internal/testutil"
)

func newBuildingFixture() (*testutil.Mocks, *BuildingHandler) {
	mocks := testutil.NewMocks()
	return mocks, NewBuildingHandler(service.NewBuildingService(mocks.Buildings))
}

func buildingContext(e *echo.Echo, method, body, id string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if id != "" {
		c.SetParamNames("id")
		c.SetParamValues(id)
	}
	return c, rec
}

func TestCreateBuilding_Success(t *testing.T) {
	e := echo.New()
	_, handler := newBuildingFixture()

	c, rec := buildingContext(e, http.MethodPost, `{"name":"  Cedar Court  "}`, "")

	if err := handler.CreateBuilding(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rec.Code)
	}

	var building domain.Building
	if err := json.Unmarshal(rec.Body.Bytes(), &building); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if building.Name != "Cedar Court" {
		t.Errorf("Expected trimmed name 'Cedar Court', got %q", building.Name)
	}
	if building.ID == 0 {
		t.Error("Expected an assigned id")
	}
}

func TestCreateBuilding_EmptyName(t *testing.T) {
	e := echo.New()
	_, handler := newBuildingFixture()

	c, rec := buildingContext(e, http.MethodPost, `{"name":"   "}`, "")

	if err := handler.CreateBuilding(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetBuilding_NotFound(t *testing.T) {
	e := echo.New()
	_, handler := newBuildingFixture()

	c, rec := buildingContext(e, http.MethodGet, "", "42")

	if err := handler.GetBuilding(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestUpdateBuilding_Success(t *testing.T) {
	e := echo.New()
	mocks, handler := newBuildingFixture()

	if _, err := mocks.Buildings.Create(&domain.Building{Name: "Cedar Court"}); err != nil {
		t.Fatalf("Failed to create building: %v", err)
	}

	c, rec := buildingContext(e, http.MethodPut, `{"name":"Maple Row"}`, "1")

	if err := handler.UpdateBuilding(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var building domain.Building
	if err := json.Unmarshal(rec.Body.Bytes(), &building); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if building.Name != "Maple Row" {
		t.Errorf("Expected name 'Maple Row', got %q", building.Name)
	}
}

func TestDeleteBuilding_NotFound(t *testing.T) {
	e := echo.New()
	_, handler := newBuildingFixture()

	c, rec := buildingContext(e, http.MethodDelete, "", "42")

	if err := handler.DeleteBuilding(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestDeleteBuilding_Success(t *testing.T) {
	e := echo.New()
	mocks, handler := newBuildingFixture()

	if _, err := mocks.Buildings.Create(&domain.Building{Name: "Cedar Court"}); err != nil {
		t.Fatalf("Failed to create building: %v", err)
	}

	c, rec := buildingContext(e, http.MethodDelete, "", "1")

	if err := handler.DeleteBuilding(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}
}
