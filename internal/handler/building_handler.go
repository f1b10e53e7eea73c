package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/mertdogan/duesly/duesly-backend/internal/domain"
	"github.com/mertdogan/duesly/duesly-backend/internal/service"
	"github.com/rs/zerolog/log"
)

// BuildingHandler handles building directory HTTP requests
type BuildingHandler struct {
	buildings *service.BuildingService
}

// NewBuildingHandler creates a new BuildingHandler
func NewBuildingHandler(buildings *service.BuildingService) *BuildingHandler {
	return &BuildingHandler{buildings: buildings}
}

// BuildingRequest is the request body for creating or updating a building
type BuildingRequest struct {
	Name    string  `json:"name"`
	Address *string `json:"address,omitempty"`
}

// CreateBuilding handles POST /api/v1/buildings
func (h *BuildingHandler) CreateBuilding(c echo.Context) error {
	var req BuildingRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	building, err := h.buildings.CreateBuilding(req.Name, req.Address)
	if err != nil {
		return h.buildingError(c, err, "Failed to create building")
	}
	return c.JSON(http.StatusCreated, building)
}

// GetBuildings handles GET /api/v1/buildings
func (h *BuildingHandler) GetBuildings(c echo.Context) error {
	buildings, err := h.buildings.GetBuildings()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get buildings")
		return NewInternalError(c, "Failed to get buildings")
	}
	return c.JSON(http.StatusOK, buildings)
}

// GetBuilding handles GET /api/v1/buildings/:id
func (h *BuildingHandler) GetBuilding(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return NewValidationError(c, "Invalid building id", []ValidationError{
			{Field: "id", Message: "Building id must be a positive integer"},
		})
	}

	building, err := h.buildings.GetBuildingByID(id)
	if err != nil {
		if errors.Is(err, domain.ErrBuildingNotFound) {
			return NewNotFoundError(c, "Building not found")
		}
		log.Error().Err(err).Int64("building_id", id).Msg("Failed to get building")
		return NewInternalError(c, "Failed to get building")
	}
	return c.JSON(http.StatusOK, building)
}

// UpdateBuilding handles PUT /api/v1/buildings/:id
func (h *BuildingHandler) UpdateBuilding(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return NewValidationError(c, "Invalid building id", []ValidationError{
			{Field: "id", Message: "Building id must be a positive integer"},
		})
	}

	var req BuildingRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	building, err := h.buildings.UpdateBuilding(id, req.Name, req.Address)
	if err != nil {
		return h.buildingError(c, err, "Failed to update building")
	}
	return c.JSON(http.StatusOK, building)
}

// DeleteBuilding handles DELETE /api/v1/buildings/:id
func (h *BuildingHandler) DeleteBuilding(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return NewValidationError(c, "Invalid building id", []ValidationError{
			{Field: "id", Message: "Building id must be a positive integer"},
		})
	}

	if err := h.buildings.DeleteBuilding(id); err != nil {
		if errors.Is(err, domain.ErrBuildingNotFound) {
			return NewNotFoundError(c, "Building not found")
		}
		log.Error().Err(err).Int64("building_id", id).Msg("Failed to delete building")
		return NewInternalError(c, "Failed to delete building")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *BuildingHandler) buildingError(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrNameRequired):
		return NewValidationError(c, "Name is required", []ValidationError{
			{Field: "name", Message: "Name must not be empty"},
		})
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Name too long", []ValidationError{
			{Field: "name", Message: "Name exceeds the maximum length"},
		})
	case errors.Is(err, domain.ErrBuildingNotFound):
		return NewNotFoundError(c, "Building not found")
	}
	log.Error().Err(err).Msg(fallback)
	return NewInternalError(c, fallback)
}
