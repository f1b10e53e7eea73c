package service

import (
	"strings"

	"github.com/mertdogan/duesly/duesly-backend/internal/domain"
	"github.com/mertdogan/duesly/duesly-backend/internal/websocket"
)

// BuildingService handles building directory logic
type BuildingService struct {
	buildingRepo   domain.BuildingRepository
	eventPublisher websocket.EventPublisher
}

// NewBuildingService creates a new BuildingService
func NewBuildingService(buildingRepo domain.BuildingRepository) *BuildingService {
	return &BuildingService{buildingRepo: buildingRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *BuildingService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *BuildingService) publishEvent(event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(event)
	}
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return "", domain.ErrNameTooLong
	}
	return name, nil
}

// CreateBuilding creates a new building
func (s *BuildingService) CreateBuilding(name string, address *string) (*domain.Building, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	building, err := s.buildingRepo.Create(&domain.Building{Name: name, Address: address})
	if err != nil {
		return nil, err
	}
	s.publishEvent(websocket.BuildingCreated(building))
	return building, nil
}

// GetBuildings retrieves all buildings
func (s *BuildingService) GetBuildings() ([]*domain.Building, error) {
	return s.buildingRepo.GetAll()
}

// GetBuildingByID retrieves a building by ID
func (s *BuildingService) GetBuildingByID(id int64) (*domain.Building, error) {
	return s.buildingRepo.GetByID(id)
}

// UpdateBuilding updates a building's details
func (s *BuildingService) UpdateBuilding(id int64, name string, address *string) (*domain.Building, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	building, err := s.buildingRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	building.Name = name
	building.Address = address

	updated, err := s.buildingRepo.Update(building)
	if err != nil {
		return nil, err
	}
	s.publishEvent(websocket.BuildingUpdated(updated))
	return updated, nil
}

// DeleteBuilding deletes a building
func (s *BuildingService) DeleteBuilding(id int64) error {
	if err := s.buildingRepo.Delete(id); err != nil {
		return err
	}
	s.publishEvent(websocket.BuildingDeleted(map[string]any{"id": id}))
	return nil
}
