package services

import (
	"context"
	"errors"
	"strings"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"

	"gearguard/internal/dto"
	"gearguard/internal/entities"
	"gearguard/internal/repositories"
	apperrors "gearguard/pkg/errors"
)

type EquipmentServiceInterface interface {
	GetEquipment(ctx context.Context) ([]dto.EquipmentDTO, error)
	FindEquipment(ctx context.Context, id uint64) (*dto.EquipmentDTO, error)
	CreateEquipment(ctx context.Context, payload dto.CreateEquipmentDTO) (*dto.EquipmentDTO, error)
	UpdateEquipment(ctx context.Context, id uint64, payload dto.UpdateEquipmentDTO) (*dto.EquipmentDTO, error)
	DeleteEquipment(ctx context.Context, id uint64) error
}

type EquipmentService struct {
	equipmentRepo repositories.EquipmentRepositoryInterface
	teamRepo      repositories.TeamRepositoryInterface
	requestRepo   repositories.MaintenanceRequestRepositoryInterface
	logger        *zap.Logger
}

func NewEquipmentService(
	equipmentRepo repositories.EquipmentRepositoryInterface,
	teamRepo repositories.TeamRepositoryInterface,
	requestRepo repositories.MaintenanceRequestRepositoryInterface,
	logger *zap.Logger,
) EquipmentServiceInterface {
	return &EquipmentService{
		equipmentRepo: equipmentRepo,
		teamRepo:      teamRepo,
		requestRepo:   requestRepo,
		logger:        logger,
	}
}

func (s *EquipmentService) GetEquipment(ctx context.Context) ([]dto.EquipmentDTO, error) {
	items, err := s.equipmentRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.toDTOs(ctx, items)
}

func (s *EquipmentService) FindEquipment(ctx context.Context, id uint64) (*dto.EquipmentDTO, error) {
	e, err := s.equipmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toDTO(ctx, e)
}

func (s *EquipmentService) CreateEquipment(ctx context.Context, payload dto.CreateEquipmentDTO) (*dto.EquipmentDTO, error) {
	if payload.TeamID.Valid {
		if err := s.ensureTeamExists(ctx, payload.TeamID.Uint64); err != nil {
			return nil, err
		}
	}
	created, err := s.equipmentRepo.Create(ctx, &entities.Equipment{
		Name:        strings.TrimSpace(payload.Name),
		Code:        strings.TrimSpace(payload.Code),
		Description: payload.Description,
		Location:    payload.Location,
		TeamID:      payload.TeamID,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Оборудование создано", zap.Uint64("equipmentID", created.ID), zap.String("code", created.Code))
	return s.toDTO(ctx, created)
}

func (s *EquipmentService) UpdateEquipment(ctx context.Context, id uint64, payload dto.UpdateEquipmentDTO) (*dto.EquipmentDTO, error) {
	e, err := s.equipmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload.Name != nil {
		e.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.Code != nil {
		e.Code = strings.TrimSpace(*payload.Code)
	}
	if payload.Description != nil {
		e.Description = null.StringFrom(*payload.Description)
	}
	if payload.Location != nil {
		e.Location = null.StringFrom(*payload.Location)
	}
	if payload.TeamID != nil {
		if err := s.ensureTeamExists(ctx, *payload.TeamID); err != nil {
			return nil, err
		}
		e.TeamID = null.Uint64From(*payload.TeamID)
	}
	if payload.IsScrapped != nil {
		e.IsScrapped = *payload.IsScrapped
	}

	updated, err := s.equipmentRepo.Update(ctx, e)
	if err != nil {
		return nil, err
	}
	return s.toDTO(ctx, updated)
}

func (s *EquipmentService) DeleteEquipment(ctx context.Context, id uint64) error {
	if err := s.equipmentRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Оборудование удалено", zap.Uint64("equipmentID", id))
	return nil
}

func (s *EquipmentService) ensureTeamExists(ctx context.Context, teamID uint64) error {
	if _, err := s.teamRepo.FindByID(ctx, teamID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewInvalidInputError("Команда с ID %d не найдена", teamID)
		}
		return err
	}
	return nil
}

func (s *EquipmentService) toDTO(ctx context.Context, e *entities.Equipment) (*dto.EquipmentDTO, error) {
	items, err := s.toDTOs(ctx, []entities.Equipment{*e})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

// toDTOs добавляет команду и число открытых заявок.
func (s *EquipmentService) toDTOs(ctx context.Context, items []entities.Equipment) ([]dto.EquipmentDTO, error) {
	ids, teamIDs := make([]uint64, 0, len(items)), make(idSet)
	for _, e := range items {
		ids = append(ids, e.ID)
		if e.TeamID.Valid {
			teamIDs.add(e.TeamID.Uint64)
		}
	}

	teams, err := s.teamRepo.FindByIDs(ctx, teamIDs.slice())
	if err != nil {
		return nil, err
	}
	open, err := s.requestRepo.CountOpenByEquipment(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]dto.EquipmentDTO, 0, len(items))
	for _, e := range items {
		out = append(out, toEquipmentDTO(e, lookupTeam(teams, e.TeamID), open[e.ID]))
	}
	return out, nil
}
