package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"gearguard/internal/authz"
	"gearguard/internal/dto"
	"gearguard/internal/repositories"
)

type DashboardServiceInterface interface {
	GetStats(ctx context.Context, principal authz.Principal) (*dto.DashboardStatsDTO, error)
}

type DashboardService struct {
	equipmentRepo repositories.EquipmentRepositoryInterface
	requestRepo   repositories.MaintenanceRequestRepositoryInterface
	logger        *zap.Logger
	now           func() time.Time
}

func NewDashboardService(
	equipmentRepo repositories.EquipmentRepositoryInterface,
	requestRepo repositories.MaintenanceRequestRepositoryInterface,
	logger *zap.Logger,
) DashboardServiceInterface {
	return &DashboardService{
		equipmentRepo: equipmentRepo,
		requestRepo:   requestRepo,
		logger:        logger,
		now:           time.Now,
	}
}

// GetStats считает заявки в пределах видимости пользователя.
// Просроченная - due_at в прошлом и статус не repaired/scrap.
func (s *DashboardService) GetStats(ctx context.Context, principal authz.Principal) (*dto.DashboardStatsDTO, error) {
	equipment, err := s.equipmentRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	stats := &dto.DashboardStatsDTO{Equipment: equipment}
	scope := authz.VisibilityScope(principal)
	if scope.Deny {
		return stats, nil
	}

	counters, err := s.requestRepo.Counters(ctx, scope, s.now())
	if err != nil {
		s.logger.Error("GetStats: ошибка подсчета заявок", zap.Uint64("userID", principal.ID), zap.Error(err))
		return nil, err
	}
	stats.Requests = counters.Total
	stats.InProgress = counters.InProgress
	stats.Overdue = counters.Overdue
	return stats, nil
}
