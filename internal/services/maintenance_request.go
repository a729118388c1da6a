package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"gearguard/internal/authz"
	"gearguard/internal/dto"
	"gearguard/internal/entities"
	"gearguard/internal/events"
	"gearguard/internal/repositories"
	"gearguard/pkg/constants"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/eventbus"
	"gearguard/pkg/utils"
)

type MaintenanceRequestServiceInterface interface {
	CreateRequest(ctx context.Context, principal authz.Principal, payload dto.CreateRequestDTO) (*dto.MaintenanceRequestDTO, error)
	ListRequests(ctx context.Context, principal authz.Principal, filter dto.RequestFilter) ([]dto.MaintenanceRequestDTO, error)
	GetRequest(ctx context.Context, id uint64) (*dto.MaintenanceRequestDTO, error)
	GetVisibleRequest(ctx context.Context, principal authz.Principal, id uint64) (*dto.MaintenanceRequestDTO, error)
	UpdateRequest(ctx context.Context, principal authz.Principal, id uint64, payload dto.UpdateRequestDTO) (*dto.MaintenanceRequestDTO, error)
	PickRequest(ctx context.Context, principal authz.Principal, id uint64) (*dto.MaintenanceRequestDTO, error)
	DeleteRequest(ctx context.Context, id uint64) error
	GetHistory(ctx context.Context, principal authz.Principal, id uint64) ([]dto.RequestHistoryDTO, error)
}

// MaintenanceRequestService - жизненный цикл заявки: создание, видимость,
// переходы статусов и побочные эффекты на оборудовании.
type MaintenanceRequestService struct {
	txManager     repositories.TxManagerInterface
	requestRepo   repositories.MaintenanceRequestRepositoryInterface
	equipmentRepo repositories.EquipmentRepositoryInterface
	teamRepo      repositories.TeamRepositoryInterface
	userRepo      repositories.UserRepositoryInterface
	historyRepo   repositories.RequestHistoryRepositoryInterface
	bus           *eventbus.Bus
	policy        authz.LifecyclePolicy
	logger        *zap.Logger
	now           func() time.Time
}

func NewMaintenanceRequestService(
	txManager repositories.TxManagerInterface,
	requestRepo repositories.MaintenanceRequestRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	teamRepo repositories.TeamRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	historyRepo repositories.RequestHistoryRepositoryInterface,
	bus *eventbus.Bus,
	policy authz.LifecyclePolicy,
	logger *zap.Logger,
) MaintenanceRequestServiceInterface {
	return &MaintenanceRequestService{
		txManager:     txManager,
		requestRepo:   requestRepo,
		equipmentRepo: equipmentRepo,
		teamRepo:      teamRepo,
		userRepo:      userRepo,
		historyRepo:   historyRepo,
		bus:           bus,
		policy:        policy,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *MaintenanceRequestService) CreateRequest(ctx context.Context, principal authz.Principal, payload dto.CreateRequestDTO) (*dto.MaintenanceRequestDTO, error) {
	title := strings.TrimSpace(payload.Title)
	if title == "" {
		return nil, apperrors.NewInvalidInputError("Название заявки обязательно")
	}
	reqType := payload.Type
	if reqType == "" {
		reqType = constants.TypeCorrective
	} else if !reqType.IsValid() {
		return nil, apperrors.NewInvalidInputError("Неизвестный тип заявки: %s", reqType)
	}
	priority := payload.Priority
	if priority == "" {
		priority = constants.PriorityMedium
	} else if !priority.IsValid() {
		return nil, apperrors.NewInvalidInputError("Неизвестный приоритет: %s", priority)
	}
	if payload.EquipmentID == 0 {
		return nil, apperrors.NewInvalidInputError("Не указано оборудование")
	}

	equipment, err := s.equipmentRepo.FindByID(ctx, payload.EquipmentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewInvalidInputError("Оборудование с ID %d не найдено", payload.EquipmentID)
		}
		s.logger.Error("CreateRequest: ошибка получения оборудования", zap.Uint64("equipmentID", payload.EquipmentID), zap.Error(err))
		return nil, err
	}

	// Команда всегда берётся из оборудования; team_id из тела запроса игнорируется.
	req := &entities.MaintenanceRequest{
		Title:       title,
		Description: payload.Description,
		EquipmentID: equipment.ID,
		Type:        reqType,
		Status:      constants.StatusNew,
		Priority:    priority,
		ScheduledAt: payload.ScheduledAt,
		DueAt:       payload.DueAt,
		TeamID:      equipment.TeamID,
		CreatedBy:   principal.ID,
		CreatedAt:   s.now(),
	}

	txID := uuid.New()
	var created *entities.MaintenanceRequest
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		created, err = s.requestRepo.CreateInTx(ctx, tx, req)
		if err != nil {
			return err
		}
		return s.historyRepo.CreateInTx(ctx, tx, []entities.RequestHistory{{
			RequestID: created.ID,
			UserID:    principal.ID,
			EventType: constants.HistoryEventCreate,
			NewValue:  null.StringFrom(string(created.Status)),
			TxID:      txID,
		}})
	})
	if err != nil {
		s.logger.Error("CreateRequest: ошибка сохранения заявки", zap.Uint64("userID", principal.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Заявка создана",
		zap.Uint64("requestID", created.ID),
		zap.Uint64("equipmentID", created.EquipmentID),
		zap.Uint64("userID", principal.ID),
	)
	return s.populateOne(ctx, created)
}

func (s *MaintenanceRequestService) ListRequests(ctx context.Context, principal authz.Principal, filter dto.RequestFilter) ([]dto.MaintenanceRequestDTO, error) {
	if filter.Type != "" && !filter.Type.IsValid() {
		return nil, apperrors.NewInvalidInputError("Неизвестный тип заявки: %s", filter.Type)
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, apperrors.NewInvalidInputError("Неизвестный статус: %s", filter.Status)
	}

	scope := authz.VisibilityScope(principal)
	if scope.Deny {
		return []dto.MaintenanceRequestDTO{}, nil
	}

	items, err := s.requestRepo.List(ctx, scope, filter)
	if err != nil {
		s.logger.Error("ListRequests: ошибка получения списка", zap.Uint64("userID", principal.ID), zap.Error(err))
		return nil, err
	}
	return s.populate(ctx, items)
}

// GetRequest возвращает заявку без проверки видимости.
func (s *MaintenanceRequestService) GetRequest(ctx context.Context, id uint64) (*dto.MaintenanceRequestDTO, error) {
	req, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.populateOne(ctx, req)
}

// GetVisibleRequest - GetRequest с проверкой области видимости пользователя.
func (s *MaintenanceRequestService) GetVisibleRequest(ctx context.Context, principal authz.Principal, id uint64) (*dto.MaintenanceRequestDTO, error) {
	req, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanView(principal, req) {
		return nil, apperrors.NewAccessDeniedError("Нет доступа к заявке %d", id)
	}
	return s.populateOne(ctx, req)
}

func (s *MaintenanceRequestService) UpdateRequest(ctx context.Context, principal authz.Principal, id uint64, payload dto.UpdateRequestDTO) (*dto.MaintenanceRequestDTO, error) {
	txID := uuid.New()
	var (
		updated       *entities.MaintenanceRequest
		prevStatus    constants.RequestStatus
		statusChanged bool
	)

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		req, err := s.requestRepo.FindForUpdateInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := authz.CheckActOnRequest(principal, req); err != nil {
			return err
		}
		if err := validateUpdatePayload(payload); err != nil {
			return err
		}

		prev := *req
		prevStatus = prev.Status
		statusChanged = payload.Status != nil && *payload.Status != prev.Status

		if err := s.checkTerminalLock(&prev, payload, statusChanged); err != nil {
			return err
		}
		if statusChanged {
			if err := authz.CheckStatusChange(principal, &prev, *payload.Status); err != nil {
				return err
			}
		}

		mergeUpdate(req, payload)

		scrapped := prev.Status != constants.StatusScrap && req.Status == constants.StatusScrap

		var completedAt time.Time
		completed := false
		if req.Status == constants.StatusRepaired && !req.CompletedAt.Valid {
			if payload.Duration == nil {
				return apperrors.NewInvalidInputError("Не указана длительность работ (duration)")
			}
			completedAt = s.now()
			req.CompletedAt = null.TimeFrom(completedAt)
			completed = true
		}

		updated, err = s.requestRepo.UpdateInTx(ctx, tx, req)
		if err != nil {
			return err
		}
		if scrapped {
			if err := s.equipmentRepo.MarkScrappedInTx(ctx, tx, req.EquipmentID); err != nil {
				return err
			}
		}
		if completed {
			if err := s.equipmentRepo.SetLastMaintenanceInTx(ctx, tx, req.EquipmentID, completedAt); err != nil {
				return err
			}
		}
		return s.historyRepo.CreateInTx(ctx, tx, diffHistory(&prev, updated, principal.ID, txID))
	})
	if err != nil {
		if isClientError(err) {
			s.logger.Debug("UpdateRequest: отклонено", zap.Uint64("requestID", id), zap.Uint64("userID", principal.ID), zap.Error(err))
		} else {
			s.logger.Error("UpdateRequest: ошибка обновления", zap.Uint64("requestID", id), zap.Uint64("userID", principal.ID), zap.Error(err))
		}
		return nil, err
	}

	if statusChanged {
		s.publishStatusChanged(ctx, updated, principal.ID, prevStatus, txID)
	}
	return s.populateOne(ctx, updated)
}

// PickRequest - техник забирает заявку своей команды себе и переводит её в работу.
func (s *MaintenanceRequestService) PickRequest(ctx context.Context, principal authz.Principal, id uint64) (*dto.MaintenanceRequestDTO, error) {
	txID := uuid.New()
	var (
		result     *entities.MaintenanceRequest
		prevStatus constants.RequestStatus
	)

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		req, err := s.requestRepo.FindForUpdateInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := authz.CheckPick(principal, req); err != nil {
			return err
		}
		if s.policy.TerminalLock != authz.TerminalLockNone && req.Status.IsTerminal() {
			return apperrors.NewInvalidInputError("Заявка в статусе %s не может быть взята в работу", req.Status)
		}

		assignedToSelf := req.AssignedTo.Valid && req.AssignedTo.Uint64 == principal.ID
		if req.AssignedTo.Valid && !assignedToSelf && !s.policy.AllowRepick {
			return apperrors.NewAccessDeniedError("Заявка уже назначена другому технику")
		}

		prev := *req
		prevStatus = prev.Status
		if assignedToSelf && req.Status == constants.StatusInProgress {
			result = req
			return nil
		}

		req.AssignedTo = null.Uint64From(principal.ID)
		req.Status = constants.StatusInProgress

		result, err = s.requestRepo.UpdateInTx(ctx, tx, req)
		if err != nil {
			return err
		}
		return s.historyRepo.CreateInTx(ctx, tx, diffHistory(&prev, result, principal.ID, txID))
	})
	if err != nil {
		if isClientError(err) {
			s.logger.Debug("PickRequest: отклонено", zap.Uint64("requestID", id), zap.Uint64("userID", principal.ID), zap.Error(err))
		} else {
			s.logger.Error("PickRequest: ошибка", zap.Uint64("requestID", id), zap.Uint64("userID", principal.ID), zap.Error(err))
		}
		return nil, err
	}

	if prevStatus != result.Status {
		s.publishStatusChanged(ctx, result, principal.ID, prevStatus, txID)
	}
	s.logger.Info("Заявка взята в работу", zap.Uint64("requestID", id), zap.Uint64("userID", principal.ID))
	return s.populateOne(ctx, result)
}

func (s *MaintenanceRequestService) DeleteRequest(ctx context.Context, id uint64) error {
	if err := s.requestRepo.Delete(ctx, id); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Error("DeleteRequest: ошибка удаления", zap.Uint64("requestID", id), zap.Error(err))
		}
		return err
	}
	s.logger.Info("Заявка удалена", zap.Uint64("requestID", id))
	return nil
}

func (s *MaintenanceRequestService) GetHistory(ctx context.Context, principal authz.Principal, id uint64) ([]dto.RequestHistoryDTO, error) {
	req, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanView(principal, req) {
		return nil, apperrors.NewAccessDeniedError("Нет доступа к заявке %d", id)
	}

	items, err := s.historyRepo.FindByRequestID(ctx, id)
	if err != nil {
		return nil, err
	}

	userIDs := make(idSet)
	for _, h := range items {
		userIDs.add(h.UserID)
	}
	users, err := s.userRepo.FindByIDs(ctx, userIDs.slice())
	if err != nil {
		return nil, err
	}

	out := make([]dto.RequestHistoryDTO, 0, len(items))
	for _, h := range items {
		item := dto.RequestHistoryDTO{
			ID:        h.ID,
			EventType: h.EventType,
			OldValue:  utils.NullStringPtr(h.OldValue),
			NewValue:  utils.NullStringPtr(h.NewValue),
			TxID:      h.TxID.String(),
			CreatedAt: h.CreatedAt,
		}
		if u, ok := users[h.UserID]; ok {
			item.Actor = toShortUser(u)
		}
		out = append(out, item)
	}
	return out, nil
}

// checkTerminalLock применяет политику к заявкам в статусе repaired или scrap.
func (s *MaintenanceRequestService) checkTerminalLock(req *entities.MaintenanceRequest, payload dto.UpdateRequestDTO, statusChanged bool) error {
	if !req.Status.IsTerminal() {
		return nil
	}
	switch s.policy.TerminalLock {
	case authz.TerminalLockAll:
		if !payload.IsEmpty() {
			return apperrors.NewInvalidInputError("Заявка в статусе %s доступна только для чтения", req.Status)
		}
	case authz.TerminalLockStatus:
		if statusChanged {
			return apperrors.NewInvalidInputError("Недопустимый переход статуса: %s -> %s", req.Status, *payload.Status)
		}
	}
	return nil
}

func (s *MaintenanceRequestService) publishStatusChanged(ctx context.Context, req *entities.MaintenanceRequest, actorID uint64, from constants.RequestStatus, txID uuid.UUID) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, events.RequestStatusChangedEvent{
		RequestID:   req.ID,
		EquipmentID: req.EquipmentID,
		ActorID:     actorID,
		From:        from,
		To:          req.Status,
		TxID:        txID,
	})
}

func (s *MaintenanceRequestService) populateOne(ctx context.Context, req *entities.MaintenanceRequest) (*dto.MaintenanceRequestDTO, error) {
	items, err := s.populate(ctx, []entities.MaintenanceRequest{*req})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

// populate подставляет оборудование, команду, исполнителя и автора пакетными запросами.
func (s *MaintenanceRequestService) populate(ctx context.Context, items []entities.MaintenanceRequest) ([]dto.MaintenanceRequestDTO, error) {
	out := make([]dto.MaintenanceRequestDTO, 0, len(items))
	if len(items) == 0 {
		return out, nil
	}

	equipmentIDs, teamIDs, userIDs := make(idSet), make(idSet), make(idSet)
	for _, r := range items {
		equipmentIDs.add(r.EquipmentID)
		if r.TeamID.Valid {
			teamIDs.add(r.TeamID.Uint64)
		}
		if r.AssignedTo.Valid {
			userIDs.add(r.AssignedTo.Uint64)
		}
		userIDs.add(r.CreatedBy)
	}

	equipment, err := s.equipmentRepo.FindByIDs(ctx, equipmentIDs.slice())
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки оборудования: %w", err)
	}
	teams, err := s.teamRepo.FindByIDs(ctx, teamIDs.slice())
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки команд: %w", err)
	}
	users, err := s.userRepo.FindByIDs(ctx, userIDs.slice())
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки пользователей: %w", err)
	}

	for _, r := range items {
		out = append(out, toRequestDTO(r, equipment, teams, users))
	}
	return out, nil
}

func validateUpdatePayload(payload dto.UpdateRequestDTO) error {
	if payload.Status != nil && !payload.Status.IsValid() {
		return apperrors.NewInvalidInputError("Неизвестный статус: %s", *payload.Status)
	}
	if payload.Priority != nil && !payload.Priority.IsValid() {
		return apperrors.NewInvalidInputError("Неизвестный приоритет: %s", *payload.Priority)
	}
	if payload.Title != nil && strings.TrimSpace(*payload.Title) == "" {
		return apperrors.NewInvalidInputError("Название заявки не может быть пустым")
	}
	if payload.Duration != nil && *payload.Duration <= 0 {
		return apperrors.NewInvalidInputError("Длительность должна быть больше нуля")
	}
	return nil
}

// mergeUpdate переносит в заявку только разрешённые поля.
func mergeUpdate(req *entities.MaintenanceRequest, payload dto.UpdateRequestDTO) {
	if payload.Status != nil {
		req.Status = *payload.Status
	}
	if payload.Title != nil {
		req.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Description != nil {
		req.Description = null.StringFrom(*payload.Description)
	}
	if payload.Priority != nil {
		req.Priority = *payload.Priority
	}
	if payload.ScheduledAt != nil {
		req.ScheduledAt = null.TimeFrom(*payload.ScheduledAt)
	}
	if payload.DueAt != nil {
		req.DueAt = null.TimeFrom(*payload.DueAt)
	}
	if payload.Duration != nil {
		req.Duration = null.Float64From(*payload.Duration)
	}
}

// diffHistory строит события истории по разнице двух версий заявки.
func diffHistory(prev, next *entities.MaintenanceRequest, actorID uint64, txID uuid.UUID) []entities.RequestHistory {
	var out []entities.RequestHistory
	add := func(eventType, oldValue, newValue string) {
		out = append(out, entities.RequestHistory{
			RequestID: next.ID,
			UserID:    actorID,
			EventType: eventType,
			OldValue:  null.NewString(oldValue, oldValue != ""),
			NewValue:  null.NewString(newValue, newValue != ""),
			TxID:      txID,
		})
	}

	if prev.Status != next.Status {
		add(constants.HistoryEventStatusChange, string(prev.Status), string(next.Status))
	}
	if formatNullUint(prev.AssignedTo) != formatNullUint(next.AssignedTo) {
		add(constants.HistoryEventAssign, formatNullUint(prev.AssignedTo), formatNullUint(next.AssignedTo))
	}
	if prev.Priority != next.Priority {
		add(constants.HistoryEventPriorityChange, string(prev.Priority), string(next.Priority))
	}

	fields := []struct {
		name          string
		before, after string
	}{
		{"title", prev.Title, next.Title},
		{"description", prev.Description.String, next.Description.String},
		{"scheduled_at", formatNullTime(prev.ScheduledAt), formatNullTime(next.ScheduledAt)},
		{"due_at", formatNullTime(prev.DueAt), formatNullTime(next.DueAt)},
		{"duration", formatNullFloat(prev.Duration), formatNullFloat(next.Duration)},
		{"completed_at", formatNullTime(prev.CompletedAt), formatNullTime(next.CompletedAt)},
	}
	for _, f := range fields {
		if f.before != f.after {
			add(constants.HistoryEventFieldChange, f.name+": "+f.before, f.name+": "+f.after)
		}
	}
	return out
}

func isClientError(err error) bool {
	return errors.Is(err, apperrors.ErrValidation) ||
		errors.Is(err, apperrors.ErrForbidden) ||
		errors.Is(err, apperrors.ErrNotFound)
}

func formatNullUint(v null.Uint64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatUint(v.Uint64, 10)
}

func formatNullTime(v null.Time) string {
	if !v.Valid {
		return ""
	}
	return v.Time.UTC().Format(time.RFC3339)
}

func formatNullFloat(v null.Float64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}

type idSet map[uint64]struct{}

func (s idSet) add(id uint64) { s[id] = struct{}{} }

func (s idSet) slice() []uint64 {
	out := make([]uint64, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}
