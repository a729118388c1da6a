package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"

	"gearguard/internal/dto"
	"gearguard/internal/entities"
	"gearguard/internal/events"
	"gearguard/internal/repositories"
	"gearguard/pkg/constants"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/eventbus"
	"gearguard/pkg/utils"
)

type UserServiceInterface interface {
	GetUsers(ctx context.Context) ([]dto.UserDTO, error)
	FindUser(ctx context.Context, id uint64) (*dto.UserDTO, error)
	CreateUser(ctx context.Context, payload dto.CreateUserDTO) (*dto.UserDTO, error)
	UpdateUser(ctx context.Context, id uint64, payload dto.UpdateUserDTO) (*dto.UserDTO, error)
	DeleteUser(ctx context.Context, id uint64) error
}

type UserService struct {
	userRepo repositories.UserRepositoryInterface
	teamRepo repositories.TeamRepositoryInterface
	bus      *eventbus.Bus
	logger   *zap.Logger
}

func NewUserService(
	userRepo repositories.UserRepositoryInterface,
	teamRepo repositories.TeamRepositoryInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) UserServiceInterface {
	return &UserService{userRepo: userRepo, teamRepo: teamRepo, bus: bus, logger: logger}
}

func (s *UserService) GetUsers(ctx context.Context) ([]dto.UserDTO, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	teamIDs := make(idSet)
	for _, u := range users {
		if u.TeamID.Valid {
			teamIDs.add(u.TeamID.Uint64)
		}
	}
	teams, err := s.teamRepo.FindByIDs(ctx, teamIDs.slice())
	if err != nil {
		return nil, err
	}

	out := make([]dto.UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, toUserDTO(u, lookupTeam(teams, u.TeamID)))
	}
	return out, nil
}

func (s *UserService) FindUser(ctx context.Context, id uint64) (*dto.UserDTO, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withTeam(ctx, user)
}

func (s *UserService) CreateUser(ctx context.Context, payload dto.CreateUserDTO) (*dto.UserDTO, error) {
	role := payload.Role
	if role == "" {
		role = constants.RoleUser
	} else if !role.IsValid() {
		return nil, apperrors.NewInvalidInputError("Неизвестная роль: %s", role)
	}
	if len(payload.Password) < 6 {
		return nil, apperrors.NewInvalidInputError("Пароль должен содержать минимум 6 символов")
	}
	if err := s.ensureEmailFree(ctx, payload.Email, 0); err != nil {
		return nil, err
	}
	if err := s.ensureTeamExists(ctx, payload.TeamID); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(payload.Password)
	if err != nil {
		s.logger.Error("CreateUser: ошибка хеширования пароля", zap.Error(err))
		return nil, err
	}

	user := &entities.User{
		Name:     strings.TrimSpace(payload.Name),
		Email:    normalizeEmail(payload.Email),
		Password: hash,
		Role:     role,
		TeamID:   null.Uint64FromPtr(payload.TeamID),
	}
	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Пользователь создан", zap.Uint64("userID", created.ID), zap.String("role", string(created.Role)))
	return s.withTeam(ctx, created)
}

func (s *UserService) UpdateUser(ctx context.Context, id uint64, payload dto.UpdateUserDTO) (*dto.UserDTO, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload.Name != nil {
		user.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.Email != nil && normalizeEmail(*payload.Email) != user.Email {
		if err := s.ensureEmailFree(ctx, *payload.Email, id); err != nil {
			return nil, err
		}
		user.Email = normalizeEmail(*payload.Email)
	}
	if payload.Password != nil {
		if len(*payload.Password) < 6 {
			return nil, apperrors.NewInvalidInputError("Пароль должен содержать минимум 6 символов")
		}
		hash, err := utils.HashPassword(*payload.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hash
	}
	if payload.Role != nil {
		if !payload.Role.IsValid() {
			return nil, apperrors.NewInvalidInputError("Неизвестная роль: %s", *payload.Role)
		}
		user.Role = *payload.Role
	}
	if payload.TeamID != nil {
		if err := s.ensureTeamExists(ctx, payload.TeamID); err != nil {
			return nil, err
		}
		user.TeamID = null.Uint64From(*payload.TeamID)
	}
	if payload.AvatarURL != nil {
		user.AvatarURL = null.StringFrom(*payload.AvatarURL)
	}

	updated, err := s.userRepo.Update(ctx, user)
	if err != nil {
		return nil, err
	}
	s.publishChanged(ctx, id)
	return s.withTeam(ctx, updated)
}

func (s *UserService) DeleteUser(ctx context.Context, id uint64) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.publishChanged(ctx, id)
	s.logger.Info("Пользователь удалён", zap.Uint64("userID", id))
	return nil
}

func (s *UserService) withTeam(ctx context.Context, user *entities.User) (*dto.UserDTO, error) {
	var team *entities.Team
	if user.TeamID.Valid {
		t, err := s.teamRepo.FindByID(ctx, user.TeamID.Uint64)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		team = t
	}
	out := toUserDTO(*user, team)
	return &out, nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string, selfID uint64) error {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return apperrors.NewHttpError(http.StatusConflict, "Пользователь с таким email уже существует", apperrors.ErrConflict, nil)
	}
	return nil
}

func (s *UserService) ensureTeamExists(ctx context.Context, teamID *uint64) error {
	if teamID == nil {
		return nil
	}
	if _, err := s.teamRepo.FindByID(ctx, *teamID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewInvalidInputError("Команда с ID %d не найдена", *teamID)
		}
		return err
	}
	return nil
}

func (s *UserService) publishChanged(ctx context.Context, userID uint64) {
	if s.bus != nil {
		s.bus.Publish(ctx, events.UserChangedEvent{UserID: userID})
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func lookupTeam(teams map[uint64]entities.Team, id null.Uint64) *entities.Team {
	if !id.Valid {
		return nil
	}
	if t, ok := teams[id.Uint64]; ok {
		return &t
	}
	return nil
}
