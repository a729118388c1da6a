package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"gearguard/internal/dto"
	"gearguard/internal/repositories"
	"gearguard/pkg/config"
	"gearguard/pkg/constants"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/service"
	"gearguard/pkg/utils"
)

type AuthServiceInterface interface {
	Register(ctx context.Context, payload dto.RegisterDTO) (*dto.AuthResponseDTO, error)
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error)
	Me(ctx context.Context, userID uint64) (*dto.UserDTO, error)
}

type AuthService struct {
	userRepo    repositories.UserRepositoryInterface
	cacheRepo   repositories.CacheRepositoryInterface
	userService UserServiceInterface
	jwtService  service.JWTService
	cfg         config.AuthConfig
	logger      *zap.Logger
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	userService UserServiceInterface,
	jwtService service.JWTService,
	cfg config.AuthConfig,
	logger *zap.Logger,
) AuthServiceInterface {
	return &AuthService{
		userRepo:    userRepo,
		cacheRepo:   cacheRepo,
		userService: userService,
		jwtService:  jwtService,
		cfg:         cfg,
		logger:      logger,
	}
}

// Register - самостоятельная регистрация. Повышенные роли выдаёт только менеджер или администратор.
func (s *AuthService) Register(ctx context.Context, payload dto.RegisterDTO) (*dto.AuthResponseDTO, error) {
	switch payload.Role {
	case "", constants.RoleUser, constants.RoleEmployee:
	default:
		return nil, apperrors.NewAccessDeniedError("Роль '%s' нельзя выбрать при регистрации", payload.Role)
	}

	user, err := s.userService.CreateUser(ctx, payload.CreateUserDTO)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.AuthResponseDTO, error) {
	user, err := s.userRepo.FindByEmail(ctx, payload.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.checkLockout(ctx, user.ID); err != nil {
		return nil, err
	}
	if !utils.CheckPassword(user.Password, payload.Password) {
		s.handleFailedLoginAttempt(ctx, user.ID)
		return nil, apperrors.ErrInvalidCredentials
	}
	s.resetLoginAttempts(ctx, user.ID)

	out, err := s.userService.FindUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Пользователь вошёл в систему", zap.Uint64("userID", user.ID))
	return s.issue(out)
}

func (s *AuthService) Me(ctx context.Context, userID uint64) (*dto.UserDTO, error) {
	return s.userService.FindUser(ctx, userID)
}

func (s *AuthService) issue(user *dto.UserDTO) (*dto.AuthResponseDTO, error) {
	token, err := s.jwtService.GenerateToken(user.ID, user.Role)
	if err != nil {
		s.logger.Error("Не удалось выпустить токен", zap.Uint64("userID", user.ID), zap.Error(err))
		return nil, err
	}
	return &dto.AuthResponseDTO{Token: token, User: *user}, nil
}

func (s *AuthService) checkLockout(ctx context.Context, userID uint64) error {
	if s.cfg.MaxLoginAttempts <= 0 {
		return nil
	}
	if _, err := s.cacheRepo.Get(ctx, fmt.Sprintf("auth:lockout:%d", userID)); err == nil {
		return apperrors.ErrAccountLocked
	}
	return nil
}

func (s *AuthService) handleFailedLoginAttempt(ctx context.Context, userID uint64) {
	if s.cfg.MaxLoginAttempts <= 0 {
		return
	}
	attemptsKey := fmt.Sprintf("auth:login_attempts:%d", userID)
	attempts, err := s.cacheRepo.IncrWithTTL(ctx, attemptsKey, s.cfg.LockoutDuration)
	if err != nil {
		s.logger.Warn("Не удалось учесть неудачную попытку входа", zap.Uint64("userID", userID), zap.Error(err))
		return
	}
	if attempts >= int64(s.cfg.MaxLoginAttempts) {
		_ = s.cacheRepo.Set(ctx, fmt.Sprintf("auth:lockout:%d", userID), "locked", s.cfg.LockoutDuration)
		_ = s.cacheRepo.Del(ctx, attemptsKey)
		s.logger.Warn("Вход временно заблокирован", zap.Uint64("userID", userID))
	}
}

func (s *AuthService) resetLoginAttempts(ctx context.Context, userID uint64) {
	_ = s.cacheRepo.Del(ctx,
		fmt.Sprintf("auth:login_attempts:%d", userID),
		fmt.Sprintf("auth:lockout:%d", userID),
	)
}
