package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"gearguard/internal/authz"
	"gearguard/internal/repositories"
	"gearguard/pkg/constants"
)

type PrincipalServiceInterface interface {
	GetPrincipal(ctx context.Context, userID uint64) (*authz.Principal, error)
	Invalidate(ctx context.Context, userID uint64) error
}

// PrincipalService загружает роль и команду пользователя с кешированием в Redis.
type PrincipalService struct {
	userRepo  repositories.UserRepositoryInterface
	cacheRepo repositories.CacheRepositoryInterface
	logger    *zap.Logger
	cacheTTL  time.Duration
}

func NewPrincipalService(
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	logger *zap.Logger,
	cacheTTL time.Duration,
) PrincipalServiceInterface {
	return &PrincipalService{
		userRepo:  userRepo,
		cacheRepo: cacheRepo,
		logger:    logger,
		cacheTTL:  cacheTTL,
	}
}

func (s *PrincipalService) GetPrincipal(ctx context.Context, userID uint64) (*authz.Principal, error) {
	cacheKey := fmt.Sprintf(constants.CacheKeyPrincipal, userID)

	cached, errGet := s.cacheRepo.Get(ctx, cacheKey)
	if errGet == nil {
		var p authz.Principal
		if err := json.Unmarshal([]byte(cached), &p); err == nil {
			return &p, nil
		} else {
			s.logger.Warn("PrincipalService: Ошибка десериализации из кеша", zap.String("key", cacheKey), zap.Error(err))
		}
	} else {
		s.logger.Debug("PrincipalService: Нет в кеше, запрос к БД", zap.Uint64("userID", userID), zap.Error(errGet))
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := &authz.Principal{ID: user.ID, Role: user.Role}
	if user.TeamID.Valid {
		teamID := user.TeamID.Uint64
		p.TeamID = &teamID
	}

	if payload, errMarshal := json.Marshal(p); errMarshal != nil {
		s.logger.Error("PrincipalService: Не удалось сериализовать для кеша", zap.Uint64("userID", userID), zap.Error(errMarshal))
	} else if errSet := s.cacheRepo.Set(ctx, cacheKey, string(payload), s.cacheTTL); errSet != nil {
		s.logger.Error("PrincipalService: Не удалось сохранить в кеш", zap.Uint64("userID", userID), zap.Error(errSet))
	}
	return p, nil
}

func (s *PrincipalService) Invalidate(ctx context.Context, userID uint64) error {
	cacheKey := fmt.Sprintf(constants.CacheKeyPrincipal, userID)
	if err := s.cacheRepo.Del(ctx, cacheKey); err != nil {
		s.logger.Error("PrincipalService: Ошибка инвалидации кеша", zap.Uint64("userID", userID), zap.Error(err))
		return err
	}
	s.logger.Debug("PrincipalService: Кеш инвалидирован", zap.Uint64("userID", userID))
	return nil
}
