package listeners

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"gearguard/internal/events"
	"gearguard/internal/services"
	"gearguard/pkg/constants"
	"gearguard/pkg/eventbus"
)

// PrincipalCacheListener сбрасывает кеш Principal при изменении пользователя.
type PrincipalCacheListener struct {
	principals services.PrincipalServiceInterface
	logger     *zap.Logger
}

func NewPrincipalCacheListener(principals services.PrincipalServiceInterface, logger *zap.Logger) *PrincipalCacheListener {
	return &PrincipalCacheListener{principals: principals, logger: logger}
}

func (l *PrincipalCacheListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(constants.EventUserChanged, l.handleUserChanged)
	l.logger.Info("PrincipalCacheListener подписан на событие", zap.String("event", constants.EventUserChanged))
}

func (l *PrincipalCacheListener) handleUserChanged(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.UserChangedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}
	return l.principals.Invalidate(ctx, e.UserID)
}
