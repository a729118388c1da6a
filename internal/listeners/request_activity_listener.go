package listeners

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"gearguard/internal/events"
	"gearguard/pkg/constants"
	"gearguard/pkg/eventbus"
)

// RequestActivityListener пишет в журнал смены статусов заявок.
type RequestActivityListener struct {
	logger *zap.Logger
}

func NewRequestActivityListener(logger *zap.Logger) *RequestActivityListener {
	return &RequestActivityListener{logger: logger}
}

func (l *RequestActivityListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(constants.EventRequestStatusChanged, l.handleStatusChanged)
}

func (l *RequestActivityListener) handleStatusChanged(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.RequestStatusChangedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события: %T", event)
	}

	fields := []zap.Field{
		zap.Uint64("requestID", e.RequestID),
		zap.Uint64("equipmentID", e.EquipmentID),
		zap.Uint64("actorID", e.ActorID),
		zap.String("from", string(e.From)),
		zap.String("to", string(e.To)),
		zap.String("txID", e.TxID.String()),
	}
	switch e.To {
	case constants.StatusScrap:
		l.logger.Warn("Оборудование списано по заявке", fields...)
	case constants.StatusRepaired:
		l.logger.Info("Заявка выполнена", fields...)
	default:
		l.logger.Info("Статус заявки изменён", fields...)
	}
	return nil
}
