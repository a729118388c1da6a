package events

import (
	"github.com/google/uuid"

	"gearguard/pkg/constants"
)

// UserChangedEvent - пользователь изменён или удалён; кеш Principal устарел.
type UserChangedEvent struct {
	UserID uint64
}

func (e UserChangedEvent) Name() string {
	return constants.EventUserChanged
}

// RequestStatusChangedEvent публикуется после коммита смены статуса заявки.
type RequestStatusChangedEvent struct {
	RequestID   uint64
	EquipmentID uint64
	ActorID     uint64
	From        constants.RequestStatus
	To          constants.RequestStatus
	TxID        uuid.UUID
}

func (e RequestStatusChangedEvent) Name() string {
	return constants.EventRequestStatusChanged
}
