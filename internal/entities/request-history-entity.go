package entities

import (
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
)

type RequestHistory struct {
	ID        uint64      `db:"id"`
	RequestID uint64      `db:"request_id"`
	UserID    uint64      `db:"user_id"`
	EventType string      `db:"event_type"`
	OldValue  null.String `db:"old_value"`
	NewValue  null.String `db:"new_value"`
	// TxID объединяет события одного изменения заявки.
	TxID      uuid.UUID `db:"tx_id"`
	CreatedAt time.Time `db:"created_at"`
}
