package dto

import "time"

type RequestHistoryDTO struct {
	ID        uint64        `json:"id"`
	EventType string        `json:"event_type"`
	OldValue  *string       `json:"old_value,omitempty"`
	NewValue  *string       `json:"new_value,omitempty"`
	TxID      string        `json:"tx_id"`
	Actor     *ShortUserDTO `json:"actor"`
	CreatedAt time.Time     `json:"created_at"`
}
