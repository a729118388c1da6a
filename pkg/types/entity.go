package types

import "time"

// BaseEntity - служебные временные метки, общие для справочников.
type BaseEntity struct {
	CreatedAt *time.Time `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at" db:"updated_at"`
}
