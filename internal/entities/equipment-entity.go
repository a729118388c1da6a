package entities

import (
	"github.com/aarondl/null/v8"

	"gearguard/pkg/types"
)

type Equipment struct {
	ID                uint64      `json:"id" db:"id"`
	Name              string      `json:"name" db:"name"`
	Code              string      `json:"code" db:"code"`
	Description       null.String `json:"description" db:"description"`
	Location          null.String `json:"location" db:"location"`
	TeamID            null.Uint64 `json:"team_id" db:"team_id"`
	IsScrapped        bool        `json:"is_scrapped" db:"is_scrapped"`
	LastMaintenanceAt null.Time   `json:"last_maintenance_at" db:"last_maintenance_at"`

	types.BaseEntity
}
