package dto

import (
	"time"

	"github.com/aarondl/null/v8"
)

type CreateEquipmentDTO struct {
	Name        string      `json:"name" validate:"required,min=1,max=255"`
	Code        string      `json:"code" validate:"required,min=1,max=100"`
	Description null.String `json:"description" validate:"omitempty,max=5000"`
	Location    null.String `json:"location" validate:"omitempty,max=255"`
	TeamID      null.Uint64 `json:"team_id"`
}

type UpdateEquipmentDTO struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Code        *string `json:"code" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Location    *string `json:"location" validate:"omitempty,max=255"`
	TeamID      *uint64 `json:"team_id"`
	IsScrapped  *bool   `json:"is_scrapped"`
}

type EquipmentDTO struct {
	ID                uint64        `json:"id"`
	Name              string        `json:"name"`
	Code              string        `json:"code"`
	Description       *string       `json:"description,omitempty"`
	Location          *string       `json:"location,omitempty"`
	Team              *ShortTeamDTO `json:"team"`
	IsScrapped        bool          `json:"is_scrapped"`
	LastMaintenanceAt *time.Time    `json:"last_maintenance_at,omitempty"`
	OpenRequests      int           `json:"open_requests"`
	CreatedAt         *time.Time    `json:"created_at,omitempty"`
}

// EquipmentImportResultDTO - итог загрузки оборудования из XLSX.
type EquipmentImportResultDTO struct {
	Created    int      `json:"created"`
	Skipped    int      `json:"skipped"`
	SourceFile string   `json:"source_file,omitempty"`
	Errors     []string `json:"errors"`
}
