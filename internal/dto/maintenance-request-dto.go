package dto

import (
	"time"

	"github.com/aarondl/null/v8"

	"gearguard/pkg/constants"
)

type CreateRequestDTO struct {
	Title       string                `json:"title" validate:"required,min=1,max=255"`
	Description null.String           `json:"description" validate:"omitempty,max=5000"`
	EquipmentID uint64                `json:"equipment_id" validate:"required"`
	Type        constants.RequestType `json:"type" validate:"omitempty,request_type"`
	Priority    constants.Priority    `json:"priority" validate:"omitempty,request_priority"`
	ScheduledAt null.Time             `json:"scheduled_at"`
	DueAt       null.Time             `json:"due_at"`
	// TeamID принимается, но всегда перезаписывается командой оборудования.
	TeamID *uint64 `json:"team_id"`
}

// UpdateRequestDTO содержит только поля, которые разрешено менять.
// Остальные поля тела запроса (assigned_to, team_id, completed_at ...) игнорируются.
type UpdateRequestDTO struct {
	Status      *constants.RequestStatus `json:"status" validate:"omitempty,request_status"`
	Title       *string                  `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string                  `json:"description" validate:"omitempty,max=5000"`
	Priority    *constants.Priority      `json:"priority" validate:"omitempty,request_priority"`
	ScheduledAt *time.Time               `json:"scheduled_at"`
	DueAt       *time.Time               `json:"due_at"`
	Duration    *float64                 `json:"duration" validate:"omitempty,gt=0"`
}

// RequestFilter - точные фильтры списка; применяются поверх области видимости роли.
type RequestFilter struct {
	Type          constants.RequestType
	TeamID        *uint64
	Status        constants.RequestStatus
	EquipmentID   *uint64
	ScheduledFrom *time.Time
	ScheduledTo   *time.Time
}

type MaintenanceRequestDTO struct {
	ID          uint64                  `json:"id"`
	Title       string                  `json:"title"`
	Description *string                 `json:"description,omitempty"`
	Type        constants.RequestType   `json:"type"`
	Status      constants.RequestStatus `json:"status"`
	Priority    constants.Priority      `json:"priority"`
	ScheduledAt *time.Time              `json:"scheduled_at,omitempty"`
	DueAt       *time.Time              `json:"due_at,omitempty"`
	Duration    *float64                `json:"duration,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
	CompletedAt *time.Time              `json:"completed_at,omitempty"`

	Equipment  *ShortEquipmentDTO `json:"equipment"`
	Team       *ShortTeamDTO      `json:"team"`
	AssignedTo *ShortUserDTO      `json:"assigned_to"`
	CreatedBy  *ShortUserDTO      `json:"created_by"`
}

// IsEmpty - в теле нет ни одного изменяемого поля.
func (d UpdateRequestDTO) IsEmpty() bool {
	return d.Status == nil && d.Title == nil && d.Description == nil && d.Priority == nil &&
		d.ScheduledAt == nil && d.DueAt == nil && d.Duration == nil
}
