package entities

import (
	"time"

	"github.com/aarondl/null/v8"

	"gearguard/pkg/constants"
)

type MaintenanceRequest struct {
	ID          uint64                  `db:"id"`
	Title       string                  `db:"title"`
	Description null.String             `db:"description"`
	EquipmentID uint64                  `db:"equipment_id"`
	Type        constants.RequestType   `db:"type"`
	Status      constants.RequestStatus `db:"status"`
	Priority    constants.Priority      `db:"priority"`
	ScheduledAt null.Time               `db:"scheduled_at"`
	DueAt       null.Time               `db:"due_at"`
	Duration    null.Float64            `db:"duration"`
	AssignedTo  null.Uint64             `db:"assigned_to"`
	// TeamID копируется из оборудования при создании и больше не меняется.
	TeamID      null.Uint64 `db:"team_id"`
	CreatedBy   uint64      `db:"created_by"`
	CreatedAt   time.Time   `db:"created_at"`
	CompletedAt null.Time   `db:"completed_at"`
}

// TeamPtr - команда заявки как *uint64 для сравнения с authz.Principal.
func (r *MaintenanceRequest) TeamPtr() *uint64 {
	if !r.TeamID.Valid {
		return nil
	}
	id := r.TeamID.Uint64
	return &id
}
