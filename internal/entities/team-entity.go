package entities

import (
	"github.com/aarondl/null/v8"

	"gearguard/pkg/types"
)

type Team struct {
	ID          uint64      `json:"id" db:"id"`
	Name        string      `json:"name" db:"name"`
	Description null.String `json:"description" db:"description"`

	types.BaseEntity
}
