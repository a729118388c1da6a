// Файл: internal/entities/user_entity.go
package entities

import (
	"github.com/aarondl/null/v8"

	"gearguard/pkg/constants"
	"gearguard/pkg/types"
)

type User struct {
	ID        uint64         `json:"id" db:"id"`
	Name      string         `json:"name" db:"name"`
	Email     string         `json:"email" db:"email"`
	Password  string         `json:"-" db:"password_hash"`
	Role      constants.Role `json:"role" db:"role"`
	TeamID    null.Uint64    `json:"team_id" db:"team_id"`
	AvatarURL null.String    `json:"avatar_url,omitempty" db:"avatar_url"`

	types.BaseEntity
}
