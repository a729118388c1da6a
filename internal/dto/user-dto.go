package dto

import (
	"time"

	"gearguard/pkg/constants"
)

type CreateUserDTO struct {
	Name     string         `json:"name" validate:"required,min=1,max=255"`
	Email    string         `json:"email" validate:"required,custom_email"`
	Password string         `json:"password" validate:"required,min=6"`
	Role     constants.Role `json:"role" validate:"omitempty,user_role"`
	TeamID   *uint64        `json:"team_id"`
}

type UpdateUserDTO struct {
	Name      *string         `json:"name" validate:"omitempty,min=1,max=255"`
	Email     *string         `json:"email" validate:"omitempty,custom_email"`
	Password  *string         `json:"password" validate:"omitempty,min=6"`
	Role      *constants.Role `json:"role" validate:"omitempty,user_role"`
	TeamID    *uint64         `json:"team_id"`
	AvatarURL *string         `json:"avatar_url" validate:"omitempty,url"`
}

type UserDTO struct {
	ID        uint64         `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Role      constants.Role `json:"role"`
	Team      *ShortTeamDTO  `json:"team"`
	AvatarURL *string        `json:"avatar_url,omitempty"`
	CreatedAt *time.Time     `json:"created_at,omitempty"`
}
