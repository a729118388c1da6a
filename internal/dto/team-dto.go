package dto

import "github.com/aarondl/null/v8"

type CreateTeamDTO struct {
	Name        string      `json:"name" validate:"required,min=1,max=255"`
	Description null.String `json:"description" validate:"omitempty,max=2000"`
}

type UpdateTeamDTO struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type TeamDTO struct {
	ID          uint64         `json:"id"`
	Name        string         `json:"name"`
	Description *string        `json:"description,omitempty"`
	Members     []ShortUserDTO `json:"members"`
}
