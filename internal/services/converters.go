package services

import (
	"gearguard/internal/dto"
	"gearguard/internal/entities"
	"gearguard/pkg/utils"
)

func toShortUser(u entities.User) *dto.ShortUserDTO {
	return &dto.ShortUserDTO{ID: u.ID, Name: u.Name, Email: u.Email}
}

func toShortTeam(t entities.Team) *dto.ShortTeamDTO {
	return &dto.ShortTeamDTO{ID: t.ID, Name: t.Name}
}

func toShortEquipment(e entities.Equipment) *dto.ShortEquipmentDTO {
	return &dto.ShortEquipmentDTO{
		ID:         e.ID,
		Name:       e.Name,
		Code:       e.Code,
		Location:   utils.NullStringPtr(e.Location),
		IsScrapped: e.IsScrapped,
	}
}

func toUserDTO(u entities.User, team *entities.Team) dto.UserDTO {
	out := dto.UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		AvatarURL: utils.NullStringPtr(u.AvatarURL),
		CreatedAt: u.CreatedAt,
	}
	if team != nil {
		out.Team = toShortTeam(*team)
	}
	return out
}

func toEquipmentDTO(e entities.Equipment, team *entities.Team, openRequests int) dto.EquipmentDTO {
	out := dto.EquipmentDTO{
		ID:                e.ID,
		Name:              e.Name,
		Code:              e.Code,
		Description:       utils.NullStringPtr(e.Description),
		Location:          utils.NullStringPtr(e.Location),
		IsScrapped:        e.IsScrapped,
		LastMaintenanceAt: utils.NullTimePtr(e.LastMaintenanceAt),
		OpenRequests:      openRequests,
		CreatedAt:         e.CreatedAt,
	}
	if team != nil {
		out.Team = toShortTeam(*team)
	}
	return out
}

// toRequestDTO собирает заявку с подставленными связями; отсутствующие связи остаются nil.
func toRequestDTO(
	r entities.MaintenanceRequest,
	equipment map[uint64]entities.Equipment,
	teams map[uint64]entities.Team,
	users map[uint64]entities.User,
) dto.MaintenanceRequestDTO {
	out := dto.MaintenanceRequestDTO{
		ID:          r.ID,
		Title:       r.Title,
		Description: utils.NullStringPtr(r.Description),
		Type:        r.Type,
		Status:      r.Status,
		Priority:    r.Priority,
		ScheduledAt: utils.NullTimePtr(r.ScheduledAt),
		DueAt:       utils.NullTimePtr(r.DueAt),
		Duration:    utils.NullFloat64Ptr(r.Duration),
		CreatedAt:   r.CreatedAt,
		CompletedAt: utils.NullTimePtr(r.CompletedAt),
	}
	if e, ok := equipment[r.EquipmentID]; ok {
		out.Equipment = toShortEquipment(e)
	}
	if r.TeamID.Valid {
		if t, ok := teams[r.TeamID.Uint64]; ok {
			out.Team = toShortTeam(t)
		}
	}
	if r.AssignedTo.Valid {
		if u, ok := users[r.AssignedTo.Uint64]; ok {
			out.AssignedTo = toShortUser(u)
		}
	}
	if u, ok := users[r.CreatedBy]; ok {
		out.CreatedBy = toShortUser(u)
	}
	return out
}
