package authz

import (
	"context"

	"gearguard/pkg/constants"
	"gearguard/pkg/contextkeys"
	apperrors "gearguard/pkg/errors"
)

// Principal - действующий пользователь: id, роль и команда.
type Principal struct {
	ID     uint64         `json:"id"`
	Role   constants.Role `json:"role"`
	TeamID *uint64        `json:"team_id,omitempty"`
}

func (p Principal) IsTechnician() bool { return p.Role == constants.RoleTechnician }

// IsSupervisor - менеджеры и администраторы видят и правят всё.
func (p Principal) IsSupervisor() bool {
	return p.Role == constants.RoleManager || p.Role == constants.RoleAdmin
}

// IsRequester - user и employee синонимы.
func (p Principal) IsRequester() bool {
	return p.Role == constants.RoleUser || p.Role == constants.RoleEmployee
}

// InTeam сообщает, состоит ли пользователь в указанной команде.
// Заявка без команды не принадлежит ни одному техническому специалисту.
func (p Principal) InTeam(teamID *uint64) bool {
	if p.TeamID == nil || teamID == nil {
		return false
	}
	return *p.TeamID == *teamID
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextkeys.PrincipalKey, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, error) {
	p, ok := ctx.Value(contextkeys.PrincipalKey).(Principal)
	if !ok || p.ID == 0 {
		return Principal{}, apperrors.ErrPrincipalNotFoundInContext
	}
	return p, nil
}
