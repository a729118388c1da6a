package authz

import (
	"gearguard/internal/entities"
)

// Scope - ограничение выборки заявок по роли.
// Пустой Scope означает "все заявки"; Deny - ни одной.
type Scope struct {
	CreatedBy *uint64
	TeamID    *uint64
	Deny      bool
}

// VisibilityScope вычисляет область видимости заявок:
// обычный пользователь видит только свои, техник - заявки своей команды,
// менеджер и администратор - все.
func VisibilityScope(p Principal) Scope {
	switch {
	case p.IsSupervisor():
		return Scope{}
	case p.IsTechnician():
		if p.TeamID == nil {
			return Scope{Deny: true}
		}
		teamID := *p.TeamID
		return Scope{TeamID: &teamID}
	case p.IsRequester():
		id := p.ID
		return Scope{CreatedBy: &id}
	}
	return Scope{Deny: true}
}

// Allows проверяет одну заявку на попадание в область видимости.
func (s Scope) Allows(req *entities.MaintenanceRequest) bool {
	if s.Deny || req == nil {
		return false
	}
	if s.CreatedBy != nil && req.CreatedBy != *s.CreatedBy {
		return false
	}
	if s.TeamID != nil && (!req.TeamID.Valid || req.TeamID.Uint64 != *s.TeamID) {
		return false
	}
	return true
}

// CanView - видит ли пользователь заявку.
func CanView(p Principal, req *entities.MaintenanceRequest) bool {
	return VisibilityScope(p).Allows(req)
}
