package authz

import (
	"gearguard/internal/entities"
	"gearguard/pkg/constants"
	apperrors "gearguard/pkg/errors"
)

// CheckActOnRequest - правило 1: техник работает только с заявками своей команды.
// Менеджеры и администраторы проходят всегда, обычные пользователи заявки не правят.
func CheckActOnRequest(p Principal, req *entities.MaintenanceRequest) error {
	switch {
	case p.IsSupervisor():
		return nil
	case p.IsTechnician():
		if !p.InTeam(req.TeamPtr()) {
			return apperrors.NewAccessDeniedError("Нет прав на изменение этой заявки: заявка другой команды")
		}
		return nil
	}
	return apperrors.NewAccessDeniedError("Нет прав на изменение заявок")
}

// CheckStatusChange - правила 2 и 3 для смены статуса техником.
func CheckStatusChange(p Principal, req *entities.MaintenanceRequest, to constants.RequestStatus) error {
	if !p.IsTechnician() {
		return nil
	}
	from := req.Status
	if !CanTransition(p.Role, from, to) {
		return apperrors.NewInvalidInputError("Недопустимый переход статуса: %s -> %s", from, to)
	}
	if RequiresAssignee(to) && (!req.AssignedTo.Valid || req.AssignedTo.Uint64 != p.ID) {
		return apperrors.NewAccessDeniedError("Перевести заявку в %s может только назначенный техник", to)
	}
	return nil
}

// CheckPick - забрать заявку может только техник её команды.
func CheckPick(p Principal, req *entities.MaintenanceRequest) error {
	if !p.IsTechnician() || !p.InTeam(req.TeamPtr()) {
		return apperrors.NewAccessDeniedError("Нет прав забрать эту заявку")
	}
	return nil
}
