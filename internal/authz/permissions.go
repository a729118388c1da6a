// internal/authz/permissions.go
package authz

import "gearguard/pkg/constants"

// AllowedTransitions возвращает статусы, в которые роль может перевести заявку из from.
// Для менеджеров и администраторов таблица не применяется, см. CanTransition.
func AllowedTransitions(role constants.Role, from constants.RequestStatus) []constants.RequestStatus {
	if role != constants.RoleTechnician {
		return nil
	}
	switch from {
	case constants.StatusNew:
		return []constants.RequestStatus{constants.StatusInProgress}
	case constants.StatusInProgress:
		return []constants.RequestStatus{constants.StatusRepaired}
	}
	return nil
}

// CanTransition проверяет переход статуса для роли.
func CanTransition(role constants.Role, from, to constants.RequestStatus) bool {
	switch role {
	case constants.RoleManager, constants.RoleAdmin:
		return to.IsValid()
	case constants.RoleTechnician:
		for _, allowed := range AllowedTransitions(role, from) {
			if allowed == to {
				return true
			}
		}
	}
	return false
}

// RequiresAssignee - в эти статусы техник переводит только свою заявку.
func RequiresAssignee(to constants.RequestStatus) bool {
	return to == constants.StatusInProgress || to == constants.StatusRepaired
}
