// pkg/constants/constants.go
package constants

//============== РОЛИ ==============

type Role string

const (
	RoleUser       Role = "user"
	RoleEmployee   Role = "employee"
	RoleTechnician Role = "technician"
	RoleManager    Role = "manager"
	RoleAdmin      Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleEmployee, RoleTechnician, RoleManager, RoleAdmin:
		return true
	}
	return false
}

//============== ИСТОРИЯ ЗАЯВОК ==============

// Типы событий в request_history.
const (
	HistoryEventCreate         = "CREATE"
	HistoryEventStatusChange   = "STATUS_CHANGE"
	HistoryEventAssign         = "ASSIGN"
	HistoryEventPriorityChange = "PRIORITY_CHANGE"
	HistoryEventFieldChange    = "FIELD_CHANGE"
)

//============== CACHE KEYS ==============

// Префиксы для ключей в Redis/кеше.
const (
	// Формат: auth:principal:<userID> -> JSON authz.Principal
	CacheKeyPrincipal = "auth:principal:%d"
)

//============== EVENTS ==============

const (
	EventUserChanged          = "user.changed"
	EventRequestStatusChanged = "request.status.changed"
)
