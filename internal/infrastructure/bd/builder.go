package db

import (
	sq "github.com/Masterminds/squirrel"

	"gearguard/internal/authz"
	"gearguard/internal/dto"
)

// ScopeCondition переводит область видимости роли в условие WHERE.
// nil означает отсутствие ограничений.
func ScopeCondition(scope authz.Scope, alias string) sq.Sqlizer {
	if scope.Deny {
		return sq.Expr("FALSE")
	}

	var conds sq.And
	if scope.CreatedBy != nil {
		conds = append(conds, sq.Eq{col(alias, "created_by"): *scope.CreatedBy})
	}
	if scope.TeamID != nil {
		conds = append(conds, sq.Eq{col(alias, "team_id"): *scope.TeamID})
	}
	if len(conds) == 0 {
		return nil
	}
	return conds
}

func ApplySecurity(b sq.SelectBuilder, securityCondition sq.Sqlizer) sq.SelectBuilder {
	if securityCondition != nil {
		return b.Where(securityCondition)
	}
	return b
}

// ApplyRequestFilter добавляет точные фильтры списка заявок.
// Все фильтры объединяются через AND.
func ApplyRequestFilter(b sq.SelectBuilder, filter dto.RequestFilter, alias string) sq.SelectBuilder {
	if filter.Type != "" {
		b = b.Where(sq.Eq{col(alias, "type"): filter.Type})
	}
	if filter.Status != "" {
		b = b.Where(sq.Eq{col(alias, "status"): filter.Status})
	}
	if filter.TeamID != nil {
		b = b.Where(sq.Eq{col(alias, "team_id"): *filter.TeamID})
	}
	if filter.EquipmentID != nil {
		b = b.Where(sq.Eq{col(alias, "equipment_id"): *filter.EquipmentID})
	}
	if filter.ScheduledFrom != nil {
		b = b.Where(sq.GtOrEq{col(alias, "scheduled_at"): *filter.ScheduledFrom})
	}
	if filter.ScheduledTo != nil {
		b = b.Where(sq.LtOrEq{col(alias, "scheduled_at"): *filter.ScheduledTo})
	}
	return b
}

func col(alias, name string) string {
	if alias == "" {
		return name
	}
	return alias + "." + name
}
