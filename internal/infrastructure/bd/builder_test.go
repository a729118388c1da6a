package db

import (
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gearguard/internal/authz"
	"gearguard/internal/dto"
	"gearguard/pkg/constants"
)

func toSQL(t *testing.T, b sq.SelectBuilder) (string, []interface{}) {
	t.Helper()
	query, args, err := b.PlaceholderFormat(sq.Dollar).ToSql()
	require.NoError(t, err)
	return query, args
}

func TestScopeCondition(t *testing.T) {
	base := sq.Select("id").From("maintenance_requests r")

	t.Run("supervisor has no condition", func(t *testing.T) {
		assert.Nil(t, ScopeCondition(authz.Scope{}, "r"))
	})

	t.Run("deny yields FALSE", func(t *testing.T) {
		query, _ := toSQL(t, ApplySecurity(base, ScopeCondition(authz.Scope{Deny: true}, "r")))
		assert.Contains(t, query, "WHERE FALSE")
	})

	t.Run("team scope", func(t *testing.T) {
		team := uint64(7)
		query, args := toSQL(t, ApplySecurity(base, ScopeCondition(authz.Scope{TeamID: &team}, "r")))
		assert.Contains(t, query, "r.team_id = $1")
		assert.Equal(t, []interface{}{uint64(7)}, args)
	})

	t.Run("creator scope", func(t *testing.T) {
		user := uint64(3)
		query, args := toSQL(t, ApplySecurity(base, ScopeCondition(authz.Scope{CreatedBy: &user}, "")))
		assert.Contains(t, query, "created_by = $1")
		assert.Equal(t, []interface{}{uint64(3)}, args)
	})
}

func TestApplyRequestFilter(t *testing.T) {
	team := uint64(2)
	equipment := uint64(9)
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	b := ApplyRequestFilter(sq.Select("id").From("maintenance_requests r"), dto.RequestFilter{
		Type:          constants.TypePreventive,
		Status:        constants.StatusNew,
		TeamID:        &team,
		EquipmentID:   &equipment,
		ScheduledFrom: &from,
		ScheduledTo:   &to,
	}, "r")

	query, args := toSQL(t, b)
	assert.Contains(t, query, "r.type = $1")
	assert.Contains(t, query, "r.status = $2")
	assert.Contains(t, query, "r.team_id = $3")
	assert.Contains(t, query, "r.equipment_id = $4")
	assert.Contains(t, query, "r.scheduled_at >= $5")
	assert.Contains(t, query, "r.scheduled_at <= $6")
	assert.Len(t, args, 6)
}

func TestApplyRequestFilter_Empty(t *testing.T) {
	query, args := toSQL(t, ApplyRequestFilter(sq.Select("id").From("maintenance_requests"), dto.RequestFilter{}, ""))
	assert.NotContains(t, query, "WHERE")
	assert.Empty(t, args)
}
