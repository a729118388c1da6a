package repositories

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"gearguard/internal/authz"
	"gearguard/internal/dto"
	"gearguard/internal/entities"
	db "gearguard/internal/infrastructure/bd"
	"gearguard/pkg/constants"
	apperrors "gearguard/pkg/errors"
)

const (
	requestTable  = "maintenance_requests"
	requestFields = "id, title, description, equipment_id, type, status, priority, scheduled_at, due_at, duration, assigned_to, team_id, created_by, created_at, completed_at"
)

// RequestCounters - агрегаты заявок в пределах области видимости.
type RequestCounters struct {
	Total      uint64
	InProgress uint64
	Overdue    uint64
}

type MaintenanceRequestRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, req *entities.MaintenanceRequest) (*entities.MaintenanceRequest, error)
	FindByID(ctx context.Context, id uint64) (*entities.MaintenanceRequest, error)
	FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.MaintenanceRequest, error)
	UpdateInTx(ctx context.Context, tx pgx.Tx, req *entities.MaintenanceRequest) (*entities.MaintenanceRequest, error)
	List(ctx context.Context, scope authz.Scope, filter dto.RequestFilter) ([]entities.MaintenanceRequest, error)
	Delete(ctx context.Context, id uint64) error
	CountOpenByEquipment(ctx context.Context, equipmentIDs []uint64) (map[uint64]int, error)
	Counters(ctx context.Context, scope authz.Scope, now time.Time) (*RequestCounters, error)
}

type maintenanceRequestRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
	psql    sq.StatementBuilderType
}

func NewMaintenanceRequestRepository(storage *pgxpool.Pool, logger *zap.Logger) MaintenanceRequestRepositoryInterface {
	return &maintenanceRequestRepository{
		storage: storage,
		logger:  logger,
		psql:    sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func scanRequest(row pgx.Row) (*entities.MaintenanceRequest, error) {
	var r entities.MaintenanceRequest
	err := row.Scan(
		&r.ID, &r.Title, &r.Description, &r.EquipmentID, &r.Type, &r.Status, &r.Priority,
		&r.ScheduledAt, &r.DueAt, &r.Duration, &r.AssignedTo, &r.TeamID,
		&r.CreatedBy, &r.CreatedAt, &r.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *maintenanceRequestRepository) CreateInTx(ctx context.Context, tx pgx.Tx, req *entities.MaintenanceRequest) (*entities.MaintenanceRequest, error) {
	query, args, err := r.psql.Insert(requestTable).
		Columns("title", "description", "equipment_id", "type", "status", "priority",
			"scheduled_at", "due_at", "team_id", "created_by").
		Values(req.Title, req.Description, req.EquipmentID, req.Type, req.Status, req.Priority,
			req.ScheduledAt, req.DueAt, req.TeamID, req.CreatedBy).
		Suffix("RETURNING " + requestFields).
		ToSql()
	if err != nil {
		return nil, err
	}

	created, err := scanRequest(tx.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError(err, "ошибка создания заявки")
	}
	return created, nil
}

func (r *maintenanceRequestRepository) FindByID(ctx context.Context, id uint64) (*entities.MaintenanceRequest, error) {
	return r.findByID(ctx, r.storage, id, false)
}

// FindForUpdateInTx блокирует строку заявки до конца транзакции.
func (r *maintenanceRequestRepository) FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.MaintenanceRequest, error) {
	return r.findByID(ctx, tx, id, true)
}

func (r *maintenanceRequestRepository) findByID(ctx context.Context, q querier, id uint64, forUpdate bool) (*entities.MaintenanceRequest, error) {
	b := r.psql.Select(requestFields).From(requestTable).Where(sq.Eq{"id": id})
	if forUpdate {
		b = b.Suffix("FOR UPDATE")
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	req, err := scanRequest(q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError(err, "ошибка получения заявки")
	}
	return req, nil
}

// UpdateInTx записывает все изменяемые поля заявки.
// team_id, equipment_id и created_by не переписываются никогда.
func (r *maintenanceRequestRepository) UpdateInTx(ctx context.Context, tx pgx.Tx, req *entities.MaintenanceRequest) (*entities.MaintenanceRequest, error) {
	query, args, err := r.psql.Update(requestTable).
		Set("title", req.Title).
		Set("description", req.Description).
		Set("status", req.Status).
		Set("priority", req.Priority).
		Set("scheduled_at", req.ScheduledAt).
		Set("due_at", req.DueAt).
		Set("duration", req.Duration).
		Set("assigned_to", req.AssignedTo).
		Set("completed_at", req.CompletedAt).
		Where(sq.Eq{"id": req.ID}).
		Suffix("RETURNING " + requestFields).
		ToSql()
	if err != nil {
		return nil, err
	}

	updated, err := scanRequest(tx.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError(err, "ошибка обновления заявки")
	}
	return updated, nil
}

func (r *maintenanceRequestRepository) List(ctx context.Context, scope authz.Scope, filter dto.RequestFilter) ([]entities.MaintenanceRequest, error) {
	b := r.psql.Select(requestFields).From(requestTable)
	b = db.ApplySecurity(b, db.ScopeCondition(scope, ""))
	b = db.ApplyRequestFilter(b, filter, "")
	query, args, err := b.OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка заявок: %w", err)
	}
	defer rows.Close()

	requests := make([]entities.MaintenanceRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования заявки в списке: %w", err)
		}
		requests = append(requests, *req)
	}
	return requests, rows.Err()
}

func (r *maintenanceRequestRepository) Delete(ctx context.Context, id uint64) error {
	query, args, err := r.psql.Delete(requestTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	tag, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return mapPgError(err, "ошибка удаления заявки")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// CountOpenByEquipment считает незавершённые заявки по каждому оборудованию.
func (r *maintenanceRequestRepository) CountOpenByEquipment(ctx context.Context, equipmentIDs []uint64) (map[uint64]int, error) {
	counts := make(map[uint64]int, len(equipmentIDs))
	if len(equipmentIDs) == 0 {
		return counts, nil
	}

	query, args, err := r.psql.Select("equipment_id", "COUNT(*)").
		From(requestTable).
		Where(sq.Eq{"equipment_id": equipmentIDs}).
		Where(sq.NotEq{"status": []constants.RequestStatus{constants.StatusRepaired, constants.StatusScrap}}).
		GroupBy("equipment_id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчета открытых заявок: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uint64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// Counters - всего, в работе и просроченные (due_at в прошлом и статус не финальный).
func (r *maintenanceRequestRepository) Counters(ctx context.Context, scope authz.Scope, now time.Time) (*RequestCounters, error) {
	terminal := []constants.RequestStatus{constants.StatusRepaired, constants.StatusScrap}
	b := r.psql.Select("COUNT(*)").
		Column(sq.Expr("COUNT(*) FILTER (WHERE status = ?)", constants.StatusInProgress)).
		Column(sq.Expr("COUNT(*) FILTER (WHERE due_at IS NOT NULL AND due_at < ? AND status NOT IN (?, ?))", now, terminal[0], terminal[1])).
		From(requestTable)
	b = db.ApplySecurity(b, db.ScopeCondition(scope, ""))

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	var c RequestCounters
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&c.Total, &c.InProgress, &c.Overdue); err != nil {
		return nil, fmt.Errorf("ошибка подсчета статистики заявок: %w", err)
	}
	return &c, nil
}
