package repositories

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"gearguard/internal/entities"
	apperrors "gearguard/pkg/errors"
)

const (
	equipmentTable  = "equipment"
	equipmentFields = "id, name, code, description, location, team_id, is_scrapped, last_maintenance_at, created_at, updated_at"
)

type EquipmentRepositoryInterface interface {
	Create(ctx context.Context, e *entities.Equipment) (*entities.Equipment, error)
	FindByID(ctx context.Context, id uint64) (*entities.Equipment, error)
	FindByIDs(ctx context.Context, ids []uint64) (map[uint64]entities.Equipment, error)
	List(ctx context.Context) ([]entities.Equipment, error)
	Update(ctx context.Context, e *entities.Equipment) (*entities.Equipment, error)
	Delete(ctx context.Context, id uint64) error
	Count(ctx context.Context) (uint64, error)
	MarkScrappedInTx(ctx context.Context, tx pgx.Tx, id uint64) error
	SetLastMaintenanceInTx(ctx context.Context, tx pgx.Tx, id uint64, at time.Time) error
}

type EquipmentRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
	psql    sq.StatementBuilderType
}

func NewEquipmentRepository(storage *pgxpool.Pool, logger *zap.Logger) EquipmentRepositoryInterface {
	return &EquipmentRepository{
		storage: storage,
		logger:  logger,
		psql:    sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func scanEquipment(row pgx.Row) (*entities.Equipment, error) {
	var e entities.Equipment
	err := row.Scan(
		&e.ID, &e.Name, &e.Code, &e.Description, &e.Location, &e.TeamID,
		&e.IsScrapped, &e.LastMaintenanceAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EquipmentRepository) Create(ctx context.Context, e *entities.Equipment) (*entities.Equipment, error) {
	query, args, err := r.psql.Insert(equipmentTable).
		Columns("name", "code", "description", "location", "team_id", "is_scrapped").
		Values(e.Name, e.Code, e.Description, e.Location, e.TeamID, e.IsScrapped).
		Suffix("RETURNING " + equipmentFields).
		ToSql()
	if err != nil {
		return nil, err
	}
	created, err := scanEquipment(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError(err, "ошибка создания оборудования")
	}
	return created, nil
}

func (r *EquipmentRepository) FindByID(ctx context.Context, id uint64) (*entities.Equipment, error) {
	query, args, err := r.psql.Select(equipmentFields).From(equipmentTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	e, err := scanEquipment(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError(err, "ошибка получения оборудования")
	}
	return e, nil
}

// FindByIDs - пакетная загрузка для подстановки связей в заявки.
func (r *EquipmentRepository) FindByIDs(ctx context.Context, ids []uint64) (map[uint64]entities.Equipment, error) {
	result := make(map[uint64]entities.Equipment, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	items, err := r.list(ctx, r.psql.Select(equipmentFields).From(equipmentTable).Where(sq.Eq{"id": ids}))
	if err != nil {
		return nil, err
	}
	for _, e := range items {
		result[e.ID] = e
	}
	return result, nil
}

func (r *EquipmentRepository) List(ctx context.Context) ([]entities.Equipment, error) {
	return r.list(ctx, r.psql.Select(equipmentFields).From(equipmentTable).OrderBy("id ASC"))
}

func (r *EquipmentRepository) list(ctx context.Context, b sq.SelectBuilder) ([]entities.Equipment, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка оборудования: %w", err)
	}
	defer rows.Close()

	items := make([]entities.Equipment, 0)
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования оборудования: %w", err)
		}
		items = append(items, *e)
	}
	return items, rows.Err()
}

func (r *EquipmentRepository) Update(ctx context.Context, e *entities.Equipment) (*entities.Equipment, error) {
	query, args, err := r.psql.Update(equipmentTable).
		Set("name", e.Name).
		Set("code", e.Code).
		Set("description", e.Description).
		Set("location", e.Location).
		Set("team_id", e.TeamID).
		Set("is_scrapped", e.IsScrapped).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": e.ID}).
		Suffix("RETURNING " + equipmentFields).
		ToSql()
	if err != nil {
		return nil, err
	}
	updated, err := scanEquipment(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError(err, "ошибка обновления оборудования")
	}
	return updated, nil
}

func (r *EquipmentRepository) Delete(ctx context.Context, id uint64) error {
	query, args, err := r.psql.Delete(equipmentTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	tag, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return mapPgError(err, "ошибка удаления оборудования")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *EquipmentRepository) Count(ctx context.Context) (uint64, error) {
	var total uint64
	if err := r.storage.QueryRow(ctx, "SELECT COUNT(*) FROM "+equipmentTable).Scan(&total); err != nil {
		return 0, fmt.Errorf("ошибка подсчета оборудования: %w", err)
	}
	return total, nil
}

// MarkScrappedInTx ставит флаг списания. Повторный вызов ничего не меняет.
func (r *EquipmentRepository) MarkScrappedInTx(ctx context.Context, tx pgx.Tx, id uint64) error {
	query, args, err := r.psql.Update(equipmentTable).
		Set("is_scrapped", true).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id, "is_scrapped": false}).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return mapPgError(err, "ошибка списания оборудования")
	}
	return nil
}

func (r *EquipmentRepository) SetLastMaintenanceInTx(ctx context.Context, tx pgx.Tx, id uint64, at time.Time) error {
	query, args, err := r.psql.Update(equipmentTable).
		Set("last_maintenance_at", at).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return mapPgError(err, "ошибка обновления даты обслуживания")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
