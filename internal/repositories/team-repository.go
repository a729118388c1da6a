package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"gearguard/internal/entities"
	apperrors "gearguard/pkg/errors"
)

const (
	teamTable  = "teams"
	teamFields = "id, name, description, created_at, updated_at"
)

type TeamRepositoryInterface interface {
	Create(ctx context.Context, t *entities.Team) (*entities.Team, error)
	FindByID(ctx context.Context, id uint64) (*entities.Team, error)
	FindByIDs(ctx context.Context, ids []uint64) (map[uint64]entities.Team, error)
	List(ctx context.Context) ([]entities.Team, error)
	Update(ctx context.Context, t *entities.Team) (*entities.Team, error)
	Delete(ctx context.Context, id uint64) error
}

type TeamRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
	psql    sq.StatementBuilderType
}

func NewTeamRepository(storage *pgxpool.Pool, logger *zap.Logger) TeamRepositoryInterface {
	return &TeamRepository{
		storage: storage,
		logger:  logger,
		psql:    sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func scanTeam(row pgx.Row) (*entities.Team, error) {
	var t entities.Team
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TeamRepository) Create(ctx context.Context, t *entities.Team) (*entities.Team, error) {
	query, args, err := r.psql.Insert(teamTable).
		Columns("name", "description").
		Values(t.Name, t.Description).
		Suffix("RETURNING " + teamFields).
		ToSql()
	if err != nil {
		return nil, err
	}
	created, err := scanTeam(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError(err, "ошибка создания команды")
	}
	return created, nil
}

func (r *TeamRepository) FindByID(ctx context.Context, id uint64) (*entities.Team, error) {
	query, args, err := r.psql.Select(teamFields).From(teamTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	t, err := scanTeam(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError(err, "ошибка получения команды")
	}
	return t, nil
}

func (r *TeamRepository) FindByIDs(ctx context.Context, ids []uint64) (map[uint64]entities.Team, error) {
	result := make(map[uint64]entities.Team, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	teams, err := r.list(ctx, r.psql.Select(teamFields).From(teamTable).Where(sq.Eq{"id": ids}))
	if err != nil {
		return nil, err
	}
	for _, t := range teams {
		result[t.ID] = t
	}
	return result, nil
}

func (r *TeamRepository) List(ctx context.Context) ([]entities.Team, error) {
	return r.list(ctx, r.psql.Select(teamFields).From(teamTable).OrderBy("id ASC"))
}

func (r *TeamRepository) list(ctx context.Context, b sq.SelectBuilder) ([]entities.Team, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка команд: %w", err)
	}
	defer rows.Close()

	teams := make([]entities.Team, 0)
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования команды: %w", err)
		}
		teams = append(teams, *t)
	}
	return teams, rows.Err()
}

func (r *TeamRepository) Update(ctx context.Context, t *entities.Team) (*entities.Team, error) {
	query, args, err := r.psql.Update(teamTable).
		Set("name", t.Name).
		Set("description", t.Description).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": t.ID}).
		Suffix("RETURNING " + teamFields).
		ToSql()
	if err != nil {
		return nil, err
	}
	updated, err := scanTeam(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError(err, "ошибка обновления команды")
	}
	return updated, nil
}

func (r *TeamRepository) Delete(ctx context.Context, id uint64) error {
	query, args, err := r.psql.Delete(teamTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	tag, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return mapPgError(err, "ошибка удаления команды")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
