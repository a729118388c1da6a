package repositories

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"gearguard/internal/entities"
	apperrors "gearguard/pkg/errors"
)

const (
	userTable  = "users"
	userFields = "id, name, email, password_hash, role, team_id, avatar_url, created_at, updated_at"
)

type UserRepositoryInterface interface {
	Create(ctx context.Context, u *entities.User) (*entities.User, error)
	FindByID(ctx context.Context, id uint64) (*entities.User, error)
	FindByIDs(ctx context.Context, ids []uint64) (map[uint64]entities.User, error)
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	List(ctx context.Context) ([]entities.User, error)
	ListByTeam(ctx context.Context, teamID uint64) ([]entities.User, error)
	Update(ctx context.Context, u *entities.User) (*entities.User, error)
	Delete(ctx context.Context, id uint64) error
}

type UserRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
	psql    sq.StatementBuilderType
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{
		storage: storage,
		logger:  logger,
		psql:    sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.TeamID,
		&u.AvatarURL, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entities.User) (*entities.User, error) {
	query, args, err := r.psql.Insert(userTable).
		Columns("name", "email", "password_hash", "role", "team_id", "avatar_url").
		Values(u.Name, strings.ToLower(strings.TrimSpace(u.Email)), u.Password, u.Role, u.TeamID, u.AvatarURL).
		Suffix("RETURNING " + userFields).
		ToSql()
	if err != nil {
		return nil, err
	}
	created, err := scanUser(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError(err, "ошибка создания пользователя")
	}
	return created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*entities.User, error) {
	return r.findOne(ctx, sq.Eq{"id": id})
}

// FindByEmail ищет без учёта регистра.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.findOne(ctx, sq.Expr("LOWER(email) = LOWER(?)", strings.TrimSpace(email)))
}

func (r *UserRepository) findOne(ctx context.Context, where sq.Sqlizer) (*entities.User, error) {
	query, args, err := r.psql.Select(userFields).From(userTable).Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, err
	}
	u, err := scanUser(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError(err, "ошибка получения пользователя")
	}
	return u, nil
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []uint64) (map[uint64]entities.User, error) {
	result := make(map[uint64]entities.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	users, err := r.list(ctx, r.psql.Select(userFields).From(userTable).Where(sq.Eq{"id": ids}))
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

func (r *UserRepository) List(ctx context.Context) ([]entities.User, error) {
	return r.list(ctx, r.psql.Select(userFields).From(userTable).OrderBy("id ASC"))
}

func (r *UserRepository) ListByTeam(ctx context.Context, teamID uint64) ([]entities.User, error) {
	return r.list(ctx, r.psql.Select(userFields).From(userTable).Where(sq.Eq{"team_id": teamID}).OrderBy("id ASC"))
}

func (r *UserRepository) list(ctx context.Context, b sq.SelectBuilder) ([]entities.User, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка пользователей: %w", err)
	}
	defer rows.Close()

	users := make([]entities.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования пользователя: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *UserRepository) Update(ctx context.Context, u *entities.User) (*entities.User, error) {
	query, args, err := r.psql.Update(userTable).
		Set("name", u.Name).
		Set("email", strings.ToLower(strings.TrimSpace(u.Email))).
		Set("password_hash", u.Password).
		Set("role", u.Role).
		Set("team_id", u.TeamID).
		Set("avatar_url", u.AvatarURL).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": u.ID}).
		Suffix("RETURNING " + userFields).
		ToSql()
	if err != nil {
		return nil, err
	}
	updated, err := scanUser(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError(err, "ошибка обновления пользователя")
	}
	return updated, nil
}

func (r *UserRepository) Delete(ctx context.Context, id uint64) error {
	query, args, err := r.psql.Delete(userTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	tag, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return mapPgError(err, "ошибка удаления пользователя")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
