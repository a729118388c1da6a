package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"gearguard/internal/entities"
)

const (
	historyTable  = "request_history"
	historyFields = "id, request_id, user_id, event_type, old_value, new_value, tx_id, created_at"
)

type RequestHistoryRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, events []entities.RequestHistory) error
	FindByRequestID(ctx context.Context, requestID uint64) ([]entities.RequestHistory, error)
}

type RequestHistoryRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
	psql    sq.StatementBuilderType
}

func NewRequestHistoryRepository(storage *pgxpool.Pool, logger *zap.Logger) RequestHistoryRepositoryInterface {
	return &RequestHistoryRepository{
		storage: storage,
		logger:  logger,
		psql:    sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// CreateInTx пишет все события одним INSERT.
func (r *RequestHistoryRepository) CreateInTx(ctx context.Context, tx pgx.Tx, events []entities.RequestHistory) error {
	if len(events) == 0 {
		return nil
	}
	b := r.psql.Insert(historyTable).Columns("request_id", "user_id", "event_type", "old_value", "new_value", "tx_id")
	for _, e := range events {
		b = b.Values(e.RequestID, e.UserID, e.EventType, e.OldValue, e.NewValue, e.TxID)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return mapPgError(err, "ошибка записи истории заявки")
	}
	return nil
}

func (r *RequestHistoryRepository) FindByRequestID(ctx context.Context, requestID uint64) ([]entities.RequestHistory, error) {
	query, args, err := r.psql.Select(historyFields).
		From(historyTable).
		Where(sq.Eq{"request_id": requestID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения истории заявки: %w", err)
	}
	defer rows.Close()

	history := make([]entities.RequestHistory, 0)
	for rows.Next() {
		var h entities.RequestHistory
		if err := rows.Scan(&h.ID, &h.RequestID, &h.UserID, &h.EventType, &h.OldValue, &h.NewValue, &h.TxID, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования истории: %w", err)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
