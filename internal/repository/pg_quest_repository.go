package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"kidquest-server/internal/models"
)

// ErrQuestNotFound - архивная запись квеста не найдена.
var ErrQuestNotFound = errors.New("quest record not found")

const questRecordFields = `id, chat_id, language, requirements, title, payload, created_at`

// Compile-time check to ensure pgQuestRepository implements QuestRepository
var _ QuestRepository = (*pgQuestRepository)(nil)

type pgQuestRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPgQuestRepository creates a new PostgreSQL-backed QuestRepository.
func NewPgQuestRepository(pool *pgxpool.Pool, logger *zap.Logger) QuestRepository {
	return &pgQuestRepository{
		pool:   pool,
		logger: logger.Named("PgQuestRepo"),
	}
}

func (r *pgQuestRepository) Save(ctx context.Context, record *models.QuestRecord) error {
	query := `INSERT INTO quests (id, chat_id, language, requirements, title, payload)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx, query,
		record.ID, record.ChatID, record.Language, record.Requirements, record.Title, record.Payload,
	).Scan(&record.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to save quest record", zap.Stringer("id", record.ID), zap.Error(err))
		return fmt.Errorf("failed to save quest record: %w", err)
	}
	r.logger.Info("Quest record saved",
		zap.Stringer("id", record.ID),
		zap.Int64("chatID", record.ChatID),
		zap.String("title", record.Title),
	)
	return nil
}

func (r *pgQuestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.QuestRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM quests WHERE id = $1`, questRecordFields)
	var record models.QuestRecord
	if err := pgxscan.Get(ctx, r.pool, &record, query, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestNotFound
		}
		r.logger.Error("Failed to get quest record", zap.Stringer("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get quest record: %w", err)
	}
	return &record, nil
}

func (r *pgQuestRepository) ListRecentByChat(ctx context.Context, chatID int64, limit int) ([]models.QuestRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM quests WHERE chat_id = $1 ORDER BY created_at DESC LIMIT $2`, questRecordFields)
	var records []models.QuestRecord
	if err := pgxscan.Select(ctx, r.pool, &records, query, chatID, limit); err != nil {
		r.logger.Error("Failed to list quest records", zap.Int64("chatID", chatID), zap.Error(err))
		return nil, fmt.Errorf("failed to list quest records: %w", err)
	}
	return records, nil
}
