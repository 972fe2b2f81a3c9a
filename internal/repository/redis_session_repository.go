package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"kidquest-server/internal/models"
)

// Compile-time check to ensure redisSessionRepository implements SessionRepository
var _ SessionRepository = (*redisSessionRepository)(nil)

type redisSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisSessionRepository creates a new Redis-backed SessionRepository.
// Сессия хранится как JSON-блоб под ключом session:{chatID} с TTL.
func NewRedisSessionRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) SessionRepository {
	return &redisSessionRepository{
		client: client,
		ttl:    ttl,
		logger: logger.Named("RedisSessionRepo"),
	}
}

func sessionKey(chatID int64) string {
	return fmt.Sprintf("session:%d", chatID)
}

func (r *redisSessionRepository) Get(ctx context.Context, chatID int64) (*models.UserSession, error) {
	data, err := r.client.Get(ctx, sessionKey(chatID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, models.ErrSessionNotFound
		}
		r.logger.Error("Failed to get session from redis", zap.Int64("chatID", chatID), zap.Error(err))
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session models.UserSession
	if err := json.Unmarshal(data, &session); err != nil {
		// Повреждённый блоб лечим как отсутствие сессии: бот начнёт заново.
		r.logger.Warn("Corrupted session blob, treating as missing", zap.Int64("chatID", chatID), zap.Error(err))
		return nil, models.ErrSessionNotFound
	}
	return &session, nil
}

func (r *redisSessionRepository) Save(ctx context.Context, session *models.UserSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(session.ChatID), data, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save session to redis", zap.Int64("chatID", session.ChatID), zap.Error(err))
		return fmt.Errorf("failed to save session: %w", err)
	}
	r.logger.Debug("Session saved",
		zap.Int64("chatID", session.ChatID),
		zap.Bool("questStarted", session.QuestStarted),
		zap.Duration("ttl", r.ttl),
	)
	return nil
}

func (r *redisSessionRepository) Delete(ctx context.Context, chatID int64) error {
	if err := r.client.Del(ctx, sessionKey(chatID)).Err(); err != nil {
		r.logger.Error("Failed to delete session from redis", zap.Int64("chatID", chatID), zap.Error(err))
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
