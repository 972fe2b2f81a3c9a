package repository

import (
	"context"

	"github.com/google/uuid"

	"kidquest-server/internal/models"
)

// SessionRepository — хранилище пользовательских сессий по идентификатору
// чата. Каждая сессия изолирована и управляется независимо; движок квестов
// к хранилищу не обращается.
type SessionRepository interface {
	Get(ctx context.Context, chatID int64) (*models.UserSession, error)
	Save(ctx context.Context, session *models.UserSession) error
	Delete(ctx context.Context, chatID int64) error
}

// QuestRepository — архив успешно сгенерированных квестов.
type QuestRepository interface {
	Save(ctx context.Context, record *models.QuestRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.QuestRecord, error)
	ListRecentByChat(ctx context.Context, chatID int64, limit int) ([]models.QuestRecord, error)
}
