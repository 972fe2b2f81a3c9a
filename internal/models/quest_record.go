package models

import (
	"time"

	"github.com/google/uuid"
)

// QuestRecord — архивная запись успешно сгенерированного квеста.
// Payload хранит полный QuestEnvelope как JSON.
type QuestRecord struct {
	ID           uuid.UUID `db:"id"`
	ChatID       int64     `db:"chat_id"`
	Language     string    `db:"language"`
	Requirements string    `db:"requirements"`
	Title        string    `db:"title"`
	Payload      []byte    `db:"payload"`
	CreatedAt    time.Time `db:"created_at"`
}
