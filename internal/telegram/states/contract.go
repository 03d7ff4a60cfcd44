package states

import "context"

// SessionStorage persists per-user conversation slots.
type SessionStorage interface {
	UpsertSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, chatID int64) (*Session, error)
	DeleteSession(ctx context.Context, chatID int64) error
}
