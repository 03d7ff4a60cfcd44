package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"sellbot/internal/telegram/states"
)

const sessionsTable = "sessions"

var sessionRowFields = fields(sessionRow{})

type sessionRow struct {
	ChatID    int64     `db:"chat_id"`
	Step      string    `db:"step"`
	FormData  string    `db:"form_data"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r sessionRow) ToModel() *states.Session {
	return &states.Session{
		ChatID:    r.ChatID,
		Step:      states.State(r.Step),
		FormData:  []byte(r.FormData),
		UpdatedAt: r.UpdatedAt,
	}
}

func (s *storageImpl) UpsertSession(ctx context.Context, session states.Session) error {
	q, args, err := s.stmpBuilder().
		Insert(sessionsTable).
		Columns("chat_id", "step", "form_data", "updated_at").
		Values(session.ChatID, string(session.Step), string(session.FormData), s.now()).
		Suffix("ON CONFLICT(chat_id) DO UPDATE SET step = excluded.step, form_data = excluded.form_data, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build sql query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("db.ExecContext: %w", err)
	}
	return nil
}

func (s *storageImpl) GetSession(ctx context.Context, chatID int64) (*states.Session, error) {
	q, args, err := s.stmpBuilder().
		Select(sessionRowFields).
		From(sessionsTable).
		Where(sq.Eq{"chat_id": chatID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	row := s.db.QueryRowContext(ctx, q, args...)

	var r sessionRow
	err = row.Scan(&r.ChatID, &r.Step, &r.FormData, &r.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("row.Scan: %w", err)
	}

	return r.ToModel(), nil
}

func (s *storageImpl) DeleteSession(ctx context.Context, chatID int64) error {
	q, args, err := s.stmpBuilder().
		Delete(sessionsTable).
		Where(sq.Eq{"chat_id": chatID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build sql query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("db.ExecContext: %w", err)
	}
	return nil
}

// PurgeStaleSessions drops slots untouched for longer than ttl. Returns the
// number of removed rows.
func (s *storageImpl) PurgeStaleSessions(ctx context.Context, ttl time.Duration) (int64, error) {
	q, args, err := s.stmpBuilder().
		Delete(sessionsTable).
		Where(sq.Lt{"updated_at": s.now().Add(-ttl)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build sql query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("db.ExecContext: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("result.RowsAffected: %w", err)
	}
	return n, nil
}
