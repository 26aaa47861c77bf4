package telegram

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sessiondb "chefmate/internal/telegram/sessiondb"
)

// SessionRepository persists sessions in SQLite so listing numbers survive
// a bot restart.
type SessionRepository struct {
	queries *sessiondb.Queries
	db      *sql.DB
	ttl     time.Duration
	now     func() time.Time
}

// NewSessionRepository creates a new SessionRepository instance
func NewSessionRepository(db *sql.DB, ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		queries: sessiondb.New(db),
		db:      db,
		ttl:     ttl,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Save replaces the session of chatID for kind.
func (sr *SessionRepository) Save(ctx context.Context, chatID int64, kind SessionKind, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to marshal session ids: %w", err)
	}

	tx, err := sr.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := sr.queries.WithTx(tx)
	if err := q.DeleteChatSessions(ctx, sessiondb.DeleteChatSessionsParams{ChatID: chatID, Kind: string(kind)}); err != nil {
		return fmt.Errorf("failed to replace session: %w", err)
	}
	now := sr.now()
	_, err = q.CreateSession(ctx, sessiondb.CreateSessionParams{
		ChatID:    chatID,
		Kind:      string(kind),
		Ids:       string(data),
		ExpiresAt: now.Add(sr.ttl),
		CreatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return tx.Commit()
}

// GetActive retrieves the unexpired session of chatID for kind, or nil.
func (sr *SessionRepository) GetActive(ctx context.Context, chatID int64, kind SessionKind) (*Session, error) {
	row, err := sr.queries.GetActiveSession(ctx, sessiondb.GetActiveSessionParams{
		ChatID:    chatID,
		Kind:      string(kind),
		ExpiresAt: sr.now(),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var ids []string
	if err := json.Unmarshal([]byte(row.Ids), &ids); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session %d: %w", row.ID, err)
	}
	return &Session{
		ChatID:    row.ChatID,
		Kind:      SessionKind(row.Kind),
		IDs:       ids,
		ExpiresAt: row.ExpiresAt,
	}, nil
}

// CleanupExpired removes all expired sessions.
func (sr *SessionRepository) CleanupExpired(ctx context.Context) (int64, error) {
	n, err := sr.queries.CleanupExpiredSessions(ctx, sr.now())
	if err != nil {
		return 0, fmt.Errorf("failed to clean up sessions: %w", err)
	}
	return n, nil
}
