package session

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// DBStore keeps sessions in the attempt_sessions table, one row per (session, key).
type DBStore struct {
	db      *sqlx.DB
	maxAge  time.Duration
	nowFunc func() time.Time
}

var _ Store = (*DBStore)(nil)

func NewDBStore(db *sqlx.DB, maxAge time.Duration) *DBStore {
	return &DBStore{db: db, maxAge: maxAge, nowFunc: time.Now}
}

func (s *DBStore) now() time.Time {
	return s.nowFunc().UTC()
}

func (s *DBStore) Get(ctx context.Context, sessionID, key string) (int, bool, error) {
	var values []int
	q := s.db.Rebind("SELECT value FROM attempt_sessions WHERE session_id = ? AND name = ? AND expires_at > ?")
	if err := s.db.SelectContext(ctx, &values, q, sessionID, key, s.now()); err != nil {
		return 0, false, errors.Wrap(err, "selecting session value")
	}
	if len(values) == 0 {
		return 0, false, nil
	}
	return values[0], true, nil
}

func (s *DBStore) Set(ctx context.Context, sessionID, key string, value int) error {
	expiresAt := s.now().Add(s.maxAge)
	q := s.db.Rebind("INSERT INTO attempt_sessions (session_id, name, value, expires_at) VALUES (?, ?, ?, ?) " +
		"ON CONFLICT (session_id, name) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at")
	if _, err := s.db.ExecContext(ctx, q, sessionID, key, value, expiresAt); err != nil {
		return errors.Wrap(err, "upserting session value")
	}
	// sliding expiry for the whole session
	q = s.db.Rebind("UPDATE attempt_sessions SET expires_at = ? WHERE session_id = ?")
	_, err := s.db.ExecContext(ctx, q, expiresAt, sessionID)
	return errors.Wrap(err, "refreshing session expiry")
}

func (s *DBStore) Delete(ctx context.Context, sessionID string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	q, args, err := sqlx.In("DELETE FROM attempt_sessions WHERE session_id = ? AND name IN (?)", sessionID, keys)
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	_, err = s.db.ExecContext(ctx, s.db.Rebind(q), args...)
	return errors.Wrap(err, "deleting session values")
}

func (s *DBStore) Purge(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM attempt_sessions WHERE expires_at <= ?"), s.now())
	if err != nil {
		return 0, errors.Wrap(err, "purging sessions")
	}
	n, err := res.RowsAffected()
	return int(n), errors.Wrap(err, "counting purged sessions")
}
