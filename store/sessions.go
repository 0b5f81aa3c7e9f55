package store

import (
	"time"

	"github.com/jmoiron/sqlx"
)

// SessionRepository holds the short-lived OAuth handshake state. Each
// state value is single-use: Take consumes it.
type SessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Put stores a handshake state with the given time to live.
func (r *SessionRepository) Put(state string, ttl time.Duration) error {
	SQL := `INSERT INTO sessions(state, expires_at) VALUES ($1, $2)`
	_, err := r.db.Exec(SQL, state, time.Now().Add(ttl).UnixMilli())
	return err
}

// Take consumes a handshake state, reporting whether it existed and had
// not expired.
func (r *SessionRepository) Take(state string) (bool, error) {
	SQL := `DELETE FROM sessions
		WHERE state = $1
		AND expires_at > $2`
	result, err := r.db.Exec(SQL, state, time.Now().UnixMilli())
	if err != nil {
		return false, err
	}
	affectedCount, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affectedCount > 0, nil
}

// PruneExpired drops handshake states past their expiry and returns how
// many were removed.
func (r *SessionRepository) PruneExpired() (int64, error) {
	SQL := `DELETE FROM sessions WHERE expires_at <= $1`
	result, err := r.db.Exec(SQL, time.Now().UnixMilli())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
