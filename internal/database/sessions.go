package database

import (
	"database/sql"
	"time"

	"pdnsweb/internal/model"
)

func (db *DB) CreateSession(token, csrfToken, username string, expiresAt time.Time) error {
	_, err := db.conn.Exec(
		"INSERT INTO sessions (token, csrf_token, username, expires_at) VALUES ($1, $2, $3, $4)",
		token, csrfToken, username, expiresAt,
	)
	return err
}

// GetSession returns nil for an unknown token. Expiry is the caller's check;
// the row stays until the purge sweeps it.
func (db *DB) GetSession(token string) (*model.Session, error) {
	s := &model.Session{Token: token}
	err := db.conn.QueryRow(
		"SELECT username, csrf_token, created_at, expires_at FROM sessions WHERE token = $1", token,
	).Scan(&s.Username, &s.CSRFToken, &s.CreatedAt, &s.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (db *DB) DeleteSession(token string) error {
	_, err := db.conn.Exec("DELETE FROM sessions WHERE token = $1", token)
	return err
}

// PurgeExpiredSessions drops stale rows and reports how many went.
func (db *DB) PurgeExpiredSessions() (int64, error) {
	res, err := db.conn.Exec("DELETE FROM sessions WHERE expires_at < NOW()")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
