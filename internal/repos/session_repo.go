package repos

import (
	"encoding/hex"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/blake2b"

	"bazaar/internal/domain"
)

// Session is a logged-in browser: the backend bearer token and the identity
// it was issued for.
type Session struct {
	Token     string `db:"token"`
	ExpiresAt int64  `db:"expires_at"` // unix seconds, 0 = unknown
	domain.User
}

func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt > 0 && now.Unix() >= s.ExpiresAt
}

type SessionRepo struct{ DB *sqlx.DB }

func NewSessionRepo(db *sqlx.DB) *SessionRepo { return &SessionRepo{DB: db} }

// key hashes the cookie value so a leaked database does not leak live sids.
func key(sid string) string {
	sum := blake2b.Sum256([]byte(sid))
	return hex.EncodeToString(sum[:])
}

func (r *SessionRepo) Bind(sid, token string, u domain.User, expiresAt int64) error {
	_, err := r.DB.Exec(`
	  INSERT INTO sessions(id, token, user_id, email, name, role, expires_at, last_seen)
	  VALUES(?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	  ON CONFLICT(id) DO UPDATE SET
	    token=excluded.token, user_id=excluded.user_id, email=excluded.email,
	    name=excluded.name, role=excluded.role, expires_at=excluded.expires_at,
	    last_seen=CURRENT_TIMESTAMP
	`, key(sid), token, u.ID, u.Email, u.Name, u.Role, expiresAt)
	return err
}

func (r *SessionRepo) Get(sid string) (*Session, error) {
	var s Session
	err := r.DB.Get(&s, `
	  SELECT token, expires_at, user_id, email, name, role
	  FROM sessions WHERE id = ?`, key(sid))
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateUser refreshes the cached identity after the backend reports a change.
func (r *SessionRepo) UpdateUser(sid string, u domain.User) error {
	_, err := r.DB.Exec(`UPDATE sessions SET email=?, name=?, role=?, last_seen=CURRENT_TIMESTAMP WHERE id=?`,
		u.Email, u.Name, u.Role, key(sid))
	return err
}

func (r *SessionRepo) Unbind(sid string) error {
	_, err := r.DB.Exec(`DELETE FROM sessions WHERE id = ?`, key(sid))
	return err
}

// PurgeExpired drops sessions whose token expired before now.
func (r *SessionRepo) PurgeExpired(now time.Time) (int64, error) {
	res, err := r.DB.Exec(`DELETE FROM sessions WHERE expires_at > 0 AND expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
