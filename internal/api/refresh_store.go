package api

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"
)

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// StoreRefreshToken stores a refresh token hash with its expiry. Only the
// hash is persisted; a leaked table does not leak usable tokens.
func StoreRefreshToken(db *sql.DB, userID int, token string, expiresAt time.Time, ttlDays int) error {
	th := hashToken(token)
	// INSERT OR IGNORE avoids a unique-constraint failure when an identical
	// token is generated twice in quick succession; the UPDATE then makes
	// sure its metadata is current either way.
	if _, err := db.Exec(
		"INSERT OR IGNORE INTO refresh_tokens (user_id, token_hash, expires_at, ttl_days) VALUES (?, ?, ?, ?)",
		userID, th, expiresAt, ttlDays,
	); err != nil {
		return err
	}
	_, err := db.Exec(
		"UPDATE refresh_tokens SET expires_at = ?, ttl_days = ?, revoked = 0 WHERE token_hash = ?",
		expiresAt, ttlDays, th,
	)
	return err
}

// ValidateRefreshTokenInDB checks that the token exists, is not revoked
// and not expired. Returns the owning user ID and the token's TTL.
func ValidateRefreshTokenInDB(db *sql.DB, token string) (int, int, error) {
	th := hashToken(token)
	var userID, ttlDays int
	var expiresAt time.Time
	var revoked bool
	row := db.QueryRow("SELECT user_id, expires_at, revoked, ttl_days FROM refresh_tokens WHERE token_hash = ?", th)
	if err := row.Scan(&userID, &expiresAt, &revoked, &ttlDays); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, errors.New("refresh token not found")
		}
		return 0, 0, err
	}
	if revoked {
		return 0, 0, errors.New("refresh token revoked")
	}
	if time.Now().After(expiresAt) {
		return 0, 0, errors.New("refresh token expired")
	}
	return userID, ttlDays, nil
}

// RevokeRefreshToken revokes a refresh token by token string.
func RevokeRefreshToken(db *sql.DB, token string) error {
	_, err := db.Exec("UPDATE refresh_tokens SET revoked = 1 WHERE token_hash = ?", hashToken(token))
	return err
}
