package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/scribelab/paperforge/internal/models"
)

type CreateSessionParams struct {
	ID           pgtype.UUID
	UserID       pgtype.UUID
	RefreshToken string
	UserAgent    pgtype.Text
	ClientIp     pgtype.Text
	IsBlocked    pgtype.Bool
	ExpiresAt    pgtype.Timestamptz
}

const createSession = `
INSERT INTO sessions (id, user_id, refresh_token, user_agent, client_ip, is_blocked, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, user_id, refresh_token, user_agent, client_ip, is_blocked, expires_at, created_at
`

func (s *SQLStore) CreateSession(ctx context.Context, arg CreateSessionParams) (models.Session, error) {
	row := s.pool.QueryRow(ctx, createSession,
		arg.ID, arg.UserID, arg.RefreshToken, arg.UserAgent, arg.ClientIp, arg.IsBlocked, arg.ExpiresAt)
	var sess models.Session
	err := row.Scan(&sess.ID, &sess.UserID, &sess.RefreshToken, &sess.UserAgent, &sess.ClientIp,
		&sess.IsBlocked, &sess.ExpiresAt, &sess.CreatedAt)
	return sess, err
}

const getSessionByRefreshToken = `
SELECT id, user_id, refresh_token, user_agent, client_ip, is_blocked, expires_at, created_at
FROM sessions
WHERE refresh_token = $1
`

func (s *SQLStore) GetSessionByRefreshToken(ctx context.Context, refreshToken string) (models.Session, error) {
	row := s.pool.QueryRow(ctx, getSessionByRefreshToken, refreshToken)
	var sess models.Session
	err := row.Scan(&sess.ID, &sess.UserID, &sess.RefreshToken, &sess.UserAgent, &sess.ClientIp,
		&sess.IsBlocked, &sess.ExpiresAt, &sess.CreatedAt)
	return sess, err
}

const deleteSessionByRefreshToken = `
DELETE FROM sessions WHERE refresh_token = $1
`

func (s *SQLStore) DeleteSessionByRefreshToken(ctx context.Context, refreshToken string) error {
	_, err := s.pool.Exec(ctx, deleteSessionByRefreshToken, refreshToken)
	return err
}
