package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/scribelab/paperforge/internal/models"
)

type CreateUserParams struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
}

const createUser = `
INSERT INTO users (email, password_hash, first_name, last_name)
VALUES ($1, $2, $3, $4)
RETURNING id, email, password_hash, first_name, last_name, is_verified, created_at
`

func (s *SQLStore) CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error) {
	row := s.pool.QueryRow(ctx, createUser, arg.Email, arg.PasswordHash, arg.FirstName, arg.LastName)
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.IsVerified, &u.CreatedAt)
	return u, err
}

const getUserByEmail = `
SELECT id, email, password_hash, first_name, last_name, is_verified, created_at
FROM users
WHERE email = $1
`

func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.pool.QueryRow(ctx, getUserByEmail, email)
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.IsVerified, &u.CreatedAt)
	return u, err
}

const getUserByID = `
SELECT id, email, password_hash, first_name, last_name, is_verified, created_at
FROM users
WHERE id = $1
`

func (s *SQLStore) GetUserByID(ctx context.Context, id pgtype.UUID) (models.User, error) {
	row := s.pool.QueryRow(ctx, getUserByID, id)
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.IsVerified, &u.CreatedAt)
	return u, err
}
