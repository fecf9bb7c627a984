package models

import "github.com/jackc/pgx/v5/pgtype"

type User struct {
	ID           pgtype.UUID
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	IsVerified   pgtype.Bool
	CreatedAt    pgtype.Timestamptz
}

type Session struct {
	ID           pgtype.UUID
	UserID       pgtype.UUID
	RefreshToken string
	UserAgent    pgtype.Text
	ClientIp     pgtype.Text
	IsBlocked    pgtype.Bool
	ExpiresAt    pgtype.Timestamptz
	CreatedAt    pgtype.Timestamptz
}
