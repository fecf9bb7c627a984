package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scribelab/paperforge/internal/models"
)

// Store defines all functions to execute db queries and transactions.
type Store interface {
	CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByID(ctx context.Context, id pgtype.UUID) (models.User, error)

	CreateSession(ctx context.Context, arg CreateSessionParams) (models.Session, error)
	GetSessionByRefreshToken(ctx context.Context, refreshToken string) (models.Session, error)
	DeleteSessionByRefreshToken(ctx context.Context, refreshToken string) error

	CreatePaper(ctx context.Context, paper *models.ResearchPaper) (models.ResearchPaper, error)
	GetPaperByID(ctx context.Context, id, ownerID pgtype.UUID) (models.ResearchPaper, error)
	ListPapersByOwner(ctx context.Context, ownerID pgtype.UUID) ([]models.ResearchPaper, error)

	// UpdatePaperTx loads the paper inside a transaction with a row
	// lock, applies fn to it, and writes the mutated fields back. Two
	// concurrent mutations of the same paper serialize on the lock.
	UpdatePaperTx(ctx context.Context, id, ownerID pgtype.UUID, fn func(paper *models.ResearchPaper) error) (models.ResearchPaper, error)
}

// SQLStore runs queries against a pgx connection pool.
type SQLStore struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) Store {
	return &SQLStore{pool: pool}
}
