package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/scribelab/paperforge/internal/db"
	applogger "github.com/scribelab/paperforge/internal/logger"
	"github.com/scribelab/paperforge/internal/models"
	"github.com/scribelab/paperforge/internal/token"
	"github.com/scribelab/paperforge/internal/util"
)

type AuthService struct {
	store      db.Store
	tokenMaker token.Maker
	config     util.Config
	logger     *applogger.AppLogger
}

func NewAuthService(store db.Store, tokenMaker token.Maker, config util.Config, logger *applogger.AppLogger) *AuthService {
	return &AuthService{
		store:      store,
		tokenMaker: tokenMaker,
		config:     config,
		logger:     logger,
	}
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterUserRequest) (*models.LoginUserResponse, error) {
	s.logger.Info("Registering user", "email", req.Email)
	_, err := s.store.GetUserByEmail(ctx, req.Email)
	if err == nil {
		s.logger.Warn("User registration failed: email already exists", "email", req.Email)
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, pgx.ErrNoRows) && !errors.Is(err, sql.ErrNoRows) {
		s.logger.Error("Failed to check existing user", "email", req.Email, "error", err)
		return nil, fmt.Errorf("database error checking user: %w", err)
	}

	hashedPassword, err := util.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("Failed to hash password", "email", req.Email, "error", err)
		return nil, fmt.Errorf("could not hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, db.CreateUserParams{
		Email:        req.Email,
		PasswordHash: hashedPassword,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	})
	if err != nil {
		s.logger.Error("Failed to create user in DB", "email", req.Email, "error", err)
		return nil, fmt.Errorf("could not create user: %w", err)
	}

	s.logger.Info("User registered successfully", "userID", user.ID, "email", user.Email)
	return s.createSessionAndTokens(ctx, user, "", "")
}

func (s *AuthService) Login(ctx context.Context, req models.LoginUserRequest, userAgent, clientIP string) (*models.LoginUserResponse, error) {
	s.logger.Info("User login attempt", "email", req.Email)
	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("Login failed: user not found", "email", req.Email)
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Failed to get user by email", "email", req.Email, "error", err)
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}

	err = util.CheckPassword(req.Password, user.PasswordHash)
	if err != nil {
		s.logger.Warn("Login failed: invalid password", "email", req.Email, "userID", user.ID)
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("User login successful", "userID", user.ID, "email", user.Email)
	return s.createSessionAndTokens(ctx, user, userAgent, clientIP)
}

func (s *AuthService) createSessionAndTokens(ctx context.Context, user models.User, userAgent, clientIP string) (*models.LoginUserResponse, error) {
	accessToken, accessPayload, err := s.tokenMaker.CreateToken(user.ID.Bytes, s.config.AccessTokenDuration)
	if err != nil {
		s.logger.Error("Failed to create access token", "userID", user.ID, "error", err)
		return nil, fmt.Errorf("could not create access token: %w", err)
	}

	refreshToken, refreshPayload, err := s.tokenMaker.CreateToken(user.ID.Bytes, s.config.RefreshTokenDuration)
	if err != nil {
		s.logger.Error("Failed to create refresh token", "userID", user.ID, "error", err)
		return nil, fmt.Errorf("could not create refresh token: %w", err)
	}

	// The Paseto payload ID doubles as the session ID.
	session, err := s.store.CreateSession(ctx, db.CreateSessionParams{
		ID:           pgtype.UUID{Bytes: refreshPayload.ID, Valid: true},
		UserID:       user.ID,
		RefreshToken: refreshToken,
		UserAgent:    pgtype.Text{String: userAgent, Valid: userAgent != ""},
		ClientIp:     pgtype.Text{String: clientIP, Valid: clientIP != ""},
		IsBlocked:    pgtype.Bool{Bool: false, Valid: true},
		ExpiresAt:    pgtype.Timestamptz{Time: refreshPayload.ExpiredAt, Valid: true},
	})
	if err != nil {
		s.logger.Error("Failed to create session", "userID", user.ID, "error", err)
		return nil, fmt.Errorf("could not create session: %w", err)
	}

	return &models.LoginUserResponse{
		SessionID:             session.ID.Bytes,
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessPayload.ExpiredAt,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: refreshPayload.ExpiredAt,
		User:                  models.ToUserResponse(user),
	}, nil
}

func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string, userAgent, clientIP string) (*models.LoginUserResponse, error) {
	s.logger.Info("Attempting to refresh access token")
	refreshPayload, err := s.tokenMaker.VerifyToken(refreshToken)
	if err != nil {
		s.logger.Warn("Refresh token verification failed", "error", err)
		return nil, token.ErrInvalidToken
	}

	session, err := s.store.GetSessionByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("Session not found for refresh token", "token_id", refreshPayload.ID)
			return nil, ErrSessionNotFound
		}
		s.logger.Error("Failed to get session by refresh token", "token_id", refreshPayload.ID, "error", err)
		return nil, fmt.Errorf("database error fetching session: %w", err)
	}

	if session.IsBlocked.Bool {
		s.logger.Warn("Session is blocked", "session_id", session.ID, "userID", session.UserID)
		return nil, ErrSessionBlocked
	}

	if session.UserID.Bytes != refreshPayload.UserID {
		s.logger.Warn("Mismatched user ID in session and token", "session_userID", session.UserID, "token_userID", refreshPayload.UserID)
		return nil, ErrSessionNotFound
	}

	if time.Now().After(session.ExpiresAt.Time) {
		s.logger.Warn("Refresh token / session has expired", "session_id", session.ID, "expires_at", session.ExpiresAt.Time)
		return nil, ErrSessionNotFound
	}

	user, err := s.store.GetUserByID(ctx, pgtype.UUID{Bytes: refreshPayload.UserID, Valid: true})
	if err != nil {
		s.logger.Error("Failed to get user by ID during token refresh", "userID", refreshPayload.UserID, "error", err)
		return nil, fmt.Errorf("could not retrieve user: %w", err)
	}

	accessToken, accessPayload, err := s.tokenMaker.CreateToken(user.ID.Bytes, s.config.AccessTokenDuration)
	if err != nil {
		s.logger.Error("Failed to create new access token during refresh", "userID", user.ID, "error", err)
		return nil, fmt.Errorf("could not create access token: %w", err)
	}

	s.logger.Info("Access token refreshed successfully", "userID", user.ID)
	return &models.LoginUserResponse{
		SessionID:             session.ID.Bytes,
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessPayload.ExpiredAt,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: session.ExpiresAt.Time,
		User:                  models.ToUserResponse(user),
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	s.logger.Info("User logout attempt")
	_, err := s.tokenMaker.VerifyToken(refreshToken)
	if err != nil {
		s.logger.Warn("Invalid refresh token provided for logout", "error", err)
		return token.ErrInvalidToken
	}

	err = s.store.DeleteSessionByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
			// Already logged out; treat as success.
			return nil
		}
		s.logger.Error("Failed to delete session on logout", "error", err)
		return fmt.Errorf("could not delete session: %w", err)
	}
	s.logger.Info("User logged out successfully")
	return nil
}
