package api

import (
	"database/sql"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/scribelab/paperforge/internal/api/response"
	"github.com/scribelab/paperforge/internal/models"
	"github.com/scribelab/paperforge/internal/token"
)

func (s *Server) getCurrentUser(c *gin.Context) {
	authPayload := c.MustGet(authorizationPayloadKey).(*token.Payload)

	user, err := s.store.GetUserByID(c.Request.Context(), pgtype.UUID{Bytes: authPayload.UserID, Valid: true})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("Current user not found in DB", "userID", authPayload.UserID)
			response.NotFound(c, "User not found")
			return
		}
		s.logger.Error("Failed to get current user from DB", "userID", authPayload.UserID, "error", err)
		response.InternalServerError(c, "Failed to retrieve user information", err)
		return
	}

	response.Ok(c, models.ToUserResponse(user))
}
