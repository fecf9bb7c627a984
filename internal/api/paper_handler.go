package api

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/scribelab/paperforge/internal/api/response"
	"github.com/scribelab/paperforge/internal/models"
	"github.com/scribelab/paperforge/internal/services"
	"github.com/scribelab/paperforge/internal/token"
)

func (s *Server) generateTitles(c *gin.Context) {
	var req models.GenerateTitlesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Warn("Invalid title generation request", "error", err)
		response.BadRequest(c, "Invalid request payload", err.Error())
		return
	}

	titles, err := s.paperService.GenerateTitles(c.Request.Context(), req)
	if err != nil {
		s.handlePaperError(c, err, "Failed to generate titles")
		return
	}

	response.Ok(c, models.TitlesResponse{Titles: titles})
}

func (s *Server) startPaper(c *gin.Context) {
	authPayload := c.MustGet(authorizationPayloadKey).(*token.Payload)

	var req models.StartPaperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Warn("Invalid start paper request", "error", err)
		response.BadRequest(c, "Invalid request payload", err.Error())
		return
	}

	paper, err := s.paperService.StartPaper(c.Request.Context(), authPayload.UserID, req)
	if err != nil {
		s.handlePaperError(c, err, "Failed to start paper")
		return
	}

	response.Created(c, models.StartPaperResponse{
		PaperID:        uuid.UUID(paper.ID.Bytes).String(),
		CurrentSection: paper.CurrentSection.String,
		Status:         paper.GenerationStatus,
	}, "Paper started successfully")
}

func (s *Server) listPapers(c *gin.Context) {
	authPayload := c.MustGet(authorizationPayloadKey).(*token.Payload)

	papers, err := s.paperService.ListPapers(c.Request.Context(), authPayload.UserID)
	if err != nil {
		s.handlePaperError(c, err, "Failed to list papers")
		return
	}

	resp := make([]models.PaperResponse, 0, len(papers))
	for _, paper := range papers {
		resp = append(resp, models.ToPaperResponse(paper))
	}
	response.Ok(c, resp)
}

func (s *Server) getPaper(c *gin.Context) {
	authPayload := c.MustGet(authorizationPayloadKey).(*token.Payload)

	paperID, ok := s.paperIDFromPath(c)
	if !ok {
		return
	}

	paper, err := s.paperService.GetPaper(c.Request.Context(), paperID, authPayload.UserID)
	if err != nil {
		s.handlePaperError(c, err, "Failed to retrieve paper")
		return
	}

	response.Ok(c, models.ToPaperResponse(paper))
}

func (s *Server) generateNextSection(c *gin.Context) {
	authPayload := c.MustGet(authorizationPayloadKey).(*token.Payload)

	paperID, ok := s.paperIDFromPath(c)
	if !ok {
		return
	}

	result, err := s.paperService.GenerateNext(c.Request.Context(), paperID, authPayload.UserID)
	if err != nil {
		s.handlePaperError(c, err, "Failed to generate next section")
		return
	}

	response.Ok(c, result)
}

func (s *Server) generateSection(c *gin.Context) {
	authPayload := c.MustGet(authorizationPayloadKey).(*token.Payload)

	paperID, ok := s.paperIDFromPath(c)
	if !ok {
		return
	}

	var req models.GenerateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Warn("Invalid section generation request", "error", err)
		response.BadRequest(c, "Invalid request payload", err.Error())
		return
	}

	result, err := s.paperService.GenerateSection(c.Request.Context(), paperID, authPayload.UserID, req.Section)
	if err != nil {
		s.handlePaperError(c, err, "Failed to generate section")
		return
	}

	response.Ok(c, result)
}

func (s *Server) confirmSection(c *gin.Context) {
	authPayload := c.MustGet(authorizationPayloadKey).(*token.Payload)

	paperID, ok := s.paperIDFromPath(c)
	if !ok {
		return
	}

	var req models.ConfirmSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Warn("Invalid section confirmation request", "error", err)
		response.BadRequest(c, "Invalid request payload", err.Error())
		return
	}

	result, err := s.paperService.ConfirmSection(c.Request.Context(), paperID, authPayload.UserID, req.Section)
	if err != nil {
		s.handlePaperError(c, err, "Failed to confirm section")
		return
	}

	response.Ok(c, result)
}

func (s *Server) editSection(c *gin.Context) {
	authPayload := c.MustGet(authorizationPayloadKey).(*token.Payload)

	paperID, ok := s.paperIDFromPath(c)
	if !ok {
		return
	}

	var req models.EditSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Warn("Invalid section edit request", "error", err)
		response.BadRequest(c, "Invalid request payload", err.Error())
		return
	}

	result, err := s.paperService.EditSection(c.Request.Context(), paperID, authPayload.UserID, req)
	if err != nil {
		s.handlePaperError(c, err, "Failed to edit section")
		return
	}

	response.Ok(c, result)
}

func (s *Server) getEditHistory(c *gin.Context) {
	authPayload := c.MustGet(authorizationPayloadKey).(*token.Payload)

	paperID, ok := s.paperIDFromPath(c)
	if !ok {
		return
	}

	history, err := s.paperService.EditHistory(c.Request.Context(), paperID, authPayload.UserID)
	if err != nil {
		s.handlePaperError(c, err, "Failed to retrieve edit history")
		return
	}

	response.Ok(c, gin.H{"edit_history": history})
}

func (s *Server) searchReferences(c *gin.Context) {
	authPayload := c.MustGet(authorizationPayloadKey).(*token.Payload)

	paperID, ok := s.paperIDFromPath(c)
	if !ok {
		return
	}

	entries, err := s.paperService.SearchReferences(c.Request.Context(), paperID, authPayload.UserID)
	if err != nil {
		s.handlePaperError(c, err, "Failed to search references")
		return
	}

	response.Ok(c, gin.H{"references": entries})
}

func (s *Server) fetchReference(c *gin.Context) {
	authPayload := c.MustGet(authorizationPayloadKey).(*token.Payload)

	paperID, ok := s.paperIDFromPath(c)
	if !ok {
		return
	}

	var req models.FetchReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Warn("Invalid reference fetch request", "error", err)
		response.BadRequest(c, "Invalid request payload", err.Error())
		return
	}

	result, err := s.paperService.FetchReference(c.Request.Context(), paperID, authPayload.UserID, req)
	if err != nil {
		s.handlePaperError(c, err, "Failed to fetch reference")
		return
	}

	response.Ok(c, result)
}

func (s *Server) paperIDFromPath(c *gin.Context) (uuid.UUID, bool) {
	paperID, err := uuid.Parse(c.Param("paper_id"))
	if err != nil {
		s.logger.Warn("Invalid paper ID in path", "paper_id", c.Param("paper_id"), "error", err)
		response.BadRequest(c, "Invalid paper ID format")
		return uuid.Nil, false
	}
	return paperID, true
}

func (s *Server) handlePaperError(c *gin.Context, err error, message string) {
	var upstreamErr *services.UpstreamError
	switch {
	case errors.Is(err, services.ErrPaperNotFound):
		response.NotFound(c, services.ErrPaperNotFound.Error())
	case errors.Is(err, services.ErrNoSections):
		response.BadRequest(c, services.ErrNoSections.Error())
	case errors.As(err, &upstreamErr):
		s.logger.Error("Upstream service failure", "service", upstreamErr.Service, "error", err)
		response.BadGateway(c, message)
	default:
		s.logger.Error("Paper service error", "error", err)
		response.InternalServerError(c, message, err)
	}
}
