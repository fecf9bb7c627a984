package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/scribelab/paperforge/internal/db"
	applogger "github.com/scribelab/paperforge/internal/logger"
	"github.com/scribelab/paperforge/internal/services"
	"github.com/scribelab/paperforge/internal/token"
	"github.com/scribelab/paperforge/internal/util"
)

type Server struct {
	config       util.Config
	store        db.Store
	authService  *services.AuthService
	paperService *services.PaperService
	tokenMaker   token.Maker
	logger       *applogger.AppLogger
	Router       *gin.Engine
}

func NewServer(
	config util.Config,
	store db.Store,
	authService *services.AuthService,
	paperService *services.PaperService,
	tokenMaker token.Maker,
	logger *applogger.AppLogger,
) *Server {
	server := &Server{
		config:       config,
		store:        store,
		authService:  authService,
		paperService: paperService,
		tokenMaker:   tokenMaker,
		logger:       logger,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CORSMiddleware())

	server.Router = router
	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	router := s.Router

	// Health check
	router.GET("/health", s.healthCheckHandler)

	v1 := router.Group("/api/v1")

	// Authentication routes
	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/register", s.registerUser)
		authRoutes.POST("/login", s.loginUser)
		authRoutes.POST("/refresh-token", s.refreshToken)
	}

	// Logout needs to be authenticated to identify the session to invalidate
	authRequired := v1.Group("/").Use(authMiddleware(s.tokenMaker))
	authRequired.POST("/auth/logout", s.logoutUser)

	// User routes
	userRoutes := v1.Group("/users").Use(authMiddleware(s.tokenMaker))
	{
		userRoutes.GET("/me", s.getCurrentUser)
	}

	// Paper drafting routes
	paperRoutes := v1.Group("/papers").Use(authMiddleware(s.tokenMaker))
	{
		paperRoutes.POST("/titles", s.generateTitles)
		paperRoutes.POST("", s.startPaper)
		paperRoutes.GET("", s.listPapers)
		paperRoutes.GET("/:paper_id", s.getPaper)
		paperRoutes.POST("/:paper_id/generate-next", s.generateNextSection)
		paperRoutes.POST("/:paper_id/sections/generate", s.generateSection)
		paperRoutes.POST("/:paper_id/sections/confirm", s.confirmSection)
		paperRoutes.POST("/:paper_id/sections/edit", s.editSection)
		paperRoutes.GET("/:paper_id/edit-history", s.getEditHistory)
		paperRoutes.GET("/:paper_id/references", s.searchReferences)
		paperRoutes.POST("/:paper_id/references/fetch", s.fetchReference)
	}
}

// CORSMiddleware sets up Cross-Origin Resource Sharing
func CORSMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins:  true, // For development; be more restrictive in production
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

func (s *Server) healthCheckHandler(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
