package server

import (
	"users-service/internal/config"
	"users-service/internal/crypto"
	"users-service/internal/handler"
	"users-service/internal/middleware"
	"users-service/internal/repository"
	"users-service/internal/service"
	"users-service/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	cfg    *config.Config
	logger *zap.Logger
	log    *logrus.Logger
}

func NewServer(db *sqlx.DB, cfg *config.Config, logger *zap.Logger, log *logrus.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())

	s := &Server{
		router: router,
		db:     db,
		cfg:    cfg,
		logger: logger,
		log:    log,
	}

	// Setup routes
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	// Initialize Auth components
	userRepo := repository.NewUserRepository(s.db, s.log)
	hasher := crypto.NewPasswordHasher(s.cfg.Auth.BcryptCost)
	tokenService := token.NewService([]byte(s.cfg.Auth.Secret), s.cfg.TokenLifetime())
	authService := service.NewAuthService(userRepo, hasher, tokenService, s.logger)
	authHandler := handler.NewAuthHandler(authService, s.log)
	userHandler := handler.NewUserHandler(authService, userRepo, s.log)

	authenticated := middleware.Authenticate(tokenService, userRepo, s.logger)

	// Ping routes for health check
	s.router.GET("/ping", userHandler.Ping)
	s.router.GET("/users/ping", userHandler.Ping)

	// Authentication routes
	authGroup := s.router.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/logout", authenticated, authHandler.Logout)
	authGroup.GET("/status", authenticated, authHandler.Status)

	// User routes
	s.router.GET("/users", userHandler.GetAllUsers)
	s.router.GET("/users/:id", userHandler.GetUserByID)
	s.router.POST("/users", authenticated, middleware.RequireAdmin(), userHandler.CreateUser)
}

func (s *Server) Run(addr string) {
	s.log.Infof("Server starting on port %s...", addr)
	if err := s.router.Run(addr); err != nil {
		s.log.Fatalf("Server failed to start: %v", err)
	}
}
