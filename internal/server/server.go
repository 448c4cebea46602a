package server

import (
	"strings"
	"time"

	"acadia.dev/studentrecords/internal/config"
	"acadia.dev/studentrecords/internal/handler"
	"acadia.dev/studentrecords/internal/middleware"
	"acadia.dev/studentrecords/internal/model"
	"acadia.dev/studentrecords/internal/repository"
	"acadia.dev/studentrecords/internal/service"
	"acadia.dev/studentrecords/pkg/token"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Server {
	tokens := token.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	userRepo := repository.NewUserRepository(db)
	authSvc := service.NewAuthService(userRepo, tokens, cfg.DefaultRole)
	authHandler := handler.NewAuthHandler(authSvc, redisClient, cfg)

	studentRepo := repository.NewStudentRepository(db)
	studentSvc := service.NewStudentService(studentRepo)
	studentHandler := handler.NewStudentHandler(studentSvc)

	router := gin.New()

	setupCORS(router, cfg)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(userRepo, tokens)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/students", studentHandler.GetStudents)
		protected.GET("/students/:id", studentHandler.GetStudent)

		protected.POST("/students",
			authMiddleware.RequireRoles(model.RoleAdmin, model.RoleTeacher),
			studentHandler.CreateStudent)
		protected.PUT("/students/:id",
			authMiddleware.RequireRoles(model.RoleAdmin, model.RoleTeacher),
			studentHandler.UpdateStudent)

		protected.DELETE("/students/:id",
			authMiddleware.RequireRoles(model.RoleAdmin),
			studentHandler.DeleteStudent)
		protected.DELETE("/students",
			authMiddleware.RequireRoles(model.RoleAdmin),
			studentHandler.DeleteAllStudents)
		protected.POST("/students/seed",
			authMiddleware.RequireRoles(model.RoleAdmin),
			studentHandler.SeedStudents)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, cfg *config.Config) {
	var origins []string
	if cfg.AllowedOrigins != "" {
		origins = strings.Split(cfg.AllowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
