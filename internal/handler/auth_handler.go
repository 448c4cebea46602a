package handler

import (
	"fmt"
	"net/http"

	"acadia.dev/studentrecords/internal/config"
	"acadia.dev/studentrecords/internal/dto"
	"acadia.dev/studentrecords/internal/service"
	"acadia.dev/studentrecords/pkg/response"
	"acadia.dev/studentrecords/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type AuthHandler struct {
	service     service.AuthService
	redisClient *redis.Client
	cfg         *config.Config
}

func NewAuthHandler(service service.AuthService, redisClient *redis.Client, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		service:     service,
		redisClient: redisClient,
		cfg:         cfg,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input dto.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.service.Register(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input dto.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	// One attempt per window per client IP; credentials are only checked
	// once the slot is free.
	allowed, err := service.CheckAndSetRateLimit(c.Request.Context(), h.redisClient, c.ClientIP(), "login", h.cfg.RateLimitLogin)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	if !allowed {
		ttl, _ := service.GetRateLimitTTL(c.Request.Context(), h.redisClient, c.ClientIP(), "login")
		c.Header("Retry-After", fmt.Sprintf("%.0f", ttl.Seconds()))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts"})
		return
	}

	resp, err := h.service.Login(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	_ = service.ClearRateLimit(c.Request.Context(), h.redisClient, c.ClientIP(), "login")

	c.JSON(http.StatusOK, resp)
}
