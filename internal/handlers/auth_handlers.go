package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"fieldline/internal/database/models"
	"fieldline/internal/domain"
	"fieldline/internal/utils"
)

// AccountRepository is the slice of the user store the auth endpoints need.
type AccountRepository interface {
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	TenantByCode(ctx context.Context, code string) (*models.Tenant, error)
	TouchLastLogin(ctx context.Context, userID int64, at time.Time) error
}

type AuthHandler struct {
	repo   AccountRepository
	issuer *utils.TokenIssuer
	logger zerolog.Logger
}

func NewAuthHandler(repo AccountRepository, issuer *utils.TokenIssuer, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		repo:   repo,
		issuer: issuer,
		logger: logger.With().Str("handler", "auth").Logger(),
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	TenantCode string `json:"tenantCode" binding:"required"`
	Username   string `json:"username" binding:"required,min=3"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	Role       string `json:"role" binding:"required"`
}

type authResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    int64     `json:"userId"`
	TenantID  int64     `json:"tenantId"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, domain.CodeValidationError, err.Error())
		return
	}

	user, err := h.repo.UserByUsername(c.Request.Context(), req.Username)
	if err != nil {
		h.logger.Error().Err(err).Msg("login lookup failed")
		respondDomainError(c, err)
		return
	}
	if user == nil || !user.IsActive {
		respondError(c, http.StatusUnauthorized, domain.CodeUnauthorized, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		respondError(c, http.StatusUnauthorized, domain.CodeUnauthorized, "invalid credentials")
		return
	}

	token, expiresAt, err := h.issuer.GenerateToken(user.ID, user.TenantID, user.Username, user.Role)
	if err != nil {
		h.logger.Error().Err(err).Msg("token generation failed")
		respondError(c, http.StatusInternalServerError, domain.CodeServerError, "internal server error")
		return
	}

	if err := h.repo.TouchLastLogin(c.Request.Context(), user.ID, time.Now()); err != nil {
		h.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("last login update failed")
	}

	respondOK(c, http.StatusOK, authResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		UserID:    user.ID,
		TenantID:  user.TenantID,
		Username:  user.Username,
		Role:      user.Role,
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, domain.CodeValidationError, err.Error())
		return
	}

	tenant, err := h.repo.TenantByCode(c.Request.Context(), req.TenantCode)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if tenant == nil {
		respondError(c, http.StatusBadRequest, domain.CodeValidationError, "unknown tenant code")
		return
	}

	existing, err := h.repo.UserByUsername(c.Request.Context(), req.Username)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if existing != nil {
		respondError(c, http.StatusBadRequest, domain.CodeValidationError, "username already taken")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, http.StatusInternalServerError, domain.CodeServerError, "internal server error")
		return
	}

	user := &models.User{
		TenantID:     tenant.ID,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		IsActive:     true,
	}
	if err := h.repo.CreateUser(c.Request.Context(), user); err != nil {
		h.logger.Error().Err(err).Msg("user creation failed")
		respondDomainError(c, err)
		return
	}

	token, expiresAt, err := h.issuer.GenerateToken(user.ID, user.TenantID, user.Username, user.Role)
	if err != nil {
		respondError(c, http.StatusInternalServerError, domain.CodeServerError, "internal server error")
		return
	}

	respondOK(c, http.StatusCreated, authResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		UserID:    user.ID,
		TenantID:  user.TenantID,
		Username:  user.Username,
		Role:      user.Role,
	})
}
