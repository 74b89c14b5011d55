package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/adapters/http/middleware"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/user"
)

// LoginRequest はログイン要求です。
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse はログイン応答です。
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

// Login は資格情報を検証し、アクセストークンを発行します。
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email and password are required")
		return
	}

	u, err := h.users.Authenticate(c.Request.Context(), user.AuthenticateInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	token, expiresAt, err := h.tokens.Issue(u)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.logger.Info("user logged in",
		zap.String("user_id", u.ID),
		zap.String("role", string(u.Role)),
		zap.String("request_id", middleware.GetRequestID(c)),
	)
	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      toUserResponse(u),
	})
}

// Me はトークンの利用者を返します。
func (h *Handler) Me(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	u, err := h.users.GetUser(c.Request.Context(), user.GetUserInput{ID: claims.UserID()})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(u))
}
