package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/user"
)

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	ClientID  *string   `json:"client_id,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		ClientID:  u.ClientID,
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type createUserRequest struct {
	Email    string  `json:"email" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Password string  `json:"password" binding:"required"`
	Role     string  `json:"role" binding:"required"`
	ClientID *string `json:"client_id"`
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Status   *string `json:"status"`
	Password *string `json:"password"`
}

// CreateUser はポータルのユーザーを作成します。
func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "email, name, password and role are required")
		return
	}
	created, err := h.users.CreateUser(c.Request.Context(), user.CreateUserInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     user.Role(req.Role),
		ClientID: req.ClientID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(created))
}

// ListUsers はユーザー一覧を返します。
func (h *Handler) ListUsers(c *gin.Context) {
	size, token, err := pageParams(c)
	if err != nil {
		badRequest(c, "page_size must be a number")
		return
	}
	in := user.ListUsersInput{PageSize: size, PageToken: token}
	if raw := c.Query("status"); raw != "" {
		status := user.Status(raw)
		in.Status = &status
	}
	if raw := c.Query("role"); raw != "" {
		role := user.Role(raw)
		in.Role = &role
	}

	result, err := h.users.ListUsers(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	items := make([]userResponse, 0, len(result.Users))
	for _, u := range result.Users {
		items = append(items, toUserResponse(u))
	}
	c.JSON(http.StatusOK, gin.H{"users": items, "next_page_token": result.NextPageToken})
}

// UpdateUser は名前、状態、パスワードを更新します。
func (h *Handler) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	in := user.UpdateUserInput{ID: c.Param("id"), Name: req.Name, Password: req.Password}
	if req.Status != nil {
		status := user.Status(*req.Status)
		in.Status = &status
	}

	updated, err := h.users.UpdateUser(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(updated))
}

// DeleteUser はユーザーを削除します。
func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.users.DeleteUser(c.Request.Context(), user.DeleteUserInput{ID: c.Param("id")}); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
