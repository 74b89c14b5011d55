// Package handler は gin を使った管理 API のハンドラーとルーティングを提供します。
package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/adapters/http/middleware"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/client"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/compliance"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/document"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/user"
	"github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/core/worker"
	pgdb "github.com/dgonzaleztagle-hub/cloud-contador-pro-sub001/internal/platform/db/postgres"
)

const (
	dateLayout = "2006-01-02"
	// multipart のヘッダーやフォーム値の分だけ本体上限に余裕を持たせます。
	multipartOverhead int64 = 1 << 20
	loginRateLimit          = 10
	loginRateWindow         = time.Minute
)

// TokenIssuer はアクセストークンを発行・検証します。
type TokenIssuer interface {
	middleware.TokenParser
	Issue(u *user.User) (string, time.Time, error)
}

// Dependencies はルーターが利用するユースケースと基盤です。
type Dependencies struct {
	Logger         *zap.Logger
	Tokens         TokenIssuer
	DB             pgdb.Pinger
	Users          user.UseCase
	Clients        client.UseCase
	Workers        worker.UseCase
	Documents      document.UseCase
	Compliance     compliance.UseCase
	Location       *time.Location
	MaxUploadBytes int64
}

// Handler は管理 API のハンドラー群です。
type Handler struct {
	logger         *zap.Logger
	tokens         TokenIssuer
	db             pgdb.Pinger
	users          user.UseCase
	clients        client.UseCase
	workers        worker.UseCase
	documents      document.UseCase
	compliance     compliance.UseCase
	location       *time.Location
	maxUploadBytes int64
}

// New は Handler を生成します。
func New(deps Dependencies) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	location := deps.Location
	if location == nil {
		location = time.UTC
	}
	maxUpload := deps.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = document.DefaultMaxSize
	}
	return &Handler{
		logger:         logger,
		tokens:         deps.Tokens,
		db:             deps.DB,
		users:          deps.Users,
		clients:        deps.Clients,
		workers:        deps.Workers,
		documents:      deps.Documents,
		compliance:     deps.Compliance,
		location:       location,
		maxUploadBytes: maxUpload,
	}
}

// NewRouter はミドルウェアとルートを登録した gin.Engine を返します。
func NewRouter(deps Dependencies) *gin.Engine {
	h := New(deps)

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Recovery(h.logger),
		middleware.RequestLogger(h.logger),
	)

	router.GET("/health", h.Health)

	api := router.Group("/api")
	api.POST("/auth/login",
		middleware.RateLimit(middleware.NewRateLimiter(loginRateLimit, loginRateWindow), h.logger),
		h.Login,
	)

	protected := api.Group("")
	protected.Use(middleware.Auth(h.tokens))
	admin := middleware.RequireAdmin()

	protected.GET("/auth/me", h.Me)
	protected.GET("/rut/validate", h.ValidateRUT)
	protected.GET("/notifications", admin, h.ListNotifications)

	protected.GET("/clients", admin, h.ListClients)
	protected.POST("/clients", admin, h.CreateClient)
	protected.GET("/clients/:id", h.GetClient)
	protected.PATCH("/clients/:id", admin, h.UpdateClient)
	protected.DELETE("/clients/:id", admin, h.DeleteClient)

	protected.GET("/clients/:id/workers", h.ListWorkers)
	protected.POST("/clients/:id/workers", admin, h.CreateWorker)
	protected.GET("/workers/:id", h.GetWorker)
	protected.PATCH("/workers/:id", admin, h.UpdateWorker)
	protected.DELETE("/workers/:id", admin, h.DeleteWorker)

	protected.GET("/clients/:id/documents", h.ListDocuments)
	protected.POST("/clients/:id/documents", h.UploadDocument)
	protected.GET("/documents/:id/url", h.DocumentURL)
	protected.DELETE("/documents/:id", admin, h.DeleteDocument)

	protected.GET("/users", admin, h.ListUsers)
	protected.POST("/users", admin, h.CreateUser)
	protected.PATCH("/users/:id", admin, h.UpdateUser)
	protected.DELETE("/users/:id", admin, h.DeleteUser)

	return router
}
