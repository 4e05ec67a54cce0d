package http

import (
	"github.com/gin-gonic/gin"

	"github.com/ewen-lbh/loca7/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CSRF must run before session so that session context is layered
	// on top of the csrf-enriched request.
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}
	if cfg.Sessions != nil {
		router.Use(cfg.Sessions.SessionLoadSave())
	}

	guard := &auth.Middleware{Sessions: cfg.Sessions, Users: cfg.Users}
	router.Use(guard.LoadUser())

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)

	if cfg.PhotosDir != "" {
		router.Static("/photos/appartments", cfg.PhotosDir)
	}

	accounts := NewAccountsController(cfg)
	router.POST("/register", accounts.Register)
	router.POST("/login", accounts.Login)
	router.POST("/logout", guard.RequireAuth(), accounts.Logout)
	router.GET("/validate-email/:token", accounts.ValidateEmail)
	router.POST("/reset-password", accounts.RequestPasswordReset)
	router.POST("/reset-password/:token", accounts.ConsumePasswordReset)
	router.GET("/admin/emails", guard.RequireAdmin(), accounts.AdminEmails)

	listings := NewAppartementsController(cfg)
	router.GET("/appartements", listings.Search)
	router.GET("/appartements/:id", listings.Show)
	router.POST("/appartements/:id/publier", guard.RequireAuth(), listings.Publish)
	router.POST("/appartements/:id/archiver", guard.RequireAuth(), listings.Archive)
	router.POST("/appartements/:id/signaler", guard.RequireAuth(), listings.Report)
	router.POST("/appartements/:id/aimer", guard.RequireAuth(), listings.Like)
	router.DELETE("/appartements/:id/aimer", guard.RequireAuth(), listings.Unlike)
	router.POST("/appartements/:id/approuver", guard.RequireAdmin(), listings.Approve)
	router.GET("/mes-annonces", guard.RequireAuth(), listings.Mine)
	router.GET("/admin/annonces", guard.RequireAdmin(), listings.PendingApproval)

	return router
}
