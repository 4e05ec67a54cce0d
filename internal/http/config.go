package http

import (
	"time"

	"github.com/ewen-lbh/loca7/internal/auth"
	"github.com/ewen-lbh/loca7/internal/database"
	"github.com/ewen-lbh/loca7/internal/database/appartments"
	"github.com/ewen-lbh/loca7/internal/database/users"
	"github.com/ewen-lbh/loca7/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database    *database.Database
	Users       *users.Repository
	Appartments *appartments.Repository

	// Authentication
	Sessions      *auth.SessionManager
	CSRFSecret    []byte
	SecureCookies bool
	BcryptCost    int
	TokenExpiry   time.Duration

	// Task queue client; nil disables notification mail
	TaskClient *tasks.Client

	// PublicURL is the base for links embedded in emails
	PublicURL string

	// PhotosDir is served under /photos/appartments
	PhotosDir string

	// Application info
	Version string
}
