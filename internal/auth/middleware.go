package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ewen-lbh/loca7/internal/database/users"
	"github.com/ewen-lbh/loca7/internal/entities"
)

// ContextKeyUser is where middleware stores the authenticated user.
const ContextKeyUser = "current_user"

// Middleware resolves sessions into users and enforces access rules.
type Middleware struct {
	Sessions *SessionManager
	Users    *users.Repository
}

// LoadUser resolves the session into a full user record when present.
// It never aborts; handlers decide what anonymous access means.
func (m *Middleware) LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.Sessions == nil || m.Users == nil {
			c.Next()
			return
		}
		if id := m.Sessions.GetUserID(c.Request); id != "" {
			if user, err := m.Users.GetByID(id); err == nil {
				c.Set(ContextKeyUser, user)
			}
		}
		c.Next()
	}
}

// RequireAuth rejects anonymous requests.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects requests from non-administrators.
func (m *Middleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !user.Admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "administrator access required"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil.
func CurrentUser(c *gin.Context) *entities.User {
	value, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil
	}
	user, ok := value.(*entities.User)
	if !ok {
		return nil
	}
	return user
}
