package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// csrfTestRouter records in submitted whether the protected POST
// handler actually ran, so rejections can assert it never did.
func csrfTestRouter(submitted *bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CSRFMiddleware([]byte("0123456789abcdef0123456789abcdef"), false))
	router.GET("/form", func(c *gin.Context) {
		c.String(http.StatusOK, GetCSRFToken(c))
	})
	router.POST("/submit", func(c *gin.Context) {
		*submitted = true
		c.Status(http.StatusOK)
	})
	return router
}

func TestCSRFMiddleware(t *testing.T) {
	t.Run("safe methods pass and expose a token", func(t *testing.T) {
		var submitted bool
		router := csrfTestRouter(&submitted)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/form", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Body.String())
	})

	t.Run("unsafe methods without a token are rejected", func(t *testing.T) {
		var submitted bool
		router := csrfTestRouter(&submitted)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/submit", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.False(t, submitted)
	})

	t.Run("json clients get a json error", func(t *testing.T) {
		var submitted bool
		router := csrfTestRouter(&submitted)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/submit", nil)
		req.Header.Set("Accept", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "CSRF")
		assert.False(t, submitted)
	})

	t.Run("form clients are redirected back with an error", func(t *testing.T) {
		var submitted bool
		router := csrfTestRouter(&submitted)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/submit", nil)
		req.Header.Set("Referer", "http://loca7.test/appartements")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Contains(t, w.Header().Get("Location"), "error=")
		assert.False(t, submitted)
	})
}
