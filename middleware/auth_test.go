package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"commerce-api/common/auth"
	"commerce-api/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *auth.TokenManager) {
	gin.SetMode(gin.TestMode)
	tm, err := auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", AuthMiddleware(tm), func(c *gin.Context) {
		userID, err := GetUserID(c)
		require.NoError(t, err)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "role": GetRole(c)})
	})
	r.GET("/admin", AuthMiddleware(tm), AdminOnly(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r, tm
}

func request(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	r, tm := newTestRouter(t)

	t.Run("valid token passes identity through", func(t *testing.T) {
		token, err := tm.Generate("user-1", "a@example.com", models.RoleUser)
		require.NoError(t, err)

		rec := request(r, "/me", token)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "user-1")
	})

	t.Run("missing token rejected", func(t *testing.T) {
		rec := request(r, "/me", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed token rejected", func(t *testing.T) {
		rec := request(r, "/me", "garbage")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAdminOnly(t *testing.T) {
	r, tm := newTestRouter(t)

	t.Run("admin allowed", func(t *testing.T) {
		token, err := tm.Generate("admin-1", "admin@example.com", models.RoleAdmin)
		require.NoError(t, err)

		rec := request(r, "/admin", token)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("plain user forbidden", func(t *testing.T) {
		token, err := tm.Generate("user-1", "a@example.com", models.RoleUser)
		require.NoError(t, err)

		rec := request(r, "/admin", token)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
