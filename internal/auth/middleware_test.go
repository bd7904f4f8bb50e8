package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareAnonymousPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	env := newTestEnv(t)

	router := gin.New()
	router.Use(Middleware(env.authenticator))
	router.GET("/public", func(c *gin.Context) {
		_, ok := CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": ok})
	})

	for _, header := range []string{"", "Bearer garbage", "Basic dXNlcg==", "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/public", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		assert.Equal(t, http.StatusOK, resp.Code, "header=%q", header)
		assert.Contains(t, resp.Body.String(), `"authenticated":false`, "header=%q", header)
	}
}

func TestMiddlewareAttachesIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	env := newTestEnv(t)
	acc := env.createAccount(t, "a@b.c", "password1")

	raw, err := env.codec.Issue(acc.ID, 0)
	require.NoError(t, err)

	router := gin.New()
	router.Use(Middleware(env.authenticator))
	router.GET("/public", func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": identity.AccountID})
	})

	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
}
