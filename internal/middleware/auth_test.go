package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func whoami(validator TokenValidator) *gin.Engine {
	r := gin.New()
	r.Use(OptionalAuth(validator))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserID(c)})
	})
	return r
}

func TestJWTValidator(t *testing.T) {
	v := NewJWTValidator("test-secret")

	token, err := v.IssueToken("user-123", time.Hour)
	require.NoError(t, err)
	claims, err := v.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)

	_, err = NewJWTValidator("other-secret").ValidateToken(token)
	assert.Error(t, err)

	expired, err := v.IssueToken("user-123", -time.Minute)
	require.NoError(t, err)
	_, err = v.ValidateToken(expired)
	assert.Error(t, err)
}

func TestOptionalAuth(t *testing.T) {
	v := NewJWTValidator("test-secret")
	r := whoami(v)
	token, err := v.IssueToken("user-42", time.Hour)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"anonymous", "", http.StatusOK, `{"user_id":""}`},
		{"valid token", "Bearer " + token, http.StatusOK, `{"user_id":"user-42"}`},
		{"bad format", "Token " + token, http.StatusUnauthorized, `{"error":"invalid authorization header format"}`},
		{"bad token", "Bearer not-a-jwt", http.StatusUnauthorized, `{"error":"invalid token"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			assert.JSONEq(t, tc.body, w.Body.String())
		})
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
