package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func newAuthRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/me", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserID(c)})
	})
	return r
}

func doGet(r http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	r := newAuthRouter(Auth(testSecret))
	valid := signToken(t, jwt.MapClaims{"user_id": 7, "exp": time.Now().Add(time.Hour).Unix()})
	expired := signToken(t, jwt.MapClaims{"user_id": 7, "exp": time.Now().Add(-time.Hour).Unix()})

	w := doGet(r, "Bearer "+valid)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":7}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, doGet(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Token "+valid).Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Bearer "+expired).Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Bearer garbage").Code)

	noUser := signToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Bearer "+noUser).Code)
}

func TestOptionalAuth(t *testing.T) {
	r := newAuthRouter(OptionalAuth(testSecret))

	w := doGet(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":0}`, w.Body.String())

	valid := signToken(t, jwt.MapClaims{"user_id": 3, "exp": time.Now().Add(time.Hour).Unix()})
	w = doGet(r, "Bearer "+valid)
	assert.JSONEq(t, `{"user_id":3}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, doGet(r, "Bearer garbage").Code)
}

type stubLimiter struct {
	exceeded bool
	err      error
	keys     []string
}

func (s *stubLimiter) CheckRateLimit(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	s.keys = append(s.keys, key)
	return s.exceeded, s.err
}

func TestRateLimit(t *testing.T) {
	cases := []struct {
		name    string
		limiter *stubLimiter
		want    int
	}{
		{"under limit", &stubLimiter{}, http.StatusOK},
		{"over limit", &stubLimiter{exceeded: true}, http.StatusTooManyRequests},
		{"limiter down", &stubLimiter{err: errors.New("redis down")}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(RateLimit(tc.limiter, 10, time.Second))
			r.GET("/me", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := doGet(r, "")
			assert.Equal(t, tc.want, w.Code)
			require.Len(t, tc.limiter.keys, 1)
			assert.Equal(t, "ip:192.0.2.1", tc.limiter.keys[0])
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS("https://pixels.example"))
	r.GET("/me", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://pixels.example", w.Header().Get("Access-Control-Allow-Origin"))
}
