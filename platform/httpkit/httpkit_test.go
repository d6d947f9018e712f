package httpkit

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"couvreur_backend/platform/apperr"
	"couvreur_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type jwtConfig string

func (s jwtConfig) GetJWTAccessSecret() string { return string(s) }

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHandleError_StatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", apperr.NotFound("lead not found"), http.StatusNotFound},
		{"validation", apperr.Validation("consent is required"), http.StatusBadRequest},
		{"untyped", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			require.True(t, HandleError(c, tc.err))
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func signedToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAuthRequired(t *testing.T) {
	r := gin.New()
	r.GET("/admin", AuthRequired(jwtConfig("s3cret")), func(c *gin.Context) {
		op := GetOperator(c)
		c.String(http.StatusOK, op.Subject())
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := signedToken(t, "s3cret", jwt.MapClaims{
		"sub":  "francis",
		"type": "access",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "francis", w.Body.String())

	refresh := signedToken(t, "s3cret", jwt.MapClaims{"sub": "francis", "type": "refresh"})
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPerMinuteLimiter(t *testing.T) {
	r := gin.New()
	r.POST("/leads", NewPerMinuteLimiter(2, logger.Discard()).RateLimit(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/leads", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)
}

func TestIPRateLimiter_EvictsIdleClients(t *testing.T) {
	limiter := NewPerMinuteLimiter(2, logger.Discard())
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }
	limiter.lastSweep = clock

	for i := 0; i < 100; i++ {
		limiter.getLimiter(fmt.Sprintf("10.0.0.%d", i))
	}
	assert.Equal(t, 100, limiter.size())

	clock = clock.Add(30 * time.Second)
	limiter.getLimiter("10.0.0.1")
	assert.Equal(t, 100, limiter.size(), "nothing is idle long enough yet")

	clock = clock.Add(2 * time.Minute)
	limiter.getLimiter("192.168.1.1")
	assert.Equal(t, 1, limiter.size())
}

func TestRequestID_EchoesHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(HeaderRequestID))
}
