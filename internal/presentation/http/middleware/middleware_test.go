package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/shopdesk-api/internal/domain/entity"
	"github.com/sangkips/shopdesk-api/internal/domain/enum"
	"github.com/sangkips/shopdesk-api/internal/domain/repository/mocks"
	"github.com/sangkips/shopdesk-api/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func withUser(id uuid.UUID, role enum.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", id)
		c.Set("user_role", role)
		c.Next()
	}
}

func serve(r *gin.Engine, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	jwtManager := utils.NewJWTManager("test-secret", time.Hour)
	userID := uuid.New()
	token, err := jwtManager.GenerateAccessToken(userID, "till@shop.test", "Till", "staff")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", AuthMiddleware(jwtManager), func(c *gin.Context) {
		assert.Equal(t, userID, c.MustGet("user_id"))
		assert.Equal(t, enum.UserRoleStaff, c.MustGet("user_role"))
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"bad token", "Bearer not-a-token", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			w := serve(r, http.MethodGet, "/me", nil, headers)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }

	r := gin.New()
	r.GET("/staff", withUser(uuid.New(), enum.UserRoleStaff), RequireRole(enum.UserRoleAdmin, enum.UserRoleManager), ok)
	r.GET("/manager", withUser(uuid.New(), enum.UserRoleManager), RequireRole(enum.UserRoleAdmin, enum.UserRoleManager), ok)
	r.GET("/anonymous", RequireRole(enum.UserRoleAdmin), ok)

	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/staff", nil, nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/manager", nil, nil).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/anonymous", nil, nil).Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		RequestsPerSecond: 0.001,
		BurstSize:         2,
		CleanupInterval:   time.Minute,
		EntryTTL:          time.Minute,
	})
	defer rl.Stop()

	alice, bob := uuid.New(), uuid.New()
	r := gin.New()
	r.GET("/alice", withUser(alice, enum.UserRoleStaff), rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bob", withUser(bob, enum.UserRoleStaff), rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/alice", nil, nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/alice", nil, nil).Code)

	limited := serve(r, http.MethodGet, "/alice", nil, nil)
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/bob", nil, nil).Code)
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerSecond: 1, BurstSize: 1, CleanupInterval: time.Hour, EntryTTL: -time.Second})
	defer rl.Stop()

	rl.getLimiter("ip:10.0.0.1")
	rl.cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Empty(t, rl.limiters)
}

func TestIdempotency(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2024, time.March, 7, 12, 0, 0, 0, time.UTC)
	body := []byte(`{"items":[1]}`)
	hash := requestHash(http.MethodPost, "/sales", body)

	newRouter := func(repo *mocks.MockIdempotencyRepository, status int) *gin.Engine {
		r := gin.New()
		r.Use(withUser(userID, enum.UserRoleStaff))
		r.Use(Idempotency(IdempotencyConfig{Repo: repo, Now: func() time.Time { return now }}))
		r.POST("/sales", func(c *gin.Context) { c.JSON(status, gin.H{"ok": status < 300}) })
		return r
	}
	headers := map[string]string{IdempotencyKeyHeader: "key-1"}

	t.Run("stores successful response", func(t *testing.T) {
		repo := new(mocks.MockIdempotencyRepository)
		repo.On("GetByKey", mock.Anything, "key-1", userID).Return(nil, nil)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(k *entity.IdempotencyKey) bool {
			return k.ResponseCode == http.StatusCreated &&
				k.RequestHash == hash &&
				k.ResponseBody == `{"ok":true}` &&
				k.ExpiresAt.Equal(now.Add(IdempotencyKeyTTL))
		})).Return(nil).Once()

		w := serve(newRouter(repo, http.StatusCreated), http.MethodPost, "/sales", body, headers)
		assert.Equal(t, http.StatusCreated, w.Code)
		repo.AssertExpectations(t)
	})

	t.Run("does not store failures", func(t *testing.T) {
		repo := new(mocks.MockIdempotencyRepository)
		repo.On("GetByKey", mock.Anything, "key-1", userID).Return(nil, nil)

		w := serve(newRouter(repo, http.StatusBadRequest), http.MethodPost, "/sales", body, headers)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("replays stored response", func(t *testing.T) {
		repo := new(mocks.MockIdempotencyRepository)
		repo.On("GetByKey", mock.Anything, "key-1", userID).Return(&entity.IdempotencyKey{
			RequestHash:  hash,
			ResponseCode: http.StatusCreated,
			ResponseBody: `{"replayed":true}`,
			ExpiresAt:    now.Add(time.Hour),
		}, nil)

		w := serve(newRouter(repo, http.StatusInternalServerError), http.MethodPost, "/sales", body, headers)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "true", w.Header().Get("X-Idempotency-Replayed"))
		assert.JSONEq(t, `{"replayed":true}`, w.Body.String())
	})

	t.Run("rejects key reuse with another body", func(t *testing.T) {
		repo := new(mocks.MockIdempotencyRepository)
		repo.On("GetByKey", mock.Anything, "key-1", userID).Return(&entity.IdempotencyKey{
			RequestHash:  "something-else",
			ResponseCode: http.StatusCreated,
			ExpiresAt:    now.Add(time.Hour),
		}, nil)

		w := serve(newRouter(repo, http.StatusCreated), http.MethodPost, "/sales", body, headers)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("ignores requests without key", func(t *testing.T) {
		repo := new(mocks.MockIdempotencyRepository)
		w := serve(newRouter(repo, http.StatusCreated), http.MethodPost, "/sales", body, nil)
		assert.Equal(t, http.StatusCreated, w.Code)
		repo.AssertNotCalled(t, "GetByKey", mock.Anything, mock.Anything, mock.Anything)
	})
}
