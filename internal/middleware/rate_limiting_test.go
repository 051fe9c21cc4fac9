package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/2beens/liftdiary/internal/auth"
	"github.com/2beens/liftdiary/internal/telemetry/metrics"

	"github.com/go-redis/redis_rate/v9"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type fakeRateLimiter struct {
	keys    []string
	allowed int
	err     error
}

func (f *fakeRateLimiter) Allow(_ context.Context, key string, _ redis_rate.Limit) (*redis_rate.Result, error) {
	f.keys = append(f.keys, key)
	if f.err != nil {
		return nil, f.err
	}
	return &redis_rate.Result{Allowed: f.allowed, RetryAfter: 1500 * time.Millisecond}, nil
}

func TestRateLimit(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("allowed, keyed by ip", func(t *testing.T) {
		limiter := &fakeRateLimiter{allowed: 1}
		req := httptest.NewRequest(http.MethodGet, "/api/workouts", nil)
		req.Header.Set("X-Real-Ip", "10.0.0.7")
		rr := httptest.NewRecorder()

		RateLimit(limiter, "api", 10, nil)(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, []string{"api||ip:10.0.0.7"}, limiter.keys)
	})

	t.Run("denied, keyed by user", func(t *testing.T) {
		metricsManager := metrics.NewTestManager()
		limiter := &fakeRateLimiter{allowed: 0}
		req := httptest.NewRequest(http.MethodGet, "/api/workouts", nil)
		req = req.WithContext(auth.WithIdentity(req.Context(), &auth.Identity{UserID: "user_1"}))
		rr := httptest.NewRecorder()

		RateLimit(limiter, "api", 10, metricsManager)(next).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		assert.Equal(t, "2", rr.Header().Get("Retry-After"))
		assert.Equal(t, []string{"api||user:user_1"}, limiter.keys)
		assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterRateLimitedRequests))
	})

	t.Run("limiter error", func(t *testing.T) {
		limiter := &fakeRateLimiter{err: errors.New("redis down")}
		rr := httptest.NewRecorder()

		RateLimit(limiter, "api", 10, nil)(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/workouts", nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
