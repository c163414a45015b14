package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	redispkg "token-registry.backend/pkg/redis"
)

func useMiniRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	redispkg.SetClient(client)
	t.Cleanup(func() { _ = client.Close() })
	return mr
}

func newIdempotentRouter(caller common.Address, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(CallerAddressKey, caller)
		c.Next()
	})
	r.Use(IdempotencyMiddleware())
	r.POST("/tokens", handler)
	return r
}

func postWithKey(r *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/tokens", nil)
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotencyMiddleware_NoHeaderPassthrough(t *testing.T) {
	calls := 0
	r := newIdempotentRouter(common.HexToAddress("0x01"), func(c *gin.Context) {
		calls++
		c.Status(http.StatusNoContent)
	})

	postWithKey(r, "")
	postWithKey(r, "")
	assert.Equal(t, 2, calls)
}

func TestIdempotencyMiddleware_ReplaysSuccess(t *testing.T) {
	useMiniRedis(t)
	calls := 0
	r := newIdempotentRouter(common.HexToAddress("0x01"), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"tokenId": calls - 1})
	})

	first := postWithKey(r, "mint-1")
	require.Equal(t, http.StatusCreated, first.Code)

	second := postWithKey(r, "mint-1")
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Hit"))
	assert.Equal(t, 1, calls)

	third := postWithKey(r, "mint-2")
	assert.Equal(t, http.StatusCreated, third.Code)
	assert.Equal(t, 2, calls)
}

func TestIdempotencyMiddleware_KeysAreScopedByCaller(t *testing.T) {
	useMiniRedis(t)
	calls := 0
	handler := func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"n": calls})
	}

	postWithKey(newIdempotentRouter(common.HexToAddress("0x01"), handler), "same")
	postWithKey(newIdempotentRouter(common.HexToAddress("0x02"), handler), "same")
	assert.Equal(t, 2, calls)
}

func TestIdempotencyMiddleware_FailureAllowsRetry(t *testing.T) {
	mr := useMiniRedis(t)
	status := http.StatusConflict
	r := newIdempotentRouter(common.HexToAddress("0x01"), func(c *gin.Context) {
		c.JSON(status, gin.H{"code": "OPERATION_PAUSED"})
	})

	w := postWithKey(r, "retry")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, mr.Keys())

	status = http.StatusCreated
	w = postWithKey(r, "retry")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, mr.Keys(), 1)
}

func TestIdempotencyMiddleware_InProgress(t *testing.T) {
	mr := useMiniRedis(t)
	caller := common.HexToAddress("0x01")
	require.NoError(t, mr.Set("idempotency:"+caller.Hex()+":/tokens:busy", processingMarker))

	r := newIdempotentRouter(caller, func(c *gin.Context) { c.Status(http.StatusCreated) })
	w := postWithKey(r, "busy")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "IDEMPOTENCY_CONFLICT")
}

func TestIdempotencyMiddleware_StoreErrorPassthrough(t *testing.T) {
	origGet := redisGet
	t.Cleanup(func() { redisGet = origGet })
	redisGet = func(context.Context, string) (string, error) { return "", errors.New("connection refused") }

	calls := 0
	r := newIdempotentRouter(common.HexToAddress("0x01"), func(c *gin.Context) {
		calls++
		c.Status(http.StatusAccepted)
	})
	w := postWithKey(r, "k")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 1, calls)
}

func TestIdempotencyMiddleware_LockNotAcquired(t *testing.T) {
	useMiniRedis(t)
	origSetNX := redisSetNX
	t.Cleanup(func() { redisSetNX = origSetNX })
	redisSetNX = func(context.Context, string, interface{}, time.Duration) (bool, error) { return false, nil }

	r := newIdempotentRouter(common.HexToAddress("0x01"), func(c *gin.Context) { c.Status(http.StatusCreated) })
	w := postWithKey(r, "k")
	assert.Equal(t, http.StatusConflict, w.Code)
}
