package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// memoryRedis is an in-memory stand-in for the Redis surface the
// middleware uses.
type memoryRedis struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{data: make(map[string]string)}
}

func (m *memoryRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	cmd := redis.NewStringCmd(ctx, "get", key)
	if v, ok := m.data[key]; ok {
		cmd.SetVal(v)
	} else {
		cmd.SetErr(redis.Nil)
	}
	return cmd
}

func (m *memoryRedis) Set(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.(string)
	cmd := redis.NewStatusCmd(ctx, "set", key)
	cmd.SetVal("OK")
	return cmd
}

func (m *memoryRedis) SetNX(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	cmd := redis.NewBoolCmd(ctx, "setnx", key)
	if _, ok := m.data[key]; ok {
		cmd.SetVal(false)
	} else {
		m.data[key] = value.(string)
		cmd.SetVal(true)
	}
	return cmd
}

func setupIdempotencyRouter(store *memoryRedis, handlerCalls *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Idempotency(DefaultIdempotencyConfig(store)))
	router.POST("/reservations", func(c *gin.Context) {
		*handlerCalls++
		c.JSON(http.StatusCreated, gin.H{"booking_number": "CHL-260105-042"})
	})
	return router
}

func postReservation(router *gin.Engine, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/reservations", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotency_NoKeyPassesThrough(t *testing.T) {
	calls := 0
	router := setupIdempotencyRouter(newMemoryRedis(), &calls)

	postReservation(router, "", `{"unit_id":"unit-001"}`)
	postReservation(router, "", `{"unit_id":"unit-001"}`)

	if calls != 2 {
		t.Errorf("handler calls = %d, want 2", calls)
	}
}

func TestIdempotency_DuplicateRequestReplaysResponse(t *testing.T) {
	calls := 0
	router := setupIdempotencyRouter(newMemoryRedis(), &calls)
	body := `{"unit_id":"unit-001","check_in":"2026-01-05"}`

	first := postReservation(router, "key-abc", body)
	if first.Code != http.StatusCreated {
		t.Fatalf("first request status = %d, want %d", first.Code, http.StatusCreated)
	}

	second := postReservation(router, "key-abc", body)
	if second.Code != http.StatusCreated {
		t.Errorf("replayed status = %d, want %d", second.Code, http.StatusCreated)
	}
	if second.Body.String() != first.Body.String() {
		t.Errorf("replayed body = %q, want %q", second.Body.String(), first.Body.String())
	}
	if calls != 1 {
		t.Errorf("handler calls = %d, want 1 (duplicate must not re-execute)", calls)
	}
}

func TestIdempotency_KeyReuseWithDifferentBody(t *testing.T) {
	calls := 0
	router := setupIdempotencyRouter(newMemoryRedis(), &calls)

	postReservation(router, "key-abc", `{"unit_id":"unit-001"}`)
	w := postReservation(router, "key-abc", `{"unit_id":"unit-002"}`)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if envelope.Error.Code != "IDEMPOTENCY_KEY_REUSED" {
		t.Errorf("error code = %q, want IDEMPOTENCY_KEY_REUSED", envelope.Error.Code)
	}
	if calls != 1 {
		t.Errorf("handler calls = %d, want 1", calls)
	}
}

func TestIdempotency_InFlightDuplicateConflicts(t *testing.T) {
	store := newMemoryRedis()
	calls := 0
	router := setupIdempotencyRouter(store, &calls)
	body := `{"unit_id":"unit-001"}`

	// Seed a processing marker for the same request, as if a first
	// attempt were still in flight.
	req := httptest.NewRequest(http.MethodPost, "/reservations", bytes.NewBufferString(body))
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	record := &IdempotencyRecord{
		Key:         "key-abc",
		Status:      StatusProcessing,
		RequestHash: requestHash(c, []byte(body)),
		CreatedAt:   time.Now(),
	}
	data, _ := json.Marshal(record)
	store.data[idempotencyKeyPrefix+"key-abc"] = string(data)

	w := postReservation(router, "key-abc", body)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
	if calls != 0 {
		t.Errorf("handler calls = %d, want 0", calls)
	}
}

func TestIdempotency_RedisFailureFailsOpen(t *testing.T) {
	calls := 0
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Idempotency(DefaultIdempotencyConfig(failingRedis{})))
	router.POST("/reservations", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{})
	})

	w := postReservation(router, "key-abc", `{"unit_id":"unit-001"}`)
	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if calls != 1 {
		t.Errorf("handler calls = %d, want 1", calls)
	}
}

// failingRedis errors on every call.
type failingRedis struct{}

func (failingRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "get", key)
	cmd.SetErr(context.DeadlineExceeded)
	return cmd
}

func (failingRedis) Set(ctx context.Context, key string, _ interface{}, _ time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "set", key)
	cmd.SetErr(context.DeadlineExceeded)
	return cmd
}

func (failingRedis) SetNX(ctx context.Context, key string, _ interface{}, _ time.Duration) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx, "setnx", key)
	cmd.SetErr(context.DeadlineExceeded)
	return cmd
}
