package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/ticketrush/ticketrush/pkg/response"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency key
	IdempotencyKeyHeader = "X-Idempotency-Key"
	// ContextKeyIdempotencyKey is the context key for idempotency key
	ContextKeyIdempotencyKey = "idempotency_key"
	// IdempotencyKeyPrefix is the Redis key prefix for idempotency records
	IdempotencyKeyPrefix = "idempotency:"
)

// IdempotencyStatus represents the status of an idempotency record
type IdempotencyStatus string

const (
	StatusProcessing IdempotencyStatus = "processing"
	StatusCompleted  IdempotencyStatus = "completed"
)

// IdempotencyRecord stores the state of an idempotent request
type IdempotencyRecord struct {
	Key          string            `json:"key"`
	Status       IdempotencyStatus `json:"status"`
	RequestHash  string            `json:"request_hash"`
	ResponseCode int               `json:"response_code"`
	ResponseBody string            `json:"response_body"`
	CreatedAt    time.Time         `json:"created_at"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
}

// RedisClient interface for Redis operations
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// IdempotencyConfig holds configuration for idempotency middleware
type IdempotencyConfig struct {
	// Redis client for storing idempotency records
	Redis RedisClient
	// TTL for completed idempotency records (default: 24h)
	TTL time.Duration
	// ProcessingTTL for in-flight records (default: 60s)
	ProcessingTTL time.Duration
}

// Idempotency replays the cached response when the same X-Idempotency-Key
// arrives twice, and rejects concurrent requests sharing a key. Redis being
// down fails open: the request proceeds without the guarantee.
func Idempotency(config *IdempotencyConfig) gin.HandlerFunc {
	if config.TTL == 0 {
		config.TTL = 24 * time.Hour
	}
	if config.ProcessingTTL == 0 {
		config.ProcessingTTL = 60 * time.Second
	}

	return func(c *gin.Context) {
		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
		if idempotencyKey == "" {
			// Idempotency is opt-in per request
			c.Next()
			return
		}

		c.Set(ContextKeyIdempotencyKey, idempotencyKey)

		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		requestHash := hashRequest(c, bodyBytes)
		redisKey := IdempotencyKeyPrefix + idempotencyKey
		ctx := c.Request.Context()

		existing, err := getIdempotencyRecord(ctx, config.Redis, redisKey)
		if err != nil && !errors.Is(err, redis.Nil) {
			c.Next()
			return
		}

		if existing != nil {
			if existing.RequestHash != requestHash {
				response.Error(c, http.StatusUnprocessableEntity, "IDEMPOTENCY_KEY_REUSED",
					"Idempotency key already used with a different request", "")
				c.Abort()
				return
			}
			if existing.Status == StatusProcessing {
				response.Error(c, http.StatusConflict, "REQUEST_IN_PROGRESS",
					"A request with this idempotency key is already being processed", "")
				c.Abort()
				return
			}
			c.Data(existing.ResponseCode, "application/json", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		record := &IdempotencyRecord{
			Key:         idempotencyKey,
			Status:      StatusProcessing,
			RequestHash: requestHash,
			CreatedAt:   time.Now(),
		}

		if !trySetIdempotencyRecord(ctx, config.Redis, redisKey, record, config.ProcessingTTL) {
			existing, _ = getIdempotencyRecord(ctx, config.Redis, redisKey)
			if existing != nil {
				if existing.Status == StatusProcessing {
					response.Error(c, http.StatusConflict, "REQUEST_IN_PROGRESS",
						"A request with this idempotency key is already being processed", "")
					c.Abort()
					return
				}
				c.Data(existing.ResponseCode, "application/json", []byte(existing.ResponseBody))
				c.Abort()
				return
			}
		}

		rw := &idempotencyResponseWriter{
			ResponseWriter: c.Writer,
			body:           bytes.NewBuffer(nil),
		}
		c.Writer = rw

		c.Next()

		now := time.Now()
		record.Status = StatusCompleted
		record.ResponseCode = rw.status
		record.ResponseBody = rw.body.String()
		record.CompletedAt = &now

		saveIdempotencyRecord(ctx, config.Redis, redisKey, record, config.TTL)
	}
}

// GetIdempotencyKey extracts the idempotency key from the gin context
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	key, exists := c.Get(ContextKeyIdempotencyKey)
	if !exists {
		return "", false
	}
	k, ok := key.(string)
	return k, ok
}

func hashRequest(c *gin.Context, body []byte) string {
	h := sha256.New()
	h.Write([]byte(c.Request.Method))
	h.Write([]byte(c.Request.URL.Path))
	if userID, ok := GetUserID(c); ok {
		h.Write([]byte(userID))
	}
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func getIdempotencyRecord(ctx context.Context, client RedisClient, key string) (*IdempotencyRecord, error) {
	data, err := client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var record IdempotencyRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func trySetIdempotencyRecord(ctx context.Context, client RedisClient, key string, record *IdempotencyRecord, ttl time.Duration) bool {
	data, err := json.Marshal(record)
	if err != nil {
		return false
	}
	ok, err := client.SetNX(ctx, key, string(data), ttl).Result()
	return err == nil && ok
}

func saveIdempotencyRecord(ctx context.Context, client RedisClient, key string, record *IdempotencyRecord, ttl time.Duration) {
	data, err := json.Marshal(record)
	if err != nil {
		return
	}
	client.Set(ctx, key, string(data), ttl)
}

// idempotencyResponseWriter captures the response for caching
type idempotencyResponseWriter struct {
	gin.ResponseWriter
	body   *bytes.Buffer
	status int
}

func (w *idempotencyResponseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *idempotencyResponseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
