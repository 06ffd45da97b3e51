package middleware

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"scholarship-fund.backend/pkg/logger"
	"scholarship-fund.backend/pkg/redis"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	// LockDuration is the time we hold the lock while processing
	LockDuration = 30 * time.Second
	// RetentionDuration is how long we keep the response
	RetentionDuration = 24 * time.Hour

	CodeIdempotencyConflict = "IDEMPOTENCY_CONFLICT"
	CodeIdempotencyMismatch = "IDEMPOTENCY_KEY_REUSED"
)

var (
	redisGet   = redis.Get
	redisSet   = redis.Set
	redisSetNX = redis.SetNX
	redisDel   = redis.Del
)

// idempotencyRecord is what Redis holds under a key: a lock while the first
// request runs, then the replayable response
type idempotencyRecord struct {
	BodyHash   string `json:"bodyHash"`
	Processing bool   `json:"processing,omitempty"`
	Status     int    `json:"status,omitempty"`
	Body       string `json:"body,omitempty"`
}

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func fingerprint(body []byte) string {
	sum := blake2b.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// IdempotencyMiddleware replays the stored response when a caller repeats a
// request with the same Idempotency-Key. A reused key with a different body
// is rejected with 422.
func IdempotencyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		var bodyBytes []byte
		if c.Request.Body != nil {
			var err error
			bodyBytes, err = io.ReadAll(c.Request.Body)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"code": "BAD_REQUEST", "message": "Failed to read request body"})
				return
			}
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}
		bodyHash := fingerprint(bodyBytes)

		caller := "anonymous"
		if addr, ok := GetCaller(c); ok {
			caller = addr.Hex()
		}
		storageKey := fmt.Sprintf("idempotency:%s:%s", caller, key)
		ctx := c.Request.Context()

		val, err := redisGet(ctx, storageKey)
		if err == nil {
			var rec idempotencyRecord
			if jsonErr := json.Unmarshal([]byte(val), &rec); jsonErr != nil {
				logger.Warn(ctx, "Dropping unreadable idempotency record", zap.String("key", storageKey))
				_ = redisDel(ctx, storageKey)
			} else {
				replay(c, rec, bodyHash)
				return
			}
		} else if !redis.IsNil(err) {
			logger.Warn(ctx, "Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}

		lock, _ := json.Marshal(idempotencyRecord{BodyHash: bodyHash, Processing: true})
		acquired, err := redisSetNX(ctx, storageKey, string(lock), LockDuration)
		if err != nil || !acquired {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"code":    CodeIdempotencyConflict,
				"message": "Request in progress",
			})
			return
		}

		w := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			done, _ := json.Marshal(idempotencyRecord{BodyHash: bodyHash, Status: status, Body: w.body.String()})
			_ = redisSet(ctx, storageKey, string(done), RetentionDuration)
		} else {
			// failed attempts may be retried with the same key
			_ = redisDel(ctx, storageKey)
		}
	}
}

func replay(c *gin.Context, rec idempotencyRecord, bodyHash string) {
	if rec.BodyHash != bodyHash {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"code":    CodeIdempotencyMismatch,
			"message": "Idempotency-Key was already used with a different request body",
		})
		return
	}
	if rec.Processing {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"code":    CodeIdempotencyConflict,
			"message": "Request already in progress",
		})
		return
	}
	c.Header("X-Idempotency-Hit", "true")
	c.Data(rec.Status, "application/json; charset=utf-8", []byte(rec.Body))
	c.Abort()
}
