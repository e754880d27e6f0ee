package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/hotel-reservation/internal/config"
)

// ResponseStore persists encoded responses for the cache middleware.
type ResponseStore interface {
	Load(ctx context.Context, key string) ([]byte, bool)
	Save(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}

type redisResponses struct{ rdb *redis.Client }

// RedisResponses stores cached responses as plain Redis strings with an
// expiry.
func RedisResponses(rdb *redis.Client) ResponseStore { return redisResponses{rdb: rdb} }

func (r redisResponses) Load(ctx context.Context, key string) ([]byte, bool) {
	// redis.Nil and transport errors both count as a miss.
	bs, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return bs, true
}

func (r redisResponses) Save(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	return r.rdb.SetEx(ctx, key, payload, ttl).Err()
}

// captureWriter tees the response body into buf, up to limit bytes, while
// forwarding everything to the client.
type captureWriter struct {
	http.ResponseWriter
	status    int
	buf       bytes.Buffer
	size      int64
	limit     int64
	truncated bool
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	switch remain := cw.limit - cw.size; {
	case cw.limit <= 0:
		cw.buf.Write(b)
	case int64(len(b)) <= remain:
		cw.buf.Write(b)
	default:
		cw.truncated = true
	}
	cw.size += int64(len(b))
	return cw.ResponseWriter.Write(b)
}

// cacheKey hashes the parts selected by the key strategy so keys stay
// short regardless of query length.
func cacheKey(cfg config.CacheConfig, c echo.Context) string {
	r := c.Request()
	route := c.Path()
	var parts []string
	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
		parts = []string{"route", route}
	case "method_route_query":
		parts = []string{"method", r.Method, "route", route, "q", r.URL.RawQuery}
	default:
		// Route params are part of the path, so /rooms/:number needs the
		// concrete URL rather than the route pattern.
		parts = []string{"route", route, "path", r.URL.Path, "q", r.URL.RawQuery}
	}
	sum := sha1.Sum([]byte(strings.Join(parts, ":")))
	return fmt.Sprintf("%s:%x", cfg.Prefix, sum[:])
}

// encodePayload packs [4 bytes status][4 bytes header length][header JSON][body].
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	hdr, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8, 8+len(hdr)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdr)))
	out = append(out, hdr...)
	return append(out, body...), nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status = int(binary.BigEndian.Uint32(bs[0:4]))
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if hlen < 0 || 8+hlen > len(bs) {
		return 0, nil, nil, false
	}
	header = make(http.Header)
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, header, bs[8+hlen:], true
}

// NewRedisCache is NewResponseCache backed by rdb.  A nil client disables
// caching.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if rdb == nil {
		return passThrough
	}
	return NewResponseCache(cfg, RedisResponses(rdb))
}

// NewResponseCache replays stored 200 responses for the configured methods
// and stores fresh ones for cfg.TTL.  Responses are marked with X-Cache HIT
// or MISS.  Bodies larger than cfg.MaxBodyBytes are served but not stored.
func NewResponseCache(cfg config.CacheConfig, store ResponseStore) echo.MiddlewareFunc {
	if !cfg.Enabled || store == nil {
		return passThrough
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}
			ctx := c.Request().Context()
			key := cacheKey(cfg, c)
			res := c.Response()

			if bs, ok := store.Load(ctx, key); ok {
				if status, hdr, body, ok := decodePayload(bs); ok {
					// Headers set by outer middleware for this request
					// (request id, rate limit) win over stored ones.
					for k, vals := range hdr {
						if strings.EqualFold(k, echo.HeaderContentLength) || res.Header().Get(k) != "" {
							continue
						}
						for _, v := range vals {
							res.Header().Add(k, v)
						}
					}
					res.Header().Set("X-Cache", "HIT")
					res.WriteHeader(status)
					_, err := res.Write(body)
					return err
				}
			}

			cw := &captureWriter{ResponseWriter: res.Writer, status: http.StatusOK, limit: int64(cfg.MaxBodyBytes)}
			res.Writer = cw
			res.Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if cw.status != http.StatusOK || cw.truncated {
				return nil
			}
			hdr := res.Header().Clone()
			hdr.Del("X-Cache")
			payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes())
			if err != nil {
				return nil
			}
			if err := store.Save(context.WithoutCancel(ctx), key, payload, ttl); err != nil {
				c.Logger().Warnf("cache: save %s: %v", key, err)
			}
			return nil
		}
	}
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }
