package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"

    "github.com/iliyamo/tour-shop-backend/internal/config"
)

// cachedReply is what a cache entry holds.  Only 200 replies are stored, so
// the status is implied.
type cachedReply struct {
    ContentType string `json:"ct"`
    Body        []byte `json:"b"`
}

func decodeReply(bs []byte) (cachedReply, bool) {
    var r cachedReply
    if err := json.Unmarshal(bs, &r); err != nil || r.ContentType == "" {
        return cachedReply{}, false
    }
    return r, true
}

// teeWriter forwards the response and keeps a copy of up to limit bytes.
// overflow is set once the body outgrows the limit.
type teeWriter struct {
    http.ResponseWriter
    status   int
    buf      bytes.Buffer
    limit    int
    overflow bool
}

func (w *teeWriter) WriteHeader(code int) {
    w.status = code
    w.ResponseWriter.WriteHeader(code)
}

func (w *teeWriter) Write(b []byte) (int, error) {
    if !w.overflow {
        if w.limit > 0 && w.buf.Len()+len(b) > w.limit {
            w.overflow = true
            w.buf.Reset()
        } else {
            w.buf.Write(b)
        }
    }
    return w.ResponseWriter.Write(b)
}

// cacheKeyFrom hashes the request path and query under the configured prefix.
// The concrete path is used, not the route pattern, so /api/tour/:id caches
// each tour separately.
func cacheKeyFrom(cfg config.CacheConfig, c echo.Context) string {
    r := c.Request()
    sum := sha1.Sum([]byte(r.Method + ":" + r.URL.Path + "?" + r.URL.RawQuery))
    return fmt.Sprintf("%s:%x", cfg.Prefix, sum[:])
}

// NewRedisCache replays successful catalog listings from Redis for TTL.
// Entries are dropped early by CachePurger when the catalog changes.  Redis
// failures never fail the request.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client, log *zap.Logger) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
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
            key := cacheKeyFrom(cfg, c)

            if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
                if r, ok := decodeReply(bs); ok {
                    c.Response().Header().Set("X-Cache", "HIT")
                    return c.Blob(http.StatusOK, r.ContentType, r.Body)
                }
            } else if err != redis.Nil {
                log.Warn("cache: lookup failed", zap.String("key", key), zap.Error(err))
            }

            tw := &teeWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
            c.Response().Writer = tw
            c.Response().Header().Set("X-Cache", "MISS")
            if err := next(c); err != nil {
                return err
            }
            if tw.status != http.StatusOK || tw.overflow {
                return nil
            }

            bs, err := json.Marshal(cachedReply{
                ContentType: c.Response().Header().Get(echo.HeaderContentType),
                Body:        tw.buf.Bytes(),
            })
            if err == nil {
                // the request context may already be cancelled by now
                err = rdb.Set(context.Background(), key, bs, ttl).Err()
            }
            if err != nil {
                log.Warn("cache: store failed", zap.String("key", key), zap.Error(err))
            }
            return nil
        }
    }
}

// Purger drops cached listings after a catalog write.
type Purger interface {
    Purge(ctx context.Context)
}

// CachePurger deletes every key under the cache prefix.
type CachePurger struct {
    rdb    *redis.Client
    prefix string
    log    *zap.Logger
}

func NewCachePurger(cfg config.CacheConfig, rdb *redis.Client, log *zap.Logger) *CachePurger {
    return &CachePurger{rdb: rdb, prefix: cfg.Prefix, log: log}
}

func (p *CachePurger) Purge(ctx context.Context) {
    if p == nil || p.rdb == nil {
        return
    }
    var keys []string
    iter := p.rdb.Scan(ctx, 0, p.prefix+":*", 200).Iterator()
    for iter.Next(ctx) {
        keys = append(keys, iter.Val())
    }
    if err := iter.Err(); err != nil {
        p.log.Warn("cache: purge scan failed", zap.Error(err))
        return
    }
    if len(keys) == 0 {
        return
    }
    if err := p.rdb.Del(ctx, keys...).Err(); err != nil {
        p.log.Warn("cache: purge failed", zap.Int("keys", len(keys)), zap.Error(err))
    }
}
