package config

import (
    "os"
    "strconv"
    "time"
)

// Bucket is one token bucket shape: Capacity tokens, refilled by
// RefillTokens every RefillInterval.
type Bucket struct {
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
}

// RateLimitConfig configures the Redis token buckets.  API applies to every
// request; Checkout is a tighter bucket for the login and payment endpoints.
// KeyStrategy is one of ip, user, ip_user or ip_user_route (default).
type RateLimitConfig struct {
    Enabled     bool
    API         Bucket
    Checkout    Bucket
    TTL         time.Duration
    KeyStrategy string
    Prefix      string
}

func LoadRateLimitConfig() RateLimitConfig {
    rl := RateLimitConfig{
        Enabled: envBool("RATE_LIMIT_ENABLED", true),
        API: loadBucket("RATE_LIMIT", Bucket{Capacity: 60, RefillTokens: 1, RefillInterval: time.Second}),
        Checkout: loadBucket("RATE_LIMIT_CHECKOUT",
            Bucket{Capacity: 10, RefillTokens: 1, RefillInterval: 6 * time.Second}),
        TTL:         envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy: envStr("RATE_LIMIT_KEY_STRATEGY", "ip_user_route"),
        Prefix:      envStr("RATE_LIMIT_PREFIX", "rl"),
    }
    // keys must outlive a full refill of the slowest bucket
    slowest := rl.API.RefillInterval
    if rl.Checkout.RefillInterval > slowest {
        slowest = rl.Checkout.RefillInterval
    }
    if minTTL := 5 * slowest; rl.TTL < minTTL {
        rl.TTL = minTTL
    }
    return rl
}

// loadBucket reads PREFIX_CAPACITY, PREFIX_REFILL_TOKENS and
// PREFIX_REFILL_INTERVAL over def.
func loadBucket(prefix string, def Bucket) Bucket {
    b := Bucket{
        Capacity:       envInt(prefix+"_CAPACITY", def.Capacity),
        RefillTokens:   envInt(prefix+"_REFILL_TOKENS", def.RefillTokens),
        RefillInterval: envDur(prefix+"_REFILL_INTERVAL", def.RefillInterval),
    }
    if b.Capacity < 1 {
        b.Capacity = 1
    }
    if b.RefillTokens < 1 {
        b.RefillTokens = 1
    }
    if b.RefillInterval <= 0 {
        b.RefillInterval = time.Second
    }
    return b
}

func envStr(k, d string) string { if v := os.Getenv(k); v != "" { return v }; return d }
func envBool(k string, d bool) bool {
    switch os.Getenv(k) {
    case "1", "true", "TRUE", "True", "yes", "on":
        return true
    case "0", "false", "FALSE", "False", "no", "off":
        return false
    }
    return d
}
func envInt(k string, d int) int {
    v := os.Getenv(k); if v == "" { return d }
    if n, err := strconv.Atoi(v); err == nil { return n }
    return d
}
func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k); if v == "" { return d }
    if dur, err := time.ParseDuration(v); err == nil { return dur }
    return d
}
