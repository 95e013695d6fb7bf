package config

import (
	"fmt"
	"time"
)

type CacheKeyStruct struct {
	RateLimitPrefix string
}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{RateLimitPrefix: "ratelimit"}
}

// RateLimitKey returns the fixed-window counter key for a client IP and route.
// The window start is truncated to the minute so all replicas share one counter.
func (r *CacheKeyStruct) RateLimitKey(route, ip string, window time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%d", r.RateLimitPrefix, route, ip, window.Truncate(time.Minute).Unix())
}

var CacheKey = NewCacheKeyStruct()
