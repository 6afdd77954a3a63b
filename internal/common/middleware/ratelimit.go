package middleware

import (
	"context"
	"sync"
	"time"
)

// RateLimiter 公开接口限流抽象；两个实现都可挂到 gin 中间件上。
type RateLimiter interface {
	Allow(ctx context.Context) bool
}

// TokenBucket 令牌桶：容量封顶、按速率连续补充。
// 面向公开浏览接口的全局限流，突发流量最多放行一桶。
type TokenBucket struct {
	mu     sync.Mutex
	cap    float64
	rate   float64 // 每秒补充
	tokens float64
	last   time.Time
}

func NewTokenBucket(capacity, refillRate int64) *TokenBucket {
	return &TokenBucket{
		cap:    float64(capacity),
		rate:   float64(refillRate),
		tokens: float64(capacity),
		last:   time.Now(),
	}
}

func (tb *TokenBucket) Allow(_ context.Context) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	tb.tokens += now.Sub(tb.last).Seconds() * tb.rate
	if tb.tokens > tb.cap {
		tb.tokens = tb.cap
	}
	tb.last = now

	if tb.tokens < 1 {
		return false
	}
	tb.tokens--
	return true
}

// SlidingWindow 滑动窗口：窗口内最多 limit 个请求，过期记录惰性回收。
type SlidingWindow struct {
	mu     sync.Mutex
	window time.Duration
	limit  int
	hits   []time.Time
}

func NewSlidingWindow(window time.Duration, maxRequests int) *SlidingWindow {
	return &SlidingWindow{
		window: window,
		limit:  maxRequests,
	}
}

func (sw *SlidingWindow) Allow(_ context.Context) bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	cutoff := time.Now().Add(-sw.window)
	kept := sw.hits[:0]
	for _, h := range sw.hits {
		if h.After(cutoff) {
			kept = append(kept, h)
		}
	}
	sw.hits = kept

	if len(sw.hits) >= sw.limit {
		return false
	}
	sw.hits = append(sw.hits, time.Now())
	return true
}
