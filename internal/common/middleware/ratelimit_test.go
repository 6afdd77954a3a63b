package middleware

import (
	"context"
	"testing"
	"time"
)

func TestTokenBucketExhaustsAndRefills(t *testing.T) {
	tb := NewTokenBucket(3, 1000)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !tb.Allow(ctx) {
			t.Fatalf("request %d should pass, bucket starts full", i)
		}
	}
	if tb.Allow(ctx) {
		t.Fatal("empty bucket must reject")
	}

	// 1000/s 的补充速率，几毫秒后应重新放行
	time.Sleep(20 * time.Millisecond)
	if !tb.Allow(ctx) {
		t.Fatal("bucket should refill over time")
	}
}

func TestSlidingWindowLimitsWithinWindow(t *testing.T) {
	sw := NewSlidingWindow(50*time.Millisecond, 2)
	ctx := context.Background()

	if !sw.Allow(ctx) || !sw.Allow(ctx) {
		t.Fatal("first two requests should pass")
	}
	if sw.Allow(ctx) {
		t.Fatal("third request inside the window must be rejected")
	}

	time.Sleep(60 * time.Millisecond)
	if !sw.Allow(ctx) {
		t.Fatal("request after the window slides should pass")
	}
}

var _ RateLimiter = (*TokenBucket)(nil)
var _ RateLimiter = (*SlidingWindow)(nil)
