package middleware

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen 熔断开启期间的快速失败错误（errors.Is 可判断）。
var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitBreakerState int

const (
	StateClosed CircuitBreakerState = iota
	StateOpen
	StateHalfOpen
)

// CircuitBreaker 保护对外部协作方（媒体托管等）的调用：
// 连续失败达到阈值后打开，resetTimeout 后进入半开试探，
// 半开期间放行少量请求，成功则闭合，失败则重新打开。
type CircuitBreaker struct {
	name         string
	maxFailures  int
	resetTimeout time.Duration
	probeLimit   int

	mu       sync.Mutex
	state    CircuitBreakerState
	failures int
	probes   int
	openedAt time.Time
}

func NewCircuitBreaker(name string, maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		name:         name,
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		probeLimit:   3,
		state:        StateClosed,
	}
}

// Call 按当前状态决定是否放行 fn，并根据结果推进状态。
func (cb *CircuitBreaker) Call(ctx context.Context, fn func() error) error {
	if err := cb.admit(); err != nil {
		return err
	}
	err := fn()
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if time.Since(cb.openedAt) < cb.resetTimeout {
			return ErrCircuitOpen
		}
		cb.state = StateHalfOpen
		cb.probes = 0
		fallthrough
	case StateHalfOpen:
		if cb.probes >= cb.probeLimit {
			return ErrCircuitOpen
		}
		cb.probes++
	}
	return nil
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		if cb.state == StateHalfOpen {
			cb.state = StateClosed
			cb.probes = 0
		}
		cb.failures = 0
		return
	}

	cb.failures++
	cb.openedAt = time.Now()
	if cb.state == StateHalfOpen || cb.failures >= cb.maxFailures {
		cb.state = StateOpen
		cb.probes = 0
	}
}

func (cb *CircuitBreaker) GetState() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
