package ratelimiter

import (
	"context"
	"sync"
	"time"
)

// Limiter は、キー単位で操作の頻度を制限するインターフェースです。
type Limiter interface {
	// Allow は現在のウィンドウ内でkeyの試行を1回消費し、上限内ならtrueを返します。
	Allow(ctx context.Context, key string) (bool, error)
}

// window は1キー分の固定ウィンドウカウンターです。
type window struct {
	count     int
	lastReset time.Time
}

// RateLimiter はプロセス内の固定ウィンドウ方式のレートリミッターです。
// Redisが利用できない場合のフォールバックとして使用します。
type RateLimiter struct {
	limit    int           // ウィンドウあたりの上限
	interval time.Duration // どの単位でリセットするか
	now      func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

var _ Limiter = (*RateLimiter)(nil)

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。
// limitが0以下の場合、すべての試行を許可します。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	if interval <= 0 {
		interval = time.Minute
	}
	return &RateLimiter{
		limit:    limit,
		interval: interval,
		now:      time.Now,
		windows:  make(map[string]*window),
	}
}

// Allow はレートリミットの上限に達しているかを確認します。
func (rl *RateLimiter) Allow(_ context.Context, key string) (bool, error) {
	if rl.limit <= 0 {
		return true, nil
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[key]
	// interval を過ぎたらカウントリセット
	if !ok || now.Sub(w.lastReset) >= rl.interval {
		w = &window{lastReset: now}
		rl.windows[key] = w
		rl.sweep(now)
	}

	w.count++
	return w.count <= rl.limit, nil
}

// sweep は期限切れのウィンドウを削除します。呼び出し側でロックを保持していること。
func (rl *RateLimiter) sweep(now time.Time) {
	for k, w := range rl.windows {
		if now.Sub(w.lastReset) >= rl.interval {
			delete(rl.windows, k)
		}
	}
}
