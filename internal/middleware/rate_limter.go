package middleware

import (
	"fmt"
	"sync"
	"time"
)

// ==================== CooldownLimiter 冷却限流器 ====================

// CooldownLimiter 按 key 限制操作频率（如反复冻结同一区块快照）
type CooldownLimiter struct {
	locks sync.Map // key -> *lockEntry
	now   func() time.Time
}

type lockEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

func NewCooldownLimiter() *CooldownLimiter {
	return &CooldownLimiter{now: time.Now}
}

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool          // 是否允许
	RetryAfter time.Duration // 剩余冷却时间
}

// Check 检查并在允许时记录本次执行
func (r *CooldownLimiter) Check(key string, interval time.Duration) CheckResult {
	actual, _ := r.locks.LoadOrStore(key, &lockEntry{})
	entry := actual.(*lockEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := r.now()
	elapsed := now.Sub(entry.lastTime)
	if !entry.lastTime.IsZero() && elapsed < interval {
		return CheckResult{
			Allowed:    false,
			RetryAfter: interval - elapsed,
		}
	}

	entry.lastTime = now
	return CheckResult{Allowed: true}
}

// Reset 重置指定 key
func (r *CooldownLimiter) Reset(key string) {
	r.locks.Delete(key)
}

// Sweep 清理超过 maxAge 未使用的 key
func (r *CooldownLimiter) Sweep(maxAge time.Duration) int {
	removed := 0
	now := r.now()
	r.locks.Range(func(k, v interface{}) bool {
		entry := v.(*lockEntry)
		entry.mu.Lock()
		stale := now.Sub(entry.lastTime) > maxAge
		entry.mu.Unlock()
		if stale {
			r.locks.Delete(k)
			removed++
		}
		return true
	})
	return removed
}

// ==================== Key 生成工具 ====================

// BlockCaptureKey 区块快照冻结的限流 key
func BlockCaptureKey(ownerID string, blockID int64) string {
	return fmt.Sprintf("capture:%s:%d", ownerID, blockID)
}
