package clock

import (
	"sync/atomic"
	"time"
)

// sampleInterval 新鲜度抽样周期：每 N 次读取做一次校验
const sampleInterval = 1024

// HybridClock 带新鲜度保护的缓存时间源
//
// 常规读取走缓存；每 sampleInterval 次读取抽样一次直接读取，
// 若缓存落后超过 staleThreshold（刷新协程被饿死或已停止），
// 则立即修复缓存并返回直接读数。
type HybridClock struct {
	cached         *CachedClock
	staleThreshold int64 // 毫秒
	reads          atomic.Uint64
}

// NewHybrid 创建混合时间源
//
// interval 为后台刷新间隔；staleThreshold 为可容忍的缓存滞后，
// 小于等于 0 时默认为 10 个刷新间隔。
func NewHybrid(interval time.Duration, staleThreshold time.Duration) *HybridClock {
	if interval <= 0 {
		interval = time.Millisecond
	}
	if staleThreshold <= 0 {
		staleThreshold = 10 * interval
	}
	return &HybridClock{
		cached:         NewCached(interval),
		staleThreshold: staleThreshold.Milliseconds(),
	}
}

func (h *HybridClock) NowMillis() int64 {
	cached := h.cached.NowMillis()
	if h.reads.Add(1)%sampleInterval != 0 {
		return cached
	}
	// 抽样校验：缓存落后超过阈值时修复并使用直接读数
	now := time.Now().UnixMilli()
	if now-cached > h.staleThreshold {
		return h.cached.ForceRefresh()
	}
	return cached
}

// Stop 停止底层缓存时间源，可重复调用
func (h *HybridClock) Stop() {
	h.cached.Stop()
}
