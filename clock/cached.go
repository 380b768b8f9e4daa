package clock

import (
	"sync"
	"sync/atomic"
	"time"
)

// CachedClock 缓存时间源
//
// 后台协程按 interval 刷新 millis；NowMillis 只做一次原子 load，
// 读数滞后不超过一个刷新间隔。不再使用时必须调用 Stop 释放协程。
type CachedClock struct {
	millis   atomic.Int64
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewCached 创建缓存时间源并启动后台刷新协程
//
// interval 为刷新间隔；小于等于 0 时使用 1ms。
func NewCached(interval time.Duration) *CachedClock {
	if interval <= 0 {
		interval = time.Millisecond
	}
	c := &CachedClock{
		interval: interval,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	c.millis.Store(time.Now().UnixMilli())
	go c.refreshLoop()
	return c
}

func (c *CachedClock) NowMillis() int64 {
	return c.millis.Load()
}

// ForceRefresh 立即用系统时间刷新缓存值
func (c *CachedClock) ForceRefresh() int64 {
	now := time.Now().UnixMilli()
	c.millis.Store(now)
	return now
}

// Stop 停止后台刷新协程并等待其退出，可重复调用
//
// 停止后 NowMillis 仍可读取，返回最后一次缓存的值。
func (c *CachedClock) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		<-c.done
	})
}

// refreshLoop 后台刷新循环（内部使用）
func (c *CachedClock) refreshLoop() {
	defer close(c.done)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.millis.Store(time.Now().UnixMilli())
		}
	}
}
