package clock

import (
	"testing"
	"time"
)

func TestSystemClock(t *testing.T) {
	c := NewSystem()

	t.Run("tracks wall clock", func(t *testing.T) {
		now := time.Now().UnixMilli()
		got := c.NowMillis()
		if got < now-10 || got > now+10 {
			t.Errorf("Expected ~%d, got %d", now, got)
		}
	})

	t.Run("never decreases across calls", func(t *testing.T) {
		prev := c.NowMillis()
		for i := 0; i < 1000; i++ {
			cur := c.NowMillis()
			if cur < prev {
				t.Fatalf("Clock went backwards: %d -> %d", prev, cur)
			}
			prev = cur
		}
	})
}

func TestCachedClock(t *testing.T) {
	t.Run("advances with real time", func(t *testing.T) {
		c := NewCached(time.Millisecond)
		defer c.Stop()

		first := c.NowMillis()
		time.Sleep(50 * time.Millisecond)
		second := c.NowMillis()
		if second <= first {
			t.Errorf("Cached value did not advance: %d -> %d", first, second)
		}
	})

	t.Run("bounded staleness", func(t *testing.T) {
		c := NewCached(time.Millisecond)
		defer c.Stop()

		time.Sleep(10 * time.Millisecond)
		got := c.NowMillis()
		now := time.Now().UnixMilli()
		// 刷新间隔 1ms，留出调度余量
		if now-got > 50 {
			t.Errorf("Cached value too stale: cached=%d now=%d", got, now)
		}
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		c := NewCached(time.Millisecond)
		c.Stop()
		c.Stop()
	})

	t.Run("readable after stop", func(t *testing.T) {
		c := NewCached(time.Millisecond)
		c.Stop()
		if c.NowMillis() == 0 {
			t.Error("Expected last cached value after stop")
		}
	})

	t.Run("force refresh", func(t *testing.T) {
		c := NewCached(time.Hour) // 后台几乎不刷新
		defer c.Stop()

		time.Sleep(5 * time.Millisecond)
		got := c.ForceRefresh()
		now := time.Now().UnixMilli()
		if now-got > 10 {
			t.Errorf("ForceRefresh did not repair: got=%d now=%d", got, now)
		}
	})
}

func TestHybridClock(t *testing.T) {
	t.Run("normal reads use cache", func(t *testing.T) {
		c := NewHybrid(time.Millisecond, 0)
		defer c.Stop()

		got := c.NowMillis()
		now := time.Now().UnixMilli()
		if now-got > 50 {
			t.Errorf("Hybrid read too stale: got=%d now=%d", got, now)
		}
	})

	t.Run("repairs starved cache", func(t *testing.T) {
		// 刷新间隔拉长到 1 小时模拟刷新协程饿死
		c := NewHybrid(time.Hour, 20*time.Millisecond)
		defer c.Stop()

		time.Sleep(60 * time.Millisecond)

		// 触发抽样校验
		var got int64
		for i := 0; i < sampleInterval+1; i++ {
			got = c.NowMillis()
		}
		now := time.Now().UnixMilli()
		if now-got > 50 {
			t.Errorf("Hybrid did not fall back on stale cache: got=%d now=%d", got, now)
		}
	})
}

func TestNew_Config(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *Config
		expectError bool
		stoppable   bool
	}{
		{name: "nil config defaults to system", cfg: nil},
		{name: "system", cfg: &Config{Strategy: "system"}},
		{name: "cached", cfg: &Config{Strategy: "cached"}, stoppable: true},
		{name: "hybrid", cfg: &Config{Strategy: "hybrid", StaleThresholdMs: 100}, stoppable: true},
		{name: "unknown strategy", cfg: &Config{Strategy: "quartz"}, expectError: true},
		{name: "negative threshold", cfg: &Config{Strategy: "hybrid", StaleThresholdMs: -1}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg)
			if tt.expectError {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			defer Stop(c)

			_, ok := c.(Stopper)
			if ok != tt.stoppable {
				t.Errorf("Stoppable mismatch: expected %v, got %v", tt.stoppable, ok)
			}
		})
	}
}

func BenchmarkSystemClock(b *testing.B) {
	c := NewSystem()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.NowMillis()
	}
}

func BenchmarkCachedClock(b *testing.B) {
	c := NewCached(time.Millisecond)
	defer c.Stop()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.NowMillis()
	}
}

func BenchmarkCachedClock_Parallel(b *testing.B) {
	c := NewCached(time.Millisecond)
	defer c.Stop()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			c.NowMillis()
		}
	})
}
