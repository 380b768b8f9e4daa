package idgen

import (
	"testing"

	"github.com/ceyewan/snowgen/clock"
)

func newBenchGenerator(b *testing.B, cfg *GeneratorConfig) *Snowflake {
	b.Helper()
	gen, err := NewGenerator(cfg)
	if err != nil {
		b.Fatalf("NewGenerator failed: %v", err)
	}
	b.Cleanup(func() { gen.Close() })
	return gen
}

func BenchmarkSnowflake_NextID(b *testing.B) {
	gen := newBenchGenerator(b, &GeneratorConfig{WorkerID: 1, DatacenterID: 1})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := gen.NextID(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSnowflake_NextID_CachedClock(b *testing.B) {
	gen := newBenchGenerator(b, &GeneratorConfig{
		WorkerID:     1,
		DatacenterID: 1,
		Clock:        &clock.Config{Strategy: clock.StrategyCached, RefreshIntervalMs: 1},
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := gen.NextID(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSnowflake_NextID_Parallel(b *testing.B) {
	gen := newBenchGenerator(b, &GeneratorConfig{WorkerID: 1, DatacenterID: 1})

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := gen.NextID(); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkSnowflake_NextBatch(b *testing.B) {
	gen := newBenchGenerator(b, &GeneratorConfig{WorkerID: 1, DatacenterID: 1})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := gen.NextBatch(100); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecode(b *testing.B) {
	gen := newBenchGenerator(b, &GeneratorConfig{WorkerID: 1, DatacenterID: 1})
	id, err := gen.NextID()
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Decode(id)
	}
}
