package idgen

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ceyewan/snowgen/clock"
	"github.com/ceyewan/snowgen/clog"
	"github.com/ceyewan/snowgen/metrics"
	"github.com/ceyewan/snowgen/xerrors"
)

// stallTimeout 等待下一毫秒的安全上限
//
// 正常情况下序列号溢出只需等待不到 1ms；超过该上限说明时间源
// 已经停摆（例如 cached 时间源的刷新协程被停掉），按致命错误处理。
const stallTimeout = 5 * time.Second

// Snowflake 雪花算法生成器
//
// 单个实例是其 Identity 的唯一铸造权威。(lastTime, sequence) 这对
// 状态只在互斥锁保护的临界区内读改写，任意并发调用都不会观测到
// 相同的 (timestamp, sequence) 组合。无 Force 策略时，同一实例产出
// 的 ID 严格递增。
type Snowflake struct {
	mu       sync.Mutex
	identity Identity
	sequence int64
	lastTime int64

	clk      clock.Clock
	ownClock bool // 时钟由本实例创建时，Close 负责停止

	policy  string
	maxWait time.Duration

	// Stats 快照走原子读取，不与生成调用线性化
	lastStamp atomic.Int64
	total     atomic.Int64

	logger    clog.Logger
	generated metrics.Counter

	manager        *WorkerManager
	stopCheckpoint func()
}

// NextID 生成下一个雪花 ID
//
// 时钟回拨时按配置的策略处理；同一毫秒内序列号耗尽时自旋等待
// 下一毫秒（有界，超时返回 ErrClockStalled）。
func (s *Snowflake) NextID() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextLocked()
}

// Next 返回下一个 ID，出错时返回 -1
//
// 便捷方法，适合调用方不关心具体错误的场景。
func (s *Snowflake) Next() int64 {
	id, err := s.NextID()
	if err != nil {
		return -1
	}
	return id
}

// NextBatch 批量生成 count 个 ID
//
// 在同一个临界区内重复单次生成，排序和序列号溢出语义与逐个
// 调用完全一致。count 必须在 [1, MaxBatchSize] 内。
func (s *Snowflake) NextBatch(count int) ([]int64, error) {
	if count < 1 || count > MaxBatchSize {
		return nil, xerrors.WithCode(ErrInvalidInput, "count_out_of_range")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, count)
	for i := 0; i < count; i++ {
		id, err := s.nextLocked()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// nextLocked 单次生成的状态机，调用方必须持有 s.mu（内部使用）
func (s *Snowflake) nextLocked() (int64, error) {
	now := s.clk.NowMillis()

	// 时钟回拨检测
	if now < s.lastTime {
		adjusted, err := s.handleBackwards(now)
		if err != nil {
			return 0, err
		}
		now = adjusted
	}

	if now == s.lastTime {
		s.sequence = (s.sequence + 1) & sequenceMask
		if s.sequence == 0 {
			// 序列号溢出，等待下一毫秒
			next, err := s.tilNextMillis(s.lastTime)
			if err != nil {
				return 0, err
			}
			now = next
		}
	} else {
		s.sequence = 0
	}

	s.lastTime = now

	id, err := Encode(now, s.identity.DatacenterID, s.identity.WorkerID, s.sequence)
	if err != nil {
		// 41 位时间戳溢出，配置级致命错误
		return 0, err
	}

	s.lastStamp.Store(now)
	s.total.Add(1)
	if s.generated != nil {
		s.generated.Inc()
	}
	return id, nil
}

// handleBackwards 按策略处理时钟回拨，返回修正后的当前毫秒（内部使用）
func (s *Snowflake) handleBackwards(now int64) (int64, error) {
	drift := time.Duration(s.lastTime-now) * time.Millisecond

	switch s.policy {
	case PolicyWait:
		if drift > s.maxWait {
			return 0, xerrors.Wrapf(ErrClockDriftTooLarge, "drift: %v (max: %v)", drift, s.maxWait)
		}
		s.logger.Warn("clock moved backwards, waiting",
			clog.Duration("drift", drift),
		)
		time.Sleep(drift + time.Millisecond)
		if again := s.clk.NowMillis(); again >= s.lastTime {
			return again, nil
		}
		// 等待后依然落后，按拒绝处理
		return 0, &BackwardsError{Drift: time.Duration(s.lastTime-s.clk.NowMillis()) * time.Millisecond}

	case PolicyForce:
		// 显式选择的逃生通道：沿用 lastTime 继续铸造
		s.logger.Warn("clock moved backwards, forcing last timestamp",
			clog.Duration("drift", drift),
		)
		return s.lastTime, nil

	default: // PolicyReject
		return 0, &BackwardsError{Drift: drift}
	}
}

// tilNextMillis 自旋到时钟越过 last，带退避和停摆保护（内部使用）
func (s *Snowflake) tilNextMillis(last int64) (int64, error) {
	deadline := time.Now().Add(stallTimeout)
	for spins := 0; ; spins++ {
		if ts := s.clk.NowMillis(); ts > last {
			return ts, nil
		}
		if time.Now().After(deadline) {
			return 0, xerrors.Wrapf(ErrClockStalled, "last: %d", last)
		}
		// 先让出调度，拖久了再短睡，避免饿死其它协程
		if spins < 100 {
			runtime.Gosched()
		} else {
			time.Sleep(100 * time.Microsecond)
		}
	}
}

// Identity 返回生成器绑定的节点标识
func (s *Snowflake) Identity() Identity {
	return s.identity
}

// LastTimestamp 返回最近一次铸造 ID 的毫秒时间戳，未使用过时为 0
func (s *Snowflake) LastTimestamp() int64 {
	return s.lastStamp.Load()
}

// Stats 生成器状态快照
type Stats struct {
	WorkerID       int64 `json:"worker_id"`
	DatacenterID   int64 `json:"datacenter_id"`
	LastTimestamp  int64 `json:"last_timestamp"`
	TotalGenerated int64 `json:"total_generated"`
}

// Stats 返回状态快照
//
// 快照与进行中的生成调用不做线性化，读到的是某个序列化点的值。
func (s *Snowflake) Stats() Stats {
	return Stats{
		WorkerID:       s.identity.WorkerID,
		DatacenterID:   s.identity.DatacenterID,
		LastTimestamp:  s.lastStamp.Load(),
		TotalGenerated: s.total.Load(),
	}
}

// Close 释放生成器持有的后台资源
//
// 停止检查点协程和由本实例创建的时间源；进行中的调用不受影响。
// 可重复调用。
func (s *Snowflake) Close() {
	if s.stopCheckpoint != nil {
		s.stopCheckpoint()
	}
	if s.ownClock {
		clock.Stop(s.clk)
	}
}
