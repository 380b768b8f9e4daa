// Package idgen 提供分布式有序 ID 生成能力。
//
// 核心是标准雪花算法（1+41+5+5+12 位结构）：
//
//   - codec: 纯函数的位打包/解包（Encode / Decode）
//   - identity / worker: 节点标识的解析与文件持久化
//   - snowflake: 互斥串行化的序列状态机，含时钟回拨检测与恢复策略
//
// 基本使用：
//
//	gen, _ := idgen.NewGenerator(&idgen.GeneratorConfig{
//	    WorkerID:     1,
//	    DatacenterID: 1,
//	})
//	defer gen.Close()
//	id, _ := gen.NextID()
//	info := idgen.Decode(id)
//
// 高吞吐场景启用缓存时间源：
//
//	gen, _ := idgen.NewGenerator(&idgen.GeneratorConfig{
//	    WorkerID: 1,
//	    Clock:    &clock.Config{Strategy: "cached"},
//	})
//
// 节点标识自动分配并持久化：
//
//	gen, _ := idgen.NewGenerator(&idgen.GeneratorConfig{
//	    WorkerFile:   "/var/lib/snowgen/node.worker",
//	    DatacenterID: 1,
//	})
package idgen

import (
	"time"

	"github.com/ceyewan/snowgen/clock"
	"github.com/ceyewan/snowgen/clog"
	"github.com/ceyewan/snowgen/xerrors"
)

// NewGenerator 创建雪花生成器
//
// cfg.WorkerFile 为空时使用显式的 WorkerID/DatacenterID；
// 非空时走 resolve-or-allocate 并启动后台检查点。
// 时间源按 cfg.Clock 构建，可用 WithClock 覆盖（测试注入）。
func NewGenerator(cfg *GeneratorConfig, opts ...Option) (*Snowflake, error) {
	if cfg == nil {
		return nil, xerrors.WithCode(ErrInvalidInput, "config_nil")
	}
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opt := applyOptions(opts...)
	logger := opt.Logger.With(clog.String("component", "idgen"))

	// 时间源
	clk := opt.Clock
	ownClock := false
	if clk == nil {
		created, err := clock.New(cfg.Clock)
		if err != nil {
			return nil, err
		}
		clk = created
		ownClock = true
	}

	// 节点标识
	var identity Identity
	var manager *WorkerManager
	if cfg.WorkerFile != "" {
		m, err := NewWorkerManager(cfg.WorkerFile, cfg.DatacenterID, opts...)
		if err != nil {
			if ownClock {
				clock.Stop(clk)
			}
			return nil, err
		}
		manager = m
		identity = m.Identity()
	} else {
		id, err := ResolveExplicit(cfg.WorkerID, cfg.DatacenterID)
		if err != nil {
			if ownClock {
				clock.Stop(clk)
			}
			return nil, err
		}
		identity = id
	}

	s := &Snowflake{
		identity: identity,
		clk:      clk,
		ownClock: ownClock,
		policy:   cfg.BackwardsPolicy,
		maxWait:  time.Duration(cfg.MaxWaitMs) * time.Millisecond,
		logger:   logger,
		manager:  manager,
	}

	if opt.Meter != nil {
		if counter, err := opt.Meter.Counter(MetricGenerated, "Total snowflake ids generated"); err == nil {
			s.generated = counter
		}
	}

	if manager != nil {
		interval := time.Duration(cfg.CheckpointIntervalMs) * time.Millisecond
		s.stopCheckpoint = manager.StartCheckpoint(interval, s.LastTimestamp)
	}

	logger.Info("snowflake generator created",
		clog.Int64("worker_id", identity.WorkerID),
		clog.Int64("datacenter_id", identity.DatacenterID),
		clog.String("backwards_policy", cfg.BackwardsPolicy),
	)

	return s, nil
}

// NewGeneratorFromFile 基于 Worker 标识文件创建生成器
//
// 等价于设置了 WorkerFile 的 NewGenerator，其余配置取默认值。
func NewGeneratorFromFile(workerFile string, datacenterID int64, opts ...Option) (*Snowflake, error) {
	return NewGenerator(&GeneratorConfig{
		WorkerFile:   workerFile,
		DatacenterID: datacenterID,
	}, opts...)
}
