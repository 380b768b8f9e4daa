package idgen

import (
	"github.com/ceyewan/snowgen/clock"
	"github.com/ceyewan/snowgen/xerrors"
)

// 时钟回拨恢复策略
const (
	// PolicyReject 直接返回错误（默认，最安全），由调用方决定重试
	PolicyReject = "reject"

	// PolicyWait 阻塞等待真实时间追上 last_timestamp，
	// 回拨超过 MaxWaitMs 时返回 ErrClockDriftTooLarge
	PolicyWait = "wait"

	// PolicyForce 用 last_timestamp 顶替当前时间继续生成。
	// 显式选择才生效：该策略以可控的方式牺牲单调性保证，
	// 仅作为逃生通道，不要作为默认值
	PolicyForce = "force"
)

// MaxBatchSize 单次批量生成的数量上限
const MaxBatchSize = 4096

// GeneratorConfig 雪花生成器配置
type GeneratorConfig struct {
	// WorkerID 工作节点 ID [0, 31]（未启用 WorkerFile 时必填）
	WorkerID int64 `yaml:"worker_id" json:"worker_id" mapstructure:"worker_id"`

	// DatacenterID 数据中心 ID [0, 31]
	DatacenterID int64 `yaml:"datacenter_id" json:"datacenter_id" mapstructure:"datacenter_id"`

	// WorkerFile Worker 标识记录文件路径。非空时启用
	// resolve-or-allocate：有记录沿用，无记录自动分配并持久化
	WorkerFile string `yaml:"worker_file" json:"worker_file" mapstructure:"worker_file"`

	// Clock 时间源配置，nil 时使用 system 策略
	Clock *clock.Config `yaml:"clock" json:"clock" mapstructure:"clock"`

	// BackwardsPolicy 时钟回拨策略: "reject" | "wait" | "force"，默认 "reject"
	BackwardsPolicy string `yaml:"backwards_policy" json:"backwards_policy" mapstructure:"backwards_policy"`

	// MaxWaitMs wait 策略下最大等待毫秒数，默认 1000
	MaxWaitMs int64 `yaml:"max_wait_ms" json:"max_wait_ms" mapstructure:"max_wait_ms"`

	// CheckpointIntervalMs last_timestamp 落盘间隔毫秒数
	// （仅启用 WorkerFile 时生效），默认 1000
	CheckpointIntervalMs int64 `yaml:"checkpoint_interval_ms" json:"checkpoint_interval_ms" mapstructure:"checkpoint_interval_ms"`
}

func (c *GeneratorConfig) setDefaults() {
	if c.BackwardsPolicy == "" {
		c.BackwardsPolicy = PolicyReject
	}
	if c.MaxWaitMs <= 0 {
		c.MaxWaitMs = 1000
	}
	if c.CheckpointIntervalMs <= 0 {
		c.CheckpointIntervalMs = 1000
	}
}

func (c *GeneratorConfig) validate() error {
	switch c.BackwardsPolicy {
	case PolicyReject, PolicyWait, PolicyForce:
	default:
		return xerrors.WithCode(ErrInvalidInput, "unsupported_backwards_policy")
	}
	if c.WorkerFile == "" {
		if _, err := NewIdentity(c.WorkerID, c.DatacenterID); err != nil {
			return err
		}
	} else if c.DatacenterID < 0 || c.DatacenterID > MaxDatacenterID {
		return xerrors.WithCode(ErrInvalidInput, "datacenter_id_out_of_range")
	}
	return nil
}
