package clock

import (
	"time"

	"github.com/ceyewan/snowgen/xerrors"
)

// 支持的策略名
const (
	StrategySystem = "system"
	StrategyCached = "cached"
	StrategyHybrid = "hybrid"
)

// ErrInvalidStrategy 不支持的时间源策略
var ErrInvalidStrategy = xerrors.New("clock: invalid strategy")

// Config 时间源配置
type Config struct {
	// Strategy 时间源策略: "system" | "cached" | "hybrid"，默认 "system"
	Strategy string `yaml:"strategy" json:"strategy" mapstructure:"strategy"`

	// RefreshIntervalMs 缓存刷新间隔毫秒数（cached/hybrid），默认 1
	RefreshIntervalMs int64 `yaml:"refresh_interval_ms" json:"refresh_interval_ms" mapstructure:"refresh_interval_ms"`

	// StaleThresholdMs 可容忍的缓存滞后毫秒数（仅 hybrid），
	// 默认 10 倍刷新间隔
	StaleThresholdMs int64 `yaml:"stale_threshold_ms" json:"stale_threshold_ms" mapstructure:"stale_threshold_ms"`
}

func (c *Config) setDefaults() {
	if c.Strategy == "" {
		c.Strategy = StrategySystem
	}
	if c.RefreshIntervalMs <= 0 {
		c.RefreshIntervalMs = 1
	}
}

func (c *Config) validate() error {
	switch c.Strategy {
	case StrategySystem, StrategyCached, StrategyHybrid:
	default:
		return xerrors.WithCode(ErrInvalidStrategy, c.Strategy)
	}
	if c.StaleThresholdMs < 0 {
		return xerrors.WithCode(ErrInvalidStrategy, "stale_threshold_cannot_be_negative")
	}
	return nil
}

// New 根据配置创建时间源
//
// cfg 为 nil 时返回 system 策略。cached/hybrid 返回的实例实现
// Stopper 接口，不再使用时应调用 Stop（或包级 Stop 函数）。
func New(cfg *Config) (Clock, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	interval := time.Duration(cfg.RefreshIntervalMs) * time.Millisecond
	switch cfg.Strategy {
	case StrategyCached:
		return NewCached(interval), nil
	case StrategyHybrid:
		return NewHybrid(interval, time.Duration(cfg.StaleThresholdMs)*time.Millisecond), nil
	default:
		return NewSystem(), nil
	}
}
