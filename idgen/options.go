package idgen

import (
	"github.com/ceyewan/snowgen/clock"
	"github.com/ceyewan/snowgen/clog"
	"github.com/ceyewan/snowgen/metrics"
)

// Option 组件初始化选项函数
type Option func(*Options)

// Options 组件初始化选项配置
type Options struct {
	Logger clog.Logger
	Meter  metrics.Meter
	Clock  clock.Clock
}

// WithLogger 设置 Logger
func WithLogger(logger clog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithMeter 设置 Meter
func WithMeter(meter metrics.Meter) Option {
	return func(o *Options) {
		o.Meter = meter
	}
}

// WithClock 注入自定义时间源
//
// 优先于配置中的 Clock 策略，主要用于测试中控制时间。
func WithClock(c clock.Clock) Option {
	return func(o *Options) {
		o.Clock = c
	}
}

// applyOptions 应用所有选项（内部使用）
func applyOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.Logger == nil {
		o.Logger = clog.Discard()
	}
	return o
}
