package server

import (
	"github.com/ceyewan/snowgen/clog"
	"github.com/ceyewan/snowgen/metrics"
)

// Option 组件初始化选项函数
type Option func(*Options)

// Options 组件初始化选项配置
type Options struct {
	Logger      clog.Logger
	HTTPMetrics *metrics.HTTPServerMetrics
}

// WithLogger 设置 Logger
func WithLogger(logger clog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithHTTPMetrics 启用 HTTP RED 指标中间件
func WithHTTPMetrics(m *metrics.HTTPServerMetrics) Option {
	return func(o *Options) {
		o.HTTPMetrics = m
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
