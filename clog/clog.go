// Package clog 提供基于 slog 的结构化日志组件。
//
// 特性：
//   - 抽象接口，不暴露底层实现（slog）
//   - 支持层级命名空间
//   - 零外部依赖（仅依赖 Go 标准库）
//   - 采用函数式选项模式
//
// 基本使用：
//
//	logger, _ := clog.New(&clog.Config{
//	    Level:  "info",
//	    Format: "console",
//	    Output: "stdout",
//	})
//	logger.Info("generator ready", clog.Int64("worker_id", 1))
package clog

import (
	"fmt"
	"sync"
)

// New 创建一个新的 Logger 实例
//
// config - 日志配置，如果为 nil 会使用默认配置
// opts   - 函数式选项列表，用于命名空间等配置
func New(config *Config, opts ...Option) (Logger, error) {
	if config == nil {
		config = &Config{}
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	options := applyOptions(opts...)

	return newLogger(config, options)
}

var (
	defaultOnce   sync.Once
	defaultLogger Logger
)

// Default 返回进程级默认 Logger（info 级别，console 格式，stdout 输出）
//
// 用于组件在未显式注入 Logger 时的兜底，避免空指针。
func Default() Logger {
	defaultOnce.Do(func() {
		logger, err := New(&Config{Level: "info", Format: "console", Output: "stdout"})
		if err != nil {
			logger = Discard()
		}
		defaultLogger = logger
	})
	return defaultLogger
}
