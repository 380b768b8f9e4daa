// Package config 提供统一的配置管理能力。
// 支持多源配置加载和热更新通知，基于 Viper 实现。
//
// 特性：
//   - 多源配置加载：YAML/JSON 文件、环境变量、.env 文件
//   - 配置优先级：环境变量 > .env > 配置文件
//   - 热更新支持：监听配置文件变化，自动通知应用
//
// 基本使用：
//
//	loader := config.MustLoad(&config.Config{
//	    Name:      "config",
//	    Paths:     []string{".", "./config"},
//	    EnvPrefix: "SNOWGEN",
//	})
//
//	var cfg AppConfig
//	if err := loader.Unmarshal(&cfg); err != nil {
//	    panic(err)
//	}
package config

import (
	"context"
	"strings"
)

// Config 配置加载器自身的配置
type Config struct {
	Name      string   // 配置文件名称（不含扩展名），默认 "config"
	Paths     []string // 配置文件搜索路径，默认 ["./", "./config"]
	FileType  string   // 配置文件类型 (yaml, json, etc.)，默认 "yaml"
	EnvPrefix string   // 环境变量前缀，默认 "SNOWGEN"
}

// validate 设置默认值并验证配置（内部使用）
func (c *Config) validate() error {
	if c.Name == "" {
		c.Name = "config"
	}
	if c.Paths == nil {
		c.Paths = []string{".", "./config"}
	}
	if c.FileType == "" {
		c.FileType = "yaml"
	}
	if c.EnvPrefix == "" {
		c.EnvPrefix = "SNOWGEN"
	}
	c.EnvPrefix = strings.ToUpper(c.EnvPrefix)
	return nil
}

// New 创建配置加载器
//
// cfg 为 nil 时使用默认配置。创建后需调用 Load 加载。
func New(cfg *Config) (Loader, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return newLoader(cfg)
}

// MustLoad 创建并加载配置，出错时 panic。仅用于初始化阶段。
func MustLoad(cfg *Config) Loader {
	loader, err := New(cfg)
	if err != nil {
		panic(err)
	}
	if err := loader.Load(context.Background()); err != nil {
		panic(err)
	}
	return loader
}
