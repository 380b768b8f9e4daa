// Package server 提供雪花 ID 生成器的 HTTP 服务层。
//
// 路由：
//
//	GET /health      健康检查
//	GET /id          生成单个 ID
//	GET /batch?count 批量生成（上限由配置控制）
//	GET /parse/:id   解析 ID 的各个字段
//	GET /stats       服务与生成器统计
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ceyewan/snowgen/clog"
	"github.com/ceyewan/snowgen/idgen"
	"github.com/ceyewan/snowgen/metrics"
	"github.com/ceyewan/snowgen/xerrors"
)

// Server 雪花 ID 的 HTTP 服务
type Server struct {
	cfg    *Config
	engine *gin.Engine
	http   *http.Server
	gen    *idgen.Snowflake
	logger clog.Logger

	startTime time.Time
	requests  atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
}

// New 创建 HTTP 服务
func New(gen *idgen.Snowflake, cfg *Config, opts ...Option) (*Server, error) {
	if gen == nil {
		return nil, xerrors.New("server: generator is nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.setDefaults()

	opt := applyOptions(opts...)

	logger := opt.Logger.With(clog.String("component", "server"))

	gin.SetMode(cfg.Mode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))
	if opt.HTTPMetrics != nil {
		engine.Use(metrics.GinHTTPMiddleware(opt.HTTPMetrics))
	}

	s := &Server{
		cfg:       cfg,
		engine:    engine,
		gen:       gen,
		logger:    logger,
		startTime: time.Now(),
	}
	s.registerRoutes()

	s.http = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: engine,
	}
	return s, nil
}

// requestLogger 请求日志中间件（内部使用）
func requestLogger(logger clog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []clog.Field{
			clog.String("method", c.Request.Method),
			clog.String("path", c.Request.URL.Path),
			clog.Int("status", c.Writer.Status()),
			clog.Duration("latency", time.Since(start)),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("request failed", fields...)
		} else {
			logger.Debug("request handled", fields...)
		}
	}
}

// registerRoutes 注册全部路由（内部使用）
func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/id", s.handleGenerate)
	s.engine.GET("/batch", s.handleBatch)
	s.engine.GET("/parse/:id", s.handleParse)
	s.engine.GET("/stats", s.handleStats)
}

// Run 启动 HTTP 服务并阻塞直到退出
func (s *Server) Run() error {
	s.logger.Info("http server starting", clog.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return xerrors.Wrap(err, "http server")
	}
	return nil
}

// Shutdown 优雅关闭 HTTP 服务
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")
	return s.http.Shutdown(ctx)
}

// Handler 返回底层的 http.Handler，主要用于测试
func (s *Server) Handler() http.Handler {
	return s.engine
}
