// Package metrics 提供基于 OpenTelemetry + Prometheus 的指标组件。
//
// 基本使用：
//
//	meter, _ := metrics.New(&metrics.Config{
//	    Enabled:     true,
//	    ServiceName: "snowgen",
//	    Port:        9090,
//	})
//	defer meter.Shutdown()
//
//	counter, _ := meter.Counter("ids_generated_total", "Total ids generated")
//	counter.Inc()
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
)

// New 创建 Meter 实例
//
// cfg.Enabled 为 false 时返回 noop 实现。Port > 0 时同时启动
// Prometheus 抓取端点。
func New(cfg *Config) (Meter, error) {
	if cfg == nil || !cfg.Enabled {
		return Noop(), nil
	}
	cfg.setDefaults()

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(cfg.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	exporter, err := otelprom.New()
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)

	var server *http.Server
	if cfg.Port > 0 {
		mux := http.NewServeMux()
		mux.Handle(cfg.Path, promhttp.Handler())
		server = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Port),
			Handler: mux,
		}
		go func() {
			_ = server.ListenAndServe()
		}()
	}

	return &meterImpl{
		meter:    provider.Meter(cfg.ServiceName),
		provider: provider,
		server:   server,
	}, nil
}

// Must 类似 New，但出错时 panic。仅用于初始化阶段。
func Must(cfg *Config) Meter {
	m, err := New(cfg)
	if err != nil {
		panic(fmt.Sprintf("failed to create metrics: %v", err))
	}
	return m
}

// meterImpl 实现 Meter 接口
type meterImpl struct {
	meter    metric.Meter
	provider *sdkmetric.MeterProvider
	server   *http.Server
}

func (m *meterImpl) Counter(name string, desc string) (Counter, error) {
	c, err := m.meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		return nil, fmt.Errorf("create counter %s: %w", name, err)
	}
	return &counterImpl{counter: c}, nil
}

func (m *meterImpl) Histogram(name string, desc string) (Histogram, error) {
	h, err := m.meter.Float64Histogram(name,
		metric.WithDescription(desc),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create histogram %s: %w", name, err)
	}
	return &histogramImpl{histogram: h}, nil
}

func (m *meterImpl) Shutdown() error {
	if m.server != nil {
		_ = m.server.Close()
	}
	return m.provider.Shutdown(context.Background())
}

type counterImpl struct {
	counter metric.Int64Counter
}

func (c *counterImpl) Inc(labels ...Label) {
	c.Add(1, labels...)
}

func (c *counterImpl) Add(delta int64, labels ...Label) {
	c.counter.Add(context.Background(), delta, metric.WithAttributes(toAttributes(labels)...))
}

type histogramImpl struct {
	histogram metric.Float64Histogram
}

func (h *histogramImpl) Observe(value float64, labels ...Label) {
	h.histogram.Record(context.Background(), value, metric.WithAttributes(toAttributes(labels)...))
}

// toAttributes 将标签转换为 otel 属性（内部使用）
func toAttributes(labels []Label) []attribute.KeyValue {
	if len(labels) == 0 {
		return nil
	}
	attrs := make([]attribute.KeyValue, 0, len(labels))
	for _, l := range labels {
		attrs = append(attrs, attribute.String(l.Key, l.Value))
	}
	return attrs
}
