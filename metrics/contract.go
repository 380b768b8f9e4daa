package metrics

// Meter 指标创建入口
//
// 抽象接口，不暴露底层实现（OpenTelemetry）。
type Meter interface {
	// Counter 创建单调递增计数器
	Counter(name string, desc string) (Counter, error)

	// Histogram 创建直方图（单位：秒）
	Histogram(name string, desc string) (Histogram, error)

	// Shutdown 停止导出并释放资源
	Shutdown() error
}

// Counter 单调递增计数器
type Counter interface {
	Inc(labels ...Label)
	Add(delta int64, labels ...Label)
}

// Histogram 分布直方图
type Histogram interface {
	Observe(value float64, labels ...Label)
}

// Label 指标标签
type Label struct {
	Key   string
	Value string
}

// L 创建标签
func L(key, value string) Label {
	return Label{Key: key, Value: value}
}
