package metrics

// noopMeter 关闭指标时的空实现（内部使用）
type noopMeter struct{}

// Noop 返回什么都不做的 Meter
func Noop() Meter {
	return &noopMeter{}
}

func (m *noopMeter) Counter(name string, desc string) (Counter, error) {
	return noopCounter{}, nil
}

func (m *noopMeter) Histogram(name string, desc string) (Histogram, error) {
	return noopHistogram{}, nil
}

func (m *noopMeter) Shutdown() error { return nil }

type noopCounter struct{}

func (noopCounter) Inc(labels ...Label)              {}
func (noopCounter) Add(delta int64, labels ...Label) {}

type noopHistogram struct{}

func (noopHistogram) Observe(value float64, labels ...Label) {}
