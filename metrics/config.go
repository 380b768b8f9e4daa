package metrics

// Config 指标配置
type Config struct {
	// Enabled 是否开启指标导出，false 时返回 noop Meter
	Enabled bool `yaml:"enabled" json:"enabled" mapstructure:"enabled"`

	// ServiceName 服务名，作为资源属性导出
	ServiceName string `yaml:"service_name" json:"service_name" mapstructure:"service_name"`

	// Version 服务版本
	Version string `yaml:"version" json:"version" mapstructure:"version"`

	// Port Prometheus 抓取端口，0 表示不启动内置抓取服务
	Port int `yaml:"port" json:"port" mapstructure:"port"`

	// Path 抓取路径，默认 "/metrics"
	Path string `yaml:"path" json:"path" mapstructure:"path"`
}

func (c *Config) setDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "snowgen"
	}
	if c.Path == "" {
		c.Path = "/metrics"
	}
}
