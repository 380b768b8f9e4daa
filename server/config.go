package server

// DefaultBatchLimit 单次批量请求的默认数量上限
const DefaultBatchLimit = 1000

// Config HTTP 服务配置
type Config struct {
	// Host 监听地址，默认 "0.0.0.0"
	Host string `yaml:"host" json:"host" mapstructure:"host"`

	// Port 监听端口，默认 8080
	Port int `yaml:"port" json:"port" mapstructure:"port"`

	// Mode gin 运行模式: "release" | "debug" | "test"，默认 "release"
	Mode string `yaml:"mode" json:"mode" mapstructure:"mode"`

	// BatchLimit 单次批量请求的数量上限，默认 1000
	BatchLimit int `yaml:"batch_limit" json:"batch_limit" mapstructure:"batch_limit"`
}

func (c *Config) setDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port <= 0 {
		c.Port = 8080
	}
	if c.Mode == "" {
		c.Mode = "release"
	}
	if c.BatchLimit <= 0 {
		c.BatchLimit = DefaultBatchLimit
	}
}
