package idgen

// 指标常量定义
const (
	// MetricGenerated 雪花 ID 生成总数 (Counter)
	MetricGenerated = "idgen_snowflake_generated_total"
)
