package idgen

import (
	"github.com/google/uuid"
)

// NewUUIDV7 生成 UUID v7 (时间排序)
//
// 不依赖节点标识的备用 ID 方案，适合不要求 64 位整数主键的场景。
func NewUUIDV7() (string, error) {
	v7, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return v7.String(), nil
}

// NewUUIDV4 生成 UUID v4 (随机)
func NewUUIDV4() string {
	return uuid.New().String()
}
