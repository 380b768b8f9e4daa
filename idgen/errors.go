package idgen

import (
	"fmt"
	"time"

	"github.com/ceyewan/snowgen/xerrors"
)

var (
	// ErrInvalidInput 无效的输入（字段越界、批量数量越界等）
	ErrInvalidInput = xerrors.New("idgen: invalid input")

	// ErrTimestampOverflow 时间戳超出 41 位字段范围
	// 只会在 EPOCH 起约 69 年后出现，视为致命的配置/生命周期错误
	ErrTimestampOverflow = xerrors.New("idgen: timestamp overflows 41-bit field")

	// ErrClockBackwards 检测到时钟回拨
	ErrClockBackwards = xerrors.New("idgen: clock moved backwards")

	// ErrClockDriftTooLarge 时钟回拨超过等待上限
	ErrClockDriftTooLarge = xerrors.New("idgen: clock drift exceeds max wait")

	// ErrClockStalled 等待下一毫秒超时，时间源疑似停摆
	ErrClockStalled = xerrors.New("idgen: clock stalled waiting for next millisecond")

	// ErrWorkerFileNotFound Worker 标识文件不存在
	ErrWorkerFileNotFound = xerrors.New("idgen: worker file not found")

	// ErrWorkerFileCorrupt Worker 标识文件无法解析
	ErrWorkerFileCorrupt = xerrors.New("idgen: worker file corrupt")
)

// BackwardsError 带回拨量的时钟回拨错误
//
// errors.Is(err, ErrClockBackwards) 成立；Drift 为观测到的回拨量。
type BackwardsError struct {
	Drift time.Duration
}

func (e *BackwardsError) Error() string {
	return fmt.Sprintf("idgen: clock moved backwards by %v", e.Drift)
}

func (e *BackwardsError) Unwrap() error {
	return ErrClockBackwards
}

// DriftOf 从错误链中提取时钟回拨量，不是回拨错误时返回 0
func DriftOf(err error) time.Duration {
	var backwards *BackwardsError
	if xerrors.As(err, &backwards) {
		return backwards.Drift
	}
	return 0
}
