package idgen

import (
	"fmt"
	"time"

	"github.com/ceyewan/snowgen/xerrors"
)

// 标准 Snowflake 位结构，自高位到低位：
// 1 bit 符号位（恒为 0）+ 41 bit 时间戳 + 5 bit 数据中心 + 5 bit 工作节点 + 12 bit 序列号
const (
	// EpochMillis 自定义纪元 2021-01-01 00:00:00 UTC 的 Unix 毫秒值
	//
	// 时间戳字段存储的是相对该纪元的偏移，41 位可用约 69 年。
	EpochMillis int64 = 1609459200000

	TimestampBits    = 41
	DatacenterIDBits = 5
	WorkerIDBits     = 5
	SequenceBits     = 12

	MaxTimestamp    int64 = (1 << TimestampBits) - 1
	MaxDatacenterID int64 = (1 << DatacenterIDBits) - 1
	MaxWorkerID     int64 = (1 << WorkerIDBits) - 1
	MaxSequence     int64 = (1 << SequenceBits) - 1

	workerIDShift     = SequenceBits
	datacenterIDShift = SequenceBits + WorkerIDBits
	timestampShift    = SequenceBits + WorkerIDBits + DatacenterIDBits

	sequenceMask = MaxSequence
)

// Encode 将四个字段打包为一个 64 位 ID
//
// timestampMs 为 Unix 毫秒时间戳（绝对值，内部减去 EpochMillis）。
// 任一字段越界返回错误，绝不静默截断：
//   - 相对时间戳为负或超过 41 位: ErrTimestampOverflow
//   - datacenterID/workerID 超过 5 位、sequence 超过 12 位: ErrInvalidInput
func Encode(timestampMs, datacenterID, workerID, sequence int64) (int64, error) {
	relative := timestampMs - EpochMillis
	if relative < 0 || relative > MaxTimestamp {
		return 0, xerrors.Wrapf(ErrTimestampOverflow, "timestamp: %d (epoch: %d)", timestampMs, EpochMillis)
	}
	if datacenterID < 0 || datacenterID > MaxDatacenterID {
		return 0, xerrors.WithCode(ErrInvalidInput, "datacenter_id_out_of_range")
	}
	if workerID < 0 || workerID > MaxWorkerID {
		return 0, xerrors.WithCode(ErrInvalidInput, "worker_id_out_of_range")
	}
	if sequence < 0 || sequence > MaxSequence {
		return 0, xerrors.WithCode(ErrInvalidInput, "sequence_out_of_range")
	}

	id := (relative << timestampShift) |
		(datacenterID << datacenterIDShift) |
		(workerID << workerIDShift) |
		sequence
	return id, nil
}

// Decode 将 64 位 ID 还原为各个字段
//
// 解码对任意输入都成功：每个位模式都对应一组字段值，没有可拒绝的非法编码。
func Decode(id int64) ParsedID {
	return ParsedID{
		ID:           id,
		Timestamp:    (id >> timestampShift) + EpochMillis,
		DatacenterID: (id >> datacenterIDShift) & MaxDatacenterID,
		WorkerID:     (id >> workerIDShift) & MaxWorkerID,
		Sequence:     id & sequenceMask,
	}
}

// ParsedID 雪花 ID 解码结果
//
// 值类型，每次 Decode 都产生新值，不与任何生成器实例关联。
type ParsedID struct {
	ID           int64 `json:"id"`
	Timestamp    int64 `json:"timestamp"` // Unix 毫秒
	DatacenterID int64 `json:"datacenter_id"`
	WorkerID     int64 `json:"worker_id"`
	Sequence     int64 `json:"sequence"`
}

// Time 返回 ID 中时间戳对应的 time.Time
func (p ParsedID) Time() time.Time {
	return time.UnixMilli(p.Timestamp)
}

// Hex 返回 ID 的十六进制表示
func (p ParsedID) Hex() string {
	return fmt.Sprintf("0x%016x", uint64(p.ID))
}

// Binary 返回 ID 的 64 位二进制表示
func (p ParsedID) Binary() string {
	return fmt.Sprintf("%064b", uint64(p.ID))
}

// String 返回各字段的可读描述
func (p ParsedID) String() string {
	return fmt.Sprintf("id=%d ts=%s dc=%d worker=%d seq=%d",
		p.ID, p.Time().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		p.DatacenterID, p.WorkerID, p.Sequence)
}
