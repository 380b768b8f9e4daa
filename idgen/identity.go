package idgen

import (
	"github.com/ceyewan/snowgen/xerrors"
)

// Identity 节点标识，(workerID, datacenterID) 二元组
//
// 构造时校验范围，非法值直接失败而不是截断。多个生成器实例间的
// 全局唯一性完全依赖部署方为每个实例配置不同的 Identity，
// 本层不做跨实例协调。
type Identity struct {
	WorkerID     int64 `json:"worker_id"`
	DatacenterID int64 `json:"datacenter_id"`
}

// NewIdentity 创建并校验节点标识
//
// workerID 和 datacenterID 均须在 [0, 31] 内。
func NewIdentity(workerID, datacenterID int64) (Identity, error) {
	if workerID < 0 || workerID > MaxWorkerID {
		return Identity{}, xerrors.WithCode(ErrInvalidInput, "worker_id_out_of_range")
	}
	if datacenterID < 0 || datacenterID > MaxDatacenterID {
		return Identity{}, xerrors.WithCode(ErrInvalidInput, "datacenter_id_out_of_range")
	}
	return Identity{WorkerID: workerID, DatacenterID: datacenterID}, nil
}
