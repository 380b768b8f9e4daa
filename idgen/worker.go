package idgen

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ceyewan/snowgen/clog"
	"github.com/ceyewan/snowgen/xerrors"
)

// workerRecord Worker 标识的磁盘记录
//
// 文件格式为四行整数，依次为 worker_id、datacenter_id、
// last_timestamp_ms、creation_time_ms。允许空行、首尾空白
// 和 '#' 注释行；缺字段或非数字一律按损坏处理。
type workerRecord struct {
	WorkerID      int64
	DatacenterID  int64
	LastTimestamp int64
	CreationTime  int64
}

// parseWorkerRecord 解析记录文件内容（内部使用）
func parseWorkerRecord(content string) (workerRecord, error) {
	var fields []int64
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		v, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return workerRecord{}, xerrors.Wrapf(ErrWorkerFileCorrupt, "non-numeric field: %q", line)
		}
		fields = append(fields, v)
	}
	if len(fields) < 4 {
		return workerRecord{}, xerrors.Wrapf(ErrWorkerFileCorrupt, "expected 4 fields, got %d", len(fields))
	}
	return workerRecord{
		WorkerID:      fields[0],
		DatacenterID:  fields[1],
		LastTimestamp: fields[2],
		CreationTime:  fields[3],
	}, nil
}

// fileContent 生成记录文件内容（内部使用）
func (r workerRecord) fileContent() string {
	return fmt.Sprintf("%d\n%d\n%d\n%d\n",
		r.WorkerID, r.DatacenterID, r.LastTimestamp, r.CreationTime)
}

// ResolveExplicit 用显式指定的 workerID/datacenterID 解析节点标识
//
// 仅做范围校验，等价于 NewIdentity。
func ResolveExplicit(workerID, datacenterID int64) (Identity, error) {
	return NewIdentity(workerID, datacenterID)
}

// ResolveFromFile 从持久化记录解析节点标识
//
// 文件不存在返回 ErrWorkerFileNotFound；无法解析返回
// ErrWorkerFileCorrupt；解析成功后重新校验范围。
func ResolveFromFile(path string) (Identity, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Identity{}, xerrors.Wrapf(ErrWorkerFileNotFound, "path: %s", path)
		}
		return Identity{}, xerrors.Wrapf(err, "read worker file %s", path)
	}
	record, err := parseWorkerRecord(string(content))
	if err != nil {
		return Identity{}, err
	}
	return NewIdentity(record.WorkerID, record.DatacenterID)
}

// ResolveOrAllocate 解析或分配节点标识
//
// 有合法记录时沿用，没有时分配并尽力写入；只需要标识本身、
// 不需要后续检查点时用这个便捷入口。
func ResolveOrAllocate(path string, datacenterID int64, opts ...Option) (Identity, error) {
	m, err := NewWorkerManager(path, datacenterID, opts...)
	if err != nil {
		return Identity{}, err
	}
	return m.Identity(), nil
}

// WorkerManager 解析并持久化节点标识
//
// 负责 resolve-or-allocate 语义和 last_timestamp 的尽力而为检查点。
// 持久化失败不会阻断 ID 生成，仅产生 warn 日志。
type WorkerManager struct {
	mu     sync.Mutex
	path   string
	record workerRecord
	logger clog.Logger

	// persistent 为 false 表示记录仅存在于内存（写入失败后降级）
	persistent bool
}

// NewWorkerManager 创建 Worker 标识管理器（resolve-or-allocate）
//
// 存在合法记录文件时沿用其中的标识；文件不存在时分配新的
// workerID 并写入记录；记录损坏或字段越界不会被自动修复，
// 直接返回错误。写入失败降级为内存标识并记录 warn。
func NewWorkerManager(path string, datacenterID int64, opts ...Option) (*WorkerManager, error) {
	opt := applyOptions(opts...)
	logger := opt.Logger.With(clog.String("component", "idgen.worker"))

	m := &WorkerManager{path: path, logger: logger, persistent: true}

	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		record, perr := parseWorkerRecord(string(content))
		if perr != nil {
			return nil, perr
		}
		if _, verr := NewIdentity(record.WorkerID, record.DatacenterID); verr != nil {
			return nil, verr
		}
		// 持久化的 last_timestamp 在未来说明系统时钟回拨过，
		// 生成路径会再次检测，这里只提示
		if now := time.Now().UnixMilli(); now < record.LastTimestamp {
			logger.Warn("persisted last_timestamp is ahead of system clock",
				clog.Int64("last_timestamp", record.LastTimestamp),
				clog.Int64("now", now),
			)
		}
		m.record = record
		logger.Info("worker identity loaded",
			clog.Int64("worker_id", record.WorkerID),
			clog.Int64("datacenter_id", record.DatacenterID),
		)

	case os.IsNotExist(err):
		workerID := allocateWorkerID(path)
		if _, verr := NewIdentity(workerID, datacenterID); verr != nil {
			return nil, verr
		}
		now := time.Now().UnixMilli()
		m.record = workerRecord{
			WorkerID:      workerID,
			DatacenterID:  datacenterID,
			LastTimestamp: now,
			CreationTime:  now,
		}
		logger.Info("worker identity allocated",
			clog.Int64("worker_id", workerID),
			clog.Int64("datacenter_id", datacenterID),
		)

	default:
		return nil, xerrors.Wrapf(err, "read worker file %s", path)
	}

	if err := m.save(); err != nil {
		// 不可写路径不阻断生成，降级为内存标识
		m.persistent = false
		logger.Warn("worker file not writable, identity is in-memory only",
			clog.String("path", path),
			clog.Error(err),
		)
	}

	return m, nil
}

// Identity 返回管理器持有的节点标识
func (m *WorkerManager) Identity() Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Identity{WorkerID: m.record.WorkerID, DatacenterID: m.record.DatacenterID}
}

// Checkpoint 将 lastTimestamp 写入记录文件（尽力而为）
//
// 写入失败只返回错误供调用方记录，不影响标识本身。
func (m *WorkerManager) Checkpoint(lastTimestamp int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if lastTimestamp > m.record.LastTimestamp {
		m.record.LastTimestamp = lastTimestamp
	}
	if !m.persistent {
		return nil
	}
	return m.save()
}

// StartCheckpoint 启动后台检查点协程
//
// 按 interval 周期把 source() 返回的 last_timestamp 落盘，
// 失败记 warn 不中断。返回的函数用于停止协程，可重复调用。
func (m *WorkerManager) StartCheckpoint(interval time.Duration, source func() int64) func() {
	if interval <= 0 {
		interval = time.Second
	}
	stopCh := make(chan struct{})
	done := make(chan struct{})
	var once sync.Once

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				// 退出前再落一次盘
				if err := m.Checkpoint(source()); err != nil {
					m.logger.Warn("final checkpoint failed", clog.Error(err))
				}
				return
			case <-ticker.C:
				if err := m.Checkpoint(source()); err != nil {
					m.logger.Warn("checkpoint failed", clog.Error(err))
				}
			}
		}
	}()

	return func() {
		once.Do(func() {
			close(stopCh)
			<-done
		})
	}
}

// save 写记录文件，所有路径上都保证关闭句柄（内部使用，调用方持锁）
func (m *WorkerManager) save() error {
	f, err := os.OpenFile(m.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return xerrors.Wrapf(err, "open worker file %s", m.path)
	}
	defer f.Close()

	if _, err := f.WriteString(m.record.fileContent()); err != nil {
		return xerrors.Wrapf(err, "write worker file %s", m.path)
	}
	return nil
}

// allocateWorkerID 选择新的 workerID（内部使用）
//
// 确定性策略：扫描同目录下同扩展名的记录文件，取 [0, 31] 内
// 最小的未占用值；没有任何分配历史时返回 0。单机多进程场景下
// 各进程使用同一目录即可避免冲突，跨机器唯一性由部署方负责。
func allocateWorkerID(path string) int64 {
	used := make(map[int64]bool)

	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	entries, err := os.ReadDir(dir)
	if err == nil {
		for _, entry := range entries {
			if entry.IsDir() || filepath.Ext(entry.Name()) != ext {
				continue
			}
			content, rerr := os.ReadFile(filepath.Join(dir, entry.Name()))
			if rerr != nil {
				continue
			}
			if record, perr := parseWorkerRecord(string(content)); perr == nil {
				used[record.WorkerID] = true
			}
		}
	}

	for id := int64(0); id <= MaxWorkerID; id++ {
		if !used[id] {
			return id
		}
	}
	// 全部占用时退回 0，由部署方保证不会出现
	return 0
}
