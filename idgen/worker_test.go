package idgen

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ceyewan/snowgen/xerrors"
)

func TestParseWorkerRecord(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    workerRecord
		wantErr bool
	}{
		{
			name:    "plain four lines",
			content: "5\n3\n1640995200000\n1640995100000\n",
			want:    workerRecord{WorkerID: 5, DatacenterID: 3, LastTimestamp: 1640995200000, CreationTime: 1640995100000},
		},
		{
			name:    "comments and blank lines",
			content: "# worker record\n\n  5  \n3\n\n# timestamps\n1640995200000\n1640995100000\n",
			want:    workerRecord{WorkerID: 5, DatacenterID: 3, LastTimestamp: 1640995200000, CreationTime: 1640995100000},
		},
		{
			name:    "missing trailing newline",
			content: "0\n0\n100\n100",
			want:    workerRecord{WorkerID: 0, DatacenterID: 0, LastTimestamp: 100, CreationTime: 100},
		},
		{
			name:    "too few fields",
			content: "5\n3\n1640995200000\n",
			wantErr: true,
		},
		{
			name:    "non-numeric field",
			content: "5\nthree\n1640995200000\n1640995100000\n",
			wantErr: true,
		},
		{
			name:    "empty file",
			content: "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := parseWorkerRecord(tt.content)
			if tt.wantErr {
				if !xerrors.Is(err, ErrWorkerFileCorrupt) {
					t.Fatalf("Expected ErrWorkerFileCorrupt, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseWorkerRecord failed: %v", err)
			}
			if record != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, record)
			}
		})
	}
}

func TestResolveFromFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := ResolveFromFile(filepath.Join(dir, "absent.worker"))
		if !xerrors.Is(err, ErrWorkerFileNotFound) {
			t.Errorf("Expected ErrWorkerFileNotFound, got %v", err)
		}
	})

	t.Run("valid record", func(t *testing.T) {
		path := filepath.Join(dir, "valid.worker")
		if err := os.WriteFile(path, []byte("5\n3\n100\n100\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		identity, err := ResolveFromFile(path)
		if err != nil {
			t.Fatalf("ResolveFromFile failed: %v", err)
		}
		if identity.WorkerID != 5 || identity.DatacenterID != 3 {
			t.Errorf("Unexpected identity: %+v", identity)
		}
	})

	t.Run("out of range record", func(t *testing.T) {
		path := filepath.Join(dir, "range.worker")
		if err := os.WriteFile(path, []byte("99\n3\n100\n100\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := ResolveFromFile(path); !xerrors.Is(err, ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestWorkerManager_AllocateAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "node.worker")

	m1, err := NewWorkerManager(path, 3)
	if err != nil {
		t.Fatalf("NewWorkerManager failed: %v", err)
	}
	id1 := m1.Identity()
	if id1.WorkerID != 0 || id1.DatacenterID != 3 {
		t.Errorf("Expected fresh allocation worker=0 dc=3, got %+v", id1)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Record file not written: %v", err)
	}

	// 重启后沿用同一标识
	m2, err := NewWorkerManager(path, 3)
	if err != nil {
		t.Fatalf("Second NewWorkerManager failed: %v", err)
	}
	if m2.Identity() != id1 {
		t.Errorf("Identity changed across restart: %+v vs %+v", m2.Identity(), id1)
	}
}

func TestResolveOrAllocate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.worker")

	first, err := ResolveOrAllocate(path, 4)
	if err != nil {
		t.Fatalf("ResolveOrAllocate failed: %v", err)
	}
	second, err := ResolveOrAllocate(path, 4)
	if err != nil {
		t.Fatalf("Second ResolveOrAllocate failed: %v", err)
	}
	if first != second {
		t.Errorf("Identity not stable: %+v vs %+v", first, second)
	}
}

func TestWorkerManager_SmallestUnusedWorkerID(t *testing.T) {
	dir := t.TempDir()

	// 同目录同扩展名的既有记录占用 0 和 1
	for i, name := range []string{"a.worker", "b.worker"} {
		content := workerRecord{WorkerID: int64(i), DatacenterID: 0, LastTimestamp: 100, CreationTime: 100}.fileContent()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	// 不同扩展名的文件不参与分配
	if err := os.WriteFile(filepath.Join(dir, "c.txt"), []byte("2\n0\n100\n100\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := NewWorkerManager(filepath.Join(dir, "new.worker"), 0)
	if err != nil {
		t.Fatalf("NewWorkerManager failed: %v", err)
	}
	if got := m.Identity().WorkerID; got != 2 {
		t.Errorf("Expected smallest unused worker ID 2, got %d", got)
	}
}

func TestWorkerManager_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.worker")
	if err := os.WriteFile(path, []byte("garbage\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewWorkerManager(path, 0); !xerrors.Is(err, ErrWorkerFileCorrupt) {
		t.Errorf("Expected ErrWorkerFileCorrupt, got %v", err)
	}
}

func TestWorkerManager_UnwritablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no-such-dir", "node.worker")

	// 目录不存在时降级为内存标识，不报错
	m, err := NewWorkerManager(path, 1)
	if err != nil {
		t.Fatalf("NewWorkerManager failed: %v", err)
	}
	if m.persistent {
		t.Error("Expected in-memory downgrade")
	}
	if id := m.Identity(); id.WorkerID != 0 || id.DatacenterID != 1 {
		t.Errorf("Unexpected identity: %+v", id)
	}
	// 降级后检查点静默成功
	if err := m.Checkpoint(time.Now().UnixMilli()); err != nil {
		t.Errorf("Checkpoint after downgrade failed: %v", err)
	}
}

func TestWorkerManager_Checkpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.worker")

	m, err := NewWorkerManager(path, 2)
	if err != nil {
		t.Fatalf("NewWorkerManager failed: %v", err)
	}

	stamp := time.Now().UnixMilli() + 5000
	if err := m.Checkpoint(stamp); err != nil {
		t.Fatalf("Checkpoint failed: %v", err)
	}

	identity, err := ResolveFromFile(path)
	if err != nil {
		t.Fatalf("ResolveFromFile failed: %v", err)
	}
	if identity.WorkerID != 0 || identity.DatacenterID != 2 {
		t.Errorf("Unexpected identity: %+v", identity)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	record, err := parseWorkerRecord(string(content))
	if err != nil {
		t.Fatalf("parseWorkerRecord failed: %v", err)
	}
	if record.LastTimestamp != stamp {
		t.Errorf("Expected persisted last_timestamp %d, got %d", stamp, record.LastTimestamp)
	}

	// 更小的时间戳不回退已持久化的值
	if err := m.Checkpoint(stamp - 1000); err != nil {
		t.Fatalf("Checkpoint failed: %v", err)
	}
	content, _ = os.ReadFile(path)
	record, _ = parseWorkerRecord(string(content))
	if record.LastTimestamp != stamp {
		t.Errorf("last_timestamp regressed to %d", record.LastTimestamp)
	}
}

func TestWorkerManager_StartCheckpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.worker")

	m, err := NewWorkerManager(path, 0)
	if err != nil {
		t.Fatalf("NewWorkerManager failed: %v", err)
	}

	stamp := time.Now().UnixMilli() + 9000
	stop := m.StartCheckpoint(5*time.Millisecond, func() int64 { return stamp })
	time.Sleep(20 * time.Millisecond)
	stop()
	stop() // 重复停止应当无害

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	record, err := parseWorkerRecord(string(content))
	if err != nil {
		t.Fatalf("parseWorkerRecord failed: %v", err)
	}
	if record.LastTimestamp != stamp {
		t.Errorf("Expected checkpointed last_timestamp %d, got %d", stamp, record.LastTimestamp)
	}
}
