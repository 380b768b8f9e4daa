package idgen

import (
	"strings"
	"testing"
	"time"

	"github.com/ceyewan/snowgen/xerrors"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	tests := []struct {
		name         string
		timestamp    int64
		datacenterID int64
		workerID     int64
		sequence     int64
	}{
		{"all zero fields at epoch", EpochMillis, 0, 0, 0},
		{"typical values", 1640995200000, 3, 5, 100},
		{"max datacenter", EpochMillis + 1000, MaxDatacenterID, 0, 0},
		{"max worker", EpochMillis + 1000, 0, MaxWorkerID, 0},
		{"max sequence", EpochMillis + 1000, 0, 0, MaxSequence},
		{"all max fields", EpochMillis + MaxTimestamp, MaxDatacenterID, MaxWorkerID, MaxSequence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := Encode(tt.timestamp, tt.datacenterID, tt.workerID, tt.sequence)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if id < 0 {
				t.Errorf("Sign bit must stay 0, got negative id %d", id)
			}

			parsed := Decode(id)
			if parsed.Timestamp != tt.timestamp {
				t.Errorf("Timestamp: expected %d, got %d", tt.timestamp, parsed.Timestamp)
			}
			if parsed.DatacenterID != tt.datacenterID {
				t.Errorf("DatacenterID: expected %d, got %d", tt.datacenterID, parsed.DatacenterID)
			}
			if parsed.WorkerID != tt.workerID {
				t.Errorf("WorkerID: expected %d, got %d", tt.workerID, parsed.WorkerID)
			}
			if parsed.Sequence != tt.sequence {
				t.Errorf("Sequence: expected %d, got %d", tt.sequence, parsed.Sequence)
			}
			if parsed.ID != id {
				t.Errorf("ID: expected %d, got %d", id, parsed.ID)
			}
		})
	}
}

func TestEncode_Validation(t *testing.T) {
	tests := []struct {
		name         string
		timestamp    int64
		datacenterID int64
		workerID     int64
		sequence     int64
		wantErr      error
	}{
		{"timestamp before epoch", EpochMillis - 1, 0, 0, 0, ErrTimestampOverflow},
		{"timestamp beyond 41 bits", EpochMillis + MaxTimestamp + 1, 0, 0, 0, ErrTimestampOverflow},
		{"datacenter too large", EpochMillis, 32, 0, 0, ErrInvalidInput},
		{"datacenter negative", EpochMillis, -1, 0, 0, ErrInvalidInput},
		{"worker too large", EpochMillis, 0, 32, 0, ErrInvalidInput},
		{"worker negative", EpochMillis, 0, -1, 0, ErrInvalidInput},
		{"sequence too large", EpochMillis, 0, 0, 4096, ErrInvalidInput},
		{"sequence negative", EpochMillis, 0, 0, -1, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.timestamp, tt.datacenterID, tt.workerID, tt.sequence)
			if err == nil {
				t.Fatal("Expected error but got none")
			}
			if !xerrors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDecode_AnyInput(t *testing.T) {
	// 解码对任意位模式都成功
	for _, id := range []int64{0, 1, -1, 1<<63 - 1, 4242424242424242} {
		parsed := Decode(id)
		if parsed.ID != id {
			t.Errorf("Decode(%d).ID = %d", id, parsed.ID)
		}
		if parsed.Sequence < 0 || parsed.Sequence > MaxSequence {
			t.Errorf("Decode(%d) sequence out of range: %d", id, parsed.Sequence)
		}
		if parsed.WorkerID < 0 || parsed.WorkerID > MaxWorkerID {
			t.Errorf("Decode(%d) worker out of range: %d", id, parsed.WorkerID)
		}
	}
}

func TestEncode_OrderingFollowsTime(t *testing.T) {
	earlier, err := Encode(EpochMillis+1000, MaxDatacenterID, MaxWorkerID, MaxSequence)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	later, err := Encode(EpochMillis+1001, 0, 0, 0)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if earlier >= later {
		t.Errorf("Later millisecond must dominate all lower fields: %d >= %d", earlier, later)
	}
}

func TestParsedID_Formatting(t *testing.T) {
	id, err := Encode(1640995200000, 3, 5, 100)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	parsed := Decode(id)

	if !strings.HasPrefix(parsed.Hex(), "0x") || len(parsed.Hex()) != 18 {
		t.Errorf("Unexpected hex format: %s", parsed.Hex())
	}
	if len(parsed.Binary()) != 64 {
		t.Errorf("Expected 64 binary digits, got %d", len(parsed.Binary()))
	}
	if got := parsed.Time(); !got.Equal(time.UnixMilli(1640995200000)) {
		t.Errorf("Unexpected time: %v", got)
	}
	for _, want := range []string{"dc=3", "worker=5", "seq=100"} {
		if !strings.Contains(parsed.String(), want) {
			t.Errorf("String() missing %q: %s", want, parsed.String())
		}
	}
}
