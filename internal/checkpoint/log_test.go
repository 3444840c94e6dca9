package checkpoint

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogRecordsInit(t *testing.T) {
	log := NewLog(nil)

	require.Equal(t, 1, log.Count())
	cp, ok := log.Get(0)
	require.True(t, ok)
	assert.Equal(t, "SYSTEM: checkpoint_system_initialized", cp.ID)
	assert.Equal(t, CategoryLoad, cp.Category)
}

func TestAppendPreservesOrderAndOffsets(t *testing.T) {
	log := NewLog(nil)
	for i := 0; i < 10; i++ {
		log.Append(fmt.Sprintf("FUNC: step_%d", i), CategoryFunc, "")
	}

	snap := log.Snapshot()
	require.Len(t, snap, 11)
	for i := 1; i < len(snap); i++ {
		assert.GreaterOrEqual(t, snap[i].Offset, snap[i-1].Offset,
			"offsets must be monotonically non-decreasing")
	}
	assert.Equal(t, "FUNC: step_0", snap[1].ID)
	assert.Equal(t, "FUNC: step_9", snap[10].ID)
}

func TestAppendNormalization(t *testing.T) {
	log := NewLog(nil)

	log.Append("", "", "no id or category")
	cp, ok := log.Get(1)
	require.True(t, ok)
	assert.Equal(t, "UNKNOWN", cp.ID)
	assert.Equal(t, CategoryMisc, cp.Category)

	longID := strings.Repeat("x", 500)
	longCtx := strings.Repeat("y", 500)
	log.Append(longID, CategoryMisc, longCtx)
	cp, ok = log.Get(2)
	require.True(t, ok)
	assert.Len(t, cp.ID, maxIDLen)
	assert.Len(t, cp.Context, maxContextLen)
}

func TestOverflowEmitsOneMetaRecordThenDrops(t *testing.T) {
	log := NewLog(nil)
	for i := 0; i < MaxEntries+200; i++ {
		log.Append("FUNC: spam", CategoryFunc, "")
	}

	// Capacity plus exactly one overflow meta record.
	require.Equal(t, MaxEntries+1, log.Count())

	last, ok := log.Get(log.Count() - 1)
	require.True(t, ok)
	assert.Equal(t, "LOG: overflow", last.ID)

	overflows := 0
	for _, cp := range log.Snapshot() {
		if cp.ID == "LOG: overflow" {
			overflows++
		}
	}
	assert.Equal(t, 1, overflows)

	// Further appends change nothing.
	log.Append("FUNC: late", CategoryFunc, "")
	assert.Equal(t, MaxEntries+1, log.Count())
}

func TestCleanupRecordsShutdown(t *testing.T) {
	log := NewLog(nil)
	log.Cleanup()

	cp, ok := log.Get(log.Count() - 1)
	require.True(t, ok)
	assert.Equal(t, "SYSTEM: checkpoint_system_cleanup", cp.ID)
	assert.Equal(t, CategoryExit, cp.Category)
}

func TestGetOutOfRange(t *testing.T) {
	log := NewLog(nil)

	_, ok := log.Get(-1)
	assert.False(t, ok)
	_, ok = log.Get(log.Count())
	assert.False(t, ok)
}

func TestSnapshotIsACopy(t *testing.T) {
	log := NewLog(nil)
	snap := log.Snapshot()
	snap[0].ID = "mutated"

	cp, _ := log.Get(0)
	assert.Equal(t, "SYSTEM: checkpoint_system_initialized", cp.ID)
}

func TestConcurrentAppends(t *testing.T) {
	log := NewLog(nil)
	done := make(chan struct{})
	for g := 0; g < 8; g++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 50; i++ {
				log.Append("FUNC: concurrent", CategoryFunc, "")
			}
		}()
	}
	for g := 0; g < 8; g++ {
		<-done
	}
	assert.Equal(t, 1+8*50, log.Count())
}
