package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeKnownCodes(t *testing.T) {
	tests := []struct {
		code           int
		tag            string
		score          int
		classification string
	}{
		{0, TagSuccess, 9, "execution_success"},
		{1, TagGenericError, 7, "standard_error"},
		{2, TagGenericError, 7, "standard_error"},
		{126, TagNotExecutable, 0, ""},
		{127, TagNotFound, 0, ""},
		{130, TagInterrupted, 0, ""},
		{132, TagCodeCorruption, 2, "code_corruption"},
		{133, TagDebugTrap, 6, "debug_trap"},
		{134, TagHeapCorruption, 1, "critical_heap_corruption"},
		{135, TagMemoryAlignment, 2, "memory_alignment_error"},
		{136, TagArithmeticOverflow, 2, "arithmetic_error"},
		{137, TagResourceExhaustion, 4, "resource_exhaustion"},
		{139, TagMemoryCorruption, 1, "critical_memory_corruption"},
		{140, TagSignalOther, 0, ""},
		{141, TagSignalOther, 0, ""},
		{142, TagSignalOther, 0, ""},
	}
	for _, tt := range tests {
		got := Decode(tt.code)
		assert.Equal(t, tt.code, got.Code)
		assert.Equal(t, tt.tag, got.Tag, "code %d", tt.code)
		assert.Equal(t, tt.score, got.Impact.Score, "code %d score", tt.code)
		assert.Equal(t, tt.classification, got.Impact.Classification, "code %d class", tt.code)
		assert.NotEmpty(t, got.Meaning)
	}
}

func TestDecodeSignalRangeAndUnknown(t *testing.T) {
	assert.Equal(t, TagSignalOther, Decode(150).Tag)
	assert.Equal(t, TagSignalOther, Decode(191).Tag)
	assert.Equal(t, TagUnknown, Decode(192).Tag)
	assert.Equal(t, TagUnknown, Decode(77).Tag)
	assert.Equal(t, TagUnknown, Decode(-1).Tag)
}

func TestDecodeSegfaultImpact(t *testing.T) {
	imp := Decode(139).Impact
	assert.Equal(t, 5, imp.BufferOverflow)
	assert.Equal(t, 5, imp.UseAfterFree)
	assert.Equal(t, 5, imp.NullPointer)
}

func TestDecodeAbortImpact(t *testing.T) {
	imp := Decode(134).Impact
	assert.Equal(t, 5, imp.UseAfterFree)
	assert.Equal(t, 4, imp.MemoryLeak)
}
