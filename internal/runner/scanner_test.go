package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScannerCountsTokens(t *testing.T) {
	s := NewScanner()
	s.Scan(StreamStdout, []byte("verbose startup\nERROR: disk full\nwarning: low space\n"))

	verbose, errors, warnings := s.Counts()
	assert.Equal(t, 1, verbose)
	assert.Equal(t, 1, errors)
	assert.Equal(t, 1, warnings)
}

func TestScannerArrowsCountAsVerbose(t *testing.T) {
	s := NewScanner()
	s.Scan(StreamStdout, []byte("==> building\n<== done\n"))

	verbose, _, _ := s.Counts()
	assert.Equal(t, 2, verbose)
}

func TestScannerTokenSplitAcrossChunks(t *testing.T) {
	s := NewScanner()
	s.Scan(StreamStderr, []byte("fatal err"))
	s.Scan(StreamStderr, []byte("or occurred"))

	_, errors, _ := s.Counts()
	assert.Equal(t, 1, errors, "token split across reads counted exactly once")
}

func TestScannerNoDoubleCountInCarry(t *testing.T) {
	s := NewScanner()
	s.Scan(StreamStdout, []byte("error"))
	s.Scan(StreamStdout, []byte(" and more text"))

	_, errors, _ := s.Counts()
	assert.Equal(t, 1, errors, "carried token must not be recounted")
}

func TestScannerStreamsCarryIndependently(t *testing.T) {
	s := NewScanner()
	s.Scan(StreamStdout, []byte("warn"))
	s.Scan(StreamStderr, []byte("ing"))

	_, _, warnings := s.Counts()
	assert.Zero(t, warnings, "fragments on different streams never join")
}

func TestScannerMultipleOccurrences(t *testing.T) {
	s := NewScanner()
	s.Scan(StreamStdout, []byte("error error ERROR"))

	_, errors, _ := s.Counts()
	assert.Equal(t, 3, errors)
}

func TestScannerEmptyChunk(t *testing.T) {
	s := NewScanner()
	s.Scan(StreamStdout, nil)
	s.Scan(StreamStdout, []byte{})

	verbose, errors, warnings := s.Counts()
	assert.Zero(t, verbose+errors+warnings)
}
