package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateExecutableRejections(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"empty", ""},
		{"too long", "/" + strings.Repeat("a", maxPathLen)},
		{"semicolon", "/bin/echo;rm -rf /"},
		{"pipe", "/bin/echo|cat"},
		{"ampersand", "/bin/echo&"},
		{"missing", "/no/such/file/anywhere"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateExecutable(tt.path)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestValidateExecutableRejectsDirectory(t *testing.T) {
	_, err := ValidateExecutable(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestValidateExecutableExecBit(t *testing.T) {
	dir := t.TempDir()

	executable := filepath.Join(dir, "runnable")
	require.NoError(t, os.WriteFile(executable, []byte("#!/bin/sh\n"), 0o755))
	execBit, err := ValidateExecutable(executable)
	require.NoError(t, err)
	assert.True(t, execBit)

	plain := filepath.Join(dir, "data.txt")
	require.NoError(t, os.WriteFile(plain, []byte("x"), 0o644))
	execBit, err = ValidateExecutable(plain)
	require.NoError(t, err, "missing exec bit is a warning, not an error")
	assert.False(t, execBit)
}
