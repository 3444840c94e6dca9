package config

import (
	"fmt"
	"os"
	"strings"
)

// maxPathLen mirrors the usual PATH_MAX on the platforms we run on.
const maxPathLen = 4096

// ValidateExecutable gates a target path before anything forks. It fails on
// empty or overlong paths, shell metacharacters, missing files, and anything
// that is not a regular file. A missing owner-execute bit is reported through
// execBit but is not fatal.
func ValidateExecutable(path string) (execBit bool, err error) {
	if path == "" {
		return false, fmt.Errorf("%w: empty executable path", ErrValidation)
	}
	if len(path) >= maxPathLen {
		return false, fmt.Errorf("%w: executable path too long (max %d characters)", ErrValidation, maxPathLen)
	}
	if strings.ContainsAny(path, ";|&") {
		return false, fmt.Errorf("%w: executable path contains shell metacharacters", ErrValidation)
	}

	st, statErr := os.Stat(path)
	if statErr != nil {
		return false, fmt.Errorf("%w: cannot access %q: %v", ErrValidation, path, statErr)
	}
	if !st.Mode().IsRegular() {
		return false, fmt.Errorf("%w: %q is not a regular file", ErrValidation, path)
	}

	return st.Mode().Perm()&0o100 != 0, nil
}
