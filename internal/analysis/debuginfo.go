package analysis

import (
	"bufio"
	"bytes"
	"context"
	"debug/elf"
	"strings"

	"github.com/michkochris/rune-analyze/internal/models"
)

// debugInfoPass detects DWARF debug info and, when present, pulls the
// compilation unit's source file name out of readelf.
type debugInfoPass struct{}

func (p *debugInfoPass) Name() string { return "debug_info" }

func (p *debugInfoPass) Analyze(ctx context.Context, t *Target, r *models.Result) error {
	sec := r.EnsureSecurity()

	out, err := t.runCommand(ctx, "objdump", "-t", t.Path)
	if err == nil {
		sec.HasDebugSymbols = bytes.Contains(out, []byte(".debug_")) ||
			bytes.Contains(out, []byte("debug"))
	} else {
		sec.HasDebugSymbols = elfHasDebug(t.Path)
	}
	if !sec.HasDebugSymbols {
		return nil
	}

	info, err := t.runCommand(ctx, "readelf", "--debug-dump=info", t.Path)
	if err != nil {
		return nil
	}
	if src := firstCompUnitName(info); src != "" {
		sec.SourceFile = src
	}
	return nil
}

// firstCompUnitName returns the first DW_AT_name value, which for the top
// level compilation unit is the original source file.
func firstCompUnitName(dump []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(dump))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if !strings.Contains(line, "DW_AT_name") {
			continue
		}
		// Formats vary: the name is the last colon-separated field.
		if i := strings.LastIndexByte(line, ':'); i >= 0 && i+1 < len(line) {
			return strings.TrimSpace(line[i+1:])
		}
	}
	return ""
}

func elfHasDebug(path string) bool {
	f, err := elf.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	for _, s := range f.Sections {
		if strings.HasPrefix(s.Name, ".debug_") {
			return true
		}
	}
	return false
}
