package analysis

import (
	"bufio"
	"bytes"
	"context"
	"debug/elf"
	"strings"

	"github.com/michkochris/rune-analyze/internal/checkpoint"
	"github.com/michkochris/rune-analyze/internal/models"
)

const maxVulnerableFunctions = 10

// symbolsPass lists dynamic symbols and records any that appear on the
// dangerous-function list. nm output is preferred; when nm is missing the
// pass falls back to reading the ELF symbol tables directly.
type symbolsPass struct {
	rules *Rules
}

func (p *symbolsPass) Name() string { return "dangerous_symbols" }

func (p *symbolsPass) Analyze(ctx context.Context, t *Target, r *models.Result) error {
	names, err := p.listSymbols(ctx, t)
	if err != nil {
		return err
	}

	sec := r.EnsureSecurity()
	seen := make(map[string]bool)
	for _, name := range names {
		for _, danger := range p.rules.DangerousSymbols {
			if name == danger && !seen[name] {
				seen[name] = true
				sec.DangerousFunctionCount++
				if len(sec.VulnerableFunctions) < maxVulnerableFunctions {
					sec.VulnerableFunctions = append(sec.VulnerableFunctions, name)
				}
			}
		}
	}
	if sec.DangerousFunctionCount > 0 {
		t.checkpoint("SEC: dangerous_functions_found", checkpoint.CategorySec,
			strings.Join(sec.VulnerableFunctions, ","))
		lower(&sec.OverallSecurityScore, 10-sec.DangerousFunctionCount)
		clampRisks(sec)
	}
	return nil
}

func (p *symbolsPass) listSymbols(ctx context.Context, t *Target) ([]string, error) {
	out, err := t.runCommand(ctx, "nm", "-D", t.Path)
	if err != nil {
		out, err = t.runCommand(ctx, "nm", t.Path)
	}
	if err == nil {
		return parseNM(out), nil
	}
	return elfSymbols(t.Path)
}

// parseNM extracts symbol names from "address type name" lines. Undefined
// symbols have no address column, so the name is always the last field.
func parseNM(out []byte) []string {
	var names []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		name := fields[len(fields)-1]
		// Versioned symbols look like printf@GLIBC_2.2.5.
		if at := strings.IndexByte(name, '@'); at > 0 {
			name = name[:at]
		}
		names = append(names, name)
	}
	return names
}

func elfSymbols(path string) ([]string, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var names []string
	if syms, err := f.DynamicSymbols(); err == nil {
		for _, s := range syms {
			names = append(names, s.Name)
		}
	}
	if syms, err := f.Symbols(); err == nil {
		for _, s := range syms {
			names = append(names, s.Name)
		}
	}
	return names, nil
}
