package analysis

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/michkochris/rune-analyze/internal/models"
)

// maxMagicScan bounds how much of the binary the content sniffer reads.
const maxMagicScan = 4 << 20

type langSignature struct {
	language  string
	manager   string
	managed   bool
	unsafe    bool
	versioner []string
}

var langSignatures = map[string]langSignature{
	"C":          {language: "C", manager: "system (apt/yum)", unsafe: true},
	"C++":        {language: "C++", manager: "system (apt/yum)", unsafe: true},
	"Rust":       {language: "Rust", manager: "Cargo", versioner: []string{"rustc", "--version"}},
	"Go":         {language: "Go", manager: "Go modules", managed: true, versioner: []string{"go", "version"}},
	"Python":     {language: "Python", manager: "pip", managed: true, versioner: []string{"python3", "--version"}},
	"JavaScript": {language: "JavaScript", manager: "npm", managed: true, versioner: []string{"node", "--version"}},
	"Java":       {language: "Java", manager: "Maven/Gradle", managed: true, versioner: []string{"java", "-version"}},
	"Ruby":       {language: "Ruby", manager: "gem", managed: true, versioner: []string{"ruby", "--version"}},
	"Perl":       {language: "Perl", manager: "CPAN", managed: true, versioner: []string{"perl", "--version"}},
	"Shell":      {language: "Shell", manager: "system (apt/yum)"},
}

// manifestLanguages maps sibling manifest files to the language they imply.
var manifestLanguages = []struct {
	file     string
	language string
}{
	{"Cargo.toml", "Rust"},
	{"go.mod", "Go"},
	{"pom.xml", "Java"},
	{"build.gradle", "Java"},
	{"package.json", "JavaScript"},
	{"requirements.txt", "Python"},
	{"manage.py", "Python"},
	{"Gemfile", "Ruby"},
}

// languagePass identifies the implementation language by basename, shebang,
// embedded runtime strings, and sibling manifest files, in that order of
// preference. A version probe runs for recognized runtimes.
type languagePass struct{}

func (p *languagePass) Name() string { return "language_detection" }

func (p *languagePass) Analyze(ctx context.Context, t *Target, r *models.Result) error {
	lang := r.EnsureLanguage()

	name := detectByBasename(t.Basename())
	if name == "" {
		name = detectByShebang(t.Path)
	}
	if name == "" {
		name = detectByContent(t.Path)
	}
	if name == "" {
		name = detectByManifest(t.Dir())
	}
	if name == "" {
		return nil
	}

	sig := langSignatures[name]
	lang.DetectedLanguage = name
	lang.DependencyManager = sig.manager
	lang.ManagedMemory = sig.managed
	lang.UnsafeCode = sig.unsafe
	if len(sig.versioner) > 0 {
		if out, err := t.runCommand(ctx, sig.versioner[0], sig.versioner[1:]...); err == nil {
			lang.RuntimeVersion = firstLine(out)
		}
	}
	return nil
}

func detectByBasename(base string) string {
	switch {
	case strings.Contains(base, "python"):
		return "Python"
	case strings.Contains(base, "node"):
		return "JavaScript"
	case strings.Contains(base, "java"):
		return "Java"
	case strings.Contains(base, "ruby"):
		return "Ruby"
	case strings.Contains(base, "perl"):
		return "Perl"
	case strings.HasSuffix(base, ".sh") || base == "bash" || base == "sh":
		return "Shell"
	case strings.HasSuffix(base, ".py"):
		return "Python"
	case strings.HasSuffix(base, ".js"):
		return "JavaScript"
	case strings.HasSuffix(base, ".rb"):
		return "Ruby"
	case strings.HasSuffix(base, ".pl"):
		return "Perl"
	}
	return ""
}

func detectByShebang(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	buf := make([]byte, 128)
	n, _ := f.Read(buf)
	line := string(buf[:n])
	if !strings.HasPrefix(line, "#!") {
		return ""
	}
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	switch {
	case strings.Contains(line, "python"):
		return "Python"
	case strings.Contains(line, "node"):
		return "JavaScript"
	case strings.Contains(line, "ruby"):
		return "Ruby"
	case strings.Contains(line, "perl"):
		return "Perl"
	case strings.Contains(line, "sh"):
		return "Shell"
	}
	return ""
}

// contentMarkers are runtime strings baked into compiled binaries. Order
// matters: Rust and Go binaries also embed libc symbols, so they come first.
var contentMarkers = []struct {
	marker   string
	language string
}{
	{"rust_panic", "Rust"},
	{"rust_begin_unwind", "Rust"},
	{"go1.", "Go"},
	{"golang", "Go"},
	{"runtime.goexit", "Go"},
	{"GCC: (", "C"},
	{"libstdc++", "C++"},
	{"__cxa_", "C++"},
	{"glibc", "C"},
	{"libc.so", "C"},
}

func detectByContent(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxMagicScan))
	if err != nil {
		return ""
	}
	for _, m := range contentMarkers {
		if bytes.Contains(data, []byte(m.marker)) {
			return m.language
		}
	}
	return ""
}

func detectByManifest(dir string) string {
	for _, m := range manifestLanguages {
		if _, err := os.Stat(filepath.Join(dir, m.file)); err == nil {
			return m.language
		}
	}
	return ""
}

func firstLine(out []byte) string {
	s := strings.TrimSpace(string(out))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
