package analysis

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/michkochris/rune-analyze/internal/models"
)

// manifestFiles are the dependency manifests scanned for framework markers.
var manifestFiles = []string{
	"package.json", "requirements.txt", "pom.xml", "build.gradle",
	"Cargo.toml", "Gemfile", "go.mod",
}

// frameworksPass looks for framework markers in sibling manifests and in
// the target's own basename (servers and infrastructure tools identify
// themselves by name).
type frameworksPass struct {
	rules *Rules
}

func (p *frameworksPass) Name() string { return "framework_detection" }

func (p *frameworksPass) Analyze(_ context.Context, t *Target, r *models.Result) error {
	lang := r.EnsureLanguage()
	seen := make(map[string]bool)
	add := func(fw string) {
		if !seen[fw] {
			seen[fw] = true
			lang.Frameworks = append(lang.Frameworks, fw)
		}
	}

	for _, manifest := range manifestFiles {
		data, err := os.ReadFile(filepath.Join(t.Dir(), manifest))
		if err != nil {
			continue
		}
		content := strings.ToLower(string(data))
		for marker, fw := range p.rules.FrameworkMarkers {
			if strings.Contains(content, marker) {
				add(fw)
			}
		}
	}

	base := strings.ToLower(t.Basename())
	for marker, fw := range p.rules.ServerBasenames {
		if strings.Contains(base, marker) {
			add(fw)
		}
	}

	// Map iteration order is random; keep reports stable.
	sort.Strings(lang.Frameworks)
	return nil
}
