package analysis

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michkochris/rune-analyze/internal/models"
)

func TestFrameworksFromManifest(t *testing.T) {
	dir := t.TempDir()
	manifest := `{"dependencies": {"react": "^18.0", "express": "^4.18"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(manifest), 0o644))
	app := filepath.Join(dir, "server")
	require.NoError(t, os.WriteFile(app, []byte("binary"), 0o755))

	res := &models.Result{}
	pass := &frameworksPass{rules: DefaultRules()}
	require.NoError(t, pass.Analyze(context.Background(), newTestTarget(app), res))

	assert.ElementsMatch(t, []string{"React", "Express.js"}, res.Deep.Language.Frameworks)
}

func TestFrameworksFromServerBasename(t *testing.T) {
	res := &models.Result{}
	pass := &frameworksPass{rules: DefaultRules()}
	require.NoError(t, pass.Analyze(context.Background(), newTestTarget("/usr/sbin/nginx"), res))

	assert.Contains(t, res.Deep.Language.Frameworks, "Nginx")
}

func TestFrameworksDeduplicated(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "requirements.txt"), []byte("django>=4\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"django": "x"}`), 0o644))
	app := filepath.Join(dir, "app")
	require.NoError(t, os.WriteFile(app, []byte("x"), 0o755))

	res := &models.Result{}
	pass := &frameworksPass{rules: DefaultRules()}
	require.NoError(t, pass.Analyze(context.Background(), newTestTarget(app), res))

	assert.Equal(t, []string{"Django"}, res.Deep.Language.Frameworks)
}

func TestFrameworksNoneFound(t *testing.T) {
	res := &models.Result{}
	pass := &frameworksPass{rules: DefaultRules()}
	require.NoError(t, pass.Analyze(context.Background(), newTestTarget("/bin/true"), res))

	assert.Empty(t, res.Deep.Language.Frameworks)
}
