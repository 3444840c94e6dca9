package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michkochris/rune-analyze/internal/models"
)

func TestNetworkPassRepositoryURLs(t *testing.T) {
	target := newTestTarget("/usr/bin/wget", "https://pypi.org/packages/foo.tar.gz")

	res := &models.Result{}
	pass := &networkPass{rules: DefaultRules()}
	require.NoError(t, pass.Analyze(context.Background(), target, res))

	nw := res.Deep.Network
	require.NotNil(t, nw)
	assert.Equal(t, []string{"pypi.org"}, nw.ExternalHosts)
	assert.Equal(t, 1, nw.HTTPRequests)
	assert.True(t, nw.PackageDownloads)
	require.Len(t, nw.RepositoryURLs, 1)
	assert.Contains(t, nw.RepositoryURLs[0], "PyPI")
	assert.Contains(t, nw.Summary, "Download tool")
	assert.False(t, nw.Suspicious)
}

func TestNetworkPassUnknownHostUpload(t *testing.T) {
	target := newTestTarget("/tmp/exfil", "https://shady.example.net/upload")

	res := &models.Result{}
	pass := &networkPass{rules: DefaultRules()}
	require.NoError(t, pass.Analyze(context.Background(), target, res))

	nw := res.Deep.Network
	assert.Equal(t, []string{"shady.example.net"}, nw.ExternalHosts)
	assert.True(t, nw.Suspicious)
	assert.Less(t, nw.NetworkScore, 10)
	assert.NotEmpty(t, nw.Summary)
}

func TestNetworkPassNoArguments(t *testing.T) {
	target := newTestTarget("/bin/true")

	res := &models.Result{}
	pass := &networkPass{rules: DefaultRules()}
	require.NoError(t, pass.Analyze(context.Background(), target, res))

	nw := res.Deep.Network
	assert.Empty(t, nw.ExternalHosts)
	assert.Equal(t, 10, nw.NetworkScore)
	assert.False(t, nw.Suspicious)
}

func TestNetworkPassPackageManagerByName(t *testing.T) {
	target := newTestTarget("/usr/bin/pip3")

	res := &models.Result{}
	pass := &networkPass{rules: DefaultRules()}
	require.NoError(t, pass.Analyze(context.Background(), target, res))

	nw := res.Deep.Network
	assert.True(t, nw.PackageDownloads)
	assert.Contains(t, nw.Summary, "Package manager")
}
