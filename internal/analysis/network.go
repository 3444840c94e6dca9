package analysis

import (
	"context"
	"net/url"
	"sort"
	"strings"

	gnet "github.com/shirou/gopsutil/v3/net"

	"github.com/michkochris/rune-analyze/internal/checkpoint"
	"github.com/michkochris/rune-analyze/internal/models"
)

// networkPass infers network behavior from the command line (URLs and hosts
// passed as arguments), the tool's identity, and a best-effort snapshot of
// open connections. The snapshot races against short-lived children and is
// advisory only.
type networkPass struct {
	rules *Rules
}

func (p *networkPass) Name() string { return "network_behavior" }

func (p *networkPass) Analyze(ctx context.Context, t *Target, r *models.Result) error {
	nw := r.EnsureNetwork()

	p.scanArguments(t, nw)
	p.identifyTool(t, nw)
	p.snapshotConnections(ctx, r, nw)
	p.score(nw)

	if nw.Suspicious {
		t.checkpoint("NET: suspicious_activity", checkpoint.CategoryNet, nw.Summary)
	}
	return nil
}

func (p *networkPass) scanArguments(t *Target, nw *models.NetworkAnalysis) {
	hosts := make(map[string]bool)
	for _, arg := range t.Args {
		if !strings.Contains(arg, "://") {
			continue
		}
		u, err := url.Parse(arg)
		if err != nil || u.Host == "" {
			continue
		}
		host := u.Hostname()
		if !hosts[host] {
			hosts[host] = true
			nw.ExternalHosts = append(nw.ExternalHosts, host)
		}
		switch u.Scheme {
		case "http", "https":
			nw.HTTPRequests++
		}
		nw.DNSQueries++

		for marker, repo := range p.rules.RepositoryHosts {
			if strings.Contains(host, marker) {
				nw.PackageDownloads = true
				nw.RepositoryURLs = append(nw.RepositoryURLs, repo+": "+arg)
			}
		}
	}
	sort.Strings(nw.ExternalHosts)
}

func (p *networkPass) identifyTool(t *Target, nw *models.NetworkAnalysis) {
	base := strings.ToLower(t.Basename())
	for marker, summary := range p.rules.NetworkTools {
		if strings.Contains(base, marker) {
			nw.Summary = summary
			if strings.Contains(summary, "Package manager") {
				nw.PackageDownloads = true
			}
			return
		}
	}
}

func (p *networkPass) snapshotConnections(ctx context.Context, r *models.Result, nw *models.NetworkAnalysis) {
	if r.Execution.ChildPID == 0 {
		return
	}
	conns, err := gnet.ConnectionsPidWithContext(ctx, "inet", int32(r.Execution.ChildPID))
	if err != nil {
		return
	}
	for _, c := range conns {
		if c.Status == "ESTABLISHED" || c.Status == "SYN_SENT" {
			nw.ConnectionsDetected++
		}
	}
}

// score starts at 10 and deducts for observed activity. Uploads to
// non-repository hosts mark the run suspicious.
func (p *networkPass) score(nw *models.NetworkAnalysis) {
	score := 10
	if nw.ConnectionsDetected > 0 {
		score -= 2
	}
	if nw.HTTPRequests > 0 {
		score--
	}
	if len(nw.ExternalHosts) > len(nw.RepositoryURLs) && len(nw.ExternalHosts) > 0 && !nw.PackageDownloads {
		score -= 2
		nw.DataUpload = nw.HTTPRequests > 0
	}
	if nw.DataUpload && !nw.PackageDownloads {
		score -= 3
		nw.Suspicious = true
		if nw.Summary == "" {
			nw.Summary = "Unexpected upload activity to non-repository hosts"
		}
	}
	if score < 1 {
		score = 1
	}
	nw.NetworkScore = score
}
