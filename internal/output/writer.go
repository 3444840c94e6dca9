// Package output renders finished runs. Writers share one Report envelope;
// a MultiWriter fans a run out to several sinks (human, JSON, CSV, SQLite).
package output

import (
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/host"

	"github.com/michkochris/rune-analyze/internal/checkpoint"
	"github.com/michkochris/rune-analyze/internal/models"
)

// Version is the analyzer version stamped into every report.
const Version = "1.0.0"

// HostInfo identifies the machine the run happened on.
type HostInfo struct {
	Hostname      string `json:"hostname"`
	OS            string `json:"os"`
	Platform      string `json:"platform,omitempty"`
	KernelVersion string `json:"kernel_version,omitempty"`
	Arch          string `json:"arch"`
	NumCPU        int    `json:"num_cpu"`
}

// Report is the envelope every writer receives: run identity, host
// context, the result proper, and the checkpoint timeline.
type Report struct {
	Version   string    `json:"version"`
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
	Host      HostInfo  `json:"host"`

	models.Result

	// Checkpoints is included in serialized output only at high verbosity;
	// the human writer always has access for its timeline section.
	Checkpoints []checkpoint.Checkpoint `json:"checkpoints,omitempty"`
}

// NewReport stamps identity and host context onto a finished result.
func NewReport(res *models.Result, cps []checkpoint.Checkpoint) *Report {
	r := &Report{
		Version:     Version,
		RunID:       uuid.NewString(),
		Timestamp:   time.Now(),
		Result:      *res,
		Checkpoints: cps,
		Host: HostInfo{
			Arch:   runtime.GOARCH,
			NumCPU: runtime.NumCPU(),
		},
	}
	if info, err := host.Info(); err == nil {
		r.Host.Hostname = info.Hostname
		r.Host.OS = info.OS
		r.Host.Platform = info.Platform + " " + info.PlatformVersion
		r.Host.KernelVersion = info.KernelVersion
	}
	return r
}

// Writer is the interface every report sink implements.
type Writer interface {
	WriteReport(r *Report) error
	Close() error
}
