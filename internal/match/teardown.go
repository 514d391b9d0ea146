package match

import (
	"context"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/codequest/arena/internal/engine"
)

// resources is the set of engine resources a session has created so far.
// Teardown works off whatever subset exists at the time it runs.
type resources struct {
	network string
	server  engine.Container
	clients []engine.Container
	images  []string
}

func (r *resources) containers() []engine.Container {
	out := make([]engine.Container, 0, len(r.clients)+1)
	if r.server.Name != "" {
		out = append(out, r.server)
	}
	return append(out, r.clients...)
}

// TeardownReport accumulates every per-resource cleanup failure. Teardown is
// best-effort by definition: one leaked resource must not prevent reclaiming
// the rest, so nothing in it escalates to a session-level error.
type TeardownReport struct {
	LogDir string
	Errors []*TeardownError
}

// OK reports whether every resource was reclaimed (or was already gone).
func (r *TeardownReport) OK() bool {
	return len(r.Errors) == 0
}

func (r *TeardownReport) record(resource string, err error) {
	r.Errors = append(r.Errors, &TeardownError{Resource: resource, Err: err})
}

// reaper removes everything a session created: logs first, then containers,
// then images, then the network (which only detaches cleanly once all
// containers are gone).
type reaper struct {
	api engine.API
	cfg Config
	log *log.Logger
}

func (t *reaper) run(ctx context.Context, logDir string, res *resources) *TeardownReport {
	report := &TeardownReport{}

	if t.cfg.RetainLogs {
		if err := ensureEmptyDir(logDir); err != nil {
			t.log.Warn("log directory unavailable, skipping log capture", "dir", logDir, "error", err)
			report.record("log directory "+logDir, err)
		} else {
			report.LogDir = logDir
		}
	}

	for _, c := range res.containers() {
		if report.LogDir != "" {
			t.captureLogs(ctx, report, c)
		}
		if err := t.api.RemoveContainer(ctx, c.Name); err != nil && !engine.IsNotFound(err) {
			t.log.Warn("failed to remove container", "container", c.Name, "error", err)
			report.record("container "+c.Name, err)
		}
	}

	for _, tag := range res.images {
		if err := t.api.RemoveImage(ctx, tag); err != nil && !engine.IsNotFound(err) {
			t.log.Warn("failed to remove image", "image", tag, "error", err)
			report.record("image "+tag, err)
		}
	}

	if res.network != "" {
		if err := t.api.RemoveNetwork(ctx, res.network); err != nil && !engine.IsNotFound(err) {
			t.log.Warn("failed to remove network", "network", res.network, "error", err)
			report.record("network "+res.network, err)
		}
	}

	return report
}

func (t *reaper) captureLogs(ctx context.Context, report *TeardownReport, c engine.Container) {
	out, err := t.api.ContainerLogs(ctx, c.Name)
	if err != nil {
		t.log.Warn("failed to capture container logs", "container", c.Name, "error", err)
		report.record("logs for "+c.Name, err)
		return
	}
	path := filepath.Join(report.LogDir, c.Name)
	if err := os.WriteFile(path, out, 0o644); err != nil {
		t.log.Warn("failed to write container log file", "container", c.Name, "path", path, "error", err)
		report.record("log file "+path, err)
	}
}
