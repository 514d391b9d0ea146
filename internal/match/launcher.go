package match

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/codequest/arena/internal/engine"
)

// launcher starts built images as detached, network-attached containers.
type launcher struct {
	api engine.API
	cfg Config
}

// launchServer runs the server image on the session network with the
// well-known hostname. The replay volume and live-replay folder are emptied
// and mounted before start. In debug mode the fixed attach port is published.
func (l *launcher) launchServer(ctx context.Context, token, tag, network string) (engine.Container, error) {
	if err := l.api.EnsureEmptyVolume(ctx, l.cfg.ReplayVolume); err != nil {
		return engine.Container{}, &LaunchError{Role: RoleServer, Name: "server", Err: err}
	}
	liveReplay := filepath.Join(l.cfg.StagingDir, l.cfg.LiveReplayDir)
	if err := ensureEmptyDir(liveReplay); err != nil {
		return engine.Container{}, &LaunchError{Role: RoleServer, Name: "server", Err: err}
	}

	spec := engine.RunSpec{
		Image:    tag,
		Name:     serverContainerName(token),
		Network:  network,
		Hostname: l.cfg.ServerHostname,
		Mounts: []engine.Mount{
			{Source: l.cfg.ReplayVolume, Target: DefaultReplayMount, Volume: true},
			{Source: liveReplay, Target: DefaultLiveReplayMount},
		},
	}
	if l.cfg.Debug {
		spec.Ports = []engine.PortMapping{{Host: debugPort, Container: debugPort}}
	}

	c, err := l.api.RunDetached(ctx, spec)
	if err != nil {
		return engine.Container{}, &LaunchError{Role: RoleServer, Name: "server", Err: err}
	}
	return c, nil
}

// launchClient runs one client image. index is the client's roster position;
// in debug mode host port 6001+index is mapped to the fixed attach port.
func (l *launcher) launchClient(ctx context.Context, token, tag, network string, index int, spec ClientSpec) (engine.Container, error) {
	run := engine.RunSpec{
		Image:   tag,
		Name:    clientContainerName(index, token),
		Network: network,
		Memory:  l.cfg.ClientMemoryLimit,
	}
	if l.cfg.Debug {
		run.Ports = []engine.PortMapping{{Host: debugPort + 1 + index, Container: debugPort}}
	}

	c, err := l.api.RunDetached(ctx, run)
	if err != nil {
		return engine.Container{}, &LaunchError{Role: RoleClient, Name: spec.Name, Err: err}
	}
	return c, nil
}

// ensureEmptyDir recreates path as an empty directory.
func ensureEmptyDir(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("clear %s: %w", path, err)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	return nil
}
