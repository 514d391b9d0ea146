package engine

import (
	"context"
	"errors"
)

// State is a container lifecycle state as reported by the engine.
type State string

const (
	StateCreated State = "created"
	StateRunning State = "running"
	StateExited  State = "exited"
	StateDead    State = "dead"
)

// Running reports whether the state is the live, non-terminal state.
func (s State) Running() bool {
	return s == StateRunning
}

var (
	// ErrEngineUnavailable indicates the Docker daemon cannot be contacted.
	ErrEngineUnavailable = errors.New("docker engine unavailable")

	// ErrNotFound indicates the named container, image, network, or volume
	// does not exist. Removal paths treat this as success.
	ErrNotFound = errors.New("not found")
)

// IsNotFound reports whether err indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// PortMapping publishes a container port on the host.
type PortMapping struct {
	Host      int
	Container int
}

// Mount attaches either a named volume or a host directory to a container.
type Mount struct {
	Source string // volume name or absolute host path
	Target string // absolute path inside the container
	Volume bool   // true for a named volume, false for a bind mount
}

// BuildSpec describes one image build.
type BuildSpec struct {
	Tag        string
	ContextDir string
	Dockerfile string // path to the Dockerfile, may be outside ContextDir
}

// RunSpec describes one detached container launch.
type RunSpec struct {
	Image    string
	Name     string
	Network  string
	Hostname string
	Memory   string // engine memory limit syntax, e.g. "1g"; empty for no limit
	Ports    []PortMapping
	Mounts   []Mount
}

// Container identifies a launched container.
type Container struct {
	Name string
	ID   string
}

// API is the surface of the container engine the orchestrator depends on.
// All methods block until the engine call completes and honor ctx cancellation.
type API interface {
	// Ping verifies the engine daemon is reachable.
	// Returns ErrEngineUnavailable if it is not.
	Ping(ctx context.Context) error

	CreateNetwork(ctx context.Context, name string) error
	// RemoveNetwork fails while containers are still attached to the network.
	RemoveNetwork(ctx context.Context, name string) error

	BuildImage(ctx context.Context, spec BuildSpec) error
	// RemoveImage force-removes the tag. Returns ErrNotFound for a missing image.
	RemoveImage(ctx context.Context, tag string) error

	RunDetached(ctx context.Context, spec RunSpec) (Container, error)
	// ContainerState returns the current lifecycle state of a container.
	ContainerState(ctx context.Context, name string) (State, error)
	// ContainerLogs returns the accumulated combined output of a container.
	ContainerLogs(ctx context.Context, name string) ([]byte, error)
	// ExecDetached starts cmd inside a running container without waiting for it.
	ExecDetached(ctx context.Context, name string, cmd []string) error
	// RemoveContainer force-removes a container. Returns ErrNotFound if it is
	// already gone.
	RemoveContainer(ctx context.Context, name string) error

	// EnsureEmptyVolume removes any existing volume with the given name and
	// creates a fresh one.
	EnsureEmptyVolume(ctx context.Context, name string) error
}
