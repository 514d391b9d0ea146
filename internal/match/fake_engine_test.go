package match

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/codequest/arena/internal/engine"
)

// fakeEngine implements engine.API in memory, recording every call so tests
// can assert on the resource census. Failure injection is by name substring.
type fakeEngine struct {
	mu sync.Mutex

	networks          []string
	builds            []engine.BuildSpec
	dockerfiles       map[string]string // tag -> Dockerfile content at build time
	argsFiles         map[string]string // tag -> sidecar args file content at build time
	runs              []engine.RunSpec
	execs             [][]string
	volumes           []string
	removedContainers []string
	removedImages     []string
	removedNetworks   []string

	logs map[string][]byte

	failBuildTag   string // fail builds whose tag contains this substring
	failRunName    string // fail runs whose container name contains this substring
	failExec       bool
	failRemoveName string // container removals matching this fail with a generic error
	notFound       map[string]bool

	states   []engine.State // successive ContainerState results; last repeats
	stateIdx int
	polls    int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		dockerfiles: make(map[string]string),
		argsFiles:   make(map[string]string),
		logs:        make(map[string][]byte),
		notFound:    make(map[string]bool),
	}
}

func (f *fakeEngine) Ping(context.Context) error { return nil }

func (f *fakeEngine) CreateNetwork(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.networks = append(f.networks, name)
	return nil
}

func (f *fakeEngine) RemoveNetwork(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.notFound[name] {
		return engine.ErrNotFound
	}
	f.removedNetworks = append(f.removedNetworks, name)
	return nil
}

func (f *fakeEngine) BuildImage(_ context.Context, spec engine.BuildSpec) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builds = append(f.builds, spec)
	// Capture the transient artifacts while they still exist.
	if b, err := os.ReadFile(spec.Dockerfile); err == nil {
		f.dockerfiles[spec.Tag] = string(b)
		for _, line := range strings.Split(string(b), "\n") {
			if rest, ok := strings.CutPrefix(line, "COPY sidecar-args-"); ok {
				name, _, _ := strings.Cut(rest, " ")
				if args, err := os.ReadFile(spec.ContextDir + "/sidecar-args-" + name); err == nil {
					f.argsFiles[spec.Tag] = string(args)
				}
			}
		}
	}
	if f.failBuildTag != "" && strings.Contains(spec.Tag, f.failBuildTag) {
		return fmt.Errorf("build daemon rejected %s", spec.Tag)
	}
	return nil
}

func (f *fakeEngine) RemoveImage(_ context.Context, tag string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.notFound[tag] {
		return engine.ErrNotFound
	}
	f.removedImages = append(f.removedImages, tag)
	return nil
}

func (f *fakeEngine) RunDetached(_ context.Context, spec engine.RunSpec) (engine.Container, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRunName != "" && strings.Contains(spec.Name, f.failRunName) {
		return engine.Container{}, fmt.Errorf("port already allocated for %s", spec.Name)
	}
	f.runs = append(f.runs, spec)
	return engine.Container{Name: spec.Name, ID: fmt.Sprintf("id-%d", len(f.runs))}, nil
}

func (f *fakeEngine) ContainerState(_ context.Context, _ string) (engine.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if len(f.states) == 0 {
		return engine.StateExited, nil
	}
	state := f.states[f.stateIdx]
	if f.stateIdx < len(f.states)-1 {
		f.stateIdx++
	}
	return state, nil
}

func (f *fakeEngine) ContainerLogs(_ context.Context, name string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if out, ok := f.logs[name]; ok {
		return out, nil
	}
	return []byte("STARTED-fake\n"), nil
}

func (f *fakeEngine) ExecDetached(_ context.Context, name string, cmd []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failExec {
		return fmt.Errorf("container %s is not running", name)
	}
	f.execs = append(f.execs, append([]string{name}, cmd...))
	return nil
}

func (f *fakeEngine) RemoveContainer(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.notFound[name] {
		return engine.ErrNotFound
	}
	if f.failRemoveName != "" && strings.Contains(name, f.failRemoveName) {
		return fmt.Errorf("cannot remove %s: device busy", name)
	}
	f.removedContainers = append(f.removedContainers, name)
	return nil
}

func (f *fakeEngine) EnsureEmptyVolume(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volumes = append(f.volumes, name)
	return nil
}
