package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// CLI implements API by shelling out to the docker binary.
type CLI struct {
	// Binary overrides the docker executable name. Defaults to "docker".
	Binary string
}

func (c *CLI) binary() string {
	if c.Binary != "" {
		return c.Binary
	}
	return "docker"
}

// BinaryName returns the docker executable this client shells out to.
func (c *CLI) BinaryName() string {
	return c.binary()
}

// Ping checks that the Docker daemon is reachable by running docker info.
func (c *CLI) Ping(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, c.binary(), "info")
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
	}
	return nil
}

func (c *CLI) CreateNetwork(ctx context.Context, name string) error {
	_, err := c.run(ctx, "network", "create", name)
	if err != nil {
		return fmt.Errorf("create network %s: %w", name, err)
	}
	return nil
}

func (c *CLI) RemoveNetwork(ctx context.Context, name string) error {
	_, err := c.run(ctx, "network", "rm", name)
	if err != nil {
		return fmt.Errorf("remove network %s: %w", name, err)
	}
	return nil
}

// buildCmdArgs returns the docker CLI arguments for a build invocation.
func buildCmdArgs(spec BuildSpec) []string {
	args := []string{"build", "--force-rm", "-t", spec.Tag}
	if spec.Dockerfile != "" {
		args = append(args, "-f", spec.Dockerfile)
	}
	return append(args, spec.ContextDir)
}

func (c *CLI) BuildImage(ctx context.Context, spec BuildSpec) error {
	if _, err := c.run(ctx, buildCmdArgs(spec)...); err != nil {
		return fmt.Errorf("build image %s: %w", spec.Tag, err)
	}
	return nil
}

func (c *CLI) RemoveImage(ctx context.Context, tag string) error {
	if _, err := c.run(ctx, "image", "rm", "-f", tag); err != nil {
		return fmt.Errorf("remove image %s: %w", tag, err)
	}
	return nil
}

// runCmdArgs returns the docker CLI arguments for a detached run invocation.
func runCmdArgs(spec RunSpec) []string {
	args := []string{"run", "-d", "--name", spec.Name}
	if spec.Network != "" {
		args = append(args, "--network", spec.Network)
	}
	if spec.Hostname != "" {
		args = append(args, "--hostname", spec.Hostname)
	}
	if spec.Memory != "" {
		args = append(args, "--memory", spec.Memory)
	}
	for _, p := range spec.Ports {
		args = append(args, "-p", strconv.Itoa(p.Host)+":"+strconv.Itoa(p.Container))
	}
	for _, m := range spec.Mounts {
		args = append(args, "-v", m.Source+":"+m.Target)
	}
	return append(args, spec.Image)
}

func (c *CLI) RunDetached(ctx context.Context, spec RunSpec) (Container, error) {
	out, err := c.run(ctx, runCmdArgs(spec)...)
	if err != nil {
		return Container{}, fmt.Errorf("run container %s: %w", spec.Name, err)
	}
	return Container{Name: spec.Name, ID: strings.TrimSpace(out)}, nil
}

func (c *CLI) ContainerState(ctx context.Context, name string) (State, error) {
	out, err := c.run(ctx, "inspect", "--format", "{{.State.Status}}", name)
	if err != nil {
		return "", fmt.Errorf("inspect container %s: %w", name, err)
	}
	return State(strings.TrimSpace(out)), nil
}

func (c *CLI) ContainerLogs(ctx context.Context, name string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.binary(), "logs", name)
	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("logs for container %s: %w", name, classify(err, combined.String()))
	}
	return combined.Bytes(), nil
}

func (c *CLI) ExecDetached(ctx context.Context, name string, cmd []string) error {
	args := append([]string{"exec", "-d", name}, cmd...)
	if _, err := c.run(ctx, args...); err != nil {
		return fmt.Errorf("exec in container %s: %w", name, err)
	}
	return nil
}

func (c *CLI) RemoveContainer(ctx context.Context, name string) error {
	if _, err := c.run(ctx, "rm", "-f", name); err != nil {
		return fmt.Errorf("remove container %s: %w", name, err)
	}
	return nil
}

func (c *CLI) EnsureEmptyVolume(ctx context.Context, name string) error {
	if _, err := c.run(ctx, "volume", "rm", "-f", name); err != nil && !IsNotFound(err) {
		return fmt.Errorf("remove volume %s: %w", name, err)
	}
	if _, err := c.run(ctx, "volume", "create", name); err != nil {
		return fmt.Errorf("create volume %s: %w", name, err)
	}
	return nil
}

// run executes one docker CLI invocation and returns its stdout.
func (c *CLI) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, c.binary(), args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", classify(err, stderr.String())
	}
	return stdout.String(), nil
}

// classify maps a docker CLI failure onto the package's sentinel errors.
func classify(err error, stderr string) error {
	detail := strings.TrimSpace(stderr)
	lower := strings.ToLower(detail)
	if strings.Contains(lower, "no such") || strings.Contains(lower, "not found") {
		if detail != "" {
			return fmt.Errorf("%w: %s", ErrNotFound, detail)
		}
		return ErrNotFound
	}
	if strings.Contains(lower, "cannot connect to the docker daemon") ||
		strings.Contains(lower, "is the docker daemon running") {
		return fmt.Errorf("%w: %s", ErrEngineUnavailable, detail)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if detail != "" {
			return fmt.Errorf("exit code %d: %s", exitErr.ExitCode(), detail)
		}
		return fmt.Errorf("exit code %d", exitErr.ExitCode())
	}
	return err
}
