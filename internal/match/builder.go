package match

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/codequest/arena/internal/engine"
)

// builder synthesizes the per-participant Dockerfile and runs the image build.
//
// Sidecar arguments are never interpolated into the entrypoint shell text:
// they are written to a transient argument file in the staging directory and
// copied into the image, where the sidecar reads them back. Both transient
// artifacts (Dockerfile and argument file) are removed on every exit path.
type builder struct {
	api engine.API
	cfg Config
}

type buildRequest struct {
	tag            string
	base           string
	workdir        string
	sidecar        string
	dockerfileName string
	argsFileName   string
	token          string
	sidecarArgs    []string
	runArgs        []string
}

func (b *builder) buildServer(ctx context.Context, token string, spec ServerSpec) (string, error) {
	req := buildRequest{
		tag:            serverImageTag(token),
		base:           spec.Image,
		workdir:        b.cfg.ServerWorkdir,
		sidecar:        b.cfg.ServerSidecar,
		dockerfileName: "Dockerfile.server-" + token,
		argsFileName:   "sidecar-args-server-" + token,
		token:          token,
		sidecarArgs:    append([]string{token}, b.cfg.ServerSidecarArgs...),
		runArgs:        spec.Args,
	}
	if err := b.build(ctx, req); err != nil {
		return "", &BuildError{Role: RoleServer, Name: "server", Err: err}
	}
	return req.tag, nil
}

func (b *builder) buildClient(ctx context.Context, token string, spec ClientSpec) (string, error) {
	req := buildRequest{
		tag:            clientImageTag(spec.ID, token),
		base:           spec.Image,
		workdir:        b.cfg.ClientWorkdir,
		sidecar:        b.cfg.ClientSidecar,
		dockerfileName: "Dockerfile.client-" + spec.ID + "-" + token,
		argsFileName:   "sidecar-args-client-" + spec.ID + "-" + token,
		token:          token,
		sidecarArgs:    append([]string{token, spec.ID, spec.Name}, b.cfg.ClientSidecarArgs...),
		runArgs:        spec.Args,
	}
	if err := b.build(ctx, req); err != nil {
		return "", &BuildError{Role: RoleClient, Name: spec.Name, Err: err}
	}
	return req.tag, nil
}

func (b *builder) build(ctx context.Context, req buildRequest) error {
	argsPath := filepath.Join(b.cfg.StagingDir, req.argsFileName)
	if err := os.WriteFile(argsPath, []byte(strings.Join(req.sidecarArgs, "\n")+"\n"), 0o644); err != nil {
		return fmt.Errorf("write sidecar argument file: %w", err)
	}
	defer os.Remove(argsPath)

	dockerfilePath := filepath.Join(b.cfg.StagingDir, req.dockerfileName)
	if err := os.WriteFile(dockerfilePath, []byte(b.dockerfile(req)), 0o644); err != nil {
		return fmt.Errorf("write dockerfile: %w", err)
	}
	defer os.Remove(dockerfilePath)

	return b.api.BuildImage(ctx, engine.BuildSpec{
		Tag:        req.tag,
		ContextDir: b.cfg.StagingDir,
		Dockerfile: dockerfilePath,
	})
}

// dockerfile renders the build recipe: base image, working directory, sidecar
// assets, the argument file, and the tunnel entrypoint.
func (b *builder) dockerfile(req buildRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "FROM %s\n", req.base)
	fmt.Fprintf(&sb, "RUN mkdir -p %s\n", req.workdir)
	fmt.Fprintf(&sb, "COPY %s %s/\n", b.cfg.SidecarConfig, req.workdir)
	fmt.Fprintf(&sb, "COPY %s %s/\n", req.sidecar, req.workdir)
	fmt.Fprintf(&sb, "COPY %s %s/sidecar_args\n", req.argsFileName, req.workdir)
	if b.cfg.Debug {
		fmt.Fprintf(&sb, "COPY %s %s/\n", b.cfg.DebugBridge, req.workdir)
	}

	// The first tunnel leg is always the sidecar reading its argument file.
	// The second leg is the participant's run script, or the debug bridge on
	// the fixed attach port when debugging.
	var second string
	if b.cfg.Debug {
		second = fmt.Sprintf("EXEC:'python %s/%s %d'", req.workdir, b.cfg.DebugBridge, debugPort)
	} else {
		run := fmt.Sprintf("sh %s/run.sh", req.workdir)
		if len(req.runArgs) > 0 {
			run += " " + strings.Join(req.runArgs, " ")
		}
		second = fmt.Sprintf("EXEC:'%s'", run)
	}

	fmt.Fprintf(&sb,
		"ENTRYPOINT [\"/bin/sh\", \"-c\", \"echo STARTED-%s && socat -v EXEC:'python %s/%s %s/sidecar_args' %s\"]\n",
		req.token, req.workdir, req.sidecar, req.workdir, second)
	return sb.String()
}
