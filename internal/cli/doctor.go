package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/codequest/arena/internal/engine"
	"github.com/codequest/arena/internal/match"
)

type DoctorCommand struct {
	Staging string `help:"Staging directory to check (default from config, then the working directory)"`
	JSON    bool   `help:"Print doctor report as JSON"`
}

type doctorCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // pass|warn|fail
	Message string `json:"message"`
}

func (d *DoctorCommand) Run(ctx *runtimeContext) error {
	var checks []doctorCheck
	appendCheck := func(name, status, message string) {
		checks = append(checks, doctorCheck{Name: name, Status: status, Message: message})
	}

	appendCheck("runtime_config", "pass", fmt.Sprintf("using runtime config path %s", ctx.ConfigPath))

	api := &engine.CLI{}
	if _, err := exec.LookPath(api.BinaryName()); err != nil {
		appendCheck("docker_binary", "fail", fmt.Sprintf("docker binary %q not found in PATH", api.BinaryName()))
	} else {
		appendCheck("docker_binary", "pass", fmt.Sprintf("found docker binary %q", api.BinaryName()))
	}

	if err := api.Ping(context.Background()); err != nil {
		appendCheck("engine", "fail", fmt.Sprintf("docker daemon not reachable: %v", err))
	} else {
		appendCheck("engine", "pass", "docker daemon reachable")
	}

	staging := firstNonEmpty(d.Staging, ctx.Config.StagingDir, ctx.CWD)
	if info, err := os.Stat(staging); err != nil || !info.IsDir() {
		appendCheck("staging_dir", "fail", fmt.Sprintf("staging directory %q not accessible", staging))
	} else {
		appendCheck("staging_dir", "pass", fmt.Sprintf("staging directory %s", staging))
	}

	assets := []struct {
		check string
		file  string
	}{
		{"server_sidecar", firstNonEmpty(ctx.Config.Sidecar.Server, match.DefaultServerSidecar)},
		{"client_sidecar", firstNonEmpty(ctx.Config.Sidecar.Client, match.DefaultClientSidecar)},
		{"sidecar_config", firstNonEmpty(ctx.Config.Sidecar.Config, match.DefaultSidecarConfig)},
	}
	for _, asset := range assets {
		path := filepath.Join(staging, asset.file)
		if _, err := os.Stat(path); err != nil {
			appendCheck(asset.check, "fail", fmt.Sprintf("%s not found in staging directory", asset.file))
		} else {
			appendCheck(asset.check, "pass", path)
		}
	}

	bridge := firstNonEmpty(ctx.Config.Sidecar.DebugBridge, match.DefaultDebugBridge)
	if _, err := os.Stat(filepath.Join(staging, bridge)); err != nil {
		appendCheck("debug_bridge", "warn", fmt.Sprintf("%s not found; --debug runs will fail to build", bridge))
	} else {
		appendCheck("debug_bridge", "pass", filepath.Join(staging, bridge))
	}

	if d.JSON {
		payload := map[string]any{"checks": checks}
		enc := json.NewEncoder(ctx.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	if _, err := fmt.Fprintln(ctx.Stdout, "doctor report"); err != nil {
		return err
	}
	for _, check := range checks {
		if _, err := fmt.Fprintf(ctx.Stdout, "- [%s] %s: %s\n", check.Status, check.Name, check.Message); err != nil {
			return err
		}
	}
	return nil
}
