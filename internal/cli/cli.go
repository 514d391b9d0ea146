package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/codequest/arena/internal/engine"
	"github.com/codequest/arena/internal/match"
	"github.com/codequest/arena/internal/matchstore"
	"github.com/codequest/arena/internal/paths"
	"github.com/codequest/arena/internal/runtimeconfig"
)

type runtimeContext struct {
	CWD        string
	Stdout     *os.File
	Config     runtimeconfig.Config
	ConfigPath string
	Version    string
}

type CLI struct {
	Run     RunCommand     `cmd:"" help:"Run one match: build images, launch participants, signal start, wait, tear down"`
	Doctor  DoctorCommand  `cmd:"" help:"Run engine and staging diagnostics"`
	History HistoryCommand `cmd:"" help:"List recorded matches"`
}

type RunCommand struct {
	LogLevel    string   `help:"Log level (debug|info|warn|error)"`
	Debug       bool     `short:"d" help:"Connect sidecars to the debug attach ports instead of the participant executables"`
	KeepLogs    *bool    `negatable:"" help:"Capture container logs before removal (default true)"`
	PollSeconds int64    `help:"Seconds between server state polls"`
	Staging     string   `help:"Staging directory holding the sidecar assets (default from config, then the working directory)"`
	Client      []string `help:"Inline client as NAME=IMAGE; repeatable alternative to a roster file"`
	ServerArg   []string `help:"Positional argument appended to the server run script (repeatable)"`
	ClientArg   []string `help:"Positional argument appended to every client run script (repeatable)"`

	ServerImage string `arg:"" help:"Server image reference, e.g. registry/game-server:latest"`
	RosterFile  string `arg:"" optional:"" help:"JSON roster file: [{\"id\": ..., \"name\": ..., \"image\": ...}, ...]"`
}

type exitCodeError struct {
	code int
}

func (e exitCodeError) Error() string {
	return fmt.Sprintf("command failed with exit code %d", e.code)
}

func (e exitCodeError) ExitCode() int {
	return e.code
}

type hasExitCode interface {
	ExitCode() int
}

func Run(args []string, version string) error {
	cfg, cfgPath, err := runtimeconfig.Load()
	if err != nil {
		return err
	}

	runtimeCtx := &runtimeContext{
		Stdout:     os.Stdout,
		Config:     cfg,
		ConfigPath: cfgPath,
		Version:    version,
	}

	cli := CLI{}
	parser, err := kong.New(
		&cli,
		kong.Name("arena"),
		kong.Description("Runs a containerized match: one game server and N clients on a private network"),
	)
	if err != nil {
		return err
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	runtimeCtx.CWD = cwd

	return ctx.Run(runtimeCtx)
}

func ExitCode(err error) int {
	var codeErr hasExitCode
	if errors.As(err, &codeErr) {
		return codeErr.ExitCode()
	}
	return 1
}

func (r *RunCommand) Run(ctx *runtimeContext) error {
	logger, err := newLogger(resolveLogLevel(r.LogLevel, ctx.Config.LogLevel), "arena")
	if err != nil {
		return err
	}

	server := match.ServerSpec{Image: r.ServerImage, Args: r.ServerArg}
	clients, err := resolveRoster(r.RosterFile, r.Client, r.ClientArg)
	if err != nil {
		return err
	}

	cfg, err := buildMatchConfig(ctx.Config, r)
	if err != nil {
		return err
	}

	var recorder match.Recorder
	store, err := openStore(ctx.Config)
	if err != nil {
		logger.Warn("match history disabled", "error", err)
	} else {
		recorder = store
	}

	api := &engine.CLI{}
	runCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := pingEngine(runCtx, api); err != nil {
		return err
	}

	session := match.NewSession(api, cfg, logger, recorder)
	report, runErr := session.Run(runCtx, server, clients)

	if report != nil && report.LogDir != "" {
		logger.Info("container logs captured", "dir", report.LogDir)
	}
	if runErr != nil {
		return runErr
	}
	if report != nil && !report.OK() {
		logger.Warn("match finished but some resources leaked", "leaks", len(report.Errors))
	}
	return nil
}

// pingEngine classifies an unreachable daemon as an infrastructure failure,
// the same taxonomy every in-match engine error uses.
func pingEngine(ctx context.Context, api engine.API) error {
	if err := api.Ping(ctx); err != nil {
		return &match.InfrastructureError{Op: "ping engine", Err: err}
	}
	return nil
}

func buildMatchConfig(rc runtimeconfig.Config, r *RunCommand) (match.Config, error) {
	cfg := match.Config{
		StagingDir:        firstNonEmpty(r.Staging, rc.StagingDir),
		LogBaseDir:        rc.LogDir,
		ClientMemoryLimit: rc.ClientMemoryLimit,
		ServerHostname:    rc.ServerHostname,
		ServerWorkdir:     rc.ServerWorkdir,
		ClientWorkdir:     rc.ClientWorkdir,
		ServerSidecar:     rc.Sidecar.Server,
		ClientSidecar:     rc.Sidecar.Client,
		SidecarConfig:     rc.Sidecar.Config,
		DebugBridge:       rc.Sidecar.DebugBridge,
		ServerSidecarArgs: rc.Sidecar.ServerArgs,
		ClientSidecarArgs: rc.Sidecar.ClientArgs,
		ReplayVolume:      rc.Replay.Volume,
		LiveReplayDir:     rc.Replay.LiveDir,
		Debug:             r.Debug,
		RetainLogs:        true,
	}

	// Flag beats config file beats the retain-by-default policy.
	if rc.RetainLogs != nil {
		cfg.RetainLogs = *rc.RetainLogs
	}
	if r.KeepLogs != nil {
		cfg.RetainLogs = *r.KeepLogs
	}

	if rc.PollIntervalSeconds > 0 {
		cfg.PollInterval = time.Duration(rc.PollIntervalSeconds) * time.Second
	}
	if r.PollSeconds > 0 {
		cfg.PollInterval = time.Duration(r.PollSeconds) * time.Second
	}

	if cfg.LogBaseDir == "" {
		base, err := paths.MatchLogBaseDir()
		if err != nil {
			return match.Config{}, fmt.Errorf("resolve match log directory: %w", err)
		}
		cfg.LogBaseDir = base
	}
	return cfg, nil
}

func openStore(rc runtimeconfig.Config) (*matchstore.Store, error) {
	dbPath := rc.HistoryDB
	if dbPath == "" {
		var err error
		dbPath, err = paths.HistoryDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve match history path: %w", err)
		}
	}
	return matchstore.New(dbPath)
}

func resolveLogLevel(flag, configured string) string {
	if strings.TrimSpace(flag) != "" {
		return flag
	}
	return configured
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func newLogger(rawLevel, component string) (*log.Logger, error) {
	levelName := strings.TrimSpace(strings.ToLower(rawLevel))
	if levelName == "" {
		levelName = "info"
	}
	level, err := log.ParseLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", rawLevel, err)
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:     level,
		Formatter: log.TextFormatter,
	})
	return logger.With("component", component), nil
}
