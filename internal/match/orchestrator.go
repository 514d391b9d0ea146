package match

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/codequest/arena/internal/engine"
	"golang.org/x/sync/errgroup"
)

// Phase is a stop along the session lifecycle.
type Phase string

const (
	PhaseInit             Phase = "init"
	PhaseNetworkReady     Phase = "network-ready"
	PhaseServerBuilt      Phase = "server-built"
	PhaseServerRunning    Phase = "server-running"
	PhaseClientsLaunching Phase = "clients-launching"
	PhaseAllReady         Phase = "all-ready"
	PhaseSignaled         Phase = "signaled"
	PhaseWatching         Phase = "watching"
	PhaseFinished         Phase = "finished"
	PhaseAborted          Phase = "aborted"
	PhaseTornDown         Phase = "torn-down"
)

// Session drives one match from network creation through teardown. A Session
// is single-use: Run may be called exactly once.
//
// Resource ownership follows the lifecycle: the session creates the network
// first and registers every image and container as soon as it exists, so
// teardown always sees the full set of resources created up to the point of
// failure. Teardown runs on every exit path, including cancellation.
type Session struct {
	api      engine.API
	cfg      Config
	log      *log.Logger
	recorder Recorder

	token string
	runID string

	mu    sync.Mutex
	phase Phase
	used  bool

	res resources
}

// NewSession creates a session with a fresh token and run ID. recorder may be
// nil to disable match history.
func NewSession(api engine.API, cfg Config, logger *log.Logger, recorder Recorder) *Session {
	return &Session{
		api:      api,
		cfg:      cfg.withDefaults(),
		log:      logger,
		recorder: recorder,
		token:    NewToken(),
		runID:    NewRunID(),
		phase:    PhaseInit,
	}
}

// Token returns the session's namespacing token.
func (s *Session) Token() string { return s.token }

// RunID returns the session's run identifier.
func (s *Session) RunID() string { return s.runID }

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) setPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}

// Run executes the full lifecycle. The returned error is the aborting error,
// if any; the TeardownReport carries per-resource cleanup failures, which are
// never fatal. Both may be non-nil at once.
func (s *Session) Run(ctx context.Context, server ServerSpec, clients []ClientSpec) (*TeardownReport, error) {
	s.mu.Lock()
	if s.used {
		s.mu.Unlock()
		return nil, fmt.Errorf("session %s already run", s.runID)
	}
	s.used = true
	s.mu.Unlock()

	started := time.Now().UTC()
	runErr := s.run(ctx, server, clients)
	if runErr != nil {
		s.setPhase(PhaseAborted)
		s.log.Error("match aborted", "run_id", s.runID, "error", runErr)
	}

	// Teardown must complete even if ctx was cancelled mid-match.
	report := s.teardown(context.WithoutCancel(ctx))
	s.setPhase(PhaseTornDown)
	for _, te := range report.Errors {
		s.log.Warn("resource leaked during teardown", "error", te)
	}

	s.persist(context.WithoutCancel(ctx), server, clients, runErr, started, report.LogDir)
	return report, runErr
}

func (s *Session) run(ctx context.Context, server ServerSpec, clients []ClientSpec) error {
	if err := server.Validate(); err != nil {
		return err
	}
	if err := NormalizeClients(clients); err != nil {
		return err
	}

	s.log.Info("starting match", "run_id", s.runID, "token", s.token, "clients", len(clients))

	network := networkName(s.token)
	if err := s.api.CreateNetwork(ctx, network); err != nil {
		return &InfrastructureError{Op: "create network " + network, Err: err}
	}
	s.res.network = network
	s.setPhase(PhaseNetworkReady)
	s.log.Info("network created", "network", network)

	b := &builder{api: s.api, cfg: s.cfg}
	l := &launcher{api: s.api, cfg: s.cfg}

	serverTag, err := b.buildServer(ctx, s.token, server)
	if err != nil {
		return err
	}
	s.addImage(serverTag)
	s.setPhase(PhaseServerBuilt)

	serverC, err := l.launchServer(ctx, s.token, serverTag, network)
	if err != nil {
		return err
	}
	s.res.server = serverC
	s.setPhase(PhaseServerRunning)
	s.log.Info("server started", "container", serverC.Name)

	s.setPhase(PhaseClientsLaunching)
	if err := s.launchClients(ctx, b, l, network, clients); err != nil {
		return err
	}
	s.setPhase(PhaseAllReady)
	s.log.Info("all clients started")

	if err := signalStart(ctx, s.api, s.cfg, serverC); err != nil {
		return err
	}
	s.setPhase(PhaseSignaled)
	s.log.Info("start signal sent")

	s.setPhase(PhaseWatching)
	state, err := awaitCompletion(ctx, s.api, serverC.Name, s.cfg.PollInterval)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return &InfrastructureError{Op: "watch server " + serverC.Name, Err: err}
	}
	s.setPhase(PhaseFinished)
	s.log.Info("match finished", "server_state", string(state))
	return nil
}

// launchClients builds and launches every client concurrently. Indices are
// assigned from roster order before any work starts, so names and debug ports
// are deterministic regardless of completion order. The first failure cancels
// the siblings and aborts the session: a partial roster is not a match.
func (s *Session) launchClients(ctx context.Context, b *builder, l *launcher, network string, clients []ClientSpec) error {
	containers := make([]engine.Container, len(clients))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range clients {
		i, spec := i, spec
		g.Go(func() error {
			tag, err := b.buildClient(gctx, s.token, spec)
			if err != nil {
				return err
			}
			s.addImage(tag)

			c, err := l.launchClient(gctx, s.token, tag, network, i, spec)
			if err != nil {
				return err
			}
			mu.Lock()
			containers[i] = c
			mu.Unlock()
			s.log.Info("client started", "name", spec.Name, "container", c.Name)
			return nil
		})
	}
	err := g.Wait()

	// Register whatever actually launched, in roster order, for teardown.
	for _, c := range containers {
		if c.Name != "" {
			s.res.clients = append(s.res.clients, c)
		}
	}
	return err
}

func (s *Session) addImage(tag string) {
	s.mu.Lock()
	s.res.images = append(s.res.images, tag)
	s.mu.Unlock()
}

func (s *Session) teardown(ctx context.Context) *TeardownReport {
	t := &reaper{api: s.api, cfg: s.cfg, log: s.log}
	return t.run(ctx, filepath.Join(s.cfg.LogBaseDir, s.runID), &s.res)
}

func (s *Session) persist(ctx context.Context, server ServerSpec, clients []ClientSpec, runErr error, started time.Time, logDir string) {
	if s.recorder == nil {
		return
	}

	rec := Record{
		RunID:       s.runID,
		Token:       s.token,
		ServerImage: server.Image,
		Outcome:     OutcomeFinished,
		StartedAt:   started,
		FinishedAt:  time.Now().UTC(),
		LogDir:      logDir,
	}
	for _, c := range clients {
		rec.Clients = append(rec.Clients, c.Name)
	}
	if runErr != nil {
		rec.Outcome = OutcomeAborted
		rec.Error = runErr.Error()
	}
	if err := s.recorder.Record(ctx, rec); err != nil {
		s.log.Warn("failed to record match history", "run_id", s.runID, "error", err)
	}
}
