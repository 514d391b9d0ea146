package match

import "time"

// Default values mirror the reference deployment. Everything is overridable
// through the runtime config file.
const (
	DefaultServerHostname  = "game-server"
	DefaultServerWorkdir   = "/codequest/server"
	DefaultClientWorkdir   = "/codequest/client"
	DefaultPollInterval    = 2 * time.Second
	DefaultClientMemory    = "1g"
	DefaultReplayVolume    = "arena-game-replay"
	DefaultLiveReplayDir   = "live_replay_files"
	DefaultLogBaseDir      = "match_logs"
	DefaultServerSidecar   = "server_sidecar.py"
	DefaultClientSidecar   = "client_sidecar.py"
	DefaultSidecarConfig   = "config.py"
	DefaultDebugBridge     = "sidecar_debugger_inside.py"
	DefaultReplayMount     = "/codequest/replay"
	DefaultLiveReplayMount = "/codequest/live-replay"

	// debugPort is the fixed in-container attach port used in debug mode.
	debugPort = 6000
)

// Config carries every knob a session needs. It is passed explicitly into
// NewSession so multiple sessions can run in one process with different
// settings.
type Config struct {
	// StagingDir is the build context: the directory holding the sidecar
	// programs and where transient build artifacts (Dockerfiles, argument
	// files) are staged.
	StagingDir string

	// LogBaseDir is the directory under which each session creates its own
	// log-capture directory, named by run ID.
	LogBaseDir string

	// PollInterval is the completion watcher's sleep between server state polls.
	PollInterval time.Duration

	// ClientMemoryLimit caps each client container, engine syntax ("1g").
	// Empty disables the limit.
	ClientMemoryLimit string

	// ServerHostname is the well-known hostname clients use to reach the server.
	ServerHostname string

	// ServerWorkdir and ClientWorkdir are the in-image working directories the
	// sidecar and participant assets are copied into.
	ServerWorkdir string
	ClientWorkdir string

	// Sidecar asset file names, resolved relative to StagingDir.
	ServerSidecar string
	ClientSidecar string
	SidecarConfig string
	DebugBridge   string

	// ServerSidecarArgs and ClientSidecarArgs are extra arguments appended to
	// the sidecar invocation after the session-provided values. They travel
	// through the in-image argument file, never through shell text.
	ServerSidecarArgs []string
	ClientSidecarArgs []string

	// ReplayVolume is the named volume mounted into the server for replay
	// output. LiveReplayDir is a host folder (under StagingDir) bind-mounted
	// for live replay files. Both are emptied before the server starts.
	ReplayVolume  string
	LiveReplayDir string

	// RetainLogs controls whether teardown captures container logs before
	// removal. When false, containers are removed without log capture.
	RetainLogs bool

	// Debug reroutes each sidecar's second tunnel leg to the in-container
	// debug bridge on port 6000 and publishes host attach ports: 6000 for the
	// server, 6001+index for clients. Debug mode is single-session per host.
	Debug bool
}

// withDefaults fills zero-valued fields. RetainLogs and Debug are plain
// booleans whose zero values are meaningful, so they are left alone.
func (c Config) withDefaults() Config {
	if c.StagingDir == "" {
		c.StagingDir = "."
	}
	if c.LogBaseDir == "" {
		c.LogBaseDir = DefaultLogBaseDir
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.ClientMemoryLimit == "" {
		c.ClientMemoryLimit = DefaultClientMemory
	}
	if c.ServerHostname == "" {
		c.ServerHostname = DefaultServerHostname
	}
	if c.ServerWorkdir == "" {
		c.ServerWorkdir = DefaultServerWorkdir
	}
	if c.ClientWorkdir == "" {
		c.ClientWorkdir = DefaultClientWorkdir
	}
	if c.ServerSidecar == "" {
		c.ServerSidecar = DefaultServerSidecar
	}
	if c.ClientSidecar == "" {
		c.ClientSidecar = DefaultClientSidecar
	}
	if c.SidecarConfig == "" {
		c.SidecarConfig = DefaultSidecarConfig
	}
	if c.DebugBridge == "" {
		c.DebugBridge = DefaultDebugBridge
	}
	if c.ReplayVolume == "" {
		c.ReplayVolume = DefaultReplayVolume
	}
	if c.LiveReplayDir == "" {
		c.LiveReplayDir = DefaultLiveReplayDir
	}
	return c
}
