package match

import (
	"context"

	"github.com/codequest/arena/internal/engine"
)

// startMarker is the file the server's run script blocks on. Its appearance
// inside the server working directory means every participant is present and
// the match may begin.
const startMarker = "GAME_STARTED"

// signalStart drops the start marker into the running server container via a
// fire-and-forget exec. No acknowledgment is awaited; a failure here means the
// server is already gone and the match never started.
func signalStart(ctx context.Context, api engine.API, cfg Config, server engine.Container) error {
	cmd := []string{"/bin/sh", "-c", "touch " + cfg.ServerWorkdir + "/" + startMarker}
	if err := api.ExecDetached(ctx, server.Name, cmd); err != nil {
		return &SignalError{Err: err}
	}
	return nil
}
