package match

import (
	"context"
	"time"

	"github.com/codequest/arena/internal/engine"
)

// awaitCompletion polls the server container's lifecycle state every interval
// and returns the first non-running state observed. Client liveness is
// deliberately ignored: the server is the sole authority on match completion.
//
// There is no internal timeout; callers bound the wait through ctx, and
// cancellation returns ctx.Err() so the session still proceeds to teardown.
func awaitCompletion(ctx context.Context, api engine.API, name string, interval time.Duration) (engine.State, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		state, err := api.ContainerState(ctx, name)
		if err != nil {
			return "", err
		}
		if !state.Running() {
			return state, nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}
