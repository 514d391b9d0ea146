package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type HistoryCommand struct {
	Limit int  `default:"20" help:"Maximum number of matches to list (0 for all)"`
	JSON  bool `help:"Print history as JSON"`
}

func (h *HistoryCommand) Run(ctx *runtimeContext) error {
	store, err := openStore(ctx.Config)
	if err != nil {
		return err
	}

	records, err := store.List(context.Background(), h.Limit)
	if err != nil {
		return err
	}

	if h.JSON {
		enc := json.NewEncoder(ctx.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		_, err := fmt.Fprintln(ctx.Stdout, "no matches recorded")
		return err
	}

	for _, rec := range records {
		line := fmt.Sprintf("- %s  %s  server=%s clients=[%s] finished=%s",
			rec.RunID,
			rec.Outcome,
			rec.ServerImage,
			strings.Join(rec.Clients, ", "),
			rec.FinishedAt.Format(time.RFC3339),
		)
		if rec.Error != "" {
			line += "  error=" + rec.Error
		}
		if _, err := fmt.Fprintln(ctx.Stdout, line); err != nil {
			return err
		}
	}
	return nil
}
