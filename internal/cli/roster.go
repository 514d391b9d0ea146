package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/codequest/arena/internal/match"
)

// rosterEntry is one record of the roster JSON file. IDs may be numbers or
// strings in the file; both are normalized to strings.
type rosterEntry struct {
	ID    any    `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

func normalizeID(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// resolveRoster turns either a roster file or inline NAME=IMAGE pairs into
// client specs. Exactly one source must be provided. extraArgs are appended
// to every client's run-script arguments.
func resolveRoster(rosterFile string, inline []string, extraArgs []string) ([]match.ClientSpec, error) {
	if rosterFile != "" && len(inline) > 0 {
		return nil, errors.New("choose either a roster file or --client pairs, not both")
	}
	if rosterFile == "" && len(inline) == 0 {
		return nil, errors.New("no clients given: pass a roster file or at least one --client NAME=IMAGE")
	}

	var clients []match.ClientSpec
	var err error
	if rosterFile != "" {
		clients, err = loadRosterFile(rosterFile)
	} else {
		clients, err = parseInlineClients(inline)
	}
	if err != nil {
		return nil, err
	}

	for i := range clients {
		clients[i].Args = append([]string(nil), extraArgs...)
	}
	return clients, nil
}

func loadRosterFile(path string) ([]match.ClientSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster file: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.UseNumber()
	var entries []rosterEntry
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("parse roster file %s: %w", path, err)
	}

	clients := make([]match.ClientSpec, 0, len(entries))
	for i, entry := range entries {
		if strings.TrimSpace(entry.Name) == "" || strings.TrimSpace(entry.Image) == "" {
			return nil, fmt.Errorf("roster entry %d is missing a name or image", i)
		}
		clients = append(clients, match.ClientSpec{
			ID:    normalizeID(entry.ID),
			Name:  entry.Name,
			Image: entry.Image,
		})
	}
	return clients, nil
}

func parseInlineClients(pairs []string) ([]match.ClientSpec, error) {
	clients := make([]match.ClientSpec, 0, len(pairs))
	for _, pair := range pairs {
		name, image, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(name) == "" || strings.TrimSpace(image) == "" {
			return nil, fmt.Errorf("invalid --client %q, expected NAME=IMAGE", pair)
		}
		clients = append(clients, match.ClientSpec{Name: name, Image: image})
	}
	return clients, nil
}
