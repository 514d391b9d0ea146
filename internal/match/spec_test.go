package match

import (
	"errors"
	"testing"
)

func TestNormalizeClientsAssignsIndexIDs(t *testing.T) {
	t.Parallel()

	clients := []ClientSpec{
		{Name: "A", Image: "img-a:latest"},
		{ID: "custom", Name: "B", Image: "img-b:latest"},
		{Name: "C", Image: "img-c:latest"},
	}
	if err := NormalizeClients(clients); err != nil {
		t.Fatalf("NormalizeClients returned error: %v", err)
	}
	if clients[0].ID != "0" || clients[1].ID != "custom" || clients[2].ID != "2" {
		t.Fatalf("ids = %q %q %q", clients[0].ID, clients[1].ID, clients[2].ID)
	}
}

func TestNormalizeClientsRejectsEmptyRoster(t *testing.T) {
	t.Parallel()

	if err := NormalizeClients(nil); err == nil {
		t.Fatalf("empty roster accepted")
	}
}

func TestNormalizeClientsRejectsBadImageRef(t *testing.T) {
	t.Parallel()

	err := NormalizeClients([]ClientSpec{{Name: "A", Image: "not a valid ref!"}})
	var buildErr *BuildError
	if !errors.As(err, &buildErr) {
		t.Fatalf("error = %v, want *BuildError", err)
	}
	if buildErr.Name != "A" {
		t.Fatalf("BuildError names %q, want A", buildErr.Name)
	}
}

func TestNormalizeClientsRejectsDuplicateIDs(t *testing.T) {
	t.Parallel()

	err := NormalizeClients([]ClientSpec{
		{ID: "team", Name: "A", Image: "img-a:latest"},
		{ID: "team", Name: "B", Image: "img-b:latest"},
	})
	if err == nil {
		t.Fatalf("duplicate client ids accepted")
	}
}

func TestNormalizeClientsRejectsIDsDifferingOnlyInCase(t *testing.T) {
	t.Parallel()

	// IDs are lower-cased when embedded in image tags, so "Team" and "team"
	// would collide there.
	err := NormalizeClients([]ClientSpec{
		{ID: "Team", Name: "A", Image: "img-a:latest"},
		{ID: "team", Name: "B", Image: "img-b:latest"},
	})
	if err == nil {
		t.Fatalf("case-colliding client ids accepted")
	}
}

func TestNormalizeClientsRejectsUnsafeRunArgs(t *testing.T) {
	t.Parallel()

	err := NormalizeClients([]ClientSpec{{
		Name:  "A",
		Image: "img-a:latest",
		Args:  []string{"ok", "bad; rm -rf /"},
	}})
	if err == nil {
		t.Fatalf("shell-unsafe run argument accepted")
	}
}

func TestServerSpecValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		spec    ServerSpec
		wantErr bool
	}{
		{"valid", ServerSpec{Image: "registry.example.com/srv:1", Args: []string{"--seed=42"}}, false},
		{"empty image", ServerSpec{}, true},
		{"bad ref", ServerSpec{Image: "UPPER CASE BAD"}, true},
		{"unsafe arg", ServerSpec{Image: "srv:1", Args: []string{"$(reboot)"}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.spec.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("Validate accepted %+v", tc.spec)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("Validate rejected %+v: %v", tc.spec, err)
			}
		})
	}
}
