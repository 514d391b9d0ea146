package match

import (
	"context"
	"testing"

	"github.com/codequest/arena/internal/engine"
)

func testResources(token string) *resources {
	return &resources{
		network: networkName(token),
		server:  engine.Container{Name: serverContainerName(token), ID: "id-1"},
		clients: []engine.Container{
			{Name: clientContainerName(0, token), ID: "id-2"},
			{Name: clientContainerName(1, token), ID: "id-3"},
		},
		images: []string{
			serverImageTag(token),
			clientImageTag("0", token),
			clientImageTag("1", token),
		},
	}
}

func TestTeardownIsIdempotentOverMissingResources(t *testing.T) {
	fake := newFakeEngine()
	token := NewToken()
	res := testResources(token)

	// Everything is already gone.
	for _, c := range res.containers() {
		fake.notFound[c.Name] = true
	}
	for _, img := range res.images {
		fake.notFound[img] = true
	}
	fake.notFound[res.network] = true

	cfg := Config{LogBaseDir: t.TempDir(), RetainLogs: false}.withDefaults()
	r := &reaper{api: fake, cfg: cfg, log: testLogger()}
	report := r.run(context.Background(), cfg.LogBaseDir, res)

	if !report.OK() {
		t.Fatalf("already-removed resources must count as success, got %v", report.Errors)
	}
}

func TestTeardownContinuesPastFailures(t *testing.T) {
	fake := newFakeEngine()
	token := NewToken()
	res := testResources(token)

	// The server container refuses to die; everything else must still be
	// reclaimed.
	fake.failRemoveName = "arena_server_"

	cfg := Config{LogBaseDir: t.TempDir(), RetainLogs: false}.withDefaults()
	r := &reaper{api: fake, cfg: cfg, log: testLogger()}
	report := r.run(context.Background(), cfg.LogBaseDir, res)

	if report.OK() {
		t.Fatalf("expected a recorded teardown failure")
	}
	if len(report.Errors) != 1 {
		t.Fatalf("recorded %d errors, want 1: %v", len(report.Errors), report.Errors)
	}
	if len(fake.removedContainers) != 2 {
		t.Fatalf("client containers not removed after server failure: %v", fake.removedContainers)
	}
	if len(fake.removedImages) != 3 {
		t.Fatalf("images not removed after container failure: %v", fake.removedImages)
	}
	if len(fake.removedNetworks) != 1 {
		t.Fatalf("network not removed after earlier failures")
	}
}

func TestTeardownSkipsLogCaptureWhenDisabled(t *testing.T) {
	fake := newFakeEngine()
	token := NewToken()
	res := testResources(token)

	cfg := Config{LogBaseDir: t.TempDir(), RetainLogs: false}.withDefaults()
	r := &reaper{api: fake, cfg: cfg, log: testLogger()}
	report := r.run(context.Background(), cfg.LogBaseDir+"/run", res)

	if report.LogDir != "" {
		t.Fatalf("log dir set with RetainLogs disabled: %s", report.LogDir)
	}
	if !report.OK() {
		t.Fatalf("teardown failed: %v", report.Errors)
	}
}
