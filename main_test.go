package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/tactics/game/config"
	"github.com/wricardo/mcp-training/tactics/game/grid"
	"github.com/wricardo/mcp-training/tactics/game/session"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName == "" {
		t.Error("AppName should not be empty")
	}
}

func TestNewApp_Commands(t *testing.T) {
	app := newApp()
	if app.Version != Version {
		t.Errorf("Expected version %s, got %s", Version, app.Version)
	}

	for _, name := range []string{"serve", "mcp", "radius", "generate"} {
		found := false
		for _, cmd := range app.Commands {
			if cmd.Name == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected command %q", name)
		}
	}
}

func TestInitializeServices(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	svcs, err := initializeServices("configs", nil)
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	if svcs.radius == nil || svcs.sessions == nil || svcs.scenarios == nil {
		t.Fatal("Expected all services to be initialized")
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	if _, err := initializeServices("/non/existent/path", nil); err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestSessionCleanupRoutine(t *testing.T) {
	m, err := config.MinimalScenario().Build()
	if err != nil {
		t.Fatalf("Failed to build map: %v", err)
	}
	manager := session.NewManager()
	if _, err := manager.Create("", "test", m); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sessionCleanupRoutine(ctx, manager, 5*time.Millisecond, 0)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for manager.Count() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if manager.Count() != 0 {
		t.Error("Expected expired session to be cleaned up")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("Cleanup routine did not stop on cancel")
	}
}

func TestPrintRadius(t *testing.T) {
	svcs, err := initializeServices("configs", nil)
	if err != nil {
		t.Skipf("Skipping test - configs unavailable: %v", err)
	}
	ctx := context.Background()

	tests := []struct {
		name string
		opts radiusOptions
		want []string
	}{
		{
			name: "moveable",
			opts: radiusOptions{scenario: "trench-corridor", at: grid.Vec(3, 1), radius: -1},
			want: []string{"alpha (radius 3)", "reachable tiles"},
		},
		{
			name: "path through the trench",
			opts: radiusOptions{scenario: "trench-corridor", at: grid.Vec(3, 1), radius: -1, to: "3,4"},
			want: []string{"..o..", "alpha reaches 3,4 at cost 1.5: 3,2 -> 3,3 -> 3,4"},
		},
		{
			name: "attackable",
			opts: radiusOptions{scenario: "trench-corridor", at: grid.Vec(3, 1), radius: -1, attack: true, mode: "cost"},
			want: []string{"alpha (cost mode)", "attackable tiles"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := printRadius(ctx, &out, svcs.radius, tt.opts); err != nil {
				t.Fatalf("printRadius failed: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("Expected %q in output:\n%s", want, out.String())
				}
			}
		})
	}

	if err := printRadius(ctx, &bytes.Buffer{}, svcs.radius, radiusOptions{scenario: "trench-corridor", at: grid.Vec(2, 2)}); err == nil {
		t.Error("Expected error for empty tile")
	}
	if err := printRadius(ctx, &bytes.Buffer{}, svcs.radius, radiusOptions{scenario: "nowhere", at: grid.Vec(1, 1)}); err == nil {
		t.Error("Expected error for unknown scenario")
	}
	if sessions, _ := svcs.radius.ListSessions(ctx); len(sessions) != 0 {
		t.Errorf("Expected query sessions to be deleted, got %d", len(sessions))
	}
}

func TestGenerateCommand(t *testing.T) {
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out

	err := app.Run(context.Background(), []string{"tactics", "generate", "--seed", "7", "--width", "12", "--height", "8"})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	var scenario config.Scenario
	if err := json.Unmarshal(out.Bytes(), &scenario); err != nil {
		t.Fatalf("Expected scenario JSON: %v\n%s", err, out.String())
	}
	if len(scenario.Layout) != 8 || len([]rune(scenario.Layout[0])) != 12 {
		t.Errorf("Unexpected layout size %dx%d", len([]rune(scenario.Layout[0])), len(scenario.Layout))
	}
	if err := config.ValidateScenario(&scenario); err != nil {
		t.Errorf("Generated scenario is invalid: %v", err)
	}
}

func TestNewRouter_MCPEndpoint(t *testing.T) {
	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	router := newRouter(api, "http://127.0.0.1:1")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/mcp", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET /mcp, got %d", rr.Code)
	}

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body)))
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "moveable") {
		t.Errorf("Expected tool list to include moveable, got %s", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rr.Code != http.StatusTeapot {
		t.Errorf("Expected API handler at root, got %d", rr.Code)
	}
}
