package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/wricardo/mcp-training/tactics/api"
	"github.com/wricardo/mcp-training/tactics/game/config"
	"github.com/wricardo/mcp-training/tactics/game/grid"
	"github.com/wricardo/mcp-training/tactics/game/service"
	"github.com/wricardo/mcp-training/tactics/game/session"
)

const harborScenario = `{
  "name": "Harbor",
  "description": "Trench line by the sea",
  "layout": [
    ".....",
    ".TT..",
    "....."
  ],
  "units": [
    {"id": "inf-1", "type": "Infantry", "player": 1, "x": 1, "y": 2},
    {"id": "inf-9", "type": "Infantry", "player": 2, "x": 5, "y": 2}
  ]
}`

// newBackend starts the real REST API over a temporary scenario directory
func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "harbor.json"), []byte(harborScenario), 0644); err != nil {
		t.Fatalf("Failed to write scenario: %v", err)
	}
	scenarios, err := config.NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create scenario manager: %v", err)
	}
	svc := service.NewRadiusService(session.NewManager(), scenarios, nil)
	server := httptest.NewServer(api.NewServer(svc, nil))
	t.Cleanup(server.Close)
	return server
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	request := mcp.CallToolRequest{}
	request.Params.Arguments = args
	result, err := handler(context.Background(), request)
	if err != nil {
		t.Fatalf("Handler returned error: %v", err)
	}
	if result == nil || len(result.Content) == 0 {
		t.Fatal("Expected result content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text, result.IsError
}

func createSession(t *testing.T, client *Client) string {
	t.Helper()
	text, isErr := call(t, client.handleCreateSession, map[string]any{"scenario": "harbor"})
	if isErr {
		t.Fatalf("create_session failed: %s", text)
	}
	line := strings.SplitN(text, "\n", 2)[0]
	return strings.TrimPrefix(line, "Created session: ")
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/json":
			json.NewEncoder(w).Encode(map[string]string{"id": "ab12"})
		case "/text":
			w.Write([]byte("..1..\n"))
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "session not found: zz"})
		default:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Internal Server Error"))
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	var response map[string]string
	if err := client.apiCall(ctx, http.MethodGet, "/json", nil, &response); err != nil || response["id"] != "ab12" {
		t.Errorf("Unexpected JSON response %v (%v)", response, err)
	}

	var text string
	if err := client.apiCall(ctx, http.MethodGet, "/text", nil, &text); err != nil || text != "..1..\n" {
		t.Errorf("Unexpected text response %q (%v)", text, err)
	}

	err := client.apiCall(ctx, http.MethodGet, "/missing", nil, nil)
	if err == nil || err.Error() != "session not found: zz" {
		t.Errorf("Expected API error message, got %v", err)
	}

	err = client.apiCall(ctx, http.MethodGet, "/boom", nil, nil)
	if err == nil || !strings.Contains(err.Error(), "API error") {
		t.Errorf("Expected 'API error', got %v", err)
	}
}

func TestClient_apiCall_Unreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	if err := client.apiCall(context.Background(), http.MethodGet, "/api", nil, nil); err == nil {
		t.Error("Expected error for unreachable server")
	}
}

func TestClient_Sessions(t *testing.T) {
	client := NewClient(newBackend(t).URL)
	id := createSession(t, client)
	if len(id) != 4 {
		t.Fatalf("Expected 4-character session id, got %q", id)
	}

	text, isErr := call(t, client.handleListSessions, map[string]any{})
	if isErr || !strings.Contains(text, "Active Sessions (1)") || !strings.Contains(text, id) {
		t.Errorf("Unexpected list_sessions output: %s", text)
	}

	text, isErr = call(t, client.handleGetSession, map[string]any{"session_id": id})
	if isErr || !strings.Contains(text, "inf-1 Infantry (player 1) at (1,2)") {
		t.Errorf("Unexpected get_session output: %s", text)
	}

	text, isErr = call(t, client.handleGetSession, map[string]any{})
	if !isErr || !strings.Contains(text, "session_id is required") {
		t.Errorf("Expected missing session error, got %s", text)
	}

	text, isErr = call(t, client.handleListScenarios, map[string]any{})
	if isErr || !strings.Contains(text, "harbor: Harbor (5x3, 2 units)") {
		t.Errorf("Unexpected list_scenarios output: %s", text)
	}

	text, isErr = call(t, client.handleCreateSession, map[string]any{"scenario": "nowhere"})
	if !isErr || !strings.Contains(text, "scenario not found") {
		t.Errorf("Expected scenario error, got %s", text)
	}
}

func TestClient_RenderMap(t *testing.T) {
	client := NewClient(newBackend(t).URL)
	id := createSession(t, client)

	text, isErr := call(t, client.handleRenderMap, map[string]any{"session_id": id})
	if isErr {
		t.Fatalf("render_map failed: %s", text)
	}
	want := "    12345\n  1 .....\n  2 1TT.2\n  3 .....\n"
	if text != want {
		t.Errorf("Expected\n%s\ngot\n%s", want, text)
	}
}

func TestClient_Moveable(t *testing.T) {
	client := NewClient(newBackend(t).URL)
	id := createSession(t, client)

	text, isErr := call(t, client.handleMoveable, map[string]any{"session_id": id, "x": float64(1), "y": float64(2)})
	if isErr {
		t.Fatalf("moveable failed: %s", text)
	}
	// Trench discount: (2,2) costs 0.5 and (3,2) costs 1
	for _, want := range []string{"can spend 3 movement points", "(2,2) 0.5", "(3,2) 1\n"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in output:\n%s", want, text)
		}
	}

	text, isErr = call(t, client.handleMoveable, map[string]any{"session_id": id, "x": "one", "y": float64(2)})
	if !isErr || !strings.Contains(text, "x must be an integer") {
		t.Errorf("Expected argument error, got %s", text)
	}

	text, isErr = call(t, client.handleMoveable, map[string]any{"session_id": id, "x": float64(3), "y": float64(3)})
	if !isErr || !strings.Contains(text, "no unit") {
		t.Errorf("Expected no unit error, got %s", text)
	}
}

func TestClient_Attackable(t *testing.T) {
	client := NewClient(newBackend(t).URL)
	id := createSession(t, client)

	text, isErr := call(t, client.handleAttackable, map[string]any{
		"session_id": id, "x": float64(1), "y": float64(2), "mode": "cost",
	})
	if isErr {
		t.Fatalf("attackable failed: %s", text)
	}
	if !strings.Contains(text, "(cost mode)") || !strings.Contains(text, "(5,2) from (4,2)") {
		t.Errorf("Unexpected attackable output:\n%s", text)
	}
}

func TestClient_MovementPathAndMove(t *testing.T) {
	client := NewClient(newBackend(t).URL)
	id := createSession(t, client)

	args := map[string]any{
		"session_id": id,
		"from_x":     float64(1), "from_y": float64(2),
		"to_x": float64(4), "to_y": float64(2),
	}
	text, isErr := call(t, client.handleMovementPath, args)
	if isErr {
		t.Fatalf("movement_path failed: %s", text)
	}
	if !strings.Contains(text, "(2,2) -> (3,2) -> (4,2)") || !strings.Contains(text, "cost 1.5 in 3 steps") {
		t.Errorf("Unexpected path output: %s", text)
	}

	args["intent"] = "close in on the enemy through the trench"
	text, isErr = call(t, client.handleMoveUnit, args)
	if isErr {
		t.Fatalf("move_unit failed: %s", text)
	}
	if !strings.Contains(text, "fuel used: 2") || !strings.Contains(text, "at (4,2)") {
		t.Errorf("Unexpected move output: %s", text)
	}

	text, isErr = call(t, client.handleMoveUnit, args)
	if !isErr || !strings.Contains(text, "no unit") {
		t.Errorf("Expected no unit error on repeated move, got %s", text)
	}

	text, _ = call(t, client.handleMovementPath, map[string]any{
		"session_id": id,
		"from_x":     float64(4), "from_y": float64(2),
		"to_x": float64(5), "to_y": float64(2),
	})
	if !strings.Contains(text, "cannot reach (5,2)") {
		t.Errorf("Expected unreachable path, got %s", text)
	}
}

func TestClient_DescribeTile(t *testing.T) {
	client := NewClient(newBackend(t).URL)
	id := createSession(t, client)

	text, isErr := call(t, client.handleDescribeTile, map[string]any{"session_id": id, "x": float64(2), "y": float64(2)})
	if isErr {
		t.Fatalf("describe_tile failed: %s", text)
	}
	if !strings.Contains(text, "Tile (2,2): Trench") || !strings.Contains(text, "impassable") {
		t.Errorf("Unexpected tile output:\n%s", text)
	}
}

func TestClient_Rules(t *testing.T) {
	client := NewClient("http://localhost:8080")
	text, isErr := call(t, client.handleRules, map[string]any{})
	if isErr {
		t.Fatal("radius_rules returned an error")
	}
	for _, want := range []string{"MOVEMENT:", "ATTACKS:", "MAP:", "min(radius, fuel)"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in rules", want)
		}
	}
}

func TestNumberedMap(t *testing.T) {
	if got := numberedMap(""); got != "" {
		t.Errorf("Expected empty map unchanged, got %q", got)
	}
	got := numberedMap("..........x\n")
	if !strings.HasPrefix(got, "    12345678901\n") {
		t.Errorf("Expected wrapped column digits, got %q", got)
	}
}

func TestFormatPathReport(t *testing.T) {
	report := &service.PathReport{
		Unit:      service.UnitInfo{ID: "inf-1", Type: "Infantry"},
		To:        grid.Vec(2, 1),
		Reachable: true,
		Cost:      1,
		Steps:     []grid.Vector{grid.Vec(2, 1)},
	}
	if got := formatPathReport(report); !strings.Contains(got, "reaches (2,1) at cost 1 in 1 steps") {
		t.Errorf("Unexpected format: %s", got)
	}
}
