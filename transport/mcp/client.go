package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/tactics/game/config"
	"github.com/wricardo/mcp-training/tactics/game/engine"
	"github.com/wricardo/mcp-training/tactics/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Tactics Radius Engine",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Tactics Radius Engine - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Maps are grids of 1-based (x, y) coordinates, x to the right and y down.
Each unit has a movement type, a fuel budget and a movement radius. Moving
costs terrain points per entered tile; the reachable area is the set of
tiles whose cheapest path cost fits in min(radius, fuel).

AVAILABLE TOOLS:
- create_session / get_session / list_sessions: manage sessions
- list_scenarios: scenarios a session can be created from
- render_map: the current map as text (digits are units by player)
- describe_tile: terrain layers, per movement type costs and occupants
- moveable: every tile the unit at (x, y) can reach with its path cost
- attackable: every tile the unit at (x, y) can hit, and hostile targets
- movement_path: cheapest path from a unit to a tile
- move_unit: move a unit to a reachable tile, spending fuel
- radius_rules: the movement and attack rules`),
	)

	c.registerTools()
}

func sessionParam() mcp.ToolOption {
	return mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID"))
}

func positionParams(prefix, what string) []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithNumber(prefix+"x", mcp.Required(), mcp.Description(what+" column (1-based)")),
		mcp.WithNumber(prefix+"y", mcp.Required(), mcp.Description(what+" row (1-based)")),
	}
}

func tool(name, description string, opts ...mcp.ToolOption) mcp.Tool {
	return mcp.NewTool(name, append([]mcp.ToolOption{mcp.WithDescription(description)}, opts...)...)
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(tool("create_session", "Create a new session from a scenario",
		mcp.WithString("scenario", mcp.Description("Scenario id (optional, the default scenario when empty)")),
	), c.handleCreateSession)

	c.mcpServer.AddTool(tool("list_sessions", "List all active sessions"), c.handleListSessions)

	c.mcpServer.AddTool(tool("get_session", "Get details of a specific session", sessionParam()), c.handleGetSession)

	c.mcpServer.AddTool(tool("list_scenarios", "List available scenarios"), c.handleListScenarios)

	c.mcpServer.AddTool(tool("render_map", "Render the session map as text", sessionParam()), c.handleRenderMap)

	// Radius queries
	c.mcpServer.AddTool(tool("describe_tile", "Describe the terrain, costs and occupants of a tile",
		append([]mcp.ToolOption{sessionParam()}, positionParams("", "Tile")...)...,
	), c.handleDescribeTile)

	c.mcpServer.AddTool(tool("moveable", "List every tile the unit at (x, y) can reach this turn",
		append([]mcp.ToolOption{
			sessionParam(),
			mcp.WithNumber("radius", mcp.Description("Override the unit's movement radius")),
		}, positionParams("", "Unit")...)...,
	), c.handleMoveable)

	c.mcpServer.AddTool(tool("attackable", "List every tile the unit at (x, y) can attack this turn",
		append([]mcp.ToolOption{
			sessionParam(),
			mcp.WithString("mode",
				mcp.Enum(engine.AttackModeDefault.String(), engine.AttackModeCost.String()),
				mcp.Description("default: fire from every standable tile within the radius; cost: only from tiles the unit can actually reach")),
			mcp.WithNumber("radius", mcp.Description("Override the unit's movement radius")),
		}, positionParams("", "Unit")...)...,
	), c.handleAttackable)

	pathOpts := append([]mcp.ToolOption{sessionParam()}, positionParams("from_", "Unit")...)
	c.mcpServer.AddTool(tool("movement_path", "Cheapest path for the unit at from to reach to this turn",
		append(pathOpts, positionParams("to_", "Target")...)...,
	), c.handleMovementPath)

	// Game operations
	moveOpts := append([]mcp.ToolOption{sessionParam()}, positionParams("from_", "Unit")...)
	moveOpts = append(moveOpts, positionParams("to_", "Target")...)
	moveOpts = append(moveOpts, mcp.WithString("intent",
		mcp.Description("Brief explanation of the intent behind this move")))
	c.mcpServer.AddTool(tool("move_unit", "Move a unit to a reachable tile, spending fuel", moveOpts...), c.handleMoveUnit)

	c.mcpServer.AddTool(tool("radius_rules", "Explain the movement and attack rules"), c.handleRules)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result == nil {
		return nil
	}
	if text, ok := result.(*string); ok {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		*text = string(data)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

// Argument helpers

func arguments(request mcp.CallToolRequest) map[string]any {
	args, _ := request.Params.Arguments.(map[string]any)
	if args == nil {
		return map[string]any{}
	}
	return args
}

func stringArg(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return s
}

func intArg(args map[string]any, name string) (int, error) {
	switch v := args[name].(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case string:
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%s must be an integer", name)
}

func sessionPath(args map[string]any, suffix string) (string, error) {
	id := stringArg(args, "session_id")
	if id == "" {
		return "", fmt.Errorf("session_id is required")
	}
	return "/api/sessions/" + url.PathEscape(id) + suffix, nil
}

func positionQuery(args map[string]any, prefix string) (url.Values, error) {
	x, err := intArg(args, prefix+"x")
	if err != nil {
		return nil, err
	}
	y, err := intArg(args, prefix+"y")
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("x", fmt.Sprint(x))
	q.Set("y", fmt.Sprint(y))
	if r, ok := args["radius"].(float64); ok {
		q.Set("radius", fmt.Sprint(r))
	}
	return q, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	body := map[string]string{}
	if scenario := stringArg(args, "scenario"); scenario != "" {
		body["scenario"] = scenario
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, http.MethodPost, "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Created session: " + session.ID + "\n\n" + formatSessionInfo(&session)), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, http.MethodGet, "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		fmt.Fprintf(&b, "- %s (Scenario: %s, %dx%d, Moves: %d, Created: %s)\n",
			s.ID, s.Scenario, s.Width, s.Height, s.Moves, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleListScenarios(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var scenarios []config.ScenarioInfo
	if err := c.apiCall(ctx, http.MethodGet, "/api/scenarios", nil, &scenarios); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Available Scenarios (%d):\n\n", len(scenarios))
	for _, s := range scenarios {
		fmt.Fprintf(&b, "- %s: %s (%dx%d, %d units)\n  %s\n", s.ScenarioID, s.Name, s.Width, s.Height, s.Units, s.Description)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleRenderMap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/map")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var text string
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &text); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(numberedMap(text)), nil
}

func (c *Client) handleDescribeTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/tile")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	q, err := positionQuery(args, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var tile service.TileInfo
	if err := c.apiCall(ctx, http.MethodGet, path+"?"+q.Encode(), nil, &tile); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatTile(&tile)), nil
}

func (c *Client) handleMoveable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/moveable")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	q, err := positionQuery(args, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var report service.RadiusReport
	if err := c.apiCall(ctx, http.MethodGet, path+"?"+q.Encode(), nil, &report); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatRadiusReport(&report)), nil
}

func (c *Client) handleAttackable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/attackable")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	q, err := positionQuery(args, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if mode := stringArg(args, "mode"); mode != "" {
		q.Set("mode", mode)
	}

	var report service.AttackReport
	if err := c.apiCall(ctx, http.MethodGet, path+"?"+q.Encode(), nil, &report); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatAttackReport(&report)), nil
}

func (c *Client) handleMovementPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	from, err := positionQuery(args, "from_")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, err := positionQuery(args, "to_")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	q := url.Values{}
	q.Set("from", from.Get("x")+","+from.Get("y"))
	q.Set("to", to.Get("x")+","+to.Get("y"))

	var report service.PathReport
	if err := c.apiCall(ctx, http.MethodGet, path+"?"+q.Encode(), nil, &report); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatPathReport(&report)), nil
}

func (c *Client) handleMoveUnit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/move")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	coords := make(map[string]int, 4)
	for _, name := range []string{"from_x", "from_y", "to_x", "to_y"} {
		v, err := intArg(args, name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		coords[name] = v
	}
	// intent is accepted so agents explain their moves; the server ignores it
	body := map[string]any{
		"from": map[string]int{"x": coords["from_x"], "y": coords["from_y"]},
		"to":   map[string]int{"x": coords["to_x"], "y": coords["to_y"]},
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, http.MethodPost, path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(rules), nil
}

const rules = `Tactics Radius Engine - Rules

MOVEMENT:
- A unit moves between orthogonally adjacent tiles (up, right, down, left).
- Entering a tile costs that tile's cost for the unit's movement type.
  Impassable tiles cannot be entered.
- Some tiles add transition costs when a unit enters, stays within or leaves
  a zone. Soldiers save 0.5 per step inside or across trenches.
  The space biome cancels every transition cost.
- The budget is min(radius, fuel). A tile is reachable when the cheapest
  path cost to it fits in the budget.
- Hostile units block. Friendly units can be passed through but not stood on,
  except friendly transporters with room, which the unit boards.
- Ships pass bridges only where the bridge spans open sea.
- Moving spends fuel equal to the path cost rounded up.

ATTACKS:
- default mode: the unit may fire from its position and every tile within
  its radius (by distance) it could stand on.
- cost mode: only from tiles it can actually reach this turn.
- Weapons hit tiles at Manhattan distance between their minimum and maximum
  range from the firing tile. Stationary weapons only fire from the unit's
  current position.

MAP:
- Coordinates are 1-based: (1,1) is the top-left tile.
- Digits in rendered maps are units, showing the owning player.
- * marks reachable tiles, x marks attackable tiles.`

// Formatting

func formatSessionInfo(session *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\nScenario: %s\nMap: %dx%d (%s)\nMoves: %d\n\nUnits:\n",
		session.ID, session.Scenario, session.Width, session.Height, session.Biome, session.Moves)
	for _, u := range session.Units {
		b.WriteString(formatUnit(u))
	}
	b.WriteString("\n")
	b.WriteString(numberedMap(session.Map))
	return b.String()
}

func formatUnit(u service.UnitInfo) string {
	line := fmt.Sprintf("- %s %s (player %d) at (%d,%d): %s, radius %d, fuel %d",
		u.ID, u.Type, u.Player, u.Position.X, u.Position.Y, u.MovementType, u.Radius, u.Fuel)
	if len(u.Transports) > 0 {
		line += ", carrying " + strings.Join(u.Transports, ", ")
	}
	return line + "\n"
}

// numberedMap prefixes rows and columns with their 1-based coordinates
func numberedMap(rendered string) string {
	rows := strings.Split(strings.TrimRight(rendered, "\n"), "\n")
	if len(rows) == 0 || rows[0] == "" {
		return rendered
	}
	var b strings.Builder
	b.WriteString("    ")
	for x := 1; x <= len([]rune(rows[0])); x++ {
		b.WriteByte(byte('0' + x%10))
	}
	b.WriteString("\n")
	for y, row := range rows {
		fmt.Fprintf(&b, "%3d %s\n", y+1, row)
	}
	return b.String()
}

func formatTile(tile *service.TileInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tile (%d,%d): %s\n", tile.Position.X, tile.Position.Y, strings.Join(tile.Layers, " under "))
	if tile.Building != "" {
		fmt.Fprintf(&b, "Building: %s\n", tile.Building)
	}
	if tile.Unit != nil {
		b.WriteString("Unit: ")
		b.WriteString(strings.TrimPrefix(formatUnit(*tile.Unit), "- "))
	}
	b.WriteString("Costs:\n")
	for _, name := range slices.Sorted(maps.Keys(tile.Costs)) {
		cost := tile.Costs[name]
		if cost < 0 {
			fmt.Fprintf(&b, "  %-13s impassable\n", name)
			continue
		}
		fmt.Fprintf(&b, "  %-13s %g\n", name, cost)
	}
	return b.String()
}

func formatRadiusReport(report *service.RadiusReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s at (%d,%d) can spend %g movement points.\n",
		report.Unit.Type, report.Unit.ID, report.Unit.Position.X, report.Unit.Position.Y, report.Radius)
	fmt.Fprintf(&b, "Reachable tiles (%d, cost from origin):\n", len(report.Items))
	for _, item := range report.Items {
		fmt.Fprintf(&b, "  (%d,%d) %g\n", item.Vector.X, item.Vector.Y, item.Cost)
	}
	fmt.Fprintf(&b, "Valid destinations: %d\n\n", len(report.Destinations))
	b.WriteString(numberedMap(report.Map))
	return b.String()
}

func formatAttackReport(report *service.AttackReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s at (%d,%d) threatens %d tiles (%s mode).\n",
		report.Unit.Type, report.Unit.ID, report.Unit.Position.X, report.Unit.Position.Y, len(report.Items), report.Mode)
	if len(report.Targets) == 0 {
		b.WriteString("No hostile units in range.\n")
	} else {
		b.WriteString("Targets:\n")
		for _, t := range report.Targets {
			fmt.Fprintf(&b, "  (%d,%d) from (%d,%d)\n", t.Vector.X, t.Vector.Y, t.Parent.X, t.Parent.Y)
		}
	}
	b.WriteString("\n")
	b.WriteString(numberedMap(report.Map))
	return b.String()
}

func formatPathReport(report *service.PathReport) string {
	if !report.Reachable {
		return fmt.Sprintf("%s %s cannot reach (%d,%d) this turn.",
			report.Unit.Type, report.Unit.ID, report.To.X, report.To.Y)
	}
	steps := make([]string, 0, len(report.Steps))
	for _, s := range report.Steps {
		steps = append(steps, fmt.Sprintf("(%d,%d)", s.X, s.Y))
	}
	text := fmt.Sprintf("%s %s reaches (%d,%d) at cost %g in %d steps:\n%s",
		report.Unit.Type, report.Unit.ID, report.To.X, report.To.Y, report.Cost, len(report.Steps), strings.Join(steps, " -> "))
	if report.Map != "" {
		text += "\n\n" + numberedMap(report.Map)
	}
	return text
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nCost: %g, fuel used: %d\n", result.Message, result.Cost, result.FuelUsed)
	b.WriteString(formatUnit(result.Unit))
	if result.Session != nil {
		b.WriteString("\n")
		b.WriteString(numberedMap(result.Session.Map))
	}
	return b.String()
}
