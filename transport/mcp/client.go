package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/shortestmaze/game/engine"
	"github.com/wricardo/mcp-training/shortestmaze/game/pathfind"
	"github.com/wricardo/mcp-training/shortestmaze/game/service"
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
		baseURL: strings.TrimRight(baseURL, "/"),
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
		"Shortest Maze",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Shortest Maze - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Walk from the start (S) to the destination (D) on a square grid using the
fewest possible steps. Obstacles (#) and the grid edge block movement.

AVAILABLE TOOLS:
- create_session / get_session / list_sessions: manage game sessions
- game_state: current board and position
- move / bulk_move: step up/down/left/right (explain your intent!)
- hint: the next step of a shortest route from where you stand
- solution: the optimal route, only available once the game is over
- reset_game: new board, restart_game: replay the same board
- move_history: past moves
- find_path: shortest path on any grid you describe
- list_configs / game_instructions: configurations and rules

NOTE: The 'intent' parameter on move/bulk_move tools serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func positionProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"row":    map[string]interface{}{"type": "integer", "minimum": 1},
			"column": map[string]interface{}{"type": "integer", "minimum": 1},
		},
		"required": []string{"row", "column"},
	}
}

func sessionOnlyTool(name, description string) mcp.Tool {
	return mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"session_id": sessionIDProperty()},
			Required:   []string{"session_id"},
		},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the config to use, see list_configs (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(sessionOnlyTool("get_session", "Get details of a specific session"), c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(sessionOnlyTool("game_state", "Get the current game state and board"), c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the player one cell in a direction",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        engine.DirectionNames,
					"description": "Direction to move",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Generate a new board before moving",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: fmt.Sprintf("Execute up to %d moves in sequence, stopping at the first blocked move", engine.MaxBulkMoves),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"moves": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": engine.DirectionNames,
					},
					"description": "Array of moves",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of moves (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Generate a new board before moving",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handleBulkMove)

	c.mcpServer.AddTool(sessionOnlyTool("reset_game", "Generate a new board for the session"), c.handleReset)
	c.mcpServer.AddTool(sessionOnlyTool("restart_game", "Replay the current board from the start"), c.handleRestart)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(sessionOnlyTool("solution", "Reveal the optimal route. Only available after the game is over."), c.handleSolution)
	c.mcpServer.AddTool(sessionOnlyTool("hint", "Get the next step of a shortest route from the current position"), c.handleHint)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get what occupies a specific cell of the board (open, obstacle, start, destination or boundary)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the cell (1-based, row 1 is the top)",
				},
				"column": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the cell (1-based, column 1 is the left edge)",
				},
			},
			Required: []string{"session_id", "row", "column"},
		},
	}, c.handleDescribeCell)

	// Pathfinding
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "find_path",
		Description: "Find a shortest path on a square grid of the given size, avoiding blocked cells",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"grid_size": map[string]interface{}{
					"type":        "integer",
					"description": "Side length of the square grid",
				},
				"start":       positionProperty("Start cell"),
				"destination": positionProperty("Destination cell"),
				"blocked": map[string]interface{}{
					"type":        "array",
					"items":       positionProperty("Blocked cell"),
					"description": "Cells that cannot be entered",
				},
			},
			Required: []string{"grid_size", "start", "destination"},
		},
	}, c.handleFindPath)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// apiError mirrors the error body written by the REST API
type apiError struct {
	Status     string   `json:"status"`
	Error      string   `json:"error"`
	Validation []string `json:"validation"`
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
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
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp apiError
		if json.NewDecoder(resp.Body).Decode(&errResp) == nil && errResp.Error != "" {
			if len(errResp.Validation) > 0 {
				return fmt.Errorf("%s", strings.Join(errResp.Validation, "; "))
			}
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID string, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	}
	return 0, false
}

func positionArg(args map[string]interface{}, key string) (pathfind.Position, bool) {
	raw, ok := args[key].(map[string]interface{})
	if !ok {
		return pathfind.Position{}, false
	}
	row, okRow := intArg(raw, "row")
	column, okColumn := intArg(raw, "column")
	return pathfind.Position{Row: row, Column: column}, okRow && okColumn
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	configID, _ := args["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "playing"
		if s.GameState != nil && s.GameState.GameOver {
			status = "finished"
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Created: %s, %s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"), status)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := request.GetArguments()["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := request.GetArguments()["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)
	direction, _ := args["direction"].(string)
	reset, _ := args["reset"].(bool)
	// intent is only for the caller's benefit

	body := map[string]interface{}{
		"direction": direction,
		"reset":     reset,
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)
	movesRaw, _ := args["moves"].([]interface{})
	reset, _ := args["reset"].(bool)

	moves := make([]string, 0, len(movesRaw))
	for _, m := range movesRaw {
		if move, ok := m.(string); ok {
			moves = append(moves, move)
		}
	}

	body := map[string]interface{}{
		"moves": moves,
		"reset": reset,
	}

	var result service.BulkMoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/bulk-move"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkMoveResult(sessionID, &result)), nil
}

func (c *Client) boardChange(ctx context.Context, request mcp.CallToolRequest, action string) (*mcp.CallToolResult, error) {
	sessionID, _ := request.GetArguments()["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/"+action), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.boardChange(ctx, request, "reset")
}

func (c *Client) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.boardChange(ctx, request, "restart")
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", strconv.Itoa(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", strconv.Itoa(limit))
	}
	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Also fetch current segment from live state
	result := formatHistory(&history)
	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err == nil {
		result += "\n" + formatCurrentSegment(session.GameState)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleSolution(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := request.GetArguments()["session_id"].(string)

	var solution service.SolutionResponse
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/solution"), nil, &solution); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSolution(&solution)), nil
}

func (c *Client) handleHint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := request.GetArguments()["session_id"].(string)

	var hint engine.Hint
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/hint"), nil, &hint); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Next step: %s to %s\nSteps remaining: %d\n", hint.Direction, hint.Next, hint.StepsRemaining)
	if hint.OnOptimalPath {
		result += "You are still on the optimal route.\n"
	} else {
		result += "You have left the optimal route; this game can no longer be won.\n"
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)
	row, okRow := intArg(args, "row")
	column, okColumn := intArg(args, "column")
	if !okRow || !okColumn {
		return mcp.NewToolResultError("row and column are required integers"), nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	p := pathfind.Position{Row: row, Column: column}
	cell := state.CellAt(p)

	var b strings.Builder
	fmt.Fprintf(&b, "Cell %s: %s\n", p, cell)
	switch cell {
	case engine.Boundary:
		fmt.Fprintf(&b, "Outside the %dx%d grid. Impassable.\n", state.GridSize, state.GridSize)
	case engine.Obstacle:
		b.WriteString("Obstacle (#). Impassable.\n")
	case engine.Destination:
		b.WriteString("Destination (D). Reaching it ends the game.\n")
	case engine.Start:
		b.WriteString("Start (S). Passable.\n")
	default:
		b.WriteString("Open (.). Passable.\n")
	}
	if p == state.PlayerPos {
		b.WriteString("You are standing here.\n")
	}
	if d := pathfind.Manhattan(state.PlayerPos, p); d > 0 {
		fmt.Fprintf(&b, "Manhattan distance from you: %d\n", d)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleFindPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	gridSize, ok := intArg(args, "grid_size")
	if !ok {
		return mcp.NewToolResultError("grid_size is required"), nil
	}
	start, okStart := positionArg(args, "start")
	destination, okDest := positionArg(args, "destination")
	if !okStart || !okDest {
		return mcp.NewToolResultError("start and destination need integer row and column"), nil
	}

	req := service.PathRequest{GridSize: gridSize, Start: start, Destination: destination}
	if raw, ok := args["blocked"].([]interface{}); ok {
		for _, item := range raw {
			if cell, ok := item.(map[string]interface{}); ok {
				row, okRow := intArg(cell, "row")
				column, okColumn := intArg(cell, "column")
				if okRow && okColumn {
					req.Blocked = append(req.Blocked, pathfind.Position{Row: row, Column: column})
				}
			}
		}
	}

	var result service.PathResult
	if err := c.apiCall(ctx, "POST", "/api/path", req, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPathResult(&req, &result)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		rule := "exact optimal route"
		if config.AllowAnyShortestPath {
			rule = "any shortest route"
		}
		fmt.Fprintf(&b, "• %s (config_id: %s)\n  %s\n  Grid: %dx%d, Obstacles: %d-%d, Wins with: %s\n\n",
			config.Name, config.ConfigID, config.Description, config.GridSize, config.GridSize,
			config.MinObstacles, config.MaxObstacles, rule)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Shortest Maze - Complete Instructions

GAME OBJECTIVE:
Walk from the start cell to the destination cell in as few steps as possible.
Every board has at least one route; the server computes the optimal one with
A* search before you move.

COORDINATES:
• Positions are (row,column), both 1-based
• Row 1 is the top of the board, column 1 the left edge
• up = row-1, down = row+1, left = column-1, right = column+1

BOARD LEGEND:
• S - Start
• D - Destination
• P - You (the player)
• # - Obstacle (impassable)
• . - Open cell
After the game is over the board also shows:
• * - A cell of the optimal route
• x - A cell you visited off the optimal route

RULES:
• Each successful move costs one step; blocked moves cost nothing but are recorded
• Reaching D ends the game
• VICTORY: depending on the configuration you must either follow the exact
  optimal route, or take any route of optimal length
• DEFEAT: you reached D with more steps than necessary
• The solution tool only works once the game is over
• reset_game deals a new board, restart_game replays the current one

STRATEGY:
1. Read the board row by row; note the positions of S, D and every # near them
2. The Manhattan distance |Δrow|+|Δcolumn| is a lower bound on the steps needed
3. Any step away from D must be paid back, so only detour around obstacles
4. Use hint if unsure; it tells you whether you are still on the optimal route
5. Use find_path to plan on a copy of the board before committing moves
6. Prefer bulk_move once your route is planned

MOVEMENT COMMANDS:
- up, down, left, right - Single moves in cardinal directions
- bulk_move - Execute a planned sequence; stops at the first blocked move
- reset parameter available on move/bulk_move for a fresh board`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder

	fmt.Fprintf(&result, "Board #%d (%dx%d) | Position: %s | Destination: %s | Steps: %d | Moves: %d\n",
		state.BoardNumber, state.GridSize, state.GridSize,
		state.PlayerPos, state.Destination, state.StepsTaken(), state.TotalMoves)
	if pm := computePossibleMoves(state); len(pm) > 0 {
		fmt.Fprintf(&result, "Possible moves: %s\n", strings.Join(pm, ","))
	}
	result.WriteString("\n")

	board := state.Board
	if len(board) == 0 {
		board = state.Render(state.GameOver)
	}
	for _, row := range board {
		result.WriteString(row)
		result.WriteString("\n")
	}

	if state.GameOver {
		if state.Victory {
			result.WriteString("\n🎉 VICTORY!")
		} else {
			result.WriteString("\n💀 DEFEAT")
		}
		fmt.Fprintf(&result, " Steps: %d, optimal: %d", state.StepsTaken(), state.OptimalSteps)
	}

	if state.Message != "" {
		fmt.Fprintf(&result, "\nMessage: %s", state.Message)
	}

	return result.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Move successful\n")
	} else {
		b.WriteString("✗ Move failed\n")
	}

	if s := result.Step; s != nil {
		fmt.Fprintf(&b, "Step: %s %s→%s tile=%s ✓\n", s.Dir, s.From, s.To, s.TileChar)
	}

	if a := result.AttemptedTo; a != nil {
		passStr := "impassable"
		if a.Passable {
			passStr = "passable"
		}
		fmt.Fprintf(&b, "Blocked: attempted (%d,%d) tile=%s %s (%s)\n", a.Row, a.Column, a.TileChar, a.TileType, passStr)
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder

	gridSize := 0
	configName := ""
	if result.GameState != nil {
		gridSize = result.GameState.GridSize
		configName = result.GameState.ConfigName
	}
	fmt.Fprintf(&b, "Session: %s • Config: %s • Grid: %dx%d\n", sessionID, configName, gridSize, gridSize)

	fmt.Fprintf(&b, "Executed %d/%d moves %s→%s\n", result.MovesExecuted, result.RequestedMoves, result.StartPos, result.EndPos)
	if result.Truncated {
		fmt.Fprintf(&b, "Only the first %d moves were considered\n", result.Limit)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped on move %d: %s (%s)\n", result.StoppedOnMove, result.StoppedReason, result.StopReasonCode)
	}
	if a := result.AttemptedTo; a != nil {
		fmt.Fprintf(&b, "Blocked: attempted (%d,%d) tile=%s %s\n", a.Row, a.Column, a.TileChar, a.TileType)
	}

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps (this call):\n")
		for _, s := range result.Steps {
			line := fmt.Sprintf("%d. %s %s→%s tile=%s", s.Idx, s.Dir, s.From, s.To, s.TileChar)
			if s.Arrived {
				line += " arrived"
			}
			b.WriteString(line + "\n")
		}
	}

	if result.GameOverCode != "" {
		fmt.Fprintf(&b, "\nGame over: %s (%d steps, optimal %d)\n", result.GameOverCode, result.StepsTaken, result.OptimalSteps)
	} else if len(result.PossibleMoves) > 0 {
		fmt.Fprintf(&b, "\nPossible moves: %s\n", strings.Join(result.PossibleMoves, ","))
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

// computePossibleMoves returns the directions that lead to a free cell
func computePossibleMoves(state *engine.GameState) []string {
	if state == nil || state.GameOver {
		return nil
	}
	var res []string
	for i, d := range pathfind.CardinalDirections {
		if state.CanMoveTo(state.PlayerPos.Add(d)) {
			res = append(res, engine.DirectionNames[i])
		}
	}
	return res
}

func formatPositions(path []pathfind.Position) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = p.String()
	}
	return strings.Join(parts, " → ")
}

func formatSolution(solution *service.SolutionResponse) string {
	var b strings.Builder
	outcome := "defeat"
	if solution.Victory {
		outcome = "victory"
	}
	fmt.Fprintf(&b, "Outcome: %s\n", outcome)
	fmt.Fprintf(&b, "Optimal route (%d steps): %s\n", solution.OptimalSteps, formatPositions(solution.ShortestPath))
	fmt.Fprintf(&b, "Your route (%d steps): %s\n\n", solution.StepsTaken, formatPositions(solution.PathTaken))
	for _, row := range solution.Board {
		b.WriteString(row + "\n")
	}
	return b.String()
}

func formatPathResult(req *service.PathRequest, result *service.PathResult) string {
	if !result.Found {
		return fmt.Sprintf("No path from %s to %s on a %dx%d grid with %d blocked cells (%d nodes expanded)\n",
			req.Start, req.Destination, req.GridSize, req.GridSize, len(req.Blocked), result.Expanded)
	}
	return fmt.Sprintf("Shortest path (%d steps, %d nodes expanded):\n%s\n",
		result.Steps, result.Expanded, formatPositions(result.Path))
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d) - Total (cumulative): %d\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		fmt.Fprintf(&b, "%d. %s\n", move.MoveNumber, formatHistoryEntry(move))
	}

	return b.String()
}

func formatHistoryEntry(move engine.MoveHistoryEntry) string {
	if move.Success {
		return fmt.Sprintf("%s ✓ %s→%s", move.Action, move.FromPosition, move.ToPosition)
	}
	return fmt.Sprintf("%s ✗ at %s", move.Action, move.FromPosition)
}

func formatCurrentSegment(state *engine.GameState) string {
	if state == nil {
		return "Current Segment: unavailable"
	}
	header := fmt.Sprintf("Current Board - Moves: %d\n\n", state.CurrentMovesCount)
	if len(state.CurrentMoves) == 0 {
		return header + "(no moves on this board yet)"
	}
	var b strings.Builder
	b.WriteString(header)
	for i, move := range state.CurrentMoves {
		fmt.Fprintf(&b, "%d. %s\n", i+1, formatHistoryEntry(move))
	}
	return b.String()
}
