package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MCPSession represents an MCP session
type MCPSession struct {
	ID      string
	Created int64
}

var (
	mcpSessions = make(map[string]*MCPSession)
	sessionMu   sync.RWMutex
)

// MCPRequest represents an MCP JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an MCP JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents an MCP error
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// MCPHandler handles MCP protocol requests, exposing research jobs as
// tools so MCP clients can start sessions and read reports.
func (h *Handler) MCPHandler(c *gin.Context) {
	sessionID := c.GetHeader("Mcp-Session-Id")

	var req MCPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, MCPResponse{
			JSONRPC: "2.0",
			ID:      nil,
			Error: &MCPError{
				Code:    -32700,
				Message: "Parse error",
			},
		})
		return
	}

	// Handle initialize request
	if req.Method == "initialize" {
		if sessionID == "" {
			sessionID = uuid.New().String()
			c.Header("Mcp-Session-Id", sessionID)

			sessionMu.Lock()
			mcpSessions[sessionID] = &MCPSession{
				ID:      sessionID,
				Created: time.Now().Unix(),
			}
			sessionMu.Unlock()
		}

		c.JSON(http.StatusOK, MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result: map[string]interface{}{
				"protocolVersion": "2024-11-05",
				"serverInfo": map[string]interface{}{
					"name":    "deep-researcher-mcp",
					"version": "1.0.0",
				},
				"capabilities": map[string]interface{}{
					"tools": map[string]interface{}{},
				},
			},
		})
		return
	}

	// Validate session for other requests
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32000,
				Message: "Bad Request: No valid session ID provided",
			},
		})
		return
	}

	sessionMu.RLock()
	_, exists := mcpSessions[sessionID]
	sessionMu.RUnlock()

	if !exists {
		c.JSON(http.StatusBadRequest, MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32000,
				Message: "Invalid session ID",
			},
		})
		return
	}

	switch req.Method {
	case "tools/list":
		h.handleToolsList(c, req)
	case "tools/call":
		h.handleToolsCall(c, req)
	case "ping":
		c.JSON(http.StatusOK, MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		})
	default:
		c.JSON(http.StatusOK, MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: "Method not found",
			},
		})
	}
}

func (h *Handler) handleToolsList(c *gin.Context, req MCPRequest) {
	c.JSON(http.StatusOK, MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": []map[string]interface{}{
				{
					"name":        "start_research",
					"description": "Start an autonomous web research session on a topic. Returns the job id to poll.",
					"inputSchema": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"topic": map[string]interface{}{
								"type":        "string",
								"description": "The research topic.",
							},
							"max_loops": map[string]interface{}{
								"type":        "number",
								"description": "Upper bound on research iterations.",
								"default":     3,
							},
						},
						"required": []string{"topic"},
					},
				},
				{
					"name":        "get_research",
					"description": "Get the status and, when finished, the cited report of a research job.",
					"inputSchema": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"id": map[string]interface{}{
								"type":        "string",
								"description": "The research job id.",
							},
						},
						"required": []string{"id"},
					},
				},
				{
					"name":        "list_research",
					"description": "List recent research jobs with their status.",
					"inputSchema": map[string]interface{}{
						"type":       "object",
						"properties": map[string]interface{}{},
					},
				},
			},
		},
	})
}

func (h *Handler) handleToolsCall(c *gin.Context, req MCPRequest) {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}

	if err := json.Unmarshal(req.Params, &params); err != nil {
		h.sendError(c, req.ID, -32602, "Invalid params")
		return
	}

	ctx := c.Request.Context()

	switch params.Name {
	case "start_research":
		var args struct {
			Topic    string `json:"topic"`
			MaxLoops int    `json:"max_loops"`
		}
		if err := json.Unmarshal(params.Arguments, &args); err != nil || args.Topic == "" {
			h.sendError(c, req.ID, -32602, "Invalid arguments: topic is required")
			return
		}
		job, err := h.Service.CreateJob(ctx, CreateJobRequest{Topic: args.Topic, MaxLoops: args.MaxLoops})
		if err != nil {
			h.sendError(c, req.ID, -32603, err.Error())
			return
		}
		h.sendResult(c, req.ID, fmt.Sprintf("Research started. Job id: %s", job.ID))

	case "get_research":
		var args struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(params.Arguments, &args); err != nil {
			h.sendError(c, req.ID, -32602, "Invalid arguments")
			return
		}
		id, err := uuid.Parse(args.ID)
		if err != nil {
			h.sendError(c, req.ID, -32602, "Invalid job id")
			return
		}
		job, err := h.Service.GetJob(ctx, id)
		if err != nil {
			h.sendError(c, req.ID, -32603, err.Error())
			return
		}
		text := fmt.Sprintf("Status: %s\nTopic: %s", job.Status, job.Topic)
		if job.Report != nil {
			text += "\n\n" + *job.Report
		}
		h.sendResult(c, req.ID, text)

	case "list_research":
		jobs, err := h.Service.ListJobs(ctx)
		if err != nil {
			h.sendError(c, req.ID, -32603, err.Error())
			return
		}
		text := ""
		for _, job := range jobs {
			text += fmt.Sprintf("%s | %s | %s\n", job.ID, job.Status, job.Topic)
		}
		if text == "" {
			text = "No research jobs yet."
		}
		h.sendResult(c, req.ID, text)

	default:
		h.sendError(c, req.ID, -32601, fmt.Sprintf("Tool not found: %s", params.Name))
	}
}

func (h *Handler) sendError(c *gin.Context, id interface{}, code int, msg string) {
	c.JSON(http.StatusOK, MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: msg,
		},
	})
}

func (h *Handler) sendResult(c *gin.Context, id interface{}, text string) {
	c.JSON(http.StatusOK, MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": text,
				},
			},
		},
	})
}
