package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/2beens/liftdiary/internal/workouts"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Handler adapts the context service to MCP tool calls.
type Handler struct {
	service contextService
}

func NewHandler(service contextService) *Handler {
	return &Handler{
		service: service,
	}
}

// DayInput is the input of the per-day tools.
type DayInput struct {
	UserID string `json:"user_id" jsonschema:"Owner of the workouts (identity provider user id)"`
	Date   string `json:"date,omitempty" jsonschema:"Day as YYYY-MM-DD or an ISO-8601 date-time; defaults to today"`
}

func (h *Handler) GetSchemaTool() func(context.Context, *mcp.CallToolRequest, any) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ any) (*mcp.CallToolResult, any, error) {
		text, err := h.service.GetSchema(ctx)
		if err != nil {
			return errorResult("Error fetching schema: " + err.Error()), nil, nil
		}
		return textResult(text), nil, nil
	}
}

func (h *Handler) GetWorkoutsForDateTool() func(context.Context, *mcp.CallToolRequest, DayInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in DayInput) (*mcp.CallToolResult, any, error) {
		if in.UserID == "" {
			return errorResult("user_id is required"), nil, nil
		}
		nested, err := h.service.WorkoutsForDate(ctx, in.UserID, in.Date)
		if errors.Is(err, workouts.ErrInvalidDate) {
			return errorResult("Invalid date: use YYYY-MM-DD"), nil, nil
		}
		if err != nil {
			return errorResult("Error listing workouts: " + err.Error()), nil, nil
		}
		return jsonResult(workouts.NewWorkoutsResponse(nested)), nil, nil
	}
}

func (h *Handler) GetDailyStatsTool() func(context.Context, *mcp.CallToolRequest, DayInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in DayInput) (*mcp.CallToolResult, any, error) {
		if in.UserID == "" {
			return errorResult("user_id is required"), nil, nil
		}
		stats, err := h.service.DailyStats(ctx, in.UserID, in.Date)
		if errors.Is(err, workouts.ErrInvalidDate) {
			return errorResult("Invalid date: use YYYY-MM-DD"), nil, nil
		}
		if err != nil {
			return errorResult("Error computing daily stats: " + err.Error()), nil, nil
		}
		return jsonResult(stats), nil, nil
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error encoding response: " + err.Error())
	}
	return textResult(string(raw))
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}
