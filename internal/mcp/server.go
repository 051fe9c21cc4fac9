package mcp

import (
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	ServerName    = "liftdiary"
	ServerVersion = "1.0.0"
)

// NewServer builds the liftdiary MCP server. It is served over HTTP at /mcp by the
// backend and over stdio by liftctl.
func NewServer(schemaRepo SchemaRepo, workoutsService workoutsReader) *mcp.Server {
	h := NewHandler(NewContextService(schemaRepo, workoutsService))
	s := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_liftdiary_schema",
		Description: "Returns the DB schema of the workout tracking tables (exercises, workouts, workout_exercises, sets): columns, types, nullable, default.",
	}, h.GetSchemaTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_workouts_for_date",
		Description: "Returns the user's workouts started on the given local day, each with its exercises in order and their sets. Args: user_id; optional date (YYYY-MM-DD, defaults to today).",
	}, h.GetWorkoutsForDateTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_daily_stats",
		Description: "Returns completed workouts, total duration in minutes and distinct exercises for the user's local day. Args: user_id; optional date (YYYY-MM-DD, defaults to today).",
	}, h.GetDailyStatsTool())

	return s
}

// NewHTTPHandler serves the given MCP server over the streamable HTTP transport.
func NewHTTPHandler(s *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s
	}, nil)
}
