//go:build integration_test || all_tests

package test

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/2beens/liftdiary/internal/middleware"
	"github.com/2beens/liftdiary/internal/workouts"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// secretTransport adds the MCP secret header to every request of the MCP client.
type secretTransport struct {
	secret string
}

func (t secretTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set(middleware.MCPSecretHeader, t.secret)
	return http.DefaultTransport.RoundTrip(req)
}

func (s *IntegrationTestSuite) TestMCP_OverHTTP() {
	ctx := context.Background()
	t := s.T()

	s.seedDay()

	resp, _ := s.doRequest(ctx, http.MethodPost, "/mcp", "", map[string]string{})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	client := mcp.NewClient(&mcp.Implementation{Name: "e2e-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{
		Endpoint:   serverEndpoint + "/mcp",
		HTTPClient: &http.Client{Transport: secretTransport{secret: testMCPSecret}},
	}, nil)
	require.NoError(t, err)
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, tools.Tools, 3)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "get_workouts_for_date",
		Arguments: map[string]any{"user_id": "u1", "date": "2024-01-15"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)

	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	var listResp workouts.WorkoutsResponse
	require.NoError(t, json.Unmarshal([]byte(text.Text), &listResp))
	require.Len(t, listResp.Workouts, 1)
	assert.Len(t, listResp.Workouts[0].Exercises, 2)

	res, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "get_daily_stats",
		Arguments: map[string]any{"user_id": "u1", "date": "2024-01-15"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	text, ok = res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.JSONEq(t, `{"completedWorkouts":1,"totalDuration":45,"totalExercises":2}`, text.Text)
}
