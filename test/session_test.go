//go:build integration_test || all_tests

package test

import (
	"context"
	"io"
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestHealthz() {
	resp, body := s.doRequest(context.Background(), http.MethodGet, "/healthz", "", nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	assert.JSONEq(s.T(), `{"status":"ok","version":"test-version-info"}`, string(body))
}

func (s *IntegrationTestSuite) TestLogout_RevokesToken() {
	ctx := context.Background()
	t := s.T()

	token := s.signToken("u1")
	resp, _ := s.doRequest(ctx, http.MethodGet, "/api/workouts?date=2024-01-15&userId=u1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := s.doRequest(ctx, http.MethodPost, "/a/logout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "logged-out", string(body))

	resp, _ = s.doRequest(ctx, http.MethodGet, "/api/workouts?date=2024-01-15&userId=u1", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// a fresh token for the same user is unaffected
	resp, _ = s.doRequest(ctx, http.MethodGet, "/api/workouts?date=2024-01-15&userId=u1", s.signToken("u1"), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func (s *IntegrationTestSuite) dashboardRequest(ctx context.Context, path, sessionToken string) (*http.Response, string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, serverEndpoint+path, nil)
	s.Require().NoError(err)
	if sessionToken != "" {
		req.AddCookie(&http.Cookie{Name: "__session", Value: sessionToken})
	}

	resp, err := s.httpClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	page, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp, string(page)
}

func (s *IntegrationTestSuite) TestDashboard() {
	ctx := context.Background()
	t := s.T()

	s.seedDay()

	resp, _ := s.dashboardRequest(ctx, "/dashboard", "")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/sign-in", resp.Header.Get("Location"))

	resp, page := s.dashboardRequest(ctx, "/dashboard?date=2024-01-15", s.signToken("u1"))
	require.Equal(t, http.StatusOK, resp.StatusCode, page)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, page, "Workouts for 15th Jan 2024")
	assert.Contains(t, page, `<span class="badge">Squat</span>`)
	assert.Contains(t, page, `<span class="badge">Bench Press</span>`)
	assert.Contains(t, page, "<td>45 mins</td>")
	assert.Contains(t, page, `<strong id="stat-completed">1</strong>`)
	assert.Contains(t, page, `<strong id="stat-duration">45 mins</strong>`)
	assert.Contains(t, page, `<strong id="stat-exercises">2</strong>`)

	resp, _ = s.dashboardRequest(ctx, "/dashboard?date=not-a-date", s.signToken("u1"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
