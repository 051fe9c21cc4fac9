//go:build integration_test || all_tests

package test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/2beens/liftdiary/internal/workouts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedDay logs u1's 2024-01-15 session plus data that must stay out of its results.
func (s *IntegrationTestSuite) seedDay() (workoutID int) {
	start := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	squatID := s.insertExercise("Squat")
	benchID := s.insertExercise("Bench Press")

	workoutID = s.insertWorkout("u1", start, timePtr(start.Add(45*time.Minute)))
	squat := s.insertWorkoutExercise(workoutID, squatID, 1)
	s.insertSet(squat, 100, 5, start.Add(5*time.Minute))
	s.insertSet(squat, 102.5, 3, start.Add(10*time.Minute))
	bench := s.insertWorkoutExercise(workoutID, benchID, 2)
	s.insertSet(bench, 60, 8, start.Add(20*time.Minute))

	// other user, same day
	other := s.insertWorkout("u2", start, timePtr(start.Add(time.Hour)))
	s.insertWorkoutExercise(other, squatID, 1)
	// same user, next day
	s.insertWorkout("u1", start.Add(24*time.Hour), nil)

	return workoutID
}

func (s *IntegrationTestSuite) TestListWorkouts_Day() {
	ctx := context.Background()
	t := s.T()

	workoutID := s.seedDay()
	token := s.signToken("u1")

	resp, body := s.doRequest(ctx, http.MethodGet, "/api/workouts?date=2024-01-15&userId=u1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

	var listResp workouts.WorkoutsResponse
	require.NoError(t, json.Unmarshal(body, &listResp))
	require.Len(t, listResp.Workouts, 1)

	w := listResp.Workouts[0]
	assert.Equal(t, workoutID, w.ID)
	assert.Equal(t, "2024-01-15T10:00:00.000Z", w.StartedAt)
	require.NotNil(t, w.CompletedAt)
	assert.Equal(t, "2024-01-15T10:45:00.000Z", *w.CompletedAt)

	require.Len(t, w.Exercises, 2)
	assert.Equal(t, "Squat", w.Exercises[0].Name)
	assert.Equal(t, 1, w.Exercises[0].Order)
	require.Len(t, w.Exercises[0].Sets, 2)
	require.NotNil(t, w.Exercises[0].Sets[0].Weight)
	assert.Equal(t, "100.00", *w.Exercises[0].Sets[0].Weight)
	assert.Equal(t, 5, *w.Exercises[0].Sets[0].Reps)
	assert.Equal(t, "102.50", *w.Exercises[0].Sets[1].Weight)

	assert.Equal(t, "Bench Press", w.Exercises[1].Name)
	assert.Equal(t, 2, w.Exercises[1].Order)
	require.Len(t, w.Exercises[1].Sets, 1)
	assert.Equal(t, 8, *w.Exercises[1].Sets[0].Reps)

	// no workouts that day
	resp, body = s.doRequest(ctx, http.MethodGet, "/api/workouts?date=2024-01-14&userId=u1", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"workouts":[]}`, string(body))
}

func (s *IntegrationTestSuite) TestListWorkouts_Errors() {
	ctx := context.Background()
	t := s.T()

	token := s.signToken("u1")
	for _, tc := range []struct {
		name       string
		path       string
		token      string
		wantStatus int
		wantError  string
	}{
		{"missing params", "/api/workouts?date=2024-01-15", token, http.StatusBadRequest, "Date and userId parameters are required"},
		{"invalid date", "/api/workouts?date=15-01-2024&userId=u1", token, http.StatusBadRequest, "Invalid date parameter"},
		{"other user", "/api/workouts?date=2024-01-15&userId=u2", token, http.StatusForbidden, "Forbidden"},
		{"no token", "/api/workouts?date=2024-01-15&userId=u1", "", http.StatusUnauthorized, "Unauthorized"},
	} {
		resp, body := s.doRequest(ctx, http.MethodGet, tc.path, tc.token, nil)
		assert.Equal(t, tc.wantStatus, resp.StatusCode, tc.name)
		assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tc.wantError), string(body), tc.name)
	}
}

func (s *IntegrationTestSuite) TestWorkoutLifecycle() {
	ctx := context.Background()
	t := s.T()

	token := s.signToken("lifter")
	startedAt := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)

	resp, body := s.doRequest(ctx, http.MethodPost, "/api/workouts", token, workouts.StartWorkoutRequest{StartedAt: &startedAt})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var started workouts.WorkoutResponse
	require.NoError(t, json.Unmarshal(body, &started))
	assert.Nil(t, started.CompletedAt)

	workoutPath := fmt.Sprintf("/api/workouts/%d", started.ID)

	resp, body = s.doRequest(ctx, http.MethodPost, workoutPath+"/exercises", token, map[string]string{"exerciseName": "Deadlift"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var added workouts.WorkoutExerciseResponse
	require.NoError(t, json.Unmarshal(body, &added))
	assert.Equal(t, 1, added.Order)

	resp, body = s.doRequest(ctx, http.MethodPost,
		fmt.Sprintf("%s/exercises/%d/sets", workoutPath, added.ID), token,
		map[string]any{"weight": 140, "reps": 5},
	)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = s.doRequest(ctx, http.MethodPost,
		fmt.Sprintf("%s/exercises/%d/sets", workoutPath, added.ID), token,
		map[string]any{"weight": 1000},
	)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))

	completedAt := startedAt.Add(50 * time.Minute)
	resp, body = s.doRequest(ctx, http.MethodPost, workoutPath+"/finish", token, workouts.FinishWorkoutRequest{CompletedAt: &completedAt})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, _ = s.doRequest(ctx, http.MethodPost, workoutPath+"/finish", token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = s.doRequest(ctx, http.MethodGet, workoutPath, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var got workouts.WorkoutResponse
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got.Exercises, 1)
	assert.Equal(t, "Deadlift", got.Exercises[0].Name)
	require.Len(t, got.Exercises[0].Sets, 1)
	assert.Equal(t, "140.00", *got.Exercises[0].Sets[0].Weight)

	// someone else's workout is not found
	resp, _ = s.doRequest(ctx, http.MethodGet, workoutPath, s.signToken("intruder"), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = s.doRequest(ctx, http.MethodGet, "/api/stats/today", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var stats workouts.DailyStats
	require.NoError(t, json.Unmarshal(body, &stats))
	if startedAt.YearDay() == time.Now().UTC().YearDay() {
		assert.Equal(t, workouts.DailyStats{CompletedWorkouts: 1, TotalDuration: 50, TotalExercises: 1}, stats)
	}

	resp, _ = s.doRequest(ctx, http.MethodDelete, workoutPath, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = s.doRequest(ctx, http.MethodGet, workoutPath, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestExerciseCatalog() {
	ctx := context.Background()
	t := s.T()

	token := s.signToken("u1")

	resp, body := s.doRequest(ctx, http.MethodPost, "/api/exercises", token, workouts.CreateExerciseRequest{Name: "Overhead Press"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	// names are unique ignoring case
	resp, body = s.doRequest(ctx, http.MethodPost, "/api/exercises", token, workouts.CreateExerciseRequest{Name: "overhead press"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = s.doRequest(ctx, http.MethodGet, "/api/exercises", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listResp struct {
		Exercises []workouts.Exercise `json:"exercises"`
	}
	require.NoError(t, json.Unmarshal(body, &listResp))
	require.Len(t, listResp.Exercises, 1)
	assert.Equal(t, "Overhead Press", listResp.Exercises[0].Name)
}
