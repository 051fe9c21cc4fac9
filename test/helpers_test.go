//go:build integration_test || all_tests

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// signToken issues an identity token the way the identity provider does.
func (s *IntegrationTestSuite) signToken(userID string) string {
	claims := jwt.MapClaims{
		"sub": userID,
		"jti": uuid.NewString(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testIdentitySecret))
	s.Require().NoError(err)
	return signed
}

func (s *IntegrationTestSuite) doRequest(
	ctx context.Context,
	method, path, token string,
	body any,
) (*http.Response, []byte) {
	var reqBody io.Reader
	if body != nil {
		bodyJson, err := json.Marshal(body)
		s.Require().NoError(err)
		reqBody = bytes.NewReader(bodyJson)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reqBody)
	s.Require().NoError(err)
	req.Header.Set("User-Agent", "test-agent")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.httpClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	return resp, respBytes
}

func (s *IntegrationTestSuite) insertExercise(name string) int {
	var id int
	s.Require().NoError(s.DB.QueryRow(
		"INSERT INTO exercises (name) VALUES ($1) RETURNING id", name,
	).Scan(&id))
	return id
}

func (s *IntegrationTestSuite) insertWorkout(userID string, startedAt time.Time, completedAt *time.Time) int {
	var id int
	s.Require().NoError(s.DB.QueryRow(
		"INSERT INTO workouts (user_id, started_at, completed_at) VALUES ($1, $2, $3) RETURNING id",
		userID, startedAt, completedAt,
	).Scan(&id))
	return id
}

func (s *IntegrationTestSuite) insertWorkoutExercise(workoutID, exerciseID, order int) int {
	var id int
	s.Require().NoError(s.DB.QueryRow(
		`INSERT INTO workout_exercises (workout_id, exercise_id, "order") VALUES ($1, $2, $3) RETURNING id`,
		workoutID, exerciseID, order,
	).Scan(&id))
	return id
}

func (s *IntegrationTestSuite) insertSet(workoutExerciseID int, weight float64, reps int, createdAt time.Time) int {
	var id int
	s.Require().NoError(s.DB.QueryRow(
		"INSERT INTO sets (workout_exercise_id, weight, reps, created_at) VALUES ($1, $2, $3, $4) RETURNING id",
		workoutExerciseID, weight, reps, createdAt,
	).Scan(&id))
	return id
}

func timePtr(t time.Time) *time.Time {
	return &t
}
