package workouts

import (
	"strconv"
	"time"
)

// TimestampLayout is ISO-8601 in UTC with millisecond precision, e.g. 2024-01-15T10:00:00.000Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// FormatWeight renders a set weight the way the decimal(5,2) column stores it.
func FormatWeight(w *float64) *string {
	if w == nil {
		return nil
	}
	formatted := strconv.FormatFloat(*w, 'f', 2, 64)
	return &formatted
}

type WorkoutsResponse struct {
	Workouts []WorkoutResponse `json:"workouts"`
}

type WorkoutResponse struct {
	ID          int                `json:"id"`
	StartedAt   string             `json:"startedAt"`
	CompletedAt *string            `json:"completedAt"`
	Exercises   []ExerciseResponse `json:"exercises"`
}

type ExerciseResponse struct {
	// ID is the catalog exercise id
	ID    int           `json:"id"`
	Name  string        `json:"name"`
	Order int           `json:"order"`
	Sets  []SetResponse `json:"sets"`
}

type SetResponse struct {
	ID        int     `json:"id"`
	Weight    *string `json:"weight"`
	Reps      *int    `json:"reps"`
	CreatedAt string  `json:"createdAt"`
}

type WorkoutExerciseResponse struct {
	ID         int    `json:"id"`
	WorkoutID  int    `json:"workoutId"`
	ExerciseID int    `json:"exerciseId"`
	Order      int    `json:"order"`
	CreatedAt  string `json:"createdAt"`
}

type StartWorkoutRequest struct {
	StartedAt *time.Time `json:"startedAt"`
}

type FinishWorkoutRequest struct {
	CompletedAt *time.Time `json:"completedAt"`
}

type CreateExerciseRequest struct {
	Name string `json:"name"`
}

func NewWorkoutsResponse(nested []NestedWorkout) WorkoutsResponse {
	resp := WorkoutsResponse{
		Workouts: make([]WorkoutResponse, 0, len(nested)),
	}
	for _, w := range nested {
		resp.Workouts = append(resp.Workouts, NewWorkoutResponse(w))
	}
	return resp
}

func NewWorkoutResponse(w NestedWorkout) WorkoutResponse {
	resp := newBareWorkoutResponse(w.Workout)
	for _, e := range w.Exercises {
		exercise := ExerciseResponse{
			ID:    e.ExerciseID,
			Name:  e.Name,
			Order: e.Order,
			Sets:  make([]SetResponse, 0, len(e.Sets)),
		}
		for _, s := range e.Sets {
			exercise.Sets = append(exercise.Sets, newSetResponse(s))
		}
		resp.Exercises = append(resp.Exercises, exercise)
	}
	return resp
}

func newBareWorkoutResponse(w Workout) WorkoutResponse {
	resp := WorkoutResponse{
		ID:        w.ID,
		StartedAt: FormatTimestamp(w.StartedAt),
		Exercises: make([]ExerciseResponse, 0),
	}
	if w.CompletedAt != nil {
		completedAt := FormatTimestamp(*w.CompletedAt)
		resp.CompletedAt = &completedAt
	}
	return resp
}

func newSetResponse(s Set) SetResponse {
	return SetResponse{
		ID:        s.ID,
		Weight:    FormatWeight(s.Weight),
		Reps:      s.Reps,
		CreatedAt: FormatTimestamp(s.CreatedAt),
	}
}

func newWorkoutExerciseResponse(we WorkoutExercise) WorkoutExerciseResponse {
	return WorkoutExerciseResponse{
		ID:         we.ID,
		WorkoutID:  we.WorkoutID,
		ExerciseID: we.ExerciseID,
		Order:      we.Order,
		CreatedAt:  FormatTimestamp(we.CreatedAt),
	}
}
