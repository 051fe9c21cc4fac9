package workouts

import (
	"errors"
	"math"
	"time"
)

var (
	ErrWorkoutNotFound         = errors.New("workout not found")
	ErrWorkoutExerciseNotFound = errors.New("workout exercise not found")
	ErrExerciseNotFound        = errors.New("exercise not found")
	ErrWorkoutAlreadyCompleted = errors.New("workout already completed")
	ErrInvalidCompletion       = errors.New("completion time before workout start")
	ErrInvalidExerciseName     = errors.New("invalid exercise name")
	ErrInvalidSet              = errors.New("invalid set")
	ErrInvalidDate             = errors.New("invalid date")
)

// MaxSetWeight is the exclusive upper bound of the decimal(5,2) weight column.
const MaxSetWeight = 1000.0

// maxRoundedSetWeight is the smallest weight postgres rounds up to MaxSetWeight when storing it
// with 2 decimals (half away from zero).
const maxRoundedSetWeight = MaxSetWeight - 0.005

type Exercise struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Workout struct {
	ID          int
	UserID      string
	StartedAt   time.Time
	CompletedAt *time.Time
}

func (w Workout) InProgress() bool {
	return w.CompletedAt == nil
}

type WorkoutExercise struct {
	ID         int
	WorkoutID  int
	ExerciseID int
	Order      int
	CreatedAt  time.Time
}

type Set struct {
	ID                int
	WorkoutExerciseID int
	Weight            *float64
	Reps              *int
	CreatedAt         time.Time
}

// DetailedRow is one flat row of the workouts LEFT JOIN workout_exercises LEFT JOIN exercises
// (LEFT JOIN sets) query.
// Exercise columns are nil for workouts without exercises, set columns are nil for exercises without sets
// and whenever the query does not join sets at all.
type DetailedRow struct {
	WorkoutID   int
	UserID      string
	StartedAt   time.Time
	CompletedAt *time.Time

	WorkoutExerciseID *int
	ExerciseID        *int
	ExerciseName      *string
	ExerciseOrder     *int

	SetID        *int
	SetWeight    *float64
	SetReps      *int
	SetCreatedAt *time.Time
}

// NestedWorkout is a workout with its exercises and their sets, rebuilt from DetailedRow values.
type NestedWorkout struct {
	Workout
	Exercises []NestedExercise
}

type NestedExercise struct {
	WorkoutExerciseID int
	ExerciseID        int
	Name              string
	Order             int
	Sets              []Set
}

type DailyStats struct {
	CompletedWorkouts int `json:"completedWorkouts"`
	// TotalDuration is in whole minutes, over completed workouts only.
	TotalDuration  int `json:"totalDuration"`
	TotalExercises int `json:"totalExercises"`
}

// NewSet carries the user input for logging a set; both values are optional.
type NewSet struct {
	Weight *float64 `json:"weight"`
	Reps   *int     `json:"reps"`
}

func (s NewSet) Validate() error {
	if s.Weight != nil && (*s.Weight < 0 || *s.Weight >= maxRoundedSetWeight) {
		return ErrInvalidSet
	}
	// reps column is a 4 byte integer
	if s.Reps != nil && (*s.Reps < 0 || *s.Reps > math.MaxInt32) {
		return ErrInvalidSet
	}
	return nil
}

// ExerciseRef points at a catalog exercise either by id or by name (get-or-create).
type ExerciseRef struct {
	ID   *int   `json:"exerciseId"`
	Name string `json:"exerciseName"`
}
