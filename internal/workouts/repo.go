package workouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/liftdiary/internal/telemetry/tracing"
	"github.com/2beens/liftdiary/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	detailedSelect = `
		SELECT w.id, w.user_id, w.started_at, w.completed_at,
		       we.id, e.id, e.name, we."order"
		FROM workouts w
		LEFT JOIN workout_exercises we ON we.workout_id = w.id
		LEFT JOIN exercises e ON e.id = we.exercise_id
	`
	nestedSelect = `
		SELECT w.id, w.user_id, w.started_at, w.completed_at,
		       we.id, e.id, e.name, we."order",
		       s.id, s.weight, s.reps, s.created_at
		FROM workouts w
		LEFT JOIN workout_exercises we ON we.workout_id = w.id
		LEFT JOIN exercises e ON e.id = we.exercise_id
		LEFT JOIN sets s ON s.workout_exercise_id = we.id
	`
	// $2 = day start, $3 = day end, $4 = end inclusive
	dayPredicate = `
		w.started_at >= $2
		AND (($4::boolean AND w.started_at <= $3) OR (NOT $4::boolean AND w.started_at < $3))
	`
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) ListByUser(ctx context.Context, userID string) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listbyuser")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("user_id", userID))

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, started_at, completed_at
		FROM workouts
		WHERE user_id = $1
		ORDER BY started_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workouts := make([]Workout, 0)
	for rows.Next() {
		var w Workout
		if err := rows.Scan(&w.ID, &w.UserID, &w.StartedAt, &w.CompletedAt); err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return workouts, nil
}

// ListDetailed returns the flat workout/exercise rows for all of the user's workouts,
// most recent workout first, exercises by order within a workout.
func (r *Repo) ListDetailed(ctx context.Context, userID string) (_ []DetailedRow, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listdetailed")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("user_id", userID))

	rows, err := r.db.Query(ctx, detailedSelect+`
		WHERE w.user_id = $1
		ORDER BY w.started_at DESC, w.id DESC, we."order", we.id
	`, userID)
	if err != nil {
		return nil, err
	}
	return collectDetailedRows(rows, false)
}

// ListDetailedForDay is ListDetailed, limited to workouts started within the given day.
func (r *Repo) ListDetailedForDay(ctx context.Context, userID string, day DayRange) (_ []DetailedRow, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listdetailedforday")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	setDaySpanAttributes(span, userID, day)

	rows, err := r.db.Query(ctx, detailedSelect+`
		WHERE w.user_id = $1 AND `+dayPredicate+`
		ORDER BY w.started_at DESC, w.id DESC, we."order", we.id
	`, userID, day.Start, day.End, day.Inclusive())
	if err != nil {
		return nil, err
	}
	return collectDetailedRows(rows, false)
}

// ListNestedForDay returns the rows for the day's workouts joined down to sets, in a single query:
// workouts by start ascending, exercises by order, sets by creation time.
func (r *Repo) ListNestedForDay(ctx context.Context, userID string, day DayRange) (_ []DetailedRow, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.listnestedforday")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	setDaySpanAttributes(span, userID, day)

	rows, err := r.db.Query(ctx, nestedSelect+`
		WHERE w.user_id = $1 AND `+dayPredicate+`
		ORDER BY w.started_at, w.id, we."order", we.id, s.created_at, s.id
	`, userID, day.Start, day.End, day.Inclusive())
	if err != nil {
		return nil, err
	}
	return collectDetailedRows(rows, true)
}

// Get returns a single workout of the user, with exercises and sets.
// Workouts of other users are reported as ErrWorkoutNotFound.
func (r *Repo) Get(ctx context.Context, workoutID int, userID string) (_ *NestedWorkout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.Int("workout_id", workoutID))

	rows, err := r.db.Query(ctx, nestedSelect+`
		WHERE w.id = $1 AND w.user_id = $2
		ORDER BY we."order", we.id, s.created_at, s.id
	`, workoutID, userID)
	if err != nil {
		return nil, err
	}
	detailed, err := collectDetailedRows(rows, true)
	if err != nil {
		return nil, err
	}

	grouped := Group(detailed, RetainSets)
	if len(grouped) == 0 {
		return nil, ErrWorkoutNotFound
	}
	return &grouped[0], nil
}

// DailyStats counts the user's workouts started within day in one round trip.
func (r *Repo) DailyStats(ctx context.Context, userID string, day DayRange) (_ *DailyStats, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.dailystats")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	setDaySpanAttributes(span, userID, day)

	var (
		completed  int
		durationMs float64
		exercises  int
	)
	err = r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*)
			 FROM workouts w
			 WHERE w.user_id = $1 AND w.completed_at IS NOT NULL AND `+dayPredicate+`),
			(SELECT COALESCE(SUM(EXTRACT(EPOCH FROM (w.completed_at - w.started_at)) * 1000), 0)::float8
			 FROM workouts w
			 WHERE w.user_id = $1 AND w.completed_at IS NOT NULL AND `+dayPredicate+`),
			(SELECT COUNT(DISTINCT e.id)
			 FROM workout_exercises we
			 JOIN workouts w ON w.id = we.workout_id
			 JOIN exercises e ON e.id = we.exercise_id
			 WHERE w.user_id = $1 AND `+dayPredicate+`)
	`, userID, day.Start, day.End, day.Inclusive()).
		Scan(&completed, &durationMs, &exercises)
	if err != nil {
		return nil, err
	}

	return &DailyStats{
		CompletedWorkouts: completed,
		TotalDuration:     minutesFromMillis(durationMs),
		TotalExercises:    exercises,
	}, nil
}

func (r *Repo) StartWorkout(ctx context.Context, userID string, startedAt time.Time) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.start")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("user_id", userID))

	w := &Workout{}
	err = r.db.QueryRow(ctx, `
		INSERT INTO workouts (user_id, started_at)
		VALUES ($1, $2)
		RETURNING id, user_id, started_at, completed_at
	`, userID, startedAt).
		Scan(&w.ID, &w.UserID, &w.StartedAt, &w.CompletedAt)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// FinishWorkout sets the completion time once; it must not precede the start.
func (r *Repo) FinishWorkout(ctx context.Context, workoutID int, userID string, completedAt time.Time) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.finish")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.Int("workout_id", workoutID))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	w := &Workout{}
	err = tx.QueryRow(ctx, `
		SELECT id, user_id, started_at, completed_at
		FROM workouts
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`, workoutID, userID).
		Scan(&w.ID, &w.UserID, &w.StartedAt, &w.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWorkoutNotFound
	}
	if err != nil {
		return nil, err
	}

	if w.CompletedAt != nil {
		return nil, ErrWorkoutAlreadyCompleted
	}
	if completedAt.Before(w.StartedAt) {
		return nil, ErrInvalidCompletion
	}

	err = tx.QueryRow(ctx, `
		UPDATE workouts SET completed_at = $2
		WHERE id = $1
		RETURNING completed_at
	`, workoutID, completedAt).
		Scan(&w.CompletedAt)
	if err != nil {
		return nil, err
	}

	return w, nil
}

func (r *Repo) Delete(ctx context.Context, workoutID int, userID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.Int("workout_id", workoutID))

	tag, err := r.db.Exec(ctx, `
		DELETE FROM workouts
		WHERE id = $1 AND user_id = $2
	`, workoutID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

// AddExercise appends the exercise to the workout, after the current last one.
func (r *Repo) AddExercise(ctx context.Context, workoutID int, userID string, exerciseID int) (_ *WorkoutExercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.addexercise")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(
		attribute.Int("workout_id", workoutID),
		attribute.Int("exercise_id", exerciseID),
	)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	// row lock serializes concurrent appends to the same workout
	var lockedID int
	err = tx.QueryRow(ctx, `
		SELECT id FROM workouts
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`, workoutID, userID).Scan(&lockedID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWorkoutNotFound
	}
	if err != nil {
		return nil, err
	}

	we := &WorkoutExercise{}
	err = tx.QueryRow(ctx, `
		INSERT INTO workout_exercises (workout_id, exercise_id, "order")
		SELECT $1::integer, $2::integer, COALESCE(MAX("order"), 0) + 1
		FROM workout_exercises
		WHERE workout_id = $1
		RETURNING id, workout_id, exercise_id, "order", created_at
	`, workoutID, exerciseID).
		Scan(&we.ID, &we.WorkoutID, &we.ExerciseID, &we.Order, &we.CreatedAt)
	if pkg.IsForeignKeyViolationError(err) {
		return nil, ErrExerciseNotFound
	}
	if err != nil {
		return nil, err
	}

	return we, nil
}

// AddSet logs a set for a workout exercise, checking the whole ownership chain.
func (r *Repo) AddSet(ctx context.Context, workoutID, workoutExerciseID int, userID string, set NewSet) (_ *Set, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.addset")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(
		attribute.Int("workout_id", workoutID),
		attribute.Int("workout_exercise_id", workoutExerciseID),
	)

	var weight pgtype.Numeric
	s := &Set{}
	err = r.db.QueryRow(ctx, `
		INSERT INTO sets (workout_exercise_id, weight, reps)
		SELECT we.id, $4::numeric, $5::integer
		FROM workout_exercises we
		JOIN workouts w ON w.id = we.workout_id
		WHERE we.id = $1 AND w.id = $2 AND w.user_id = $3
		RETURNING id, workout_exercise_id, weight, reps, created_at
	`, workoutExerciseID, workoutID, userID, set.Weight, set.Reps).
		Scan(&s.ID, &s.WorkoutExerciseID, &weight, &s.Reps, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWorkoutExerciseNotFound
	}
	if err != nil {
		return nil, err
	}

	if s.Weight, err = numericToFloat(weight); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *Repo) ListExercises(ctx context.Context) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.exercises.list")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	rows, err := r.db.Query(ctx, `
		SELECT id, name, created_at, updated_at
		FROM exercises
		ORDER BY name, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exercises := make([]Exercise, 0)
	for rows.Next() {
		var e Exercise
		if err := rows.Scan(&e.ID, &e.Name, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		exercises = append(exercises, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return exercises, nil
}

// GetOrCreateExercise returns the catalog exercise with the given name (case insensitive),
// creating it first if needed. The bool reports whether it was created.
func (r *Repo) GetOrCreateExercise(ctx context.Context, name string) (_ *Exercise, _ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.exercises.getorcreate")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("name", name))

	e := &Exercise{}
	err = r.db.QueryRow(ctx, `
		INSERT INTO exercises (name)
		VALUES ($1)
		ON CONFLICT ((lower(name))) DO NOTHING
		RETURNING id, name, created_at, updated_at
	`, name).
		Scan(&e.ID, &e.Name, &e.CreatedAt, &e.UpdatedAt)
	if err == nil {
		return e, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	err = r.db.QueryRow(ctx, `
		SELECT id, name, created_at, updated_at
		FROM exercises
		WHERE lower(name) = lower($1)
	`, name).
		Scan(&e.ID, &e.Name, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, false, err
	}
	return e, false, nil
}

func collectDetailedRows(rows pgx.Rows, withSets bool) ([]DetailedRow, error) {
	defer rows.Close()

	detailed := make([]DetailedRow, 0)
	for rows.Next() {
		var (
			row    DetailedRow
			weight pgtype.Numeric
		)
		dest := []any{
			&row.WorkoutID, &row.UserID, &row.StartedAt, &row.CompletedAt,
			&row.WorkoutExerciseID, &row.ExerciseID, &row.ExerciseName, &row.ExerciseOrder,
		}
		if withSets {
			dest = append(dest, &row.SetID, &weight, &row.SetReps, &row.SetCreatedAt)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		if withSets {
			w, err := numericToFloat(weight)
			if err != nil {
				return nil, err
			}
			row.SetWeight = w
		}
		detailed = append(detailed, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return detailed, nil
}

func numericToFloat(n pgtype.Numeric) (*float64, error) {
	if !n.Valid {
		return nil, nil
	}
	f, err := n.Float64Value()
	if err != nil {
		return nil, fmt.Errorf("convert numeric: %w", err)
	}
	return &f.Float64, nil
}

func setDaySpanAttributes(span trace.Span, userID string, day DayRange) {
	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("day_start", day.Start.Format(time.RFC3339)),
		attribute.String("boundary", day.Boundary.String()),
	)
}
