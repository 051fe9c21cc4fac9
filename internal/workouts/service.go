package workouts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/liftdiary/internal/cache"
	"github.com/2beens/liftdiary/internal/telemetry/metrics"
	"github.com/2beens/liftdiary/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	catalogCacheKey    = "exercise-catalog"
	catalogCacheExpire = 10 * 60
	maxExerciseNameLen = 100
)

type store interface {
	ListByUser(ctx context.Context, userID string) ([]Workout, error)
	ListDetailed(ctx context.Context, userID string) ([]DetailedRow, error)
	ListDetailedForDay(ctx context.Context, userID string, day DayRange) ([]DetailedRow, error)
	ListNestedForDay(ctx context.Context, userID string, day DayRange) ([]DetailedRow, error)
	Get(ctx context.Context, workoutID int, userID string) (*NestedWorkout, error)
	DailyStats(ctx context.Context, userID string, day DayRange) (*DailyStats, error)
	StartWorkout(ctx context.Context, userID string, startedAt time.Time) (*Workout, error)
	FinishWorkout(ctx context.Context, workoutID int, userID string, completedAt time.Time) (*Workout, error)
	Delete(ctx context.Context, workoutID int, userID string) error
	AddExercise(ctx context.Context, workoutID int, userID string, exerciseID int) (*WorkoutExercise, error)
	AddSet(ctx context.Context, workoutID, workoutExerciseID int, userID string, set NewSet) (*Set, error)
	ListExercises(ctx context.Context) ([]Exercise, error)
	GetOrCreateExercise(ctx context.Context, name string) (*Exercise, bool, error)
}

type Service struct {
	repo           store
	catalogCache   cache.Cache
	metricsManager *metrics.Manager
	loc            *time.Location
	boundary       Boundary

	// Now is the clock "today" is derived from; replaceable in tests
	Now func() time.Time
}

func NewService(
	repo store,
	catalogCache cache.Cache,
	metricsManager *metrics.Manager,
	loc *time.Location,
	boundary Boundary,
) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		repo:           repo,
		catalogCache:   catalogCache,
		metricsManager: metricsManager,
		loc:            loc,
		boundary:       boundary,
		Now:            time.Now,
	}
}

func (s *Service) Location() *time.Location {
	return s.loc
}

// Today is the current time in the service timezone.
func (s *Service) Today() time.Time {
	return s.Now().In(s.loc)
}

func (s *Service) DayRange(day time.Time) DayRange {
	return NewDayRange(day, s.loc, s.boundary)
}

func (s *Service) ParseDate(date string) (time.Time, error) {
	return ParseDate(date, s.loc)
}

func (s *Service) ListWorkouts(ctx context.Context, userID string) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.list")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	workouts, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	return workouts, nil
}

// History returns all of the user's workouts, most recent first, with exercise names.
func (s *Service) History(ctx context.Context, userID string) (_ []NestedWorkout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.history")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	rows, err := s.repo.ListDetailed(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list detailed workouts: %w", err)
	}
	return Group(rows, RetainExercises), nil
}

// WorkoutsForDay returns the day's workouts with exercises and sets, ordered by start.
func (s *Service) WorkoutsForDay(ctx context.Context, userID string, day time.Time) (_ []NestedWorkout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.forday")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("day", day.Format(time.DateOnly)))

	rows, err := s.repo.ListNestedForDay(ctx, userID, s.DayRange(day))
	if err != nil {
		return nil, fmt.Errorf("list workouts for day: %w", err)
	}
	return Group(rows, RetainSets), nil
}

// WorkoutSummariesForDay returns the day's workouts with exercise names only, most recent first.
func (s *Service) WorkoutSummariesForDay(ctx context.Context, userID string, day time.Time) (_ []NestedWorkout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.summariesforday")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("day", day.Format(time.DateOnly)))

	rows, err := s.repo.ListDetailedForDay(ctx, userID, s.DayRange(day))
	if err != nil {
		return nil, fmt.Errorf("list workout summaries for day: %w", err)
	}
	return Group(rows, RetainNames), nil
}

func (s *Service) StatsForDay(ctx context.Context, userID string, day time.Time) (_ *DailyStats, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.statsforday")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	stats, err := s.repo.DailyStats(ctx, userID, s.DayRange(day))
	if err != nil {
		return nil, fmt.Errorf("daily stats: %w", err)
	}
	return stats, nil
}

func (s *Service) TodayStats(ctx context.Context, userID string) (*DailyStats, error) {
	return s.StatsForDay(ctx, userID, s.Today())
}

func (s *Service) GetWorkout(ctx context.Context, workoutID int, userID string) (_ *NestedWorkout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.get")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	w, err := s.repo.Get(ctx, workoutID, userID)
	if err != nil {
		return nil, fmt.Errorf("get workout %d: %w", workoutID, err)
	}
	return w, nil
}

// StartWorkout starts a workout now, or at startedAt when given.
func (s *Service) StartWorkout(ctx context.Context, userID string, startedAt *time.Time) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.start")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	start := s.Now()
	if startedAt != nil {
		start = *startedAt
	}

	w, err := s.repo.StartWorkout(ctx, userID, start)
	if err != nil {
		return nil, fmt.Errorf("start workout: %w", err)
	}
	if s.metricsManager != nil {
		s.metricsManager.CounterWorkoutsStarted.Inc()
	}
	return w, nil
}

func (s *Service) FinishWorkout(ctx context.Context, workoutID int, userID string, completedAt *time.Time) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.finish")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	end := s.Now()
	if completedAt != nil {
		end = *completedAt
	}

	w, err := s.repo.FinishWorkout(ctx, workoutID, userID, end)
	if err != nil {
		return nil, fmt.Errorf("finish workout %d: %w", workoutID, err)
	}
	if s.metricsManager != nil {
		s.metricsManager.CounterWorkoutsFinished.Inc()
	}
	return w, nil
}

func (s *Service) DeleteWorkout(ctx context.Context, workoutID int, userID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.delete")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if err := s.repo.Delete(ctx, workoutID, userID); err != nil {
		return fmt.Errorf("delete workout %d: %w", workoutID, err)
	}
	return nil
}

// AddExercise appends a catalog exercise to the workout. The exercise is referenced by id,
// or by name, in which case it is created on first use.
func (s *Service) AddExercise(ctx context.Context, workoutID int, userID string, ref ExerciseRef) (_ *WorkoutExercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.addexercise")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	var exerciseID int
	switch {
	case ref.ID != nil:
		exerciseID = *ref.ID
	case strings.TrimSpace(ref.Name) != "":
		exercise, err := s.CreateExercise(ctx, ref.Name)
		if err != nil {
			return nil, err
		}
		exerciseID = exercise.ID
	default:
		return nil, ErrInvalidExerciseName
	}

	we, err := s.repo.AddExercise(ctx, workoutID, userID, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("add exercise %d to workout %d: %w", exerciseID, workoutID, err)
	}
	return we, nil
}

func (s *Service) AddSet(ctx context.Context, workoutID, workoutExerciseID int, userID string, set NewSet) (_ *Set, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.addset")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if err := set.Validate(); err != nil {
		return nil, err
	}

	added, err := s.repo.AddSet(ctx, workoutID, workoutExerciseID, userID, set)
	if err != nil {
		return nil, fmt.Errorf("add set to workout exercise %d: %w", workoutExerciseID, err)
	}
	if s.metricsManager != nil {
		s.metricsManager.CounterSetsLogged.Inc()
	}
	return added, nil
}

// ListExercises returns the exercise catalog, read through the in-process cache.
func (s *Service) ListExercises(ctx context.Context) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.exercises.list")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	var exercises []Exercise
	if s.catalogCache != nil && cache.GetJSON(s.catalogCache, catalogCacheKey, &exercises) {
		s.countCatalogCache("hit")
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return exercises, nil
	}
	s.countCatalogCache("miss")

	exercises, err = s.repo.ListExercises(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}

	if s.catalogCache != nil {
		if err := cache.SetJSON(s.catalogCache, catalogCacheKey, exercises, catalogCacheExpire); err != nil {
			log.Warnf("cache exercise catalog: %s", err)
		}
	}
	return exercises, nil
}

// CreateExercise adds an exercise to the catalog, or returns the existing one with the same name.
func (s *Service) CreateExercise(ctx context.Context, name string) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.exercises.create")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxExerciseNameLen {
		return nil, ErrInvalidExerciseName
	}

	exercise, created, err := s.repo.GetOrCreateExercise(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get or create exercise [%s]: %w", name, err)
	}
	if created && s.catalogCache != nil {
		s.catalogCache.Del(catalogCacheKey)
	}
	return exercise, nil
}

func (s *Service) countCatalogCache(result string) {
	if s.metricsManager != nil {
		s.metricsManager.CounterCatalogCache.WithLabelValues(result).Inc()
	}
}
