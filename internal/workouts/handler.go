package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/liftdiary/internal/auth"
	"github.com/2beens/liftdiary/internal/telemetry/tracing"
	"github.com/2beens/liftdiary/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	msgParamsRequired = "Date and userId parameters are required"
	msgInvalidDate    = "Invalid date parameter"
	msgInternalError  = "Internal server error"
	msgForbidden      = "Forbidden"
	msgUnauthorized   = "Unauthorized"
	msgInvalidBody    = "Invalid request body"

	maxBodyBytes = 64 << 10
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=workouts_test

type workoutsService interface {
	ParseDate(date string) (time.Time, error)
	WorkoutsForDay(ctx context.Context, userID string, day time.Time) ([]NestedWorkout, error)
	TodayStats(ctx context.Context, userID string) (*DailyStats, error)
	GetWorkout(ctx context.Context, workoutID int, userID string) (*NestedWorkout, error)
	StartWorkout(ctx context.Context, userID string, startedAt *time.Time) (*Workout, error)
	FinishWorkout(ctx context.Context, workoutID int, userID string, completedAt *time.Time) (*Workout, error)
	DeleteWorkout(ctx context.Context, workoutID int, userID string) error
	AddExercise(ctx context.Context, workoutID int, userID string, ref ExerciseRef) (*WorkoutExercise, error)
	AddSet(ctx context.Context, workoutID, workoutExerciseID int, userID string, set NewSet) (*Set, error)
	ListExercises(ctx context.Context) ([]Exercise, error)
	CreateExercise(ctx context.Context, name string) (*Exercise, error)
}

type Handler struct {
	service workoutsService
}

func NewHandler(service workoutsService) *Handler {
	return &Handler{
		service: service,
	}
}

// HandleList serves GET /api/workouts?date=&userId=
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	dateParam := r.URL.Query().Get("date")
	userID := r.URL.Query().Get("userId")
	if dateParam == "" || userID == "" {
		pkg.WriteJSONError(w, http.StatusBadRequest, msgParamsRequired)
		return
	}

	if identity := auth.IdentityFromContext(ctx); identity != nil && identity.UserID != userID {
		log.Warnf("list workouts: user %s asked for workouts of %s", identity.UserID, userID)
		pkg.WriteJSONError(w, http.StatusForbidden, msgForbidden)
		return
	}

	day, err := h.service.ParseDate(dateParam)
	if err != nil {
		pkg.WriteJSONError(w, http.StatusBadRequest, msgInvalidDate)
		return
	}
	span.SetAttributes(attribute.String("date", dateParam))

	nested, err := h.service.WorkoutsForDay(ctx, userID, day)
	if err != nil {
		log.Errorf("error fetching workouts: %s", err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	pkg.WriteJSON(w, http.StatusOK, NewWorkoutsResponse(nested))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.get")
	defer span.End()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	workoutID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	workout, err := h.service.GetWorkout(ctx, workoutID, userID)
	if err != nil {
		writeServiceError(w, "get workout", err)
		return
	}

	pkg.WriteJSON(w, http.StatusOK, NewWorkoutResponse(*workout))
}

func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.start")
	defer span.End()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req StartWorkoutRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		log.Debugf("start workout, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	workout, err := h.service.StartWorkout(ctx, userID, req.StartedAt)
	if err != nil {
		writeServiceError(w, "start workout", err)
		return
	}

	pkg.WriteJSON(w, http.StatusCreated, newBareWorkoutResponse(*workout))
}

func (h *Handler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.finish")
	defer span.End()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	workoutID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req FinishWorkoutRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		log.Debugf("finish workout, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	workout, err := h.service.FinishWorkout(ctx, workoutID, userID, req.CompletedAt)
	if err != nil {
		writeServiceError(w, "finish workout", err)
		return
	}

	pkg.WriteJSON(w, http.StatusOK, newBareWorkoutResponse(*workout))
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
	defer span.End()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	workoutID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteWorkout(ctx, workoutID, userID); err != nil {
		writeServiceError(w, "delete workout", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleAddExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.addexercise")
	defer span.End()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	workoutID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var ref ExerciseRef
	if err := decodeJSON(r, &ref); err != nil {
		log.Debugf("add exercise, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	we, err := h.service.AddExercise(ctx, workoutID, userID, ref)
	if err != nil {
		writeServiceError(w, "add exercise", err)
		return
	}

	pkg.WriteJSON(w, http.StatusCreated, newWorkoutExerciseResponse(*we))
}

func (h *Handler) HandleAddSet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.addset")
	defer span.End()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	workoutID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	workoutExerciseID, ok := pathID(w, r, "weId")
	if !ok {
		return
	}

	var set NewSet
	if err := decodeJSON(r, &set); err != nil {
		log.Debugf("add set, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	added, err := h.service.AddSet(ctx, workoutID, workoutExerciseID, userID, set)
	if err != nil {
		writeServiceError(w, "add set", err)
		return
	}

	pkg.WriteJSON(w, http.StatusCreated, newSetResponse(*added))
}

func (h *Handler) HandleTodayStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.todaystats")
	defer span.End()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	stats, err := h.service.TodayStats(ctx, userID)
	if err != nil {
		writeServiceError(w, "today stats", err)
		return
	}

	pkg.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) HandleListExercises(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.exercises.list")
	defer span.End()

	exercises, err := h.service.ListExercises(ctx)
	if err != nil {
		writeServiceError(w, "list exercises", err)
		return
	}

	pkg.WriteJSON(w, http.StatusOK, map[string][]Exercise{"exercises": exercises})
}

func (h *Handler) HandleCreateExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.exercises.create")
	defer span.End()

	if _, ok := requireUser(w, r); !ok {
		return
	}

	var req CreateExerciseRequest
	if err := decodeJSON(r, &req); err != nil {
		log.Debugf("create exercise, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	exercise, err := h.service.CreateExercise(ctx, req.Name)
	if err != nil {
		writeServiceError(w, "create exercise", err)
		return
	}

	pkg.WriteJSON(w, http.StatusCreated, exercise)
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		pkg.WriteJSONError(w, http.StatusUnauthorized, msgUnauthorized)
		return "", false
	}
	return userID, true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || id <= 0 {
		pkg.WriteJSONError(w, http.StatusBadRequest, "Invalid "+name+" parameter")
		return 0, false
	}
	return id, true
}

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return io.EOF
	}
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// decodeOptionalJSON is decodeJSON, but an empty body leaves v untouched.
func decodeOptionalJSON(r *http.Request, v any) error {
	err := decodeJSON(r, v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrWorkoutNotFound),
		errors.Is(err, ErrWorkoutExerciseNotFound),
		errors.Is(err, ErrExerciseNotFound):
		pkg.WriteJSONError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, ErrWorkoutAlreadyCompleted):
		pkg.WriteJSONError(w, http.StatusConflict, "Workout already completed")
	case errors.Is(err, ErrInvalidCompletion):
		pkg.WriteJSONError(w, http.StatusBadRequest, "Completion time before workout start")
	case errors.Is(err, ErrInvalidSet):
		pkg.WriteJSONError(w, http.StatusBadRequest, "Invalid set: weight must be within [0, 1000), reps within [0, 2147483647]")
	case errors.Is(err, ErrInvalidExerciseName):
		pkg.WriteJSONError(w, http.StatusBadRequest, "Invalid exercise name")
	default:
		log.Errorf("%s: %s", op, err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, msgInternalError)
	}
}
