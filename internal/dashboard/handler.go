package dashboard

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/2beens/liftdiary/internal/auth"
	"github.com/2beens/liftdiary/internal/telemetry/tracing"
	"github.com/2beens/liftdiary/internal/workouts"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/dashboard.html"))

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=dashboard_test

type workoutsService interface {
	Today() time.Time
	ParseDate(date string) (time.Time, error)
	WorkoutSummariesForDay(ctx context.Context, userID string, day time.Time) ([]workouts.NestedWorkout, error)
	TodayStats(ctx context.Context, userID string) (*workouts.DailyStats, error)
}

type Handler struct {
	service workoutsService
}

func NewHandler(service workoutsService) *Handler {
	return &Handler{
		service: service,
	}
}

// HandleDashboard serves GET /dashboard?date=YYYY-MM-DD for the signed in user.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard")
	defer span.End()

	userID := auth.UserIDFromContext(ctx)
	if userID == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	day := h.service.Today()
	if dateParam := r.URL.Query().Get("date"); dateParam != "" {
		parsed, err := h.service.ParseDate(dateParam)
		if err != nil {
			http.Error(w, "invalid date parameter", http.StatusBadRequest)
			return
		}
		day = parsed
	}
	span.SetAttributes(attribute.String("day", day.Format(time.DateOnly)))

	nested, err := h.service.WorkoutSummariesForDay(ctx, userID, day)
	if err != nil {
		log.Errorf("dashboard, workouts for %s: %s", day.Format(time.DateOnly), err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	stats, err := h.service.TodayStats(ctx, userID)
	if err != nil {
		log.Errorf("dashboard, today stats: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, newPageData(day, nested, stats)); err != nil {
		log.Errorf("dashboard, render: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Errorf("dashboard, write response: %s", err)
	}
}
