package dashboard

import (
	"fmt"
	"time"

	"github.com/2beens/liftdiary/internal/workouts"
)

const inProgress = "In progress"

type pageData struct {
	Title        string
	SelectedDate string
	PrevDate     string
	NextDate     string
	Workouts     []workoutRow
	Stats        workouts.DailyStats
}

type workoutRow struct {
	ID        int
	Exercises []string
	Duration  string
	Completed bool
}

func (r workoutRow) Status() string {
	if r.Completed {
		return "completed"
	}
	return "in progress"
}

func newPageData(day time.Time, nested []workouts.NestedWorkout, stats *workouts.DailyStats) pageData {
	data := pageData{
		Title:        FormatTitleDate(day),
		SelectedDate: day.Format(time.DateOnly),
		PrevDate:     day.AddDate(0, 0, -1).Format(time.DateOnly),
		NextDate:     day.AddDate(0, 0, 1).Format(time.DateOnly),
		Workouts:     make([]workoutRow, 0, len(nested)),
	}
	if stats != nil {
		data.Stats = *stats
	}
	for _, w := range nested {
		data.Workouts = append(data.Workouts, workoutRow{
			ID:        w.ID,
			Exercises: w.ExerciseNames(),
			Duration:  FormatDuration(w.Workout),
			Completed: !w.InProgress(),
		})
	}
	return data
}

// FormatDuration renders the whole minutes a completed workout took, e.g. "45 mins".
func FormatDuration(w workouts.Workout) string {
	if w.CompletedAt == nil {
		return inProgress
	}
	return fmt.Sprintf("%d mins", workouts.DurationMinutes(w.StartedAt, *w.CompletedAt))
}

// FormatTitleDate formats a day like "15th Jan 2024".
func FormatTitleDate(t time.Time) string {
	return fmt.Sprintf("%d%s %s", t.Day(), ordinalSuffix(t.Day()), t.Format("Jan 2006"))
}

func ordinalSuffix(day int) string {
	if day%100 >= 11 && day%100 <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
