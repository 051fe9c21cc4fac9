package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/2beens/liftdiary/internal/workouts"

	"github.com/fatih/color"
)

func renderExercises(w io.Writer, list []workouts.Exercise) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No exercises found.")
		return
	}
	faint := color.New(color.Faint)
	for _, e := range list {
		fmt.Fprintf(w, "%s %s\n", faint.Sprintf("%5d", e.ID), e.Name)
	}
}

func renderWorkouts(w io.Writer, nested []workouts.NestedWorkout) {
	if len(nested) == 0 {
		fmt.Fprintln(w, "No workouts found.")
		return
	}

	faint := color.New(color.Faint)
	for _, wo := range nested {
		status := color.YellowString("in progress")
		if !wo.InProgress() {
			status = color.GreenString("%d mins", workouts.DurationMinutes(wo.StartedAt, *wo.CompletedAt))
		}
		fmt.Fprintf(w, "#%d %s %s\n", wo.ID, faint.Sprint(wo.StartedAt.Format("2006-01-02 15:04")), status)

		for _, e := range wo.Exercises {
			fmt.Fprintf(w, "  %d. %s", e.Order, e.Name)
			if len(e.Sets) > 0 {
				fmt.Fprintf(w, "  %s", formatSets(e.Sets))
			}
			fmt.Fprintln(w)
		}
	}
}

func withoutExercises(list []workouts.Workout) []workouts.NestedWorkout {
	nested := make([]workouts.NestedWorkout, 0, len(list))
	for _, w := range list {
		nested = append(nested, workouts.NestedWorkout{Workout: w})
	}
	return nested
}

// formatSets renders sets like "100.00x5, 102.50x3", with "-" for a missing value.
func formatSets(sets []workouts.Set) string {
	parts := make([]string, 0, len(sets))
	for _, s := range sets {
		weight, reps := "-", "-"
		if formatted := workouts.FormatWeight(s.Weight); formatted != nil {
			weight = *formatted
		}
		if s.Reps != nil {
			reps = fmt.Sprint(*s.Reps)
		}
		parts = append(parts, weight+"x"+reps)
	}
	return strings.Join(parts, ", ")
}

func renderStats(w io.Writer, day time.Time, stats *workouts.DailyStats) {
	fmt.Fprintf(w, "Summary for %s\n", day.Format(time.DateOnly))
	fmt.Fprintf(w, "  Workouts completed: %d\n", stats.CompletedWorkouts)
	fmt.Fprintf(w, "  Total duration:     %d mins\n", stats.TotalDuration)
	fmt.Fprintf(w, "  Exercises:          %d\n", stats.TotalExercises)
}
