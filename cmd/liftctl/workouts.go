package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	workoutsUser string
	workoutsDate string
	workoutsFlat bool
)

var workoutsCmd = &cobra.Command{
	Use:     "workouts",
	Aliases: []string{"w"},
	Short:   "Inspect a user's workouts",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if workoutsUser == "" {
			return errors.New("--user is required")
		}
		return rootCmd.PersistentPreRunE(cmd, args)
	},
}

var workoutsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "All workouts with exercise names, most recent first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if workoutsFlat {
			list, err := workoutsService.ListWorkouts(cmd.Context(), workoutsUser)
			if err != nil {
				return err
			}
			renderWorkouts(cmd.OutOrStdout(), withoutExercises(list))
			return nil
		}

		nested, err := workoutsService.History(cmd.Context(), workoutsUser)
		if err != nil {
			return err
		}
		renderWorkouts(cmd.OutOrStdout(), nested)
		return nil
	},
}

var workoutsDayCmd = &cobra.Command{
	Use:   "day",
	Short: "Workouts of one calendar day, with exercises and sets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		day, err := resolveDay()
		if err != nil {
			return err
		}
		nested, err := workoutsService.WorkoutsForDay(cmd.Context(), workoutsUser, day)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Workouts for %s\n", day.Format(time.DateOnly))
		renderWorkouts(cmd.OutOrStdout(), nested)
		return nil
	},
}

var workoutsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Completed workouts, duration and distinct exercises of a day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		day, err := resolveDay()
		if err != nil {
			return err
		}
		stats, err := workoutsService.StatsForDay(cmd.Context(), workoutsUser, day)
		if err != nil {
			return err
		}
		renderStats(cmd.OutOrStdout(), day, stats)
		return nil
	},
}

func resolveDay() (time.Time, error) {
	if workoutsDate == "" {
		return workoutsService.Today(), nil
	}
	return workoutsService.ParseDate(workoutsDate)
}

func init() {
	workoutsCmd.PersistentFlags().StringVarP(&workoutsUser, "user", "u", "", "user id")
	workoutsListCmd.Flags().BoolVar(&workoutsFlat, "flat", false, "workouts only, without loading exercises")
	workoutsDayCmd.Flags().StringVarP(&workoutsDate, "date", "d", "", "day (YYYY-MM-DD), defaults to today")
	workoutsStatsCmd.Flags().StringVarP(&workoutsDate, "date", "d", "", "day (YYYY-MM-DD), defaults to today")
	workoutsCmd.AddCommand(workoutsListCmd, workoutsDayCmd, workoutsStatsCmd)
	rootCmd.AddCommand(workoutsCmd)
}
