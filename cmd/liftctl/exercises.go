package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var exercisesCmd = &cobra.Command{
	Use:     "exercises",
	Aliases: []string{"ex"},
	Short:   "Manage the exercise catalog",
}

var exercisesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List catalog exercises by name",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		list, err := workoutsService.ListExercises(cmd.Context())
		if err != nil {
			return fmt.Errorf("list exercises: %w", err)
		}
		renderExercises(cmd.OutOrStdout(), list)
		return nil
	},
}

var exercisesAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add an exercise to the catalog (names are unique, ignoring case)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := workoutsService.CreateExercise(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("add exercise: %w", err)
		}
		color.Green("✓ %s", e.Name)
		fmt.Fprintf(cmd.OutOrStdout(), "  ID: %d\n", e.ID)
		return nil
	},
}

func init() {
	exercisesCmd.AddCommand(exercisesListCmd, exercisesAddCmd)
	rootCmd.AddCommand(exercisesCmd)
}
