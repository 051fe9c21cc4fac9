package main

import (
	"fmt"

	"github.com/2beens/liftdiary/internal/db"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Manage the database schema",
}

var schemaApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Create the workout tracking tables, skipping the ones that exist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := db.ApplySchema(cmd.Context(), dbPool); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
		color.Green("✓ Schema applied to [%s]", cfg.PostgresDBName)
		return nil
	},
}

func init() {
	schemaCmd.AddCommand(schemaApplyCmd)
	rootCmd.AddCommand(schemaCmd)
}
