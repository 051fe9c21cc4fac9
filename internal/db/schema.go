package db

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed schema.sql
var SchemaSQL string

// Tables lists the liftdiary tables, in dependency order.
var Tables = []string{"exercises", "workouts", "workout_exercises", "sets"}

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// ApplySchema creates the liftdiary tables and indexes if they do not exist yet.
func ApplySchema(ctx context.Context, db execer) error {
	if _, err := db.Exec(ctx, SchemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
