package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/liftdiary/internal/workouts"
)

type workoutsReader interface {
	Today() time.Time
	ParseDate(date string) (time.Time, error)
	WorkoutsForDay(ctx context.Context, userID string, day time.Time) ([]workouts.NestedWorkout, error)
	StatsForDay(ctx context.Context, userID string, day time.Time) (*workouts.DailyStats, error)
}

// contextService is what the tool handlers need; ContextService is the real one.
type contextService interface {
	GetSchema(ctx context.Context) (string, error)
	WorkoutsForDate(ctx context.Context, userID, date string) ([]workouts.NestedWorkout, error)
	DailyStats(ctx context.Context, userID, date string) (*workouts.DailyStats, error)
}

type ContextService struct {
	schema   SchemaRepo
	workouts workoutsReader
}

func NewContextService(schemaRepo SchemaRepo, workoutsService workoutsReader) *ContextService {
	return &ContextService{
		schema:   schemaRepo,
		workouts: workoutsService,
	}
}

// GetSchema returns the workouts tables layout as markdown.
func (s *ContextService) GetSchema(ctx context.Context) (string, error) {
	cols, err := s.schema.GetColumns(ctx)
	if err != nil {
		return "", err
	}
	return formatSchema(cols), nil
}

func (s *ContextService) WorkoutsForDate(ctx context.Context, userID, date string) ([]workouts.NestedWorkout, error) {
	day, err := s.day(date)
	if err != nil {
		return nil, err
	}
	return s.workouts.WorkoutsForDay(ctx, userID, day)
}

func (s *ContextService) DailyStats(ctx context.Context, userID, date string) (*workouts.DailyStats, error) {
	day, err := s.day(date)
	if err != nil {
		return nil, err
	}
	return s.workouts.StatsForDay(ctx, userID, day)
}

// day resolves an optional date, empty means today.
func (s *ContextService) day(date string) (time.Time, error) {
	if date == "" {
		return s.workouts.Today(), nil
	}
	return s.workouts.ParseDate(date)
}

func formatSchema(cols []SchemaColumn) string {
	if len(cols) == 0 {
		return "# liftdiary DB Schema\n\nNo liftdiary tables found in the database.\n"
	}

	var b strings.Builder
	b.WriteString("# liftdiary DB Schema\n\n")
	b.WriteString("Tables: " + strings.Join(liftdiaryTables, ", ") + " (schema: public).\n")

	currentTable := ""
	for _, c := range cols {
		if c.TableName != currentTable {
			currentTable = c.TableName
			b.WriteString("\n## " + currentTable + "\n\n")
			b.WriteString("| Column | Type | Nullable | Default |\n|--------|------|----------|---------|\n")
		}
		def := "-"
		if c.ColumnDef != nil && *c.ColumnDef != "" {
			def = *c.ColumnDef
		}
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", c.ColumnName, c.DataType, c.IsNullable, def))
	}

	return b.String()
}
