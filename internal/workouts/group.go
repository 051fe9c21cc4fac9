package workouts

// Retain selects how much of the nested structure Group keeps.
type Retain int

const (
	// RetainNames keeps only the exercise names.
	RetainNames Retain = iota
	// RetainExercises keeps the exercise fields, without sets.
	RetainExercises
	// RetainSets keeps everything.
	RetainSets
)

// Group rebuilds workouts from flat join rows.
// Workouts keep first-seen order, as do exercises within a workout and sets within an exercise.
// Repeated rows (same workout exercise, same set) are folded, so the result does not depend on
// duplicates. Workouts without exercises are kept, with an empty exercise list.
func Group(rows []DetailedRow, retain Retain) []NestedWorkout {
	grouped := make([]NestedWorkout, 0)
	workoutIdx := make(map[int]int)
	// per workout: exercise key -> exercise index
	exerciseIdx := make(map[int]map[exerciseKey]int)
	seenSets := make(map[int]bool)

	for _, row := range rows {
		wi, ok := workoutIdx[row.WorkoutID]
		if !ok {
			wi = len(grouped)
			workoutIdx[row.WorkoutID] = wi
			exerciseIdx[row.WorkoutID] = make(map[exerciseKey]int)
			grouped = append(grouped, NestedWorkout{
				Workout: Workout{
					ID:          row.WorkoutID,
					UserID:      row.UserID,
					StartedAt:   row.StartedAt,
					CompletedAt: row.CompletedAt,
				},
				Exercises: make([]NestedExercise, 0),
			})
		}

		if row.ExerciseName == nil {
			continue
		}

		workout := &grouped[wi]
		key := newExerciseKey(row)
		ei, ok := exerciseIdx[row.WorkoutID][key]
		if !ok {
			ei = len(workout.Exercises)
			exerciseIdx[row.WorkoutID][key] = ei
			workout.Exercises = append(workout.Exercises, newNestedExercise(row, retain))
		}

		if retain != RetainSets || row.SetID == nil || seenSets[*row.SetID] {
			continue
		}
		seenSets[*row.SetID] = true

		set := Set{
			ID:                *row.SetID,
			WorkoutExerciseID: workout.Exercises[ei].WorkoutExerciseID,
			Weight:            row.SetWeight,
			Reps:              row.SetReps,
		}
		if row.SetCreatedAt != nil {
			set.CreatedAt = *row.SetCreatedAt
		}
		workout.Exercises[ei].Sets = append(workout.Exercises[ei].Sets, set)
	}

	return grouped
}

// exerciseKey identifies an exercise within a workout. Rows without a link id fall back to
// (exercise id, order); order is unique within a workout.
type exerciseKey struct {
	workoutExerciseID int
	exerciseID        int
	order             int
}

func newExerciseKey(row DetailedRow) exerciseKey {
	if row.WorkoutExerciseID != nil {
		return exerciseKey{workoutExerciseID: *row.WorkoutExerciseID}
	}
	key := exerciseKey{workoutExerciseID: -1}
	if row.ExerciseID != nil {
		key.exerciseID = *row.ExerciseID
	}
	if row.ExerciseOrder != nil {
		key.order = *row.ExerciseOrder
	}
	return key
}

func newNestedExercise(row DetailedRow, retain Retain) NestedExercise {
	exercise := NestedExercise{
		Name: *row.ExerciseName,
	}
	if retain == RetainNames {
		return exercise
	}

	if row.WorkoutExerciseID != nil {
		exercise.WorkoutExerciseID = *row.WorkoutExerciseID
	}
	if row.ExerciseID != nil {
		exercise.ExerciseID = *row.ExerciseID
	}
	if row.ExerciseOrder != nil {
		exercise.Order = *row.ExerciseOrder
	}
	if retain == RetainSets {
		exercise.Sets = make([]Set, 0)
	}
	return exercise
}

// ExerciseNames flattens a grouped workout down to its exercise names, in order.
func (w NestedWorkout) ExerciseNames() []string {
	names := make([]string, 0, len(w.Exercises))
	for _, e := range w.Exercises {
		names = append(names, e.Name)
	}
	return names
}
