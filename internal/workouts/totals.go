package workouts

import (
	"github.com/2beens/fitlog/internal/domain"

	"github.com/google/uuid"
)

func NewWorkoutID() string {
	return "workout-" + uuid.NewString()
}

type Totals struct {
	Volume float64
	Sets   int
	Reps   int
}

// RecalculateTotals sums the derived workout totals. Volume only counts
// sets carrying both weight and reps, missing reps count as zero.
func RecalculateTotals(exercises []domain.WorkoutExercise) Totals {
	var totals Totals
	for _, ex := range exercises {
		totals.Sets += len(ex.Sets)
		for _, set := range ex.Sets {
			reps, hasReps := set.RepsValue()
			totals.Reps += reps

			weight, hasWeight := set.WeightValue()
			if hasReps && hasWeight {
				totals.Volume += weight * float64(reps)
			}
		}
	}
	return totals
}

func withTotals(w domain.Workout) domain.Workout {
	totals := RecalculateTotals(w.Exercises)
	w.TotalVolume = totals.Volume
	w.TotalSets = totals.Sets
	w.TotalReps = totals.Reps
	return w
}

// InferWorkoutType picks the workout type from its exercises. Cardio and
// flexibility win only with a strict majority, any other mix of types is
// mixed. Exercises missing from the catalog count as strength.
func InferWorkoutType(exercises []domain.WorkoutExercise, lookup domain.ExerciseLookup) domain.WorkoutType {
	counts := make(map[domain.ExerciseType]int)
	for _, ex := range exercises {
		exType := domain.ExerciseTypeStrength
		if lookup != nil {
			if exercise, ok := lookup(ex.ExerciseID); ok && exercise.Type != "" {
				exType = exercise.Type
			}
		}
		counts[exType]++
	}

	strength := counts[domain.ExerciseTypeStrength]
	cardio := counts[domain.ExerciseTypeCardio]
	flexibility := counts[domain.ExerciseTypeFlexibility]

	switch {
	case cardio > strength && cardio > flexibility:
		return domain.WorkoutTypeCardio
	case flexibility > strength && flexibility > cardio:
		return domain.WorkoutTypeFlexibility
	case len(exercises) > 1 && len(counts) > 1:
		return domain.WorkoutTypeMixed
	default:
		return domain.WorkoutTypeStrength
	}
}

// copyExercises deep copies exercises so sets can be changed without
// touching the caller's slices.
func copyExercises(exercises []domain.WorkoutExercise) []domain.WorkoutExercise {
	copied := make([]domain.WorkoutExercise, len(exercises))
	for i, ex := range exercises {
		ex.Sets = append([]domain.ExerciseSet(nil), ex.Sets...)
		if ex.Sets == nil {
			ex.Sets = []domain.ExerciseSet{}
		}
		copied[i] = ex
	}
	return copied
}
