package routines

import (
	"math"
	"strings"

	"github.com/2beens/fitlog/internal/domain"
)

const (
	DefaultRestSeconds     = 90
	CardioRestSeconds      = 60
	CompoundRestSeconds    = 120
	FlexibilityRestSeconds = 30

	// minutes per set, and to set up each exercise
	minutesPerSet = 1
	setupMinutes  = 2
)

// matched against the exercise name, lowercased with spaces as dashes
var compoundMovements = []string{
	"squat",
	"deadlift",
	"bench",
	"overhead-press",
	"barbell-row",
}

// ToWorkoutExercises expands a routine into workout exercises, one set per
// default set, all carrying the routine defaults and none completed.
func ToWorkoutExercises(routine domain.Routine) []domain.WorkoutExercise {
	exercises := make([]domain.WorkoutExercise, 0, len(routine.Exercises))
	for _, re := range routine.Exercises {
		sets := make([]domain.ExerciseSet, 0, max(re.DefaultSets, 0))
		for i := 0; i < re.DefaultSets; i++ {
			sets = append(sets, domain.ExerciseSet{
				Reps:     copyPtr(re.DefaultReps),
				Weight:   copyPtr(re.DefaultWeight),
				Duration: copyPtr(re.DefaultDuration),
			})
		}
		exercises = append(exercises, domain.WorkoutExercise{
			ExerciseID: re.ExerciseID,
			Sets:       sets,
			Notes:      re.Notes,
		})
	}
	return exercises
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// EstimatedDuration is the routine length in minutes: a minute per set,
// the rest between sets (90s unless the exercise says otherwise) and two
// minutes of setup per exercise.
func EstimatedDuration(exercises []domain.RoutineExercise) int {
	total := 0.0
	for _, re := range exercises {
		rest := DefaultRestSeconds
		if re.RestTime != nil && *re.RestTime > 0 {
			rest = *re.RestTime
		}
		total += float64(re.DefaultSets*minutesPerSet) +
			float64((re.DefaultSets-1)*rest)/60 +
			setupMinutes
	}
	return int(math.Round(total))
}

// RecommendedRestSeconds suggests the rest between sets of an exercise.
// Unknown exercises get the default.
func RecommendedRestSeconds(exercise domain.Exercise, found bool) int {
	if !found {
		return DefaultRestSeconds
	}
	switch {
	case exercise.Type == domain.ExerciseTypeCardio:
		return CardioRestSeconds
	case isCompound(exercise.Name):
		return CompoundRestSeconds
	case exercise.Type == domain.ExerciseTypeFlexibility:
		return FlexibilityRestSeconds
	}
	return DefaultRestSeconds
}

func isCompound(name string) bool {
	normalized := strings.ReplaceAll(strings.ToLower(name), " ", "-")
	for _, movement := range compoundMovements {
		if strings.Contains(normalized, movement) {
			return true
		}
	}
	return false
}

func Statistics(routines []domain.Routine) domain.RoutineStatistics {
	stats := domain.RoutineStatistics{
		TotalRoutines: len(routines),
		TypeBreakdown: map[domain.WorkoutType]int{
			domain.WorkoutTypeStrength:    0,
			domain.WorkoutTypeCardio:      0,
			domain.WorkoutTypeFlexibility: 0,
			domain.WorkoutTypeMixed:       0,
		},
	}
	for _, r := range routines {
		if r.IsFavorite {
			stats.FavoriteRoutines++
		}
		stats.TypeBreakdown[r.Type]++
	}
	return stats
}

// Matches reports whether query appears in the name, description or any
// tag, ignoring case. An empty query matches everything.
func Matches(routine domain.Routine, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(routine.Name), query) ||
		strings.Contains(strings.ToLower(routine.Description), query) {
		return true
	}
	for _, tag := range routine.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}
