package domain

type MuscleGroup string

const (
	MuscleGroupChest       MuscleGroup = "chest"
	MuscleGroupBack        MuscleGroup = "back"
	MuscleGroupLegs        MuscleGroup = "legs"
	MuscleGroupShoulders   MuscleGroup = "shoulders"
	MuscleGroupArms        MuscleGroup = "arms"
	MuscleGroupCore        MuscleGroup = "core"
	MuscleGroupCardio      MuscleGroup = "cardio"
	MuscleGroupFlexibility MuscleGroup = "flexibility"
	MuscleGroupFullBody    MuscleGroup = "full-body"
)

type ExerciseType string

const (
	ExerciseTypeStrength    ExerciseType = "strength"
	ExerciseTypeCardio      ExerciseType = "cardio"
	ExerciseTypeFlexibility ExerciseType = "flexibility"
)

type Exercise struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	MuscleGroups []MuscleGroup `json:"muscleGroups"`
	Equipment    string        `json:"equipment"`
	Type         ExerciseType  `json:"type"`
	IsCustom     bool          `json:"isCustom,omitempty"`
}

func (e Exercise) HasMuscleGroup(group MuscleGroup) bool {
	for _, mg := range e.MuscleGroups {
		if mg == group {
			return true
		}
	}
	return false
}

// ExerciseLookup resolves an exercise by id.
type ExerciseLookup func(id string) (Exercise, bool)

// IndexExercises builds a lookup over a snapshot of the catalog.
func IndexExercises(exercises []Exercise) ExerciseLookup {
	byID := make(map[string]Exercise, len(exercises))
	for _, ex := range exercises {
		byID[ex.ID] = ex
	}
	return func(id string) (Exercise, bool) {
		ex, ok := byID[id]
		return ex, ok
	}
}
