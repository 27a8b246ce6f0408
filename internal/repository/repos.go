package repository

import (
	"github.com/2beens/fitlog/internal/domain"
	"github.com/2beens/fitlog/internal/storage"
)

type (
	WorkoutRepo         = Collection[domain.Workout]
	GoalRepo            = Collection[domain.Goal]
	MealRepo            = Collection[domain.Meal]
	BodyMetricRepo      = Collection[domain.BodyMetric]
	ExerciseRepo        = Collection[domain.Exercise]
	RoutineRepo         = Collection[domain.Routine]
	NutritionTargetRepo = Document[domain.NutritionTarget]
	ActiveSessionRepo   = Document[domain.ActiveWorkoutSession]
	RecordLedgerRepo    = Document[domain.RecordLedger]
)

func NewWorkoutRepo(store storage.Store) *WorkoutRepo {
	return NewCollection[domain.Workout](store, storage.KeyWorkouts)
}

func NewGoalRepo(store storage.Store) *GoalRepo {
	return NewCollection[domain.Goal](store, storage.KeyGoals)
}

func NewMealRepo(store storage.Store) *MealRepo {
	return NewCollection[domain.Meal](store, storage.KeyMeals)
}

func NewBodyMetricRepo(store storage.Store) *BodyMetricRepo {
	return NewCollection[domain.BodyMetric](store, storage.KeyBodyMetrics)
}

func NewExerciseRepo(store storage.Store) *ExerciseRepo {
	return NewCollection[domain.Exercise](store, storage.KeyExercises)
}

func NewRoutineRepo(store storage.Store) *RoutineRepo {
	return NewCollection[domain.Routine](store, storage.KeyRoutines)
}

func NewNutritionTargetRepo(store storage.Store) *NutritionTargetRepo {
	return NewDocument[domain.NutritionTarget](store, storage.KeyNutritionTargets)
}

func NewActiveSessionRepo(store storage.Store) *ActiveSessionRepo {
	return NewDocument[domain.ActiveWorkoutSession](store, storage.KeyActiveWorkout)
}

func NewRecordLedgerRepo(store storage.Store) *RecordLedgerRepo {
	return NewDocument[domain.RecordLedger](store, storage.KeyPersonalRecords)
}
