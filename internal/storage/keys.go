package storage

type Key string

const (
	KeyExercises        Key = "exercises"
	KeyWorkouts         Key = "workouts"
	KeyRoutines         Key = "routines"
	KeyBodyMetrics      Key = "body_metrics"
	KeyMeals            Key = "meals"
	KeyNutritionTargets Key = "nutrition_targets"
	KeyGoals            Key = "goals"
	KeySettings         Key = "settings"
	KeyActiveWorkout    Key = "active_workout"
	KeyPersonalRecords  Key = "personal_records"
)

func AllKeys() []Key {
	return []Key{
		KeyExercises,
		KeyWorkouts,
		KeyRoutines,
		KeyBodyMetrics,
		KeyMeals,
		KeyNutritionTargets,
		KeyGoals,
		KeySettings,
		KeyActiveWorkout,
		KeyPersonalRecords,
	}
}

func namespaced(namespace string, key Key) string {
	if namespace == "" {
		return string(key)
	}
	return namespace + ":" + string(key)
}
