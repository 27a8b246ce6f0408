package domain

import "time"

// RoutineExercise is an exercise in a routine together with the defaults
// each of its sets starts from.
type RoutineExercise struct {
	ExerciseID      string   `json:"exerciseId"`
	DefaultSets     int      `json:"defaultSets"`
	DefaultReps     *int     `json:"defaultReps,omitempty"`
	DefaultWeight   *float64 `json:"defaultWeight,omitempty"`
	DefaultDuration *int     `json:"defaultDuration,omitempty"` // seconds
	Notes           string   `json:"notes,omitempty"`
	RestTime        *int     `json:"restTime,omitempty"` // seconds
}

// Routine is a reusable workout template.
type Routine struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Description       string            `json:"description,omitempty"`
	Type              WorkoutType       `json:"type"`
	Exercises         []RoutineExercise `json:"exercises"`
	EstimatedDuration int               `json:"estimatedDuration"` // minutes
	Tags              []string          `json:"tags,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	IsFavorite        bool              `json:"isFavorite,omitempty"`
}

type RoutineStatistics struct {
	TotalRoutines    int                 `json:"totalRoutines"`
	FavoriteRoutines int                 `json:"favoriteRoutines"`
	TypeBreakdown    map[WorkoutType]int `json:"typeBreakdown"`
}
