package domain

import (
	"time"

	"cloud.google.com/go/civil"
)

type WorkoutType string

const (
	WorkoutTypeStrength    WorkoutType = "strength"
	WorkoutTypeCardio      WorkoutType = "cardio"
	WorkoutTypeFlexibility WorkoutType = "flexibility"
	WorkoutTypeMixed       WorkoutType = "mixed"
)

type WorkoutStatus string

const (
	WorkoutStatusPlanned    WorkoutStatus = "planned"
	WorkoutStatusInProgress WorkoutStatus = "in-progress"
	WorkoutStatusCompleted  WorkoutStatus = "completed"
	WorkoutStatusSkipped    WorkoutStatus = "skipped"
)

// ExerciseSet is a single logged set. All measurements are optional,
// a nil pointer means "not recorded", which is different from zero.
type ExerciseSet struct {
	Reps      *int     `json:"reps,omitempty"`
	Weight    *float64 `json:"weight,omitempty"`
	Duration  *int     `json:"duration,omitempty"` // seconds
	Distance  *float64 `json:"distance,omitempty"` // meters
	Completed bool     `json:"completed"`
}

// WeightValue returns the set weight and whether it was recorded.
// A zero weight counts as not recorded.
func (s ExerciseSet) WeightValue() (float64, bool) {
	if s.Weight == nil || *s.Weight == 0 {
		return 0, false
	}
	return *s.Weight, true
}

func (s ExerciseSet) RepsValue() (int, bool) {
	if s.Reps == nil || *s.Reps == 0 {
		return 0, false
	}
	return *s.Reps, true
}

func (s ExerciseSet) DurationValue() (int, bool) {
	if s.Duration == nil || *s.Duration == 0 {
		return 0, false
	}
	return *s.Duration, true
}

// HasMeasurement reports whether the set carries weight, reps or duration.
func (s ExerciseSet) HasMeasurement() bool {
	_, hasWeight := s.WeightValue()
	_, hasReps := s.RepsValue()
	_, hasDuration := s.DurationValue()
	return hasWeight || hasReps || hasDuration
}

type WorkoutExercise struct {
	ExerciseID string        `json:"exerciseId"`
	Sets       []ExerciseSet `json:"sets"`
	Notes      string        `json:"notes,omitempty"`
}

type Workout struct {
	ID        string            `json:"id"`
	Name      string            `json:"name,omitempty"`
	Date      civil.Date        `json:"date"`
	StartTime *time.Time        `json:"startTime,omitempty"`
	EndTime   *time.Time        `json:"endTime,omitempty"`
	Duration  int               `json:"duration"` // minutes
	Type      WorkoutType       `json:"type"`
	Status    WorkoutStatus     `json:"status"`
	Exercises []WorkoutExercise `json:"exercises"`
	Notes     string            `json:"notes,omitempty"`

	TotalVolume float64 `json:"totalVolume"`
	TotalSets   int     `json:"totalSets"`
	TotalReps   int     `json:"totalReps"`
}

func (w Workout) IsCompleted() bool {
	return w.Status == WorkoutStatusCompleted
}

// ActiveWorkoutSession is the in-flight workout being logged set by set.
type ActiveWorkoutSession struct {
	WorkoutID            string            `json:"workoutId"`
	StartTime            time.Time         `json:"startTime"`
	CurrentExerciseIndex int               `json:"currentExerciseIndex"`
	CurrentSetIndex      int               `json:"currentSetIndex"`
	Exercises            []WorkoutExercise `json:"exercises"`
	RestTimerEndTime     *time.Time        `json:"restTimerEndTime,omitempty"`
}

type WorkoutStatistics struct {
	TotalWorkouts           int     `json:"totalWorkouts"`
	TotalVolume             float64 `json:"totalVolume"`
	TotalDuration           int     `json:"totalDuration"`
	AverageDuration         int     `json:"averageDuration"`
	CurrentStreak           int     `json:"currentStreak"`
	LongestStreak           int     `json:"longestStreak"`
	WorkoutsThisWeek        int     `json:"workoutsThisWeek"`
	WorkoutsThisMonth       int     `json:"workoutsThisMonth"`
	MostFrequentMuscleGroup string  `json:"mostFrequentMuscleGroup"`
}

type WeeklyVolume struct {
	WeekStart    civil.Date `json:"weekStart"`
	Volume       float64    `json:"volume"`
	WorkoutCount int        `json:"workoutCount"`
}
