package domain

import (
	"time"

	"cloud.google.com/go/civil"
)

type GoalCategory string

const (
	GoalWorkoutsPerWeek  GoalCategory = "workouts-per-week"
	GoalWorkoutsPerMonth GoalCategory = "workouts-per-month"
	GoalCaloriesPerDay   GoalCategory = "calories-per-day"
	GoalProteinPerDay    GoalCategory = "protein-per-day"
	GoalBodyweight       GoalCategory = "bodyweight"
	GoalMeasurement      GoalCategory = "measurement"
	GoalStrength         GoalCategory = "strength"
	GoalCustom           GoalCategory = "custom"
)

type GoalPeriod string

const (
	GoalPeriodDaily   GoalPeriod = "daily"
	GoalPeriodWeekly  GoalPeriod = "weekly"
	GoalPeriodMonthly GoalPeriod = "monthly"
	GoalPeriodOneTime GoalPeriod = "one-time"
)

type GoalStatus string

const (
	GoalStatusActive     GoalStatus = "active"
	GoalStatusInProgress GoalStatus = "in-progress"
	GoalStatusCompleted  GoalStatus = "completed"
	GoalStatusMissed     GoalStatus = "missed"
	GoalStatusPaused     GoalStatus = "paused"
)

// MaxGoalSnapshots is how many daily progress snapshots a goal keeps.
const MaxGoalSnapshots = 30

type GoalSnapshot struct {
	Date  civil.Date `json:"date"`
	Value float64    `json:"value"`
}

type Goal struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Description      string         `json:"description,omitempty"`
	Category         GoalCategory   `json:"category"`
	Period           GoalPeriod     `json:"period"`
	TargetValue      float64        `json:"targetValue"`
	CurrentValue     float64        `json:"currentValue"`
	Unit             string         `json:"unit"`
	StartDate        time.Time      `json:"startDate"`
	EndDate          time.Time      `json:"endDate"`
	Status           GoalStatus     `json:"status"`
	RemindersEnabled bool           `json:"remindersEnabled,omitempty"`
	ReminderDays     []int          `json:"reminderDays,omitempty"` // 0-6, Sunday first
	CreatedAt        time.Time      `json:"createdAt"`
	CompletedAt      *time.Time     `json:"completedAt,omitempty"`
	ProgressHistory  []GoalSnapshot `json:"progressHistory,omitempty"`
}

// IsOpen reports whether the goal still takes part in progress tracking.
func (g Goal) IsOpen() bool {
	return g.Status == GoalStatusActive || g.Status == GoalStatusInProgress
}

type GoalProgress struct {
	Percentage    int     `json:"percentage"`
	Remaining     float64 `json:"remaining"`
	IsComplete    bool    `json:"isComplete"`
	IsOnTrack     bool    `json:"isOnTrack"`
	DaysRemaining int     `json:"daysRemaining"`
}

type GoalTemplate struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Description       string       `json:"description"`
	Category          GoalCategory `json:"category"`
	Period            GoalPeriod   `json:"period"`
	DefaultTarget     float64      `json:"defaultTarget"`
	Unit              string       `json:"unit"`
	SuggestedDuration int          `json:"suggestedDuration,omitempty"` // days
}

type GoalStatistics struct {
	TotalGoals     int `json:"totalGoals"`
	ActiveGoals    int `json:"activeGoals"`
	CompletedGoals int `json:"completedGoals"`
	MissedGoals    int `json:"missedGoals"`
	PausedGoals    int `json:"pausedGoals"`
	CompletionRate int `json:"completionRate"`
}
