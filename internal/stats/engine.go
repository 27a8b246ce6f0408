// Package stats derives workout statistics from the workout history.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/2beens/fitlog/internal/calendar"
	"github.com/2beens/fitlog/internal/domain"

	"cloud.google.com/go/civil"
)

// NoMuscleGroup is reported when no exercise resolves to a muscle group.
const NoMuscleGroup = "N/A"

const DefaultWeeklyVolumeWeeks = 12

// Engine computes statistics over a snapshot of workouts. It never
// modifies the slices it is given.
type Engine struct {
	cal calendar.Calendar
	now func() time.Time
}

func NewEngine(cal calendar.Calendar, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{
		cal: cal,
		now: now,
	}
}

// Completed returns the completed workouts, in input order.
func Completed(workouts []domain.Workout) []domain.Workout {
	completed := make([]domain.Workout, 0, len(workouts))
	for _, w := range workouts {
		if w.IsCompleted() {
			completed = append(completed, w)
		}
	}
	return completed
}

func (e *Engine) Compute(workouts []domain.Workout, lookup domain.ExerciseLookup) domain.WorkoutStatistics {
	completed := Completed(workouts)
	if len(completed) == 0 {
		return domain.WorkoutStatistics{MostFrequentMuscleGroup: NoMuscleGroup}
	}

	today := e.cal.Date(e.now())
	currentStreak, longestStreak := Streaks(distinctDatesDesc(completed), today)

	weekStart, weekEnd := e.cal.StartOfWeek(today), e.cal.EndOfWeek(today)
	monthStart, monthEnd := calendar.StartOfMonth(today), calendar.EndOfMonth(today)

	stats := domain.WorkoutStatistics{
		TotalWorkouts: len(completed),
		CurrentStreak: currentStreak,
		LongestStreak: longestStreak,
	}
	for _, w := range completed {
		stats.TotalVolume += w.TotalVolume
		stats.TotalDuration += w.Duration
		if calendar.Within(w.Date, weekStart, weekEnd) {
			stats.WorkoutsThisWeek++
		}
		if calendar.Within(w.Date, monthStart, monthEnd) {
			stats.WorkoutsThisMonth++
		}
	}
	stats.AverageDuration = int(math.Round(float64(stats.TotalDuration) / float64(stats.TotalWorkouts)))
	stats.MostFrequentMuscleGroup = MostFrequentMuscleGroup(completed, lookup)

	return stats
}

func distinctDatesDesc(workouts []domain.Workout) []civil.Date {
	seen := make(map[civil.Date]bool, len(workouts))
	dates := make([]civil.Date, 0, len(workouts))
	for _, w := range workouts {
		if !seen[w.Date] {
			seen[w.Date] = true
			dates = append(dates, w.Date)
		}
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].After(dates[j])
	})
	return dates
}

// Streaks walks distinct dates sorted newest first. A run continues while
// each date is exactly one calendar day before the previous one. The
// current streak is the leading run, counted only when its newest date is
// today or yesterday.
func Streaks(datesDesc []civil.Date, today civil.Date) (current, longest int) {
	if len(datesDesc) == 0 {
		return 0, 0
	}

	run := 0
	leading := true
	for i, d := range datesDesc {
		if i == 0 || datesDesc[i-1].DaysSince(d) == 1 {
			run++
		} else {
			leading = false
			run = 1
		}
		if leading {
			current = run
		}
		if run > longest {
			longest = run
		}
	}

	if today.DaysSince(datesDesc[0]) > 1 {
		current = 0
	}
	return current, longest
}

// MostFrequentMuscleGroup tallies one hit per muscle group per exercise
// entry. Ties go to the group seen first.
func MostFrequentMuscleGroup(workouts []domain.Workout, lookup domain.ExerciseLookup) string {
	if lookup == nil {
		return NoMuscleGroup
	}

	counts := make(map[domain.MuscleGroup]int)
	var order []domain.MuscleGroup
	for _, w := range workouts {
		for _, we := range w.Exercises {
			ex, ok := lookup(we.ExerciseID)
			if !ok {
				continue
			}
			for _, mg := range ex.MuscleGroups {
				if _, seen := counts[mg]; !seen {
					order = append(order, mg)
				}
				counts[mg]++
			}
		}
	}

	best, bestCount := NoMuscleGroup, 0
	for _, mg := range order {
		if counts[mg] > bestCount {
			best, bestCount = string(mg), counts[mg]
		}
	}
	return best
}

// WeeklyVolume returns one entry per calendar week for the last `weeks`
// weeks, oldest first, the current week last.
func (e *Engine) WeeklyVolume(workouts []domain.Workout, weeks int) []domain.WeeklyVolume {
	if weeks <= 0 {
		return []domain.WeeklyVolume{}
	}

	currentWeek := e.cal.StartOfWeek(e.cal.Date(e.now()))
	series := make([]domain.WeeklyVolume, weeks)
	for i := range series {
		series[i].WeekStart = currentWeek.AddDays(-7 * (weeks - 1 - i))
	}

	for _, w := range Completed(workouts) {
		weeksAgo := currentWeek.DaysSince(e.cal.StartOfWeek(w.Date)) / 7
		idx := weeks - 1 - weeksAgo
		if weeksAgo < 0 || idx < 0 {
			continue
		}
		series[idx].Volume += w.TotalVolume
		series[idx].WorkoutCount++
	}
	return series
}
