package bodymetrics

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/2beens/fitlog/internal/domain"
)

// samples on either side of a point included in its moving average
const movingAverageReach = 6

// kg -> lbs
const lbsPerKg = 2.20462

// trend below this many kg between half-window averages is stable
const stableThreshold = 0.5

var ErrUnknownMeasurement = errors.New("unknown measurement")

type Period string

const (
	PeriodWeek        Period = "week"
	PeriodMonth       Period = "month"
	PeriodThreeMonths Period = "3months"
	PeriodSixMonths   Period = "6months"
	PeriodYear        Period = "year"
)

// Since returns the start of the period ending at now. Unknown periods
// fall back to a month.
func (p Period) Since(now time.Time) time.Time {
	switch p {
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	case PeriodThreeMonths:
		return now.AddDate(0, -3, 0)
	case PeriodSixMonths:
		return now.AddDate(0, -6, 0)
	case PeriodYear:
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, -1, 0)
	}
}

// sortedByDate returns a copy of metrics, oldest first.
func sortedByDate(metrics []domain.BodyMetric) []domain.BodyMetric {
	sorted := make([]domain.BodyMetric, len(metrics))
	copy(sorted, metrics)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// Latest returns the most recent metric.
func Latest(metrics []domain.BodyMetric) (domain.BodyMetric, bool) {
	if len(metrics) == 0 {
		return domain.BodyMetric{}, false
	}
	sorted := sortedByDate(metrics)
	return sorted[len(sorted)-1], true
}

// LatestWeight returns the weight of the most recent metric that has one.
func LatestWeight(metrics []domain.BodyMetric) (float64, bool) {
	sorted := sortedByDate(metrics)
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].Weight != nil {
			return *sorted[i].Weight, true
		}
	}
	return 0, false
}

type Sample struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// WeightHistory returns the weights recorded at or after since, oldest first.
func WeightHistory(metrics []domain.BodyMetric, since time.Time) []Sample {
	history := make([]Sample, 0)
	for _, m := range sortedByDate(metrics) {
		if m.Weight != nil && !m.Date.Before(since) {
			history = append(history, Sample{Date: m.Date, Value: *m.Weight})
		}
	}
	return history
}

// WeightTrend pairs each weight since from with the mean of the weights up
// to six samples either side of it, rounded to one decimal.
func WeightTrend(metrics []domain.BodyMetric, from time.Time) []domain.WeightTrend {
	history := WeightHistory(metrics, from)
	trend := make([]domain.WeightTrend, 0, len(history))
	for i, sample := range history {
		lo := max(0, i-movingAverageReach)
		hi := min(len(history)-1, i+movingAverageReach)
		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += history[j].Value
		}
		avg := round1(sum / float64(hi-lo+1))
		trend = append(trend, domain.WeightTrend{
			Date:          sample.Date,
			Weight:        sample.Value,
			MovingAverage: &avg,
		})
	}
	return trend
}

func measurementValue(m *domain.BodyMeasurements, name string) (*float64, error) {
	switch name {
	case "chest":
		return m.Chest, nil
	case "waist":
		return m.Waist, nil
	case "hips":
		return m.Hips, nil
	case "leftArm":
		return m.LeftArm, nil
	case "rightArm":
		return m.RightArm, nil
	case "leftThigh":
		return m.LeftThigh, nil
	case "rightThigh":
		return m.RightThigh, nil
	case "neck":
		return m.Neck, nil
	case "shoulders":
		return m.Shoulders, nil
	case "calves":
		return m.Calves, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownMeasurement, name)
}

// MeasurementHistory returns the values of one body measurement recorded at
// or after since, oldest first.
func MeasurementHistory(metrics []domain.BodyMetric, name string, since time.Time) ([]Sample, error) {
	if _, err := measurementValue(&domain.BodyMeasurements{}, name); err != nil {
		return nil, err
	}

	history := make([]Sample, 0)
	for _, m := range sortedByDate(metrics) {
		if m.Measurements == nil || m.Date.Before(since) {
			continue
		}
		if v, _ := measurementValue(m.Measurements, name); v != nil {
			history = append(history, Sample{Date: m.Date, Value: *v})
		}
	}
	return history, nil
}

type Direction string

const (
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionStable Direction = "stable"
)

type Statistics struct {
	Current *float64  `json:"current,omitempty"`
	Average float64   `json:"average"`
	Min     float64   `json:"min"`
	Max     float64   `json:"max"`
	Trend   Direction `json:"trend"`
}

// Summarize reduces an oldest-first history. The trend compares the mean of
// the first half against the second half.
func Summarize(history []Sample) Statistics {
	if len(history) == 0 {
		return Statistics{Trend: DirectionStable}
	}

	current := history[len(history)-1].Value
	stats := Statistics{
		Current: &current,
		Min:     math.Inf(1),
		Max:     math.Inf(-1),
		Trend:   DirectionStable,
	}
	sum := 0.0
	for _, s := range history {
		sum += s.Value
		stats.Min = math.Min(stats.Min, s.Value)
		stats.Max = math.Max(stats.Max, s.Value)
	}
	stats.Average = round1(sum / float64(len(history)))
	stats.Min = round1(stats.Min)
	stats.Max = round1(stats.Max)

	mid := len(history) / 2
	if mid == 0 {
		return stats
	}
	firstHalf := mean(history[:mid])
	secondHalf := mean(history[mid:])
	switch {
	case secondHalf-firstHalf > stableThreshold:
		stats.Trend = DirectionUp
	case firstHalf-secondHalf > stableThreshold:
		stats.Trend = DirectionDown
	}
	return stats
}

type Change struct {
	Change     float64 `json:"change"`
	Percentage float64 `json:"percentage"`
}

// WeightChange compares the first and last weight of an oldest-first
// history. It needs at least two samples.
func WeightChange(history []Sample) (Change, bool) {
	if len(history) < 2 {
		return Change{}, false
	}
	start := history[0].Value
	delta := history[len(history)-1].Value - start
	change := Change{Change: round1(delta)}
	if start != 0 {
		change.Percentage = round1(delta / start * 100)
	}
	return change, true
}

func mean(samples []Sample) float64 {
	sum := 0.0
	for _, s := range samples {
		sum += s.Value
	}
	return sum / float64(len(samples))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
