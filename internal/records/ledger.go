// Package records keeps the personal record ledger: the best value ever
// seen per exercise and record type.
package records

import (
	"math"

	"github.com/2beens/fitlog/internal/domain"

	"github.com/google/uuid"
)

// oneRepMaxMaxReps is the highest rep count an Epley estimate is made from.
const oneRepMaxMaxReps = 10

func NewRecordID() string {
	return "pr-" + uuid.NewString()
}

// EstimateOneRepMax is the Epley estimate, rounded to a whole number.
func EstimateOneRepMax(weight float64, reps int) float64 {
	return math.Round(weight * (1 + float64(reps)/30))
}

type recordKey struct {
	exerciseID string
	recordType domain.PersonalRecordType
}

// Apply checks every completed set of the workout against the ledger and
// returns the updated ledger plus the records the workout set. The given
// ledger is left untouched. A candidate replaces the stored record only when
// strictly greater, so ties keep the older record.
func Apply(
	ledger domain.RecordLedger,
	workout domain.Workout,
	newID func() string,
) (domain.RecordLedger, []domain.PersonalRecord) {
	if newID == nil {
		newID = NewRecordID
	}

	updated := ledger.Clone()
	if updated == nil {
		updated = domain.RecordLedger{}
	}

	var setOrder []recordKey
	set := make(map[recordKey]domain.PersonalRecord)

	improve := func(exerciseID string, recordType domain.PersonalRecordType, value float64) {
		if current, ok := updated.Find(exerciseID, recordType); ok && value <= current.Value {
			return
		}

		record := domain.PersonalRecord{
			ID:         newID(),
			ExerciseID: exerciseID,
			Type:       recordType,
			Value:      value,
			Date:       workout.Date,
			WorkoutID:  workout.ID,
		}
		kept := make([]domain.PersonalRecord, 0, len(updated[exerciseID])+1)
		for _, r := range updated[exerciseID] {
			if r.Type != recordType {
				kept = append(kept, r)
			}
		}
		updated[exerciseID] = append(kept, record)

		key := recordKey{exerciseID: exerciseID, recordType: recordType}
		if _, seen := set[key]; !seen {
			setOrder = append(setOrder, key)
		}
		set[key] = record
	}

	for _, we := range workout.Exercises {
		for _, s := range we.Sets {
			if !s.Completed || !s.HasMeasurement() {
				continue
			}

			weight, hasWeight := s.WeightValue()
			reps, hasReps := s.RepsValue()
			duration, hasDuration := s.DurationValue()

			if hasWeight && hasReps && reps <= oneRepMaxMaxReps {
				improve(we.ExerciseID, domain.RecordOneRepMax, EstimateOneRepMax(weight, reps))
			}
			if hasWeight {
				improve(we.ExerciseID, domain.RecordMaxWeight, weight)
			}
			if hasWeight && hasReps {
				improve(we.ExerciseID, domain.RecordMaxVolume, weight*float64(reps))
			}
			if hasDuration {
				improve(we.ExerciseID, domain.RecordLongestDuration, float64(duration))
			}
		}
	}

	newRecords := make([]domain.PersonalRecord, 0, len(setOrder))
	for _, key := range setOrder {
		newRecords = append(newRecords, set[key])
	}
	return updated, newRecords
}
