package domain

import "cloud.google.com/go/civil"

type PersonalRecordType string

const (
	RecordOneRepMax       PersonalRecordType = "oneRepMax"
	RecordMaxVolume       PersonalRecordType = "maxVolume"
	RecordMaxWeight       PersonalRecordType = "maxWeight"
	RecordMaxReps         PersonalRecordType = "maxReps"
	RecordLongestDuration PersonalRecordType = "longestDuration"
)

type PersonalRecord struct {
	ID         string             `json:"id"`
	ExerciseID string             `json:"exerciseId"`
	Type       PersonalRecordType `json:"type"`
	Value      float64            `json:"value"`
	Date       civil.Date         `json:"date"`
	WorkoutID  string             `json:"workoutId"`
}

// RecordLedger maps an exercise ID to its best records, at most one per type.
type RecordLedger map[string][]PersonalRecord

// Find returns the stored record of the given type for the exercise.
func (l RecordLedger) Find(exerciseID string, recordType PersonalRecordType) (PersonalRecord, bool) {
	for _, r := range l[exerciseID] {
		if r.Type == recordType {
			return r, true
		}
	}
	return PersonalRecord{}, false
}

// Clone returns a deep copy, so callers can derive a new ledger without
// touching the one they were given.
func (l RecordLedger) Clone() RecordLedger {
	clone := make(RecordLedger, len(l))
	for exerciseID, records := range l {
		clone[exerciseID] = append([]PersonalRecord(nil), records...)
	}
	return clone
}
