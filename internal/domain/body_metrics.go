package domain

import "time"

type BodyMeasurements struct {
	Chest      *float64 `json:"chest,omitempty"`
	Waist      *float64 `json:"waist,omitempty"`
	Hips       *float64 `json:"hips,omitempty"`
	LeftArm    *float64 `json:"leftArm,omitempty"`
	RightArm   *float64 `json:"rightArm,omitempty"`
	LeftThigh  *float64 `json:"leftThigh,omitempty"`
	RightThigh *float64 `json:"rightThigh,omitempty"`
	Neck       *float64 `json:"neck,omitempty"`
	Shoulders  *float64 `json:"shoulders,omitempty"`
	Calves     *float64 `json:"calves,omitempty"`
}

type BodyMetric struct {
	ID                string            `json:"id"`
	Date              time.Time         `json:"date"`
	Weight            *float64          `json:"weight,omitempty"`
	Measurements      *BodyMeasurements `json:"measurements,omitempty"`
	BodyFatPercentage *float64          `json:"bodyFatPercentage,omitempty"`
	Notes             string            `json:"notes,omitempty"`
}

type WeightTrend struct {
	Date          time.Time `json:"date"`
	Weight        float64   `json:"weight"`
	MovingAverage *float64  `json:"movingAverage,omitempty"`
}
