package bodymetrics

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownUnit = errors.New("unknown unit")

// ConvertWeight converts between "kg" and "lbs", rounded to one decimal.
func ConvertWeight(weight float64, from, to string) (float64, error) {
	from, to = strings.ToLower(from), strings.ToLower(to)
	var kg float64
	switch from {
	case "kg":
		kg = weight
	case "lbs":
		kg = weight / lbsPerKg
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownUnit, from)
	}
	switch to {
	case "kg":
		return round1(kg), nil
	case "lbs":
		return round1(kg * lbsPerKg), nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownUnit, to)
}

// ConvertMeasurement converts between "cm" and "in", rounded to one decimal.
func ConvertMeasurement(value float64, from, to string) (float64, error) {
	from, to = strings.ToLower(from), strings.ToLower(to)
	var cm float64
	switch from {
	case "cm":
		cm = value
	case "in":
		cm = value * 2.54
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownUnit, from)
	}
	switch to {
	case "cm":
		return round1(cm), nil
	case "in":
		return round1(cm / 2.54), nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownUnit, to)
}

func BMI(weightKg, heightCm float64) float64 {
	if heightCm <= 0 {
		return 0
	}
	heightM := heightCm / 100
	return round1(weightKg / (heightM * heightM))
}

func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "underweight"
	case bmi < 25:
		return "normal"
	case bmi < 30:
		return "overweight"
	default:
		return "obese"
	}
}
