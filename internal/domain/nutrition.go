package domain

import (
	"time"

	"cloud.google.com/go/civil"
)

type MealType string

const (
	MealBreakfast   MealType = "breakfast"
	MealLunch       MealType = "lunch"
	MealDinner      MealType = "dinner"
	MealSnack       MealType = "snack"
	MealPostWorkout MealType = "post-workout"
	MealOther       MealType = "other"
)

type Meal struct {
	ID       string    `json:"id"`
	Date     time.Time `json:"date"`
	Name     string    `json:"name"`
	MealType MealType  `json:"mealType"`
	Calories float64   `json:"calories"`
	Protein  float64   `json:"protein"` // grams
	Carbs    float64   `json:"carbs"`   // grams
	Fat      float64   `json:"fat"`     // grams
	Fiber    *float64  `json:"fiber,omitempty"`
	Sugar    *float64  `json:"sugar,omitempty"`
	Sodium   *float64  `json:"sodium,omitempty"` // mg
	Notes    string    `json:"notes,omitempty"`
}

type NutritionTarget struct {
	DailyCalories float64  `json:"dailyCalories"`
	Protein       float64  `json:"protein"`
	Carbs         float64  `json:"carbs"`
	Fat           float64  `json:"fat"`
	Fiber         *float64 `json:"fiber,omitempty"`
}

// DefaultNutritionTarget is used until the user stores their own targets.
func DefaultNutritionTarget() NutritionTarget {
	return NutritionTarget{
		DailyCalories: 2000,
		Protein:       150,
		Carbs:         200,
		Fat:           65,
	}
}

type DailyNutritionSummary struct {
	Date           civil.Date      `json:"date"`
	TotalCalories  float64         `json:"totalCalories"`
	TotalProtein   float64         `json:"totalProtein"`
	TotalCarbs     float64         `json:"totalCarbs"`
	TotalFat       float64         `json:"totalFat"`
	TotalFiber     float64         `json:"totalFiber"`
	Meals          []Meal          `json:"meals"`
	Target         NutritionTarget `json:"target"`
	IsWithinTarget bool            `json:"isWithinTarget"`
}
