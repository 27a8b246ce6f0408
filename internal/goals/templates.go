package goals

import (
	"fmt"

	"github.com/2beens/fitlog/internal/domain"
)

const defaultTemplateDuration = 30

var goalTemplates = []domain.GoalTemplate{
	{
		Name:              "Workout 3 times per week",
		Description:       "Complete 3 workouts every week",
		Category:          domain.GoalWorkoutsPerWeek,
		Period:            domain.GoalPeriodWeekly,
		DefaultTarget:     3,
		Unit:              "workouts",
		SuggestedDuration: 90,
	},
	{
		Name:              "Workout 5 times per week",
		Description:       "Complete 5 workouts every week",
		Category:          domain.GoalWorkoutsPerWeek,
		Period:            domain.GoalPeriodWeekly,
		DefaultTarget:     5,
		Unit:              "workouts",
		SuggestedDuration: 90,
	},
	{
		Name:              "Monthly workout goal",
		Description:       "Complete 12 workouts this month",
		Category:          domain.GoalWorkoutsPerMonth,
		Period:            domain.GoalPeriodMonthly,
		DefaultTarget:     12,
		Unit:              "workouts",
		SuggestedDuration: 30,
	},
	{
		Name:              "Stay under calorie limit",
		Description:       "Don't exceed daily calorie target",
		Category:          domain.GoalCaloriesPerDay,
		Period:            domain.GoalPeriodDaily,
		DefaultTarget:     2000,
		Unit:              "calories",
		SuggestedDuration: 30,
	},
	{
		Name:              "Hit protein target",
		Description:       "Meet daily protein goal every day",
		Category:          domain.GoalProteinPerDay,
		Period:            domain.GoalPeriodDaily,
		DefaultTarget:     150,
		Unit:              "g",
		SuggestedDuration: 30,
	},
	{
		Name:              "Lose weight",
		Description:       "Reach target body weight",
		Category:          domain.GoalBodyweight,
		Period:            domain.GoalPeriodOneTime,
		DefaultTarget:     75,
		Unit:              "kg",
		SuggestedDuration: 90,
	},
	{
		Name:              "Gain weight",
		Description:       "Reach target body weight",
		Category:          domain.GoalBodyweight,
		Period:            domain.GoalPeriodOneTime,
		DefaultTarget:     85,
		Unit:              "kg",
		SuggestedDuration: 90,
	},
}

// Templates returns the built-in goal templates, ids are template-<index>.
func Templates() []domain.GoalTemplate {
	templates := make([]domain.GoalTemplate, len(goalTemplates))
	for i, t := range goalTemplates {
		t.ID = fmt.Sprintf("template-%d", i)
		templates[i] = t
	}
	return templates
}

func findTemplate(id string) (domain.GoalTemplate, bool) {
	for _, t := range Templates() {
		if t.ID == id {
			return t, true
		}
	}
	return domain.GoalTemplate{}, false
}
