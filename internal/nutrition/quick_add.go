package nutrition

import (
	"time"

	"github.com/2beens/fitlog/internal/domain"
)

type QuickAddFood struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Calories    float64  `json:"calories"`
	Protein     float64  `json:"protein"`
	Carbs       float64  `json:"carbs"`
	Fat         float64  `json:"fat"`
	Fiber       *float64 `json:"fiber,omitempty"`
	ServingSize string   `json:"servingSize"`
	Category    string   `json:"category"`
}

var quickAddFoods = []QuickAddFood{
	{ID: "qa-chicken-breast", Name: "Grilled Chicken Breast (100g)", Calories: 165, Protein: 31, Carbs: 0, Fat: 3.6, ServingSize: "100g", Category: "protein"},
	{ID: "qa-brown-rice", Name: "Brown Rice (1 cup cooked)", Calories: 216, Protein: 5, Carbs: 45, Fat: 1.8, ServingSize: "1 cup", Category: "carbs"},
	{ID: "qa-eggs", Name: "Large Eggs (2)", Calories: 143, Protein: 12, Carbs: 0.7, Fat: 9.5, ServingSize: "2 large", Category: "protein"},
	{ID: "qa-oatmeal", Name: "Oatmeal (1 cup cooked)", Calories: 158, Protein: 6, Carbs: 27, Fat: 3, ServingSize: "1 cup", Category: "carbs"},
	{ID: "qa-banana", Name: "Banana (medium)", Calories: 105, Protein: 1.3, Carbs: 27, Fat: 0.4, ServingSize: "1 medium", Category: "fruit"},
	{ID: "qa-almonds", Name: "Almonds (1 oz)", Calories: 164, Protein: 6, Carbs: 6, Fat: 14, ServingSize: "1 oz (28g)", Category: "fat"},
	{ID: "qa-salmon", Name: "Salmon Fillet (100g)", Calories: 208, Protein: 20, Carbs: 0, Fat: 13, ServingSize: "100g", Category: "protein"},
	{ID: "qa-broccoli", Name: "Broccoli (1 cup)", Calories: 55, Protein: 3.7, Carbs: 11, Fat: 0.6, ServingSize: "1 cup", Category: "vegetable"},
	{ID: "qa-whey-protein", Name: "Whey Protein Shake", Calories: 120, Protein: 24, Carbs: 3, Fat: 1, ServingSize: "1 scoop", Category: "protein"},
	{ID: "qa-avocado", Name: "Avocado (half)", Calories: 160, Protein: 2, Carbs: 9, Fat: 15, ServingSize: "1/2 avocado", Category: "fat"},
	{ID: "qa-greek-yogurt", Name: "Greek Yogurt (1 cup)", Calories: 100, Protein: 17, Carbs: 6, Fat: 0.7, ServingSize: "1 cup", Category: "protein"},
	{ID: "qa-sweet-potato", Name: "Sweet Potato (medium)", Calories: 103, Protein: 2.3, Carbs: 24, Fat: 0.1, ServingSize: "1 medium", Category: "carbs"},
}

func QuickAddFoods() []QuickAddFood {
	foods := make([]QuickAddFood, len(quickAddFoods))
	copy(foods, quickAddFoods)
	return foods
}

func findQuickAddFood(id string) (QuickAddFood, bool) {
	for _, food := range quickAddFoods {
		if food.ID == id {
			return food, true
		}
	}
	return QuickAddFood{}, false
}

// MealTypeAt guesses the meal from the local hour of t.
func MealTypeAt(t time.Time) domain.MealType {
	switch hour := t.Hour(); {
	case hour >= 5 && hour < 10:
		return domain.MealBreakfast
	case hour >= 10 && hour < 14:
		return domain.MealLunch
	case hour >= 18 && hour < 22:
		return domain.MealDinner
	default:
		return domain.MealSnack
	}
}
