package nutrition

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/fitlog/internal/calendar"
	"github.com/2beens/fitlog/internal/domain"
	"github.com/2beens/fitlog/internal/telemetry/tracing"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	ErrMealNotFound     = errors.New("meal not found")
	ErrFoodNotFound     = errors.New("quick add food not found")
	ErrInvalidMeal      = errors.New("invalid meal")
	ErrInvalidNutrition = errors.New("invalid nutrition targets")
)

func NewMealID() string {
	return "meal-" + uuid.NewString()
}

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=nutrition_test

type mealsRepo interface {
	All(ctx context.Context) ([]domain.Meal, error)
	Save(ctx context.Context, meals []domain.Meal) error
}

type targetsRepo interface {
	Get(ctx context.Context) (domain.NutritionTarget, bool, error)
	Save(ctx context.Context, target domain.NutritionTarget) error
}

type NewMeal struct {
	Date     time.Time       `json:"date"`
	Name     string          `json:"name"`
	MealType domain.MealType `json:"mealType"`
	Calories float64         `json:"calories"`
	Protein  float64         `json:"protein"`
	Carbs    float64         `json:"carbs"`
	Fat      float64         `json:"fat"`
	Fiber    *float64        `json:"fiber,omitempty"`
	Sugar    *float64        `json:"sugar,omitempty"`
	Sodium   *float64        `json:"sodium,omitempty"`
	Notes    string          `json:"notes,omitempty"`
}

func validateMeal(m domain.Meal) error {
	if m.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidMeal)
	}
	if m.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidMeal)
	}
	if m.Calories < 0 || m.Protein < 0 || m.Carbs < 0 || m.Fat < 0 {
		return fmt.Errorf("%w: negative macros", ErrInvalidMeal)
	}
	return nil
}

type MealPatch struct {
	Date     *time.Time       `json:"date,omitempty"`
	Name     *string          `json:"name,omitempty"`
	MealType *domain.MealType `json:"mealType,omitempty"`
	Calories *float64         `json:"calories,omitempty"`
	Protein  *float64         `json:"protein,omitempty"`
	Carbs    *float64         `json:"carbs,omitempty"`
	Fat      *float64         `json:"fat,omitempty"`
	Fiber    *float64         `json:"fiber,omitempty"`
	Sugar    *float64         `json:"sugar,omitempty"`
	Sodium   *float64         `json:"sodium,omitempty"`
	Notes    *string          `json:"notes,omitempty"`
}

func (p MealPatch) apply(m domain.Meal) domain.Meal {
	if p.Date != nil {
		m.Date = *p.Date
	}
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.MealType != nil {
		m.MealType = *p.MealType
	}
	if p.Calories != nil {
		m.Calories = *p.Calories
	}
	if p.Protein != nil {
		m.Protein = *p.Protein
	}
	if p.Carbs != nil {
		m.Carbs = *p.Carbs
	}
	if p.Fat != nil {
		m.Fat = *p.Fat
	}
	if p.Fiber != nil {
		m.Fiber = p.Fiber
	}
	if p.Sugar != nil {
		m.Sugar = p.Sugar
	}
	if p.Sodium != nil {
		m.Sodium = p.Sodium
	}
	if p.Notes != nil {
		m.Notes = *p.Notes
	}
	return m
}

type Service struct {
	mu      sync.Mutex
	meals   mealsRepo
	targets targetsRepo
	cal     calendar.Calendar
	now     func() time.Time
	newID   func() string
}

func NewService(meals mealsRepo, targets targetsRepo, cal calendar.Calendar, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		meals:   meals,
		targets: targets,
		cal:     cal,
		now:     now,
		newID:   NewMealID,
	}
}

func (s *Service) Today() civil.Date {
	return s.cal.Date(s.now())
}

func (s *Service) Meals(ctx context.Context) (_ []domain.Meal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.nutrition.meals")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	meals, err := s.meals.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}
	return meals, nil
}

func (s *Service) Meal(ctx context.Context, id string) (domain.Meal, error) {
	meals, err := s.Meals(ctx)
	if err != nil {
		return domain.Meal{}, err
	}
	idx := indexOf(meals, id)
	if idx < 0 {
		return domain.Meal{}, ErrMealNotFound
	}
	return meals[idx], nil
}

func indexOf(meals []domain.Meal, id string) int {
	for i := range meals {
		if meals[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) MealsForDate(ctx context.Context, date civil.Date) ([]domain.Meal, error) {
	meals, err := s.Meals(ctx)
	if err != nil {
		return nil, err
	}
	return mealsOn(meals, date, s.cal), nil
}

// Targets returns the stored targets, or the defaults when none are set.
func (s *Service) Targets(ctx context.Context) (_ domain.NutritionTarget, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.nutrition.targets")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	target, found, err := s.targets.Get(ctx)
	if err != nil {
		return domain.NutritionTarget{}, fmt.Errorf("get targets: %w", err)
	}
	if !found {
		return domain.DefaultNutritionTarget(), nil
	}
	return target, nil
}

func (s *Service) SetTargets(ctx context.Context, target domain.NutritionTarget) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.nutrition.setTargets")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if target.DailyCalories <= 0 || target.Protein < 0 || target.Carbs < 0 || target.Fat < 0 {
		return ErrInvalidNutrition
	}
	if err := s.targets.Save(ctx, target); err != nil {
		return fmt.Errorf("save targets: %w", err)
	}
	log.Debugf("nutrition targets set to %.0f kcal", target.DailyCalories)
	return nil
}

func (s *Service) DailySummary(ctx context.Context, date civil.Date) (_ domain.DailyNutritionSummary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.nutrition.dailySummary")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	meals, target, err := s.mealsAndTargets(ctx)
	if err != nil {
		return domain.DailyNutritionSummary{}, err
	}
	return DailySummary(meals, target, date, s.cal), nil
}

func (s *Service) WeeklySummary(ctx context.Context, end civil.Date) (_ []domain.DailyNutritionSummary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.nutrition.weeklySummary")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	meals, target, err := s.mealsAndTargets(ctx)
	if err != nil {
		return nil, err
	}
	return WeeklySummary(meals, target, end, s.cal), nil
}

func (s *Service) mealsAndTargets(ctx context.Context) ([]domain.Meal, domain.NutritionTarget, error) {
	meals, err := s.meals.All(ctx)
	if err != nil {
		return nil, domain.NutritionTarget{}, fmt.Errorf("list meals: %w", err)
	}
	target, err := s.Targets(ctx)
	if err != nil {
		return nil, domain.NutritionTarget{}, err
	}
	return meals, target, nil
}

func (s *Service) AddMeal(ctx context.Context, newMeal NewMeal) (_ domain.Meal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.nutrition.addMeal")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if newMeal.MealType == "" {
		newMeal.MealType = domain.MealOther
	}
	meal := domain.Meal{
		ID:       s.newID(),
		Date:     newMeal.Date,
		Name:     newMeal.Name,
		MealType: newMeal.MealType,
		Calories: newMeal.Calories,
		Protein:  newMeal.Protein,
		Carbs:    newMeal.Carbs,
		Fat:      newMeal.Fat,
		Fiber:    newMeal.Fiber,
		Sugar:    newMeal.Sugar,
		Sodium:   newMeal.Sodium,
		Notes:    newMeal.Notes,
	}
	if err := validateMeal(meal); err != nil {
		return domain.Meal{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	meals, err := s.meals.All(ctx)
	if err != nil {
		return domain.Meal{}, fmt.Errorf("list meals: %w", err)
	}
	if err := s.meals.Save(ctx, append(meals, meal)); err != nil {
		return domain.Meal{}, fmt.Errorf("save meals: %w", err)
	}
	return meal, nil
}

// QuickAdd logs one serving of a quick add food at the given time. The meal
// type follows the hour of day.
func (s *Service) QuickAdd(ctx context.Context, foodID string, at time.Time) (domain.Meal, error) {
	food, ok := findQuickAddFood(foodID)
	if !ok {
		return domain.Meal{}, ErrFoodNotFound
	}
	if at.IsZero() {
		at = s.now()
	}
	return s.AddMeal(ctx, NewMeal{
		Date:     at,
		Name:     food.Name,
		MealType: MealTypeAt(at.In(s.cal.Location)),
		Calories: food.Calories,
		Protein:  food.Protein,
		Carbs:    food.Carbs,
		Fat:      food.Fat,
		Fiber:    food.Fiber,
	})
}

func (s *Service) UpdateMeal(ctx context.Context, id string, patch MealPatch) (_ domain.Meal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.nutrition.updateMeal")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	meals, err := s.meals.All(ctx)
	if err != nil {
		return domain.Meal{}, fmt.Errorf("list meals: %w", err)
	}
	idx := indexOf(meals, id)
	if idx < 0 {
		return domain.Meal{}, ErrMealNotFound
	}

	updated := patch.apply(meals[idx])
	if err := validateMeal(updated); err != nil {
		return domain.Meal{}, err
	}
	meals[idx] = updated
	if err := s.meals.Save(ctx, meals); err != nil {
		return domain.Meal{}, fmt.Errorf("save meals: %w", err)
	}
	return updated, nil
}

func (s *Service) DeleteMeal(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.nutrition.deleteMeal")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	meals, err := s.meals.All(ctx)
	if err != nil {
		return fmt.Errorf("list meals: %w", err)
	}
	idx := indexOf(meals, id)
	if idx < 0 {
		return ErrMealNotFound
	}

	remaining := make([]domain.Meal, 0, len(meals)-1)
	remaining = append(remaining, meals[:idx]...)
	remaining = append(remaining, meals[idx+1:]...)
	if err := s.meals.Save(ctx, remaining); err != nil {
		return fmt.Errorf("save meals: %w", err)
	}
	return nil
}
