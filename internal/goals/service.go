package goals

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/2beens/fitlog/internal/domain"
	"github.com/2beens/fitlog/internal/telemetry/metrics"
	"github.com/2beens/fitlog/internal/telemetry/tracing"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

const DefaultExpiringDays = 7

var (
	ErrGoalNotFound     = errors.New("goal not found")
	ErrTemplateNotFound = errors.New("goal template not found")
	ErrInvalidGoal      = errors.New("invalid goal")
)

func NewGoalID() string {
	return "goal-" + uuid.NewString()
}

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=goals_test

type goalsRepo interface {
	All(ctx context.Context) ([]domain.Goal, error)
	Save(ctx context.Context, goals []domain.Goal) error
}

type workoutsRepo interface {
	All(ctx context.Context) ([]domain.Workout, error)
}

type nutritionSource interface {
	DailySummary(ctx context.Context, date civil.Date) (domain.DailyNutritionSummary, error)
}

type weightSource interface {
	LatestWeight(ctx context.Context) (float64, bool, error)
}

// NewGoal holds the user supplied part of a goal.
type NewGoal struct {
	Name             string              `json:"name"`
	Description      string              `json:"description,omitempty"`
	Category         domain.GoalCategory `json:"category"`
	Period           domain.GoalPeriod   `json:"period"`
	TargetValue      float64             `json:"targetValue"`
	Unit             string              `json:"unit"`
	StartDate        time.Time           `json:"startDate"`
	EndDate          time.Time           `json:"endDate"`
	RemindersEnabled bool                `json:"remindersEnabled,omitempty"`
	ReminderDays     []int               `json:"reminderDays,omitempty"`
}

func (g NewGoal) validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidGoal)
	}
	if g.Category == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidGoal)
	}
	if g.EndDate.Before(g.StartDate) {
		return fmt.Errorf("%w: end date before start date", ErrInvalidGoal)
	}
	return nil
}

// GoalPatch changes the non-nil fields of a stored goal.
type GoalPatch struct {
	Name             *string              `json:"name,omitempty"`
	Description      *string              `json:"description,omitempty"`
	Category         *domain.GoalCategory `json:"category,omitempty"`
	Period           *domain.GoalPeriod   `json:"period,omitempty"`
	TargetValue      *float64             `json:"targetValue,omitempty"`
	CurrentValue     *float64             `json:"currentValue,omitempty"`
	Unit             *string              `json:"unit,omitempty"`
	StartDate        *time.Time           `json:"startDate,omitempty"`
	EndDate          *time.Time           `json:"endDate,omitempty"`
	Status           *domain.GoalStatus   `json:"status,omitempty"`
	RemindersEnabled *bool                `json:"remindersEnabled,omitempty"`
	ReminderDays     []int                `json:"reminderDays,omitempty"`
}

func (p GoalPatch) apply(goal domain.Goal) domain.Goal {
	if p.Name != nil {
		goal.Name = *p.Name
	}
	if p.Description != nil {
		goal.Description = *p.Description
	}
	if p.Category != nil {
		goal.Category = *p.Category
	}
	if p.Period != nil {
		goal.Period = *p.Period
	}
	if p.TargetValue != nil {
		goal.TargetValue = *p.TargetValue
	}
	if p.CurrentValue != nil {
		goal.CurrentValue = *p.CurrentValue
	}
	if p.Unit != nil {
		goal.Unit = *p.Unit
	}
	if p.StartDate != nil {
		goal.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		goal.EndDate = *p.EndDate
	}
	if p.Status != nil {
		goal.Status = *p.Status
	}
	if p.RemindersEnabled != nil {
		goal.RemindersEnabled = *p.RemindersEnabled
	}
	if p.ReminderDays != nil {
		goal.ReminderDays = p.ReminderDays
	}
	return goal
}

// RefreshResult sums up one UpdateAll run.
type RefreshResult struct {
	Evaluated   int `json:"evaluated"`
	Updated     int `json:"updated"`
	Completed   int `json:"completed"`
	Missed      int `json:"missed"`
	Snapshotted int `json:"snapshotted"`
}

type ProgressReport struct {
	Goal     domain.Goal         `json:"goal"`
	Progress domain.GoalProgress `json:"progress"`
}

type Service struct {
	mu             sync.Mutex
	repo           goalsRepo
	workouts       workoutsRepo
	nutrition      nutritionSource
	weight         weightSource
	engine         *Engine
	metricsManager *metrics.Manager
	newID          func() string
}

func NewService(
	repo goalsRepo,
	workouts workoutsRepo,
	nutrition nutritionSource,
	weight weightSource,
	engine *Engine,
	metricsManager *metrics.Manager,
) *Service {
	return &Service{
		repo:           repo,
		workouts:       workouts,
		nutrition:      nutrition,
		weight:         weight,
		engine:         engine,
		metricsManager: metricsManager,
		newID:          NewGoalID,
	}
}

func (s *Service) List(ctx context.Context) (_ []domain.Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.goals.list")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	goals, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Goal, error) {
	goals, err := s.List(ctx)
	if err != nil {
		return domain.Goal{}, err
	}
	idx := indexOf(goals, id)
	if idx < 0 {
		return domain.Goal{}, ErrGoalNotFound
	}
	return goals[idx], nil
}

func indexOf(goals []domain.Goal, id string) int {
	for i := range goals {
		if goals[i].ID == id {
			return i
		}
	}
	return -1
}

// Active returns the open goals whose window contains the current instant.
func (s *Service) Active(ctx context.Context) ([]domain.Goal, error) {
	goals, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.engine.Now()
	return filter(goals, func(g domain.Goal) bool {
		return inWindow(g, now)
	}), nil
}

func inWindow(g domain.Goal, now time.Time) bool {
	return g.IsOpen() && !g.StartDate.After(now) && !g.EndDate.Before(now)
}

func (s *Service) ByCategory(ctx context.Context, category domain.GoalCategory) ([]domain.Goal, error) {
	goals, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return filter(goals, func(g domain.Goal) bool {
		return g.Category == category
	}), nil
}

// Search matches the query against goal names and descriptions, case
// insensitive. An empty query matches every goal.
func (s *Service) Search(ctx context.Context, query string) ([]domain.Goal, error) {
	goals, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return goals, nil
	}
	return filter(goals, func(g domain.Goal) bool {
		return strings.Contains(strings.ToLower(g.Name), term) ||
			strings.Contains(strings.ToLower(g.Description), term)
	}), nil
}

// Expiring returns active goals ending within the next days days.
func (s *Service) Expiring(ctx context.Context, days int) ([]domain.Goal, error) {
	goals, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.engine.Now()
	deadline := now.AddDate(0, 0, days)
	return filter(goals, func(g domain.Goal) bool {
		return inWindow(g, now) && !g.EndDate.After(deadline)
	}), nil
}

// Overdue returns open goals whose end date has passed.
func (s *Service) Overdue(ctx context.Context) ([]domain.Goal, error) {
	goals, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.engine.Now()
	return filter(goals, func(g domain.Goal) bool {
		return g.IsOpen() && now.After(g.EndDate)
	}), nil
}

func filter(goals []domain.Goal, keep func(domain.Goal) bool) []domain.Goal {
	filtered := make([]domain.Goal, 0)
	for _, g := range goals {
		if keep(g) {
			filtered = append(filtered, g)
		}
	}
	return filtered
}

func (s *Service) Statistics(ctx context.Context) (domain.GoalStatistics, error) {
	goals, err := s.List(ctx)
	if err != nil {
		return domain.GoalStatistics{}, err
	}

	stats := domain.GoalStatistics{TotalGoals: len(goals)}
	for _, g := range goals {
		switch g.Status {
		case domain.GoalStatusActive, domain.GoalStatusInProgress:
			stats.ActiveGoals++
		case domain.GoalStatusCompleted:
			stats.CompletedGoals++
		case domain.GoalStatusMissed:
			stats.MissedGoals++
		case domain.GoalStatusPaused:
			stats.PausedGoals++
		}
	}
	if finished := stats.CompletedGoals + stats.MissedGoals; finished > 0 {
		stats.CompletionRate = int(math.Round(float64(stats.CompletedGoals) / float64(finished) * 100))
	}
	return stats, nil
}

func (s *Service) Create(ctx context.Context, newGoal NewGoal) (_ domain.Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.goals.create")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if err := newGoal.validate(); err != nil {
		return domain.Goal{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	goals, err := s.repo.All(ctx)
	if err != nil {
		return domain.Goal{}, fmt.Errorf("list goals: %w", err)
	}

	goal := domain.Goal{
		ID:               s.newID(),
		Name:             newGoal.Name,
		Description:      newGoal.Description,
		Category:         newGoal.Category,
		Period:           newGoal.Period,
		TargetValue:      newGoal.TargetValue,
		Unit:             newGoal.Unit,
		StartDate:        newGoal.StartDate,
		EndDate:          newGoal.EndDate,
		Status:           domain.GoalStatusActive,
		RemindersEnabled: newGoal.RemindersEnabled,
		ReminderDays:     newGoal.ReminderDays,
		CreatedAt:        s.engine.Now(),
		ProgressHistory:  []domain.GoalSnapshot{},
	}

	if err := s.repo.Save(ctx, append(goals, goal)); err != nil {
		return domain.Goal{}, fmt.Errorf("save goals: %w", err)
	}

	log.Debugf("goal created [%s]: %s", goal.ID, goal.Name)
	return goal, nil
}

// CreateFromTemplate creates a goal from a built-in template. A nil start
// means now, a nil or non-positive customTarget keeps the template default.
func (s *Service) CreateFromTemplate(ctx context.Context, templateID string, start *time.Time, customTarget *float64) (domain.Goal, error) {
	template, ok := findTemplate(templateID)
	if !ok {
		return domain.Goal{}, ErrTemplateNotFound
	}

	startDate := s.engine.Now()
	if start != nil {
		startDate = *start
	}
	duration := template.SuggestedDuration
	if duration <= 0 {
		duration = defaultTemplateDuration
	}
	target := template.DefaultTarget
	if customTarget != nil && *customTarget > 0 {
		target = *customTarget
	}

	return s.Create(ctx, NewGoal{
		Name:             template.Name,
		Description:      template.Description,
		Category:         template.Category,
		Period:           template.Period,
		TargetValue:      target,
		Unit:             template.Unit,
		StartDate:        startDate,
		EndDate:          startDate.AddDate(0, 0, duration),
		RemindersEnabled: true,
	})
}

func (s *Service) Update(ctx context.Context, id string, patch GoalPatch) (domain.Goal, error) {
	return s.modify(ctx, "service.goals.update", id, func(g domain.Goal) domain.Goal {
		return patch.apply(g)
	})
}

func (s *Service) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.goals.delete")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	goals, err := s.repo.All(ctx)
	if err != nil {
		return fmt.Errorf("list goals: %w", err)
	}
	idx := indexOf(goals, id)
	if idx < 0 {
		return ErrGoalNotFound
	}

	remaining := make([]domain.Goal, 0, len(goals)-1)
	remaining = append(remaining, goals[:idx]...)
	remaining = append(remaining, goals[idx+1:]...)
	if err := s.repo.Save(ctx, remaining); err != nil {
		return fmt.Errorf("save goals: %w", err)
	}
	return nil
}

func (s *Service) Complete(ctx context.Context, id string) (domain.Goal, error) {
	goal, err := s.modify(ctx, "service.goals.complete", id, s.markCompleted)
	if err != nil {
		return domain.Goal{}, err
	}
	s.countTransitions(domain.GoalStatusCompleted, 1)
	return goal, nil
}

func (s *Service) Miss(ctx context.Context, id string) (domain.Goal, error) {
	return s.setStatus(ctx, "service.goals.miss", id, domain.GoalStatusMissed)
}

func (s *Service) Pause(ctx context.Context, id string) (domain.Goal, error) {
	return s.setStatus(ctx, "service.goals.pause", id, domain.GoalStatusPaused)
}

func (s *Service) Resume(ctx context.Context, id string) (domain.Goal, error) {
	return s.setStatus(ctx, "service.goals.resume", id, domain.GoalStatusActive)
}

func (s *Service) setStatus(ctx context.Context, spanName, id string, status domain.GoalStatus) (domain.Goal, error) {
	goal, err := s.modify(ctx, spanName, id, func(g domain.Goal) domain.Goal {
		g.Status = status
		return g
	})
	if err != nil {
		return domain.Goal{}, err
	}
	s.countTransitions(status, 1)
	return goal, nil
}

// countTransitions is called only once the new status has been saved.
func (s *Service) countTransitions(status domain.GoalStatus, n int) {
	if n > 0 {
		s.metricsManager.CounterGoalTransitions.WithLabelValues(string(status)).Add(float64(n))
	}
}

func (s *Service) markCompleted(g domain.Goal) domain.Goal {
	completedAt := s.engine.Now()
	g.Status = domain.GoalStatusCompleted
	g.CompletedAt = &completedAt
	return g
}

func (s *Service) modify(ctx context.Context, spanName, id string, change func(domain.Goal) domain.Goal) (_ domain.Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, spanName)
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	goals, err := s.repo.All(ctx)
	if err != nil {
		return domain.Goal{}, fmt.Errorf("list goals: %w", err)
	}
	idx := indexOf(goals, id)
	if idx < 0 {
		return domain.Goal{}, ErrGoalNotFound
	}

	goals[idx] = change(goals[idx])
	if err := s.repo.Save(ctx, goals); err != nil {
		return domain.Goal{}, fmt.Errorf("save goals: %w", err)
	}
	return goals[idx], nil
}

// CalculateProgress resolves the goal's current value, persists it when it
// changed and evaluates progress.
func (s *Service) CalculateProgress(ctx context.Context, id string) (_ ProgressReport, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.goals.calculateProgress")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	goals, err := s.repo.All(ctx)
	if err != nil {
		return ProgressReport{}, fmt.Errorf("list goals: %w", err)
	}
	idx := indexOf(goals, id)
	if idx < 0 {
		return ProgressReport{}, ErrGoalNotFound
	}

	now := s.engine.Now()
	src, srcErrs := s.loadSources(ctx, goals[idx:idx+1], s.engine.cal.Date(now))
	if err := srcErrs[goals[idx].Category]; err != nil {
		return ProgressReport{}, err
	}

	goal, changed := Reconcile(goals[idx], s.engine.ResolveCurrentValue(goals[idx], src, now))
	if changed {
		goals[idx] = goal
		if err := s.repo.Save(ctx, goals); err != nil {
			return ProgressReport{}, fmt.Errorf("save goals: %w", err)
		}
	}

	return ProgressReport{
		Goal:     goal,
		Progress: Progress(goal, now),
	}, nil
}

// UpdateAll refreshes every open goal: goals inside their window are
// re-evaluated, completed when their target is reached and get a snapshot
// for today, goals past their end date that fell short are marked missed.
// A goal whose source fails to load is skipped, the remaining goals are
// still refreshed and saved.
func (s *Service) UpdateAll(ctx context.Context) (_ RefreshResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.goals.updateAll")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	started := time.Now()
	defer func() {
		s.metricsManager.CounterGoalRefreshes.Inc()
		s.metricsManager.HistGoalRefreshDuration.Observe(time.Since(started).Seconds())
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	goals, err := s.repo.All(ctx)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("list goals: %w", err)
	}

	now := s.engine.Now()
	today := s.engine.cal.Date(now)
	open := filter(goals, func(g domain.Goal) bool { return g.IsOpen() })
	src, srcErrs := s.loadSources(ctx, open, today)

	var result RefreshResult
	var errs error
	dirty := false
	for i, goal := range goals {
		if !goal.IsOpen() {
			continue
		}
		active := inWindow(goal, now)
		overdue := now.After(goal.EndDate)
		if !active && !overdue {
			continue
		}
		if srcErr := srcErrs[goal.Category]; srcErr != nil {
			errs = multierr.Append(errs, fmt.Errorf("goal %s: %w", goal.ID, srcErr))
			continue
		}
		result.Evaluated++

		updated, changed := Reconcile(goal, s.engine.ResolveCurrentValue(goal, src, now))
		if changed {
			result.Updated++
		}

		complete := Progress(updated, now).IsComplete
		switch {
		case complete:
			updated = s.markCompleted(updated)
			result.Completed++
		case overdue:
			updated.Status = domain.GoalStatusMissed
			result.Missed++
		}

		snapshotted := false
		if active && !hasSnapshot(updated, today) {
			updated = Snapshot(updated, today)
			snapshotted = true
			result.Snapshotted++
		}

		if changed || snapshotted || updated.Status != goal.Status {
			dirty = true
		}
		goals[i] = updated
	}

	if dirty {
		if saveErr := s.repo.Save(ctx, goals); saveErr != nil {
			return result, multierr.Append(errs, fmt.Errorf("save goals: %w", saveErr))
		}
	}
	s.countTransitions(domain.GoalStatusCompleted, result.Completed)
	s.countTransitions(domain.GoalStatusMissed, result.Missed)

	log.Debugf("goals refreshed: %+v", result)
	return result, errs
}

func hasSnapshot(goal domain.Goal, date civil.Date) bool {
	for _, snapshot := range goal.ProgressHistory {
		if snapshot.Date == date {
			return true
		}
	}
	return false
}

// loadSources loads only the sources the given goals need. A failed source
// is reported against every category that depends on it.
func (s *Service) loadSources(ctx context.Context, goals []domain.Goal, today civil.Date) (Sources, map[domain.GoalCategory]error) {
	var src Sources
	errs := make(map[domain.GoalCategory]error)

	needed := make(map[domain.GoalCategory]bool)
	for _, g := range goals {
		needed[g.Category] = true
	}

	if needed[domain.GoalWorkoutsPerWeek] || needed[domain.GoalWorkoutsPerMonth] {
		workouts, err := s.workouts.All(ctx)
		if err != nil {
			err = fmt.Errorf("list workouts: %w", err)
			errs[domain.GoalWorkoutsPerWeek] = err
			errs[domain.GoalWorkoutsPerMonth] = err
		}
		src.Workouts = workouts
	}

	if needed[domain.GoalCaloriesPerDay] || needed[domain.GoalProteinPerDay] {
		summary, err := s.nutrition.DailySummary(ctx, today)
		if err != nil {
			err = fmt.Errorf("daily nutrition summary: %w", err)
			errs[domain.GoalCaloriesPerDay] = err
			errs[domain.GoalProteinPerDay] = err
		}
		src.Nutrition = summary
	}

	if needed[domain.GoalBodyweight] {
		weight, found, err := s.weight.LatestWeight(ctx)
		if err != nil {
			errs[domain.GoalBodyweight] = fmt.Errorf("latest weight: %w", err)
		}
		src.LatestWeight, src.HasWeight = weight, found
	}

	return src, errs
}
