package workouts

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/2beens/fitlog/internal/calendar"
	"github.com/2beens/fitlog/internal/domain"
	"github.com/2beens/fitlog/internal/telemetry/metrics"
	"github.com/2beens/fitlog/internal/telemetry/tracing"

	"cloud.google.com/go/civil"
	log "github.com/sirupsen/logrus"
)

const DefaultRecentCount = 10

var (
	ErrWorkoutNotFound = errors.New("workout not found")
	ErrInvalidWorkout  = errors.New("invalid workout")
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=workouts_test

type workoutsRepo interface {
	All(ctx context.Context) ([]domain.Workout, error)
	Save(ctx context.Context, workouts []domain.Workout) error
}

type recordsUpdater interface {
	UpdateFromWorkout(ctx context.Context, workout domain.Workout) ([]domain.PersonalRecord, error)
}

type exerciseCatalog interface {
	Lookup(ctx context.Context) (domain.ExerciseLookup, error)
}

type NewWorkout struct {
	Name      string                   `json:"name,omitempty"`
	Date      civil.Date               `json:"date"`
	StartTime *time.Time               `json:"startTime,omitempty"`
	EndTime   *time.Time               `json:"endTime,omitempty"`
	Duration  int                      `json:"duration"`
	Type      domain.WorkoutType       `json:"type"`
	Status    domain.WorkoutStatus     `json:"status"`
	Exercises []domain.WorkoutExercise `json:"exercises"`
	Notes     string                   `json:"notes,omitempty"`
}

// WorkoutPatch changes the set fields of a stored workout. A nil
// Exercises slice leaves the exercises untouched.
type WorkoutPatch struct {
	Name      *string                  `json:"name,omitempty"`
	Date      *civil.Date              `json:"date,omitempty"`
	StartTime *time.Time               `json:"startTime,omitempty"`
	EndTime   *time.Time               `json:"endTime,omitempty"`
	Duration  *int                     `json:"duration,omitempty"`
	Type      *domain.WorkoutType      `json:"type,omitempty"`
	Status    *domain.WorkoutStatus    `json:"status,omitempty"`
	Exercises []domain.WorkoutExercise `json:"exercises,omitempty"`
	Notes     *string                  `json:"notes,omitempty"`
}

func (p WorkoutPatch) apply(w domain.Workout) domain.Workout {
	if p.Name != nil {
		w.Name = *p.Name
	}
	if p.Date != nil {
		w.Date = *p.Date
	}
	if p.StartTime != nil {
		w.StartTime = p.StartTime
	}
	if p.EndTime != nil {
		w.EndTime = p.EndTime
	}
	if p.Duration != nil {
		w.Duration = *p.Duration
	}
	if p.Type != nil {
		w.Type = *p.Type
	}
	if p.Status != nil {
		w.Status = *p.Status
	}
	if p.Exercises != nil {
		w.Exercises = copyExercises(p.Exercises)
		w = withTotals(w)
	}
	if p.Notes != nil {
		w.Notes = *p.Notes
	}
	return w
}

type Service struct {
	mu             sync.Mutex
	repo           workoutsRepo
	sessions       sessionRepo
	records        recordsUpdater
	exercises      exerciseCatalog
	cal            calendar.Calendar
	now            func() time.Time
	metricsManager *metrics.Manager
	newID          func() string
}

func NewService(
	repo workoutsRepo,
	sessions sessionRepo,
	records recordsUpdater,
	exercises exerciseCatalog,
	cal calendar.Calendar,
	now func() time.Time,
	metricsManager *metrics.Manager,
) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:           repo,
		sessions:       sessions,
		records:        records,
		exercises:      exercises,
		cal:            cal,
		now:            now,
		metricsManager: metricsManager,
		newID:          NewWorkoutID,
	}
}

func (s *Service) List(ctx context.Context) (_ []domain.Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.list")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	workouts, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	return workouts, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Workout, error) {
	workouts, err := s.List(ctx)
	if err != nil {
		return domain.Workout{}, err
	}
	idx := indexOf(workouts, id)
	if idx < 0 {
		return domain.Workout{}, ErrWorkoutNotFound
	}
	return workouts[idx], nil
}

func indexOf(workouts []domain.Workout, id string) int {
	for i := range workouts {
		if workouts[i].ID == id {
			return i
		}
	}
	return -1
}

// Recent returns up to count completed workouts, newest first.
func (s *Service) Recent(ctx context.Context, count int) ([]domain.Workout, error) {
	workouts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	completed := make([]domain.Workout, 0, len(workouts))
	for _, w := range workouts {
		if w.IsCompleted() {
			completed = append(completed, w)
		}
	}
	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].Date.After(completed[j].Date)
	})
	if count >= 0 && len(completed) > count {
		completed = completed[:count]
	}
	return completed, nil
}

// ByDateRange returns the workouts dated within [from, to].
func (s *Service) ByDateRange(ctx context.Context, from, to civil.Date) ([]domain.Workout, error) {
	workouts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	inRange := make([]domain.Workout, 0)
	for _, w := range workouts {
		if calendar.Within(w.Date, from, to) {
			inRange = append(inRange, w)
		}
	}
	return inRange, nil
}

// ByMuscleGroup returns the workouts with at least one exercise training group.
func (s *Service) ByMuscleGroup(ctx context.Context, group domain.MuscleGroup) ([]domain.Workout, error) {
	workouts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	lookup, err := s.exercises.Lookup(ctx)
	if err != nil {
		return nil, fmt.Errorf("exercise lookup: %w", err)
	}

	matching := make([]domain.Workout, 0)
	for _, w := range workouts {
		for _, ex := range w.Exercises {
			if exercise, ok := lookup(ex.ExerciseID); ok && exercise.HasMuscleGroup(group) {
				matching = append(matching, w)
				break
			}
		}
	}
	return matching, nil
}

func (s *Service) Create(ctx context.Context, newWorkout NewWorkout) (_ domain.Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.create")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if !newWorkout.Date.IsValid() {
		return domain.Workout{}, fmt.Errorf("%w: date is required", ErrInvalidWorkout)
	}
	if newWorkout.Type == "" {
		newWorkout.Type = domain.WorkoutTypeStrength
	}
	if newWorkout.Status == "" {
		newWorkout.Status = domain.WorkoutStatusCompleted
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.create(ctx, domain.Workout{
		ID:        s.newID(),
		Name:      newWorkout.Name,
		Date:      newWorkout.Date,
		StartTime: newWorkout.StartTime,
		EndTime:   newWorkout.EndTime,
		Duration:  newWorkout.Duration,
		Type:      newWorkout.Type,
		Status:    newWorkout.Status,
		Exercises: copyExercises(newWorkout.Exercises),
		Notes:     newWorkout.Notes,
	})
}

// create stores w with fresh totals and folds it into the record ledger.
// Callers hold s.mu.
func (s *Service) create(ctx context.Context, w domain.Workout) (domain.Workout, error) {
	workouts, err := s.repo.All(ctx)
	if err != nil {
		return domain.Workout{}, fmt.Errorf("list workouts: %w", err)
	}

	w = withTotals(w)
	if err := s.repo.Save(ctx, append(workouts, w)); err != nil {
		return domain.Workout{}, fmt.Errorf("save workouts: %w", err)
	}
	s.metricsManager.CounterWorkoutsLogged.Inc()

	s.updateRecords(ctx, w)
	return w, nil
}

// updateRecords logs ledger failures, the workout write stands.
func (s *Service) updateRecords(ctx context.Context, w domain.Workout) {
	newRecords, err := s.records.UpdateFromWorkout(ctx, w)
	if err != nil {
		log.Errorf("update personal records from workout [%s]: %s", w.ID, err)
		return
	}
	if len(newRecords) > 0 {
		log.Debugf("workout [%s] set %d personal records", w.ID, len(newRecords))
	}
}

func (s *Service) Update(ctx context.Context, id string, patch WorkoutPatch) (_ domain.Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.update")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	workouts, err := s.repo.All(ctx)
	if err != nil {
		return domain.Workout{}, fmt.Errorf("list workouts: %w", err)
	}
	idx := indexOf(workouts, id)
	if idx < 0 {
		return domain.Workout{}, ErrWorkoutNotFound
	}

	updated := patch.apply(workouts[idx])
	if !updated.Date.IsValid() {
		return domain.Workout{}, fmt.Errorf("%w: invalid date", ErrInvalidWorkout)
	}
	workouts[idx] = updated
	if err := s.repo.Save(ctx, workouts); err != nil {
		return domain.Workout{}, fmt.Errorf("save workouts: %w", err)
	}

	s.updateRecords(ctx, updated)
	return updated, nil
}

// Delete removes the workout. Records it set stay in the ledger.
func (s *Service) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.delete")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	workouts, err := s.repo.All(ctx)
	if err != nil {
		return fmt.Errorf("list workouts: %w", err)
	}
	idx := indexOf(workouts, id)
	if idx < 0 {
		return ErrWorkoutNotFound
	}

	remaining := make([]domain.Workout, 0, len(workouts)-1)
	remaining = append(remaining, workouts[:idx]...)
	remaining = append(remaining, workouts[idx+1:]...)
	if err := s.repo.Save(ctx, remaining); err != nil {
		return fmt.Errorf("save workouts: %w", err)
	}
	return nil
}
