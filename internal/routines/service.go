package routines

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/fitlog/internal/domain"
	"github.com/2beens/fitlog/internal/telemetry/tracing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	ErrRoutineNotFound      = errors.New("routine not found")
	ErrInvalidRoutine       = errors.New("invalid routine")
	ErrExerciseIndexInvalid = errors.New("routine exercise index out of range")
)

func NewRoutineID() string {
	return "routine-" + uuid.NewString()
}

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=routines_test

type routinesRepo interface {
	All(ctx context.Context) ([]domain.Routine, error)
	Save(ctx context.Context, routines []domain.Routine) error
}

type exerciseCatalog interface {
	Lookup(ctx context.Context) (domain.ExerciseLookup, error)
}

type sessionStarter interface {
	StartSession(ctx context.Context, exercises []domain.WorkoutExercise) (domain.ActiveWorkoutSession, error)
}

type NewRoutine struct {
	Name        string                   `json:"name"`
	Description string                   `json:"description,omitempty"`
	Type        domain.WorkoutType       `json:"type"`
	Exercises   []domain.RoutineExercise `json:"exercises"`
	Tags        []string                 `json:"tags,omitempty"`
	IsFavorite  bool                     `json:"isFavorite,omitempty"`
}

// RoutinePatch changes the set fields of a stored routine. A nil Exercises
// slice leaves the exercises and the estimated duration untouched.
type RoutinePatch struct {
	Name        *string                  `json:"name,omitempty"`
	Description *string                  `json:"description,omitempty"`
	Type        *domain.WorkoutType      `json:"type,omitempty"`
	Exercises   []domain.RoutineExercise `json:"exercises,omitempty"`
	Tags        []string                 `json:"tags,omitempty"`
	IsFavorite  *bool                    `json:"isFavorite,omitempty"`
}

func (p RoutinePatch) apply(r domain.Routine) domain.Routine {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Type != nil {
		r.Type = *p.Type
	}
	if p.Exercises != nil {
		r.Exercises = p.Exercises
		r.EstimatedDuration = EstimatedDuration(r.Exercises)
	}
	if p.Tags != nil {
		r.Tags = p.Tags
	}
	if p.IsFavorite != nil {
		r.IsFavorite = *p.IsFavorite
	}
	return r
}

func validateRoutine(r domain.Routine) error {
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRoutine)
	}
	switch r.Type {
	case domain.WorkoutTypeStrength, domain.WorkoutTypeCardio, domain.WorkoutTypeFlexibility, domain.WorkoutTypeMixed:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidRoutine, r.Type)
	}
	for i, re := range r.Exercises {
		if err := validateExercise(re); err != nil {
			return fmt.Errorf("exercise %d: %w", i, err)
		}
	}
	return nil
}

func validateExercise(re domain.RoutineExercise) error {
	if re.ExerciseID == "" {
		return fmt.Errorf("%w: exercise id is required", ErrInvalidRoutine)
	}
	if re.DefaultSets < 1 {
		return fmt.Errorf("%w: at least one set is required", ErrInvalidRoutine)
	}
	return nil
}

type Service struct {
	mu        sync.Mutex
	repo      routinesRepo
	exercises exerciseCatalog
	sessions  sessionStarter
	now       func() time.Time
	newID     func() string
}

func NewService(repo routinesRepo, exercises exerciseCatalog, sessions sessionStarter, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:      repo,
		exercises: exercises,
		sessions:  sessions,
		now:       now,
		newID:     NewRoutineID,
	}
}

func (s *Service) List(ctx context.Context) (_ []domain.Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.routines.list")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	routines, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list routines: %w", err)
	}
	return routines, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Routine, error) {
	routines, err := s.List(ctx)
	if err != nil {
		return domain.Routine{}, err
	}
	idx := indexOf(routines, id)
	if idx < 0 {
		return domain.Routine{}, ErrRoutineNotFound
	}
	return routines[idx], nil
}

func indexOf(routines []domain.Routine, id string) int {
	for i := range routines {
		if routines[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) filter(ctx context.Context, keep func(domain.Routine) bool) ([]domain.Routine, error) {
	routines, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]domain.Routine, 0, len(routines))
	for _, r := range routines {
		if keep(r) {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

func (s *Service) Favorites(ctx context.Context) ([]domain.Routine, error) {
	return s.filter(ctx, func(r domain.Routine) bool { return r.IsFavorite })
}

func (s *Service) ByType(ctx context.Context, workoutType domain.WorkoutType) ([]domain.Routine, error) {
	return s.filter(ctx, func(r domain.Routine) bool { return r.Type == workoutType })
}

// Search matches the query against names, descriptions and tags.
func (s *Service) Search(ctx context.Context, query string) ([]domain.Routine, error) {
	return s.filter(ctx, func(r domain.Routine) bool { return Matches(r, query) })
}

func (s *Service) Statistics(ctx context.Context) (domain.RoutineStatistics, error) {
	routines, err := s.List(ctx)
	if err != nil {
		return domain.RoutineStatistics{}, err
	}
	return Statistics(routines), nil
}

func (s *Service) Create(ctx context.Context, newRoutine NewRoutine) (_ domain.Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.routines.create")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.create(ctx, newRoutine)
}

func (s *Service) create(ctx context.Context, newRoutine NewRoutine) (domain.Routine, error) {
	if newRoutine.Type == "" {
		newRoutine.Type = domain.WorkoutTypeStrength
	}
	routine := domain.Routine{
		ID:                s.newID(),
		Name:              newRoutine.Name,
		Description:       newRoutine.Description,
		Type:              newRoutine.Type,
		Exercises:         newRoutine.Exercises,
		EstimatedDuration: EstimatedDuration(newRoutine.Exercises),
		Tags:              newRoutine.Tags,
		CreatedAt:         s.now(),
		IsFavorite:        newRoutine.IsFavorite,
	}
	if routine.Exercises == nil {
		routine.Exercises = []domain.RoutineExercise{}
	}
	if err := validateRoutine(routine); err != nil {
		return domain.Routine{}, err
	}

	routines, err := s.repo.All(ctx)
	if err != nil {
		return domain.Routine{}, fmt.Errorf("list routines: %w", err)
	}
	if err := s.repo.Save(ctx, append(routines, routine)); err != nil {
		return domain.Routine{}, fmt.Errorf("save routines: %w", err)
	}

	log.Debugf("routine created [%s]: %s", routine.ID, routine.Name)
	return routine, nil
}

func (s *Service) Update(ctx context.Context, id string, patch RoutinePatch) (domain.Routine, error) {
	return s.modify(ctx, "service.routines.update", id, func(r domain.Routine) (domain.Routine, error) {
		return patch.apply(r), nil
	})
}

func (s *Service) ToggleFavorite(ctx context.Context, id string) (domain.Routine, error) {
	return s.modify(ctx, "service.routines.toggleFavorite", id, func(r domain.Routine) (domain.Routine, error) {
		r.IsFavorite = !r.IsFavorite
		return r, nil
	})
}

func (s *Service) AddExercise(ctx context.Context, id string, exercise domain.RoutineExercise) (domain.Routine, error) {
	return s.modifyExercises(ctx, "service.routines.addExercise", id, func(exercises []domain.RoutineExercise) ([]domain.RoutineExercise, error) {
		return append(exercises, exercise), nil
	})
}

func (s *Service) UpdateExercise(ctx context.Context, id string, index int, exercise domain.RoutineExercise) (domain.Routine, error) {
	return s.modifyExercises(ctx, "service.routines.updateExercise", id, func(exercises []domain.RoutineExercise) ([]domain.RoutineExercise, error) {
		if index < 0 || index >= len(exercises) {
			return nil, ErrExerciseIndexInvalid
		}
		exercises[index] = exercise
		return exercises, nil
	})
}

func (s *Service) RemoveExercise(ctx context.Context, id string, index int) (domain.Routine, error) {
	return s.modifyExercises(ctx, "service.routines.removeExercise", id, func(exercises []domain.RoutineExercise) ([]domain.RoutineExercise, error) {
		if index < 0 || index >= len(exercises) {
			return nil, ErrExerciseIndexInvalid
		}
		return append(exercises[:index], exercises[index+1:]...), nil
	})
}

// ReorderExercises moves the exercise at from so that it ends up at to.
func (s *Service) ReorderExercises(ctx context.Context, id string, from, to int) (domain.Routine, error) {
	return s.modifyExercises(ctx, "service.routines.reorderExercises", id, func(exercises []domain.RoutineExercise) ([]domain.RoutineExercise, error) {
		if from < 0 || from >= len(exercises) || to < 0 || to >= len(exercises) {
			return nil, ErrExerciseIndexInvalid
		}
		moved := exercises[from]
		exercises = append(exercises[:from], exercises[from+1:]...)
		exercises = append(exercises[:to], append([]domain.RoutineExercise{moved}, exercises[to:]...)...)
		return exercises, nil
	})
}

func (s *Service) modifyExercises(
	ctx context.Context,
	spanName, id string,
	change func([]domain.RoutineExercise) ([]domain.RoutineExercise, error),
) (domain.Routine, error) {
	return s.modify(ctx, spanName, id, func(r domain.Routine) (domain.Routine, error) {
		exercises, err := change(append([]domain.RoutineExercise(nil), r.Exercises...))
		if err != nil {
			return domain.Routine{}, err
		}
		r.Exercises = exercises
		r.EstimatedDuration = EstimatedDuration(exercises)
		return r, nil
	})
}

func (s *Service) modify(
	ctx context.Context,
	spanName, id string,
	change func(domain.Routine) (domain.Routine, error),
) (_ domain.Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, spanName)
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	routines, err := s.repo.All(ctx)
	if err != nil {
		return domain.Routine{}, fmt.Errorf("list routines: %w", err)
	}
	idx := indexOf(routines, id)
	if idx < 0 {
		return domain.Routine{}, ErrRoutineNotFound
	}

	updated, err := change(routines[idx])
	if err != nil {
		return domain.Routine{}, err
	}
	if err := validateRoutine(updated); err != nil {
		return domain.Routine{}, err
	}
	routines[idx] = updated
	if err := s.repo.Save(ctx, routines); err != nil {
		return domain.Routine{}, fmt.Errorf("save routines: %w", err)
	}
	return updated, nil
}

// Duplicate stores a copy of the routine under a new id, named
// "<name> (Copy)" and not marked favorite.
func (s *Service) Duplicate(ctx context.Context, id string) (_ domain.Routine, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.routines.duplicate")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	routines, err := s.repo.All(ctx)
	if err != nil {
		return domain.Routine{}, fmt.Errorf("list routines: %w", err)
	}
	idx := indexOf(routines, id)
	if idx < 0 {
		return domain.Routine{}, ErrRoutineNotFound
	}

	source := routines[idx]
	return s.create(ctx, NewRoutine{
		Name:        source.Name + " (Copy)",
		Description: source.Description,
		Type:        source.Type,
		Exercises:   append([]domain.RoutineExercise(nil), source.Exercises...),
		Tags:        append([]string(nil), source.Tags...),
	})
}

func (s *Service) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.routines.delete")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	routines, err := s.repo.All(ctx)
	if err != nil {
		return fmt.Errorf("list routines: %w", err)
	}
	idx := indexOf(routines, id)
	if idx < 0 {
		return ErrRoutineNotFound
	}

	remaining := make([]domain.Routine, 0, len(routines)-1)
	remaining = append(remaining, routines[:idx]...)
	remaining = append(remaining, routines[idx+1:]...)
	if err := s.repo.Save(ctx, remaining); err != nil {
		return fmt.Errorf("save routines: %w", err)
	}
	return nil
}

// StartWorkout starts an active workout session prefilled from the routine.
func (s *Service) StartWorkout(ctx context.Context, id string) (_ domain.ActiveWorkoutSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.routines.startWorkout")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	routine, err := s.Get(ctx, id)
	if err != nil {
		return domain.ActiveWorkoutSession{}, err
	}

	session, err := s.sessions.StartSession(ctx, ToWorkoutExercises(routine))
	if err != nil {
		return domain.ActiveWorkoutSession{}, fmt.Errorf("start session: %w", err)
	}
	log.Debugf("workout session [%s] started from routine [%s]", session.WorkoutID, routine.ID)
	return session, nil
}

func (s *Service) RecommendedRestSeconds(ctx context.Context, exerciseID string) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.routines.recommendedRest")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	lookup, err := s.exercises.Lookup(ctx)
	if err != nil {
		return 0, fmt.Errorf("exercise lookup: %w", err)
	}
	exercise, found := lookup(exerciseID)
	return RecommendedRestSeconds(exercise, found), nil
}
