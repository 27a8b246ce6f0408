package stats

import (
	"context"
	"fmt"

	"github.com/2beens/fitlog/internal/domain"
	"github.com/2beens/fitlog/internal/telemetry/tracing"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=stats_test

type workoutsRepo interface {
	All(ctx context.Context) ([]domain.Workout, error)
}

type exerciseCatalog interface {
	Lookup(ctx context.Context) (domain.ExerciseLookup, error)
}

type Service struct {
	workouts  workoutsRepo
	exercises exerciseCatalog
	engine    *Engine
}

func NewService(workouts workoutsRepo, exercises exerciseCatalog, engine *Engine) *Service {
	return &Service{
		workouts:  workouts,
		exercises: exercises,
		engine:    engine,
	}
}

func (s *Service) Statistics(ctx context.Context) (_ domain.WorkoutStatistics, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.stats.statistics")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	workouts, err := s.workouts.All(ctx)
	if err != nil {
		return domain.WorkoutStatistics{}, fmt.Errorf("list workouts: %w", err)
	}
	lookup, err := s.exercises.Lookup(ctx)
	if err != nil {
		return domain.WorkoutStatistics{}, fmt.Errorf("exercise lookup: %w", err)
	}

	return s.engine.Compute(workouts, lookup), nil
}

func (s *Service) WeeklyVolume(ctx context.Context, weeks int) (_ []domain.WeeklyVolume, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.stats.weeklyVolume")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	workouts, err := s.workouts.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	return s.engine.WeeklyVolume(workouts, weeks), nil
}
