package workouts

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/2beens/fitlog/internal/domain"
	"github.com/2beens/fitlog/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
)

var ErrNoActiveSession = errors.New("no active workout session")

//go:generate mockgen -source=$GOFILE -destination=session_mocks_test.go -package=workouts_test

type sessionRepo interface {
	Get(ctx context.Context) (domain.ActiveWorkoutSession, bool, error)
	Save(ctx context.Context, session domain.ActiveWorkoutSession) error
	Remove(ctx context.Context) error
}

// StartSession starts logging a new workout, replacing any session in
// flight. All sets start out not completed.
func (s *Service) StartSession(ctx context.Context, exercises []domain.WorkoutExercise) (_ domain.ActiveWorkoutSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.session.start")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	sessionExercises := copyExercises(exercises)
	for i := range sessionExercises {
		for j := range sessionExercises[i].Sets {
			sessionExercises[i].Sets[j].Completed = false
		}
	}

	session := domain.ActiveWorkoutSession{
		WorkoutID: s.newID(),
		StartTime: s.now(),
		Exercises: sessionExercises,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return domain.ActiveWorkoutSession{}, fmt.Errorf("save session: %w", err)
	}

	log.Debugf("workout session started [%s] with %d exercises", session.WorkoutID, len(exercises))
	return session, nil
}

func (s *Service) Session(ctx context.Context) (_ domain.ActiveWorkoutSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.session.get")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	return s.session(ctx)
}

func (s *Service) session(ctx context.Context) (domain.ActiveWorkoutSession, error) {
	session, found, err := s.sessions.Get(ctx)
	if err != nil {
		return domain.ActiveWorkoutSession{}, fmt.Errorf("get session: %w", err)
	}
	if !found {
		return domain.ActiveWorkoutSession{}, ErrNoActiveSession
	}
	return session, nil
}

// modifySession applies change to the active session and stores the result.
func (s *Service) modifySession(ctx context.Context, spanName string, change func(*domain.ActiveWorkoutSession)) (_ domain.ActiveWorkoutSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, spanName)
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.session(ctx)
	if err != nil {
		return domain.ActiveWorkoutSession{}, err
	}

	session.Exercises = copyExercises(session.Exercises)
	change(&session)

	if err := s.sessions.Save(ctx, session); err != nil {
		return domain.ActiveWorkoutSession{}, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

// CompleteCurrentSet marks the set under the cursor completed and moves the
// cursor to the next set, or the first set of the next exercise. The
// cursor stays on the last set of the last exercise.
func (s *Service) CompleteCurrentSet(ctx context.Context) (domain.ActiveWorkoutSession, error) {
	return s.modifySession(ctx, "service.session.completeSet", func(session *domain.ActiveWorkoutSession) {
		exIdx, setIdx := session.CurrentExerciseIndex, session.CurrentSetIndex
		if exIdx < 0 || exIdx >= len(session.Exercises) {
			return
		}
		sets := session.Exercises[exIdx].Sets
		if setIdx < 0 || setIdx >= len(sets) {
			return
		}

		sets[setIdx].Completed = true
		switch {
		case setIdx < len(sets)-1:
			session.CurrentSetIndex = setIdx + 1
		case exIdx < len(session.Exercises)-1:
			session.CurrentExerciseIndex = exIdx + 1
			session.CurrentSetIndex = 0
		}
	})
}

func (s *Service) SetRestTimer(ctx context.Context, duration time.Duration) (domain.ActiveWorkoutSession, error) {
	return s.modifySession(ctx, "service.session.setRestTimer", func(session *domain.ActiveWorkoutSession) {
		endTime := s.now().Add(duration)
		session.RestTimerEndTime = &endTime
	})
}

func (s *Service) ClearRestTimer(ctx context.Context) (domain.ActiveWorkoutSession, error) {
	return s.modifySession(ctx, "service.session.clearRestTimer", func(session *domain.ActiveWorkoutSession) {
		session.RestTimerEndTime = nil
	})
}

// FinishSession turns the active session into a completed workout dated
// on the day the session started, then clears the session.
func (s *Service) FinishSession(ctx context.Context, notes string) (_ domain.Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.session.finish")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.session(ctx)
	if err != nil {
		return domain.Workout{}, err
	}
	lookup, err := s.exercises.Lookup(ctx)
	if err != nil {
		return domain.Workout{}, fmt.Errorf("exercise lookup: %w", err)
	}

	endTime := s.now()
	startTime := session.StartTime
	date := s.cal.Date(startTime)
	workout, err := s.create(ctx, domain.Workout{
		ID:        session.WorkoutID,
		Name:      "Workout " + date.String(),
		Date:      date,
		StartTime: &startTime,
		EndTime:   &endTime,
		Duration:  int(math.Round(endTime.Sub(startTime).Minutes())),
		Type:      InferWorkoutType(session.Exercises, lookup),
		Status:    domain.WorkoutStatusCompleted,
		Exercises: session.Exercises,
		Notes:     notes,
	})
	if err != nil {
		return domain.Workout{}, err
	}

	if err := s.sessions.Remove(ctx); err != nil {
		return workout, fmt.Errorf("clear session: %w", err)
	}
	return workout, nil
}

// CancelSession drops the active session, if any, without saving a workout.
func (s *Service) CancelSession(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.session.cancel")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Remove(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
