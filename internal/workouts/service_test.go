package workouts_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/2beens/fitlog/internal/calendar"
	"github.com/2beens/fitlog/internal/domain"
	"github.com/2beens/fitlog/internal/telemetry/metrics"
	"github.com/2beens/fitlog/internal/workouts"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type serviceMocks struct {
	repo      *MockworkoutsRepo
	sessions  *MocksessionRepo
	records   *MockrecordsUpdater
	exercises *MockexerciseCatalog
}

func newTestService(t *testing.T, now func() time.Time) (*workouts.Service, serviceMocks, *metrics.Manager) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mocks := serviceMocks{
		repo:      NewMockworkoutsRepo(ctrl),
		sessions:  NewMocksessionRepo(ctrl),
		records:   NewMockrecordsUpdater(ctrl),
		exercises: NewMockexerciseCatalog(ctrl),
	}
	if now == nil {
		now = func() time.Time { return testNow }
	}
	metricsManager := metrics.NewTestManager()
	service := workouts.NewService(
		mocks.repo,
		mocks.sessions,
		mocks.records,
		mocks.exercises,
		calendar.New(time.UTC, time.Sunday),
		now,
		metricsManager,
	)
	return service, mocks, metricsManager
}

// inMemory backs the workouts repo mock with a slice.
func (m serviceMocks) inMemory(stored *[]domain.Workout) {
	m.repo.EXPECT().All(gomock.Any()).DoAndReturn(func(context.Context) ([]domain.Workout, error) {
		return append([]domain.Workout(nil), *stored...), nil
	}).AnyTimes()
	m.repo.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, saved []domain.Workout) error {
		*stored = saved
		return nil
	}).AnyTimes()
}

func (m serviceMocks) inMemorySession(session **domain.ActiveWorkoutSession) {
	m.sessions.EXPECT().Get(gomock.Any()).DoAndReturn(func(context.Context) (domain.ActiveWorkoutSession, bool, error) {
		if *session == nil {
			return domain.ActiveWorkoutSession{}, false, nil
		}
		return **session, true, nil
	}).AnyTimes()
	m.sessions.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, s domain.ActiveWorkoutSession) error {
		*session = &s
		return nil
	}).AnyTimes()
	m.sessions.EXPECT().Remove(gomock.Any()).DoAndReturn(func(context.Context) error {
		*session = nil
		return nil
	}).AnyTimes()
}

func TestService_Create(t *testing.T) {
	service, mocks, metricsManager := newTestService(t, nil)
	ctx := context.Background()

	var stored []domain.Workout
	mocks.inMemory(&stored)
	mocks.records.EXPECT().UpdateFromWorkout(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, w domain.Workout) ([]domain.PersonalRecord, error) {
			assert.Equal(t, 500.0, w.TotalVolume)
			return []domain.PersonalRecord{{ExerciseID: "bench", Type: domain.RecordMaxWeight, Value: 100}}, nil
		})

	w, err := service.Create(ctx, workouts.NewWorkout{
		Date:      day(9),
		Duration:  45,
		Exercises: []domain.WorkoutExercise{{ExerciseID: "bench", Sets: []domain.ExerciseSet{liftSet(100, 5)}}},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(w.ID, "workout-"))
	assert.Equal(t, domain.WorkoutStatusCompleted, w.Status)
	assert.Equal(t, domain.WorkoutTypeStrength, w.Type)
	assert.Equal(t, 500.0, w.TotalVolume)
	assert.Equal(t, 1, w.TotalSets)
	assert.Equal(t, 5, w.TotalReps)
	require.Len(t, stored, 1)
	assert.Equal(t, w, stored[0])
	assert.Equal(t, 1.0, testutil.ToFloat64(metricsManager.CounterWorkoutsLogged))

	_, err = service.Create(ctx, workouts.NewWorkout{})
	assert.ErrorIs(t, err, workouts.ErrInvalidWorkout)
}

func TestService_Create_RecordsFailureKeepsWorkout(t *testing.T) {
	service, mocks, _ := newTestService(t, nil)

	var stored []domain.Workout
	mocks.inMemory(&stored)
	mocks.records.EXPECT().UpdateFromWorkout(gomock.Any(), gomock.Any()).Return(nil, errors.New("quota"))

	_, err := service.Create(context.Background(), workouts.NewWorkout{Date: day(9)})
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestService_Create_SaveFails(t *testing.T) {
	service, mocks, _ := newTestService(t, nil)

	mocks.repo.EXPECT().All(gomock.Any()).Return(nil, nil)
	mocks.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("quota"))
	mocks.records.EXPECT().UpdateFromWorkout(gomock.Any(), gomock.Any()).Times(0)

	_, err := service.Create(context.Background(), workouts.NewWorkout{Date: day(9)})
	require.EqualError(t, err, "save workouts: quota")
}

func TestService_Update(t *testing.T) {
	service, mocks, _ := newTestService(t, nil)
	ctx := context.Background()

	stored := []domain.Workout{{
		ID:          "w1",
		Date:        day(8),
		Status:      domain.WorkoutStatusCompleted,
		Exercises:   []domain.WorkoutExercise{{ExerciseID: "bench", Sets: []domain.ExerciseSet{liftSet(100, 5)}}},
		TotalVolume: 500,
		TotalSets:   1,
		TotalReps:   5,
	}}
	mocks.inMemory(&stored)
	mocks.records.EXPECT().UpdateFromWorkout(gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)

	notes := "felt strong"
	updated, err := service.Update(ctx, "w1", workouts.WorkoutPatch{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "felt strong", updated.Notes)
	assert.Equal(t, 500.0, updated.TotalVolume)

	updated, err = service.Update(ctx, "w1", workouts.WorkoutPatch{
		Exercises: []domain.WorkoutExercise{{ExerciseID: "bench", Sets: []domain.ExerciseSet{liftSet(100, 5), liftSet(110, 3)}}},
	})
	require.NoError(t, err)
	assert.Equal(t, 830.0, updated.TotalVolume)
	assert.Equal(t, 2, updated.TotalSets)
	assert.Equal(t, 8, updated.TotalReps)
	assert.Equal(t, "felt strong", stored[0].Notes)
	assert.Equal(t, 830.0, stored[0].TotalVolume)

	_, err = service.Update(ctx, "nope", workouts.WorkoutPatch{})
	assert.ErrorIs(t, err, workouts.ErrWorkoutNotFound)
}

func TestService_Delete(t *testing.T) {
	service, mocks, _ := newTestService(t, nil)
	ctx := context.Background()

	stored := []domain.Workout{{ID: "w1", Date: day(1)}, {ID: "w2", Date: day(2)}}
	mocks.inMemory(&stored)

	require.NoError(t, service.Delete(ctx, "w1"))
	require.Len(t, stored, 1)
	assert.Equal(t, "w2", stored[0].ID)
	assert.ErrorIs(t, service.Delete(ctx, "w1"), workouts.ErrWorkoutNotFound)
}

func TestService_Queries(t *testing.T) {
	service, mocks, _ := newTestService(t, nil)
	ctx := context.Background()

	stored := []domain.Workout{
		{ID: "old", Date: day(1), Status: domain.WorkoutStatusCompleted, Exercises: []domain.WorkoutExercise{{ExerciseID: "run"}}},
		{ID: "new", Date: day(9), Status: domain.WorkoutStatusCompleted, Exercises: []domain.WorkoutExercise{{ExerciseID: "bench"}}},
		{ID: "planned", Date: day(12), Status: domain.WorkoutStatusPlanned, Exercises: []domain.WorkoutExercise{{ExerciseID: "squat"}}},
		{ID: "mid", Date: day(5), Status: domain.WorkoutStatusCompleted, Exercises: []domain.WorkoutExercise{{ExerciseID: "squat"}, {ExerciseID: "bench"}}},
	}
	mocks.inMemory(&stored)
	mocks.exercises.EXPECT().Lookup(gomock.Any()).Return(domain.IndexExercises([]domain.Exercise{
		{ID: "bench", MuscleGroups: []domain.MuscleGroup{domain.MuscleGroupChest, domain.MuscleGroupArms}},
		{ID: "squat", MuscleGroups: []domain.MuscleGroup{domain.MuscleGroupLegs}},
		{ID: "run", MuscleGroups: []domain.MuscleGroup{domain.MuscleGroupCardio}},
	}), nil).AnyTimes()

	ids := func(ws []domain.Workout) []string {
		res := make([]string, 0, len(ws))
		for _, w := range ws {
			res = append(res, w.ID)
		}
		return res
	}

	recent, err := service.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "mid"}, ids(recent))

	recent, err = service.Recent(ctx, workouts.DefaultRecentCount)
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "mid", "old"}, ids(recent))

	inRange, err := service.ByDateRange(ctx, day(5), day(12))
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "planned", "mid"}, ids(inRange))

	chest, err := service.ByMuscleGroup(ctx, domain.MuscleGroupChest)
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "mid"}, ids(chest))

	legs, err := service.ByMuscleGroup(ctx, domain.MuscleGroupLegs)
	require.NoError(t, err)
	assert.Equal(t, []string{"planned", "mid"}, ids(legs))

	got, err := service.Get(ctx, "mid")
	require.NoError(t, err)
	assert.Equal(t, day(5), got.Date)
	_, err = service.Get(ctx, "nope")
	assert.ErrorIs(t, err, workouts.ErrWorkoutNotFound)
}

func TestService_SessionLifecycle(t *testing.T) {
	now := testNow
	service, mocks, _ := newTestService(t, func() time.Time { return now })
	ctx := context.Background()

	var stored []domain.Workout
	var session *domain.ActiveWorkoutSession
	mocks.inMemory(&stored)
	mocks.inMemorySession(&session)
	mocks.exercises.EXPECT().Lookup(gomock.Any()).Return(domain.IndexExercises([]domain.Exercise{
		{ID: "bench", Type: domain.ExerciseTypeStrength},
		{ID: "run", Type: domain.ExerciseTypeCardio},
	}), nil)
	mocks.records.EXPECT().UpdateFromWorkout(gomock.Any(), gomock.Any()).Return(nil, nil)

	_, err := service.Session(ctx)
	assert.ErrorIs(t, err, workouts.ErrNoActiveSession)

	planned := []domain.WorkoutExercise{
		{ExerciseID: "bench", Sets: []domain.ExerciseSet{liftSet(100, 5), liftSet(100, 5)}},
		{ExerciseID: "run", Sets: []domain.ExerciseSet{{Duration: intPtr(600), Completed: true}}},
	}
	started, err := service.StartSession(ctx, planned)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(started.WorkoutID, "workout-"))
	assert.Equal(t, testNow, started.StartTime)
	for _, ex := range started.Exercises {
		for _, set := range ex.Sets {
			assert.False(t, set.Completed)
		}
	}
	// caller's sets stay untouched
	assert.True(t, planned[0].Sets[0].Completed)

	s, err := service.CompleteCurrentSet(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, s.CurrentExerciseIndex)
	assert.Equal(t, 1, s.CurrentSetIndex)
	assert.True(t, s.Exercises[0].Sets[0].Completed)

	s, err = service.CompleteCurrentSet(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, s.CurrentExerciseIndex)
	assert.Equal(t, 0, s.CurrentSetIndex)

	// the cursor stays on the last set
	for i := 0; i < 2; i++ {
		s, err = service.CompleteCurrentSet(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, s.CurrentExerciseIndex)
		assert.Equal(t, 0, s.CurrentSetIndex)
		assert.True(t, s.Exercises[1].Sets[0].Completed)
	}

	s, err = service.SetRestTimer(ctx, 90*time.Second)
	require.NoError(t, err)
	require.NotNil(t, s.RestTimerEndTime)
	assert.Equal(t, testNow.Add(90*time.Second), *s.RestTimerEndTime)

	s, err = service.ClearRestTimer(ctx)
	require.NoError(t, err)
	assert.Nil(t, s.RestTimerEndTime)

	now = testNow.Add(47*time.Minute + 40*time.Second)
	w, err := service.FinishSession(ctx, "good one")
	require.NoError(t, err)
	assert.Equal(t, started.WorkoutID, w.ID)
	assert.Equal(t, day(10), w.Date)
	assert.Equal(t, 48, w.Duration)
	assert.Equal(t, domain.WorkoutTypeMixed, w.Type)
	assert.Equal(t, domain.WorkoutStatusCompleted, w.Status)
	assert.Equal(t, "good one", w.Notes)
	assert.Equal(t, 1000.0, w.TotalVolume)
	assert.Equal(t, 3, w.TotalSets)

	assert.Nil(t, session)
	require.Len(t, stored, 1)

	_, err = service.FinishSession(ctx, "")
	assert.ErrorIs(t, err, workouts.ErrNoActiveSession)
	_, err = service.CompleteCurrentSet(ctx)
	assert.ErrorIs(t, err, workouts.ErrNoActiveSession)
}

func TestService_CancelSession(t *testing.T) {
	service, mocks, _ := newTestService(t, nil)
	ctx := context.Background()

	var session *domain.ActiveWorkoutSession
	mocks.inMemorySession(&session)

	_, err := service.StartSession(ctx, nil)
	require.NoError(t, err)
	require.NotNil(t, session)

	require.NoError(t, service.CancelSession(ctx))
	assert.Nil(t, session)
	// cancelling twice is fine
	require.NoError(t, service.CancelSession(ctx))
}

func TestHandler(t *testing.T) {
	service, mocks, _ := newTestService(t, nil)
	handler := workouts.NewHandler(service)
	r := mux.NewRouter()
	handler.SetupRoutes(r.PathPrefix("/workouts").Subrouter())
	handler.SetupSessionRoutes(r.PathPrefix("/session").Subrouter())

	var stored []domain.Workout
	var session *domain.ActiveWorkoutSession
	mocks.inMemory(&stored)
	mocks.inMemorySession(&session)
	mocks.records.EXPECT().UpdateFromWorkout(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	body := `{"date":"2024-01-09","duration":40,"exercises":[{"exerciseId":"bench","sets":[{"weight":60,"reps":10,"completed":true}]}]}`
	req := httptest.NewRequest(http.MethodPost, "/workouts", strings.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created domain.Workout
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, 600.0, created.TotalVolume)

	req = httptest.NewRequest(http.MethodGet, "/workouts?from=2024-01-01&to=2024-01-31", nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	var listed []domain.Workout
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
	assert.Len(t, listed, 1)

	req = httptest.NewRequest(http.MethodGet, "/workouts?from=yesterday&to=2024-01-31", nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/workouts/"+created.ID, nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/session", nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/session/rest-timer", strings.NewReader(`{"seconds":0}`))
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/session", strings.NewReader(`{"exercises":[]}`))
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)
	require.NotNil(t, session)

	req = httptest.NewRequest(http.MethodDelete, "/session", nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Nil(t, session)

	req = httptest.NewRequest(http.MethodDelete, "/workouts/"+created.ID, nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, stored)
}
