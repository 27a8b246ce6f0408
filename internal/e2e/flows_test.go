//go:build integration_test || all_tests

package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/fitlog/internal/domain"
	"github.com/2beens/fitlog/internal/goals"
)

func (s *IntegrationTestSuite) TestHealthAndVersion() {
	t := s.T()

	status, body := s.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok","storage":"postgres"}`, string(body))

	status, body = s.do(http.MethodGet, "/version", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"version":"test-version-info"}`, string(body))
}

func (s *IntegrationTestSuite) TestMutationWithoutSecret() {
	t := s.T()

	req, err := http.NewRequest(http.MethodDelete, serverEndpoint+"/workouts/workout-unknown", nil)
	require.NoError(t, err)
	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestWorkoutsRecordsAndStats() {
	t := s.T()
	today := civil.DateOf(time.Now())

	var created []domain.Workout
	for i, weight := range []float64{100, 110, 105} {
		body := fmt.Sprintf(
			`{"date":%q,"duration":%d,"notes":%q,"exercises":[{"exerciseId":"ex-squat","sets":[{"weight":%v,"reps":5,"completed":true},{"weight":%v,"reps":5,"completed":true}]}]}`,
			today.AddDays(-i).String(),
			gofakeit.Number(30, 90),
			gofakeit.Sentence(6),
			weight, weight,
		)
		status, respBody := s.do(http.MethodPost, "/workouts", body)
		require.Equal(t, http.StatusCreated, status, string(respBody))

		var workout domain.Workout
		require.NoError(t, json.Unmarshal(respBody, &workout))
		assert.Equal(t, weight*10, workout.TotalVolume)
		assert.Equal(t, 2, workout.TotalSets)
		created = append(created, workout)
	}

	status, body := s.do(http.MethodGet, "/workouts/recent?count=2", "")
	require.Equal(t, http.StatusOK, status)
	var recent []domain.Workout
	require.NoError(t, json.Unmarshal(body, &recent))
	require.Len(t, recent, 2)
	assert.Equal(t, created[0].ID, recent[0].ID)

	status, body = s.do(http.MethodGet, "/records", "")
	require.Equal(t, http.StatusOK, status)
	var ledger domain.RecordLedger
	require.NoError(t, json.Unmarshal(body, &ledger))
	maxWeight, ok := ledger.Find("ex-squat", domain.RecordMaxWeight)
	require.True(t, ok)
	assert.Equal(t, 110.0, maxWeight.Value)
	assert.Equal(t, created[1].ID, maxWeight.WorkoutID)

	status, body = s.do(http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusOK, status)
	var statistics domain.WorkoutStatistics
	require.NoError(t, json.Unmarshal(body, &statistics))
	assert.GreaterOrEqual(t, statistics.TotalWorkouts, 3)
	assert.GreaterOrEqual(t, statistics.CurrentStreak, 3)

	status, body = s.do(http.MethodGet, "/stats/weekly-volume?weeks=2", "")
	require.Equal(t, http.StatusOK, status)
	var weekly []domain.WeeklyVolume
	require.NoError(t, json.Unmarshal(body, &weekly))
	assert.Len(t, weekly, 2)

	for _, w := range created {
		status, _ := s.do(http.MethodDelete, "/workouts/"+w.ID, "")
		assert.Equal(t, http.StatusNoContent, status)
	}
}

func (s *IntegrationTestSuite) TestGoalFromTemplateAndRefresh() {
	t := s.T()

	status, body := s.do(http.MethodGet, "/goals/templates", "")
	require.Equal(t, http.StatusOK, status)
	var templates []domain.GoalTemplate
	require.NoError(t, json.Unmarshal(body, &templates))
	require.NotEmpty(t, templates)

	status, body = s.do(http.MethodPost, "/goals/from-template", fmt.Sprintf(`{"templateId":%q}`, templates[0].ID))
	require.Equal(t, http.StatusCreated, status, string(body))
	var goal domain.Goal
	require.NoError(t, json.Unmarshal(body, &goal))
	assert.Equal(t, templates[0].Category, goal.Category)
	assert.Equal(t, domain.GoalStatusActive, goal.Status)

	status, body = s.do(http.MethodPost, "/goals/refresh", "")
	require.Equal(t, http.StatusOK, status, string(body))
	var result goals.RefreshResult
	require.NoError(t, json.Unmarshal(body, &result))
	assert.GreaterOrEqual(t, result.Evaluated, 1)

	status, body = s.do(http.MethodGet, "/goals/"+goal.ID, "")
	require.Equal(t, http.StatusOK, status)
	var refreshed domain.Goal
	require.NoError(t, json.Unmarshal(body, &refreshed))
	assert.NotEmpty(t, refreshed.ProgressHistory)

	status, _ = s.do(http.MethodDelete, "/goals/"+goal.ID, "")
	assert.Equal(t, http.StatusNoContent, status)
}
