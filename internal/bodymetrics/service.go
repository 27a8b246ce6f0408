package bodymetrics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/fitlog/internal/domain"
	"github.com/2beens/fitlog/internal/telemetry/tracing"

	"github.com/google/uuid"
)

const DefaultHistoryDays = 30

var (
	ErrBodyMetricNotFound = errors.New("body metric not found")
	ErrInvalidBodyMetric  = errors.New("invalid body metric")
)

func NewBodyMetricID() string {
	return "metric-" + uuid.NewString()
}

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=bodymetrics_test

type metricsRepo interface {
	All(ctx context.Context) ([]domain.BodyMetric, error)
	Save(ctx context.Context, metrics []domain.BodyMetric) error
}

type NewBodyMetric struct {
	Date              time.Time                `json:"date"`
	Weight            *float64                 `json:"weight,omitempty"`
	Measurements      *domain.BodyMeasurements `json:"measurements,omitempty"`
	BodyFatPercentage *float64                 `json:"bodyFatPercentage,omitempty"`
	Notes             string                   `json:"notes,omitempty"`
}

type BodyMetricPatch struct {
	Date              *time.Time               `json:"date,omitempty"`
	Weight            *float64                 `json:"weight,omitempty"`
	Measurements      *domain.BodyMeasurements `json:"measurements,omitempty"`
	BodyFatPercentage *float64                 `json:"bodyFatPercentage,omitempty"`
	Notes             *string                  `json:"notes,omitempty"`
}

func (p BodyMetricPatch) apply(m domain.BodyMetric) domain.BodyMetric {
	if p.Date != nil {
		m.Date = *p.Date
	}
	if p.Weight != nil {
		m.Weight = p.Weight
	}
	if p.Measurements != nil {
		m.Measurements = p.Measurements
	}
	if p.BodyFatPercentage != nil {
		m.BodyFatPercentage = p.BodyFatPercentage
	}
	if p.Notes != nil {
		m.Notes = *p.Notes
	}
	return m
}

func validate(m domain.BodyMetric) error {
	if m.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidBodyMetric)
	}
	if m.Weight != nil && *m.Weight <= 0 {
		return fmt.Errorf("%w: weight must be positive", ErrInvalidBodyMetric)
	}
	if bf := m.BodyFatPercentage; bf != nil && (*bf < 0 || *bf > 100) {
		return fmt.Errorf("%w: body fat out of range", ErrInvalidBodyMetric)
	}
	return nil
}

type Service struct {
	mu    sync.Mutex
	repo  metricsRepo
	now   func() time.Time
	newID func() string
}

func NewService(repo metricsRepo, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:  repo,
		now:   now,
		newID: NewBodyMetricID,
	}
}

// List returns all metrics, oldest first.
func (s *Service) List(ctx context.Context) (_ []domain.BodyMetric, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.bodymetrics.list")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	metrics, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list body metrics: %w", err)
	}
	return sortedByDate(metrics), nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.BodyMetric, error) {
	metrics, err := s.List(ctx)
	if err != nil {
		return domain.BodyMetric{}, err
	}
	idx := indexOf(metrics, id)
	if idx < 0 {
		return domain.BodyMetric{}, ErrBodyMetricNotFound
	}
	return metrics[idx], nil
}

func indexOf(metrics []domain.BodyMetric, id string) int {
	for i := range metrics {
		if metrics[i].ID == id {
			return i
		}
	}
	return -1
}

// ByDateRange returns the metrics taken within [from, to].
func (s *Service) ByDateRange(ctx context.Context, from, to time.Time) ([]domain.BodyMetric, error) {
	metrics, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	inRange := make([]domain.BodyMetric, 0)
	for _, m := range metrics {
		if !m.Date.Before(from) && !m.Date.After(to) {
			inRange = append(inRange, m)
		}
	}
	return inRange, nil
}

func (s *Service) Latest(ctx context.Context) (domain.BodyMetric, bool, error) {
	metrics, err := s.List(ctx)
	if err != nil {
		return domain.BodyMetric{}, false, err
	}
	latest, found := Latest(metrics)
	return latest, found, nil
}

func (s *Service) LatestWeight(ctx context.Context) (float64, bool, error) {
	metrics, err := s.List(ctx)
	if err != nil {
		return 0, false, err
	}
	weight, found := LatestWeight(metrics)
	return weight, found, nil
}

func (s *Service) WeightTrend(ctx context.Context, period Period) ([]domain.WeightTrend, error) {
	metrics, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return WeightTrend(metrics, period.Since(s.now())), nil
}

// WeightStatistics summarizes the weights of the last days days.
func (s *Service) WeightStatistics(ctx context.Context, days int) (Statistics, error) {
	history, err := s.weightHistory(ctx, days)
	if err != nil {
		return Statistics{}, err
	}
	return Summarize(history), nil
}

func (s *Service) WeightChange(ctx context.Context, days int) (Change, bool, error) {
	history, err := s.weightHistory(ctx, days)
	if err != nil {
		return Change{}, false, err
	}
	change, ok := WeightChange(history)
	return change, ok, nil
}

func (s *Service) weightHistory(ctx context.Context, days int) ([]Sample, error) {
	metrics, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return WeightHistory(metrics, s.now().AddDate(0, 0, -days)), nil
}

// MeasurementStatistics summarizes one body measurement over the last days days.
func (s *Service) MeasurementStatistics(ctx context.Context, name string, days int) (Statistics, []Sample, error) {
	metrics, err := s.List(ctx)
	if err != nil {
		return Statistics{}, nil, err
	}
	history, err := MeasurementHistory(metrics, name, s.now().AddDate(0, 0, -days))
	if err != nil {
		return Statistics{}, nil, err
	}
	return Summarize(history), history, nil
}

func (s *Service) Add(ctx context.Context, newMetric NewBodyMetric) (_ domain.BodyMetric, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.bodymetrics.add")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	metric := domain.BodyMetric{
		ID:                s.newID(),
		Date:              newMetric.Date,
		Weight:            newMetric.Weight,
		Measurements:      newMetric.Measurements,
		BodyFatPercentage: newMetric.BodyFatPercentage,
		Notes:             newMetric.Notes,
	}
	if err := validate(metric); err != nil {
		return domain.BodyMetric{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	metrics, err := s.repo.All(ctx)
	if err != nil {
		return domain.BodyMetric{}, fmt.Errorf("list body metrics: %w", err)
	}
	if err := s.repo.Save(ctx, append(metrics, metric)); err != nil {
		return domain.BodyMetric{}, fmt.Errorf("save body metrics: %w", err)
	}
	return metric, nil
}

func (s *Service) Update(ctx context.Context, id string, patch BodyMetricPatch) (_ domain.BodyMetric, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.bodymetrics.update")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	metrics, err := s.repo.All(ctx)
	if err != nil {
		return domain.BodyMetric{}, fmt.Errorf("list body metrics: %w", err)
	}
	idx := indexOf(metrics, id)
	if idx < 0 {
		return domain.BodyMetric{}, ErrBodyMetricNotFound
	}

	updated := patch.apply(metrics[idx])
	if err := validate(updated); err != nil {
		return domain.BodyMetric{}, err
	}
	metrics[idx] = updated
	if err := s.repo.Save(ctx, metrics); err != nil {
		return domain.BodyMetric{}, fmt.Errorf("save body metrics: %w", err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.bodymetrics.delete")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	metrics, err := s.repo.All(ctx)
	if err != nil {
		return fmt.Errorf("list body metrics: %w", err)
	}
	idx := indexOf(metrics, id)
	if idx < 0 {
		return ErrBodyMetricNotFound
	}

	remaining := make([]domain.BodyMetric, 0, len(metrics)-1)
	remaining = append(remaining, metrics[:idx]...)
	remaining = append(remaining, metrics[idx+1:]...)
	if err := s.repo.Save(ctx, remaining); err != nil {
		return fmt.Errorf("save body metrics: %w", err)
	}
	return nil
}
