package records

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/2beens/fitlog/internal/domain"
	"github.com/2beens/fitlog/internal/telemetry/metrics"
	"github.com/2beens/fitlog/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
)

const DefaultRecentLimit = 10

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=records_test

type ledgerRepo interface {
	Get(ctx context.Context) (domain.RecordLedger, bool, error)
	Save(ctx context.Context, ledger domain.RecordLedger) error
}

type Service struct {
	mu             sync.Mutex
	repo           ledgerRepo
	metricsManager *metrics.Manager
	newID          func() string
}

func NewService(repo ledgerRepo, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:           repo,
		metricsManager: metricsManager,
		newID:          NewRecordID,
	}
}

// UpdateFromWorkout folds the workout into the stored ledger and returns
// the records it set.
func (s *Service) UpdateFromWorkout(ctx context.Context, workout domain.Workout) (_ []domain.PersonalRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.records.updateFromWorkout")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, err := s.ledger(ctx)
	if err != nil {
		return nil, err
	}

	updated, newRecords := Apply(ledger, workout, s.newID)
	if len(newRecords) == 0 {
		return newRecords, nil
	}

	if err := s.repo.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("save record ledger: %w", err)
	}

	for _, r := range newRecords {
		s.metricsManager.CounterPersonalRecords.WithLabelValues(string(r.Type)).Inc()
		log.Debugf("new personal record [%s] %s: %.1f", r.ExerciseID, r.Type, r.Value)
	}
	return newRecords, nil
}

func (s *Service) ledger(ctx context.Context) (domain.RecordLedger, error) {
	ledger, found, err := s.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get record ledger: %w", err)
	}
	if !found || ledger == nil {
		return domain.RecordLedger{}, nil
	}
	return ledger, nil
}

func (s *Service) Ledger(ctx context.Context) (_ domain.RecordLedger, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.records.ledger")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	return s.ledger(ctx)
}

func (s *Service) ExerciseRecords(ctx context.Context, exerciseID string) ([]domain.PersonalRecord, error) {
	ledger, err := s.Ledger(ctx)
	if err != nil {
		return nil, err
	}
	records := ledger[exerciseID]
	if records == nil {
		return []domain.PersonalRecord{}, nil
	}
	return records, nil
}

// Recent returns up to limit records across all exercises, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]domain.PersonalRecord, error) {
	ledger, err := s.Ledger(ctx)
	if err != nil {
		return nil, err
	}

	exerciseIDs := make([]string, 0, len(ledger))
	for exerciseID := range ledger {
		exerciseIDs = append(exerciseIDs, exerciseID)
	}
	sort.Strings(exerciseIDs)

	all := make([]domain.PersonalRecord, 0)
	for _, exerciseID := range exerciseIDs {
		all = append(all, ledger[exerciseID]...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Date.After(all[j].Date)
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
