package exercises

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/2beens/fitlog/internal/domain"
	"github.com/2beens/fitlog/internal/telemetry/tracing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	ErrExerciseNotFound  = errors.New("exercise not found")
	ErrSeedExerciseFixed = errors.New("seed exercises cannot be deleted")
)

//go:embed seed_exercises.json
var seedExercisesJSON []byte

// SeedExercises returns the built-in exercise library.
func SeedExercises() []domain.Exercise {
	var seed []domain.Exercise
	if err := json.Unmarshal(seedExercisesJSON, &seed); err != nil {
		panic(fmt.Sprintf("invalid embedded seed exercises: %s", err))
	}
	return seed
}

//go:generate mockgen -source=$GOFILE -destination=catalog_mocks_test.go -package=exercises_test

type exercisesRepo interface {
	All(ctx context.Context) ([]domain.Exercise, error)
	Save(ctx context.Context, exercises []domain.Exercise) error
}

// Catalog is the exercise library. An empty store is seeded on first read.
type Catalog struct {
	mu   sync.Mutex
	repo exercisesRepo
}

func NewCatalog(repo exercisesRepo) *Catalog {
	return &Catalog{
		repo: repo,
	}
}

func (c *Catalog) All(ctx context.Context) (_ []domain.Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.exercises.all")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.all(ctx)
}

func (c *Catalog) all(ctx context.Context) ([]domain.Exercise, error) {
	exercises, err := c.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	if len(exercises) > 0 {
		return exercises, nil
	}

	seed := SeedExercises()
	if err := c.repo.Save(ctx, seed); err != nil {
		// still usable, the seed is tried again on the next read
		log.Errorf("seed exercises: %s", err)
	}
	return seed, nil
}

// Lookup returns an id lookup over the current catalog.
func (c *Catalog) Lookup(ctx context.Context) (domain.ExerciseLookup, error) {
	exercises, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	return domain.IndexExercises(exercises), nil
}

func (c *Catalog) Get(ctx context.Context, id string) (domain.Exercise, error) {
	exercises, err := c.All(ctx)
	if err != nil {
		return domain.Exercise{}, err
	}
	for _, ex := range exercises {
		if ex.ID == id {
			return ex, nil
		}
	}
	return domain.Exercise{}, ErrExerciseNotFound
}

func (c *Catalog) ByMuscleGroup(ctx context.Context, group domain.MuscleGroup) ([]domain.Exercise, error) {
	return c.filter(ctx, func(ex domain.Exercise) bool {
		return ex.HasMuscleGroup(group)
	})
}

func (c *Catalog) ByType(ctx context.Context, exType domain.ExerciseType) ([]domain.Exercise, error) {
	return c.filter(ctx, func(ex domain.Exercise) bool {
		return ex.Type == exType
	})
}

// Search matches the query against name, muscle groups and equipment,
// case insensitive. An empty query returns everything.
func (c *Catalog) Search(ctx context.Context, query string) ([]domain.Exercise, error) {
	term := strings.ToLower(strings.TrimSpace(query))
	return c.filter(ctx, func(ex domain.Exercise) bool {
		if term == "" {
			return true
		}
		if strings.Contains(strings.ToLower(ex.Name), term) ||
			strings.Contains(strings.ToLower(ex.Equipment), term) {
			return true
		}
		for _, mg := range ex.MuscleGroups {
			if strings.Contains(string(mg), term) {
				return true
			}
		}
		return false
	})
}

func (c *Catalog) filter(ctx context.Context, keep func(domain.Exercise) bool) ([]domain.Exercise, error) {
	exercises, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]domain.Exercise, 0, len(exercises))
	for _, ex := range exercises {
		if keep(ex) {
			filtered = append(filtered, ex)
		}
	}
	return filtered, nil
}

func (c *Catalog) AddCustom(ctx context.Context, exercise domain.Exercise) (_ domain.Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.exercises.addCustom")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	exercises, err := c.all(ctx)
	if err != nil {
		return domain.Exercise{}, err
	}

	exercise.ID = "custom-" + uuid.NewString()
	exercise.IsCustom = true
	if err := c.repo.Save(ctx, append(exercises, exercise)); err != nil {
		return domain.Exercise{}, fmt.Errorf("save exercises: %w", err)
	}
	return exercise, nil
}

// Update replaces the stored exercise with the same id. The id and the
// custom flag cannot change.
func (c *Catalog) Update(ctx context.Context, exercise domain.Exercise) (_ domain.Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.exercises.update")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	exercises, err := c.all(ctx)
	if err != nil {
		return domain.Exercise{}, err
	}
	for i := range exercises {
		if exercises[i].ID != exercise.ID {
			continue
		}
		exercise.IsCustom = exercises[i].IsCustom
		updated := append([]domain.Exercise(nil), exercises...)
		updated[i] = exercise
		if err := c.repo.Save(ctx, updated); err != nil {
			return domain.Exercise{}, fmt.Errorf("save exercises: %w", err)
		}
		return exercise, nil
	}
	return domain.Exercise{}, ErrExerciseNotFound
}

func (c *Catalog) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.exercises.delete")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	exercises, err := c.all(ctx)
	if err != nil {
		return err
	}

	kept := make([]domain.Exercise, 0, len(exercises))
	found := false
	for _, ex := range exercises {
		if ex.ID != id {
			kept = append(kept, ex)
			continue
		}
		if !ex.IsCustom {
			return ErrSeedExerciseFixed
		}
		found = true
	}
	if !found {
		return ErrExerciseNotFound
	}
	if err := c.repo.Save(ctx, kept); err != nil {
		return fmt.Errorf("save exercises: %w", err)
	}
	return nil
}

// MuscleGroups returns the distinct muscle groups of the catalog, sorted.
func (c *Catalog) MuscleGroups(ctx context.Context) ([]domain.MuscleGroup, error) {
	exercises, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[domain.MuscleGroup]bool)
	var groups []domain.MuscleGroup
	for _, ex := range exercises {
		for _, mg := range ex.MuscleGroups {
			if !seen[mg] {
				seen[mg] = true
				groups = append(groups, mg)
			}
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i] < groups[j] })
	return groups, nil
}

func (c *Catalog) Equipment(ctx context.Context) ([]string, error) {
	exercises, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var equipment []string
	for _, ex := range exercises {
		if !seen[ex.Equipment] {
			seen[ex.Equipment] = true
			equipment = append(equipment, ex.Equipment)
		}
	}
	sort.Strings(equipment)
	return equipment, nil
}

func (c *Catalog) ResetToSeed(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.repo.Save(ctx, SeedExercises()); err != nil {
		return fmt.Errorf("reset exercises: %w", err)
	}
	return nil
}
