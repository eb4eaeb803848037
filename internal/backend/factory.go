package backend

import (
	"context"
	"fmt"
	"log/slog"

	"nutridash/internal/core"
	"nutridash/internal/store"
	"nutridash/internal/store/memory"
	"nutridash/internal/store/postgres"
	"nutridash/internal/store/sqlite"
)

// Result bundles the store ports a backend provides plus its cleanup.
type Result struct {
	Profiles store.ProfileStore
	Meals    store.MealStore
	Cleanup  func() error
}

// Factory creates store backends from configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory.
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case PostgresBackend:
		return f.createPostgresBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	repo, err := sqlite.NewRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &Result{Profiles: repo, Meals: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createPostgresBackend(ctx context.Context, config Config) (*Result, error) {
	repo, err := postgres.NewRepository(ctx, config.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Postgres repository: %w", err)
	}

	f.logger.Info("Initialized Postgres backend")

	return &Result{Profiles: repo, Meals: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*Result, error) {
	s := memory.New()
	seedDemoData(s)

	f.logger.Info("Initialized memory backend")

	return &Result{Profiles: s, Meals: s, Cleanup: nil}, nil
}

// seedDemoData gives the memory backend one browsable user so the
// dashboard renders something out of the box.
func seedDemoData(s *memory.Store) {
	s.SeedProfile(core.RawRecord{
		core.FieldUserID:      "1",
		core.FieldName:        "Alex Silva",
		core.FieldAge:         28,
		core.FieldWeightKg:    74.5,
		core.FieldHeightCm:    178.0,
		core.FieldCalorieGoal: 2500.0,
		core.FieldProteinGoal: 180.0,
	})

	meals := []struct {
		id    string
		date  string
		name  string
		cals  float64
		prot  float64
		carbs float64
		fat   float64
	}{
		{"m1", "2025-11-05T08:30:00", "Oatmeal with Berries", 350, 12, 55, 6},
		{"m2", "2025-11-05T10:45:00", "Whey Protein Shake", 120, 24, 3, 1},
		{"m3", "2025-11-05T13:15:00", "Grilled Chicken Salad", 450, 45, 15, 20},
		{"m4", "2025-11-06T16:30:00", "Greek Yogurt & Honey", 180, 15, 20, 0},
		{"m5", "2025-11-06T19:45:00", "Salmon & Asparagus", 520, 40, 10, 32},
	}
	for _, m := range meals {
		s.SeedMeal(core.RawRecord{
			core.FieldID:       m.id,
			core.FieldUserID:   "1",
			core.FieldDate:     m.date,
			core.FieldName:     m.name,
			core.FieldCalories: m.cals,
			core.FieldProtein:  m.prot,
			core.FieldCarbs:    m.carbs,
			core.FieldFat:      m.fat,
		})
	}
}
