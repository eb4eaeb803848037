package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"nutridash/internal/core"
	"nutridash/internal/store"

	_ "modernc.org/sqlite"
)

// Repository serves the profile and meal-log tables from a local
// SQLite database.
type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// GetProfile implements store.ProfileStore.
func (r *Repository) GetProfile(ctx context.Context, userID string) (core.RawRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, name, age, weight_kg, height_cm, calorie_goal, protein_goal, avatar_url
		 FROM user_profiles WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}
	recs, err := scanRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	if len(recs) == 0 {
		return nil, store.ErrNotFound
	}
	return recs[0], nil
}

// UpdateProfile implements store.ProfileStore.
func (r *Repository) UpdateProfile(ctx context.Context, userID string, u store.ProfileUpdate) error {
	var (
		res sql.Result
		err error
	)
	if u.AvatarURL != nil {
		res, err = r.db.ExecContext(ctx,
			`UPDATE user_profiles
			 SET name = ?, age = ?, weight_kg = ?, height_cm = ?, calorie_goal = ?, protein_goal = ?, avatar_url = ?
			 WHERE user_id = ?`,
			u.Name, u.Age, u.WeightKg, u.HeightCm, u.GoalCalories, u.GoalProtein, *u.AvatarURL, userID)
	} else {
		res, err = r.db.ExecContext(ctx,
			`UPDATE user_profiles
			 SET name = ?, age = ?, weight_kg = ?, height_cm = ?, calorie_goal = ?, protein_goal = ?
			 WHERE user_id = ?`,
			u.Name, u.Age, u.WeightKg, u.HeightCm, u.GoalCalories, u.GoalProtein, userID)
	}
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update profile rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListUsers implements store.ProfileStore.
func (r *Repository) ListUsers(ctx context.Context) ([]core.RawRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, name, calorie_goal, avatar_url FROM user_profiles ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	recs, err := scanRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}
	return recs, nil
}

// ListMeals implements store.MealStore.
func (r *Repository) ListMeals(ctx context.Context, userID string, limit int) ([]core.RawRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, date, name, description, calories, protein, carbs, fat
		 FROM meal_logs WHERE user_id = ? ORDER BY date DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query meals: %w", err)
	}
	recs, err := scanRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("scan meals: %w", err)
	}
	return recs, nil
}

// ListAllMeals implements store.MealStore.
func (r *Repository) ListAllMeals(ctx context.Context) ([]core.RawRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, date, calories FROM meal_logs`)
	if err != nil {
		return nil, fmt.Errorf("query all meals: %w", err)
	}
	recs, err := scanRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("scan all meals: %w", err)
	}
	return recs, nil
}

// scanRecords turns a result set into loose RawRecord maps keyed by
// column name, preserving the store's own field casing.
func scanRecords(rows *sql.Rows) ([]core.RawRecord, error) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []core.RawRecord
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := make(core.RawRecord, len(cols))
		for i, col := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			rec[col] = v
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
