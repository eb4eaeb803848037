package postgres

import (
	"context"
	"fmt"

	"nutridash/internal/core"
	"nutridash/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository serves the profile and meal-log tables from a remote
// Postgres database. This is the production backend; the remote store
// the dashboard was built against is Postgres-shaped.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(ctx context.Context, url string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) Close() error {
	if r.pool != nil {
		r.pool.Close()
	}
	return nil
}

// GetProfile implements store.ProfileStore.
func (r *Repository) GetProfile(ctx context.Context, userID string) (core.RawRecord, error) {
	recs, err := r.queryRecords(ctx,
		`SELECT user_id, name, age, weight_kg, height_cm, calorie_goal, protein_goal, avatar_url
		 FROM user_profiles WHERE user_id = @userID`,
		pgx.NamedArgs{"userID": userID})
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}
	if len(recs) == 0 {
		return nil, store.ErrNotFound
	}
	return recs[0], nil
}

// UpdateProfile implements store.ProfileStore.
func (r *Repository) UpdateProfile(ctx context.Context, userID string, u store.ProfileUpdate) error {
	query := `UPDATE user_profiles
		 SET name = @name, age = @age, weight_kg = @weightKg, height_cm = @heightCm,
		     calorie_goal = @calorieGoal, protein_goal = @proteinGoal
		 WHERE user_id = @userID`
	args := pgx.NamedArgs{
		"userID": userID, "name": u.Name, "age": u.Age,
		"weightKg": u.WeightKg, "heightCm": u.HeightCm,
		"calorieGoal": u.GoalCalories, "proteinGoal": u.GoalProtein,
	}
	if u.AvatarURL != nil {
		query = `UPDATE user_profiles
		 SET name = @name, age = @age, weight_kg = @weightKg, height_cm = @heightCm,
		     calorie_goal = @calorieGoal, protein_goal = @proteinGoal, avatar_url = @avatarURL
		 WHERE user_id = @userID`
		args["avatarURL"] = *u.AvatarURL
	}

	tag, err := r.pool.Exec(ctx, query, args)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListUsers implements store.ProfileStore.
func (r *Repository) ListUsers(ctx context.Context) ([]core.RawRecord, error) {
	recs, err := r.queryRecords(ctx,
		`SELECT user_id, name, calorie_goal, avatar_url FROM user_profiles ORDER BY user_id`, nil)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	return recs, nil
}

// ListMeals implements store.MealStore.
func (r *Repository) ListMeals(ctx context.Context, userID string, limit int) ([]core.RawRecord, error) {
	recs, err := r.queryRecords(ctx,
		`SELECT id, user_id, date, name, description, calories, protein, carbs, fat
		 FROM meal_logs WHERE user_id = @userID ORDER BY date DESC LIMIT @limit`,
		pgx.NamedArgs{"userID": userID, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("query meals: %w", err)
	}
	return recs, nil
}

// ListAllMeals implements store.MealStore.
func (r *Repository) ListAllMeals(ctx context.Context) ([]core.RawRecord, error) {
	recs, err := r.queryRecords(ctx,
		`SELECT user_id, date, calories FROM meal_logs`, nil)
	if err != nil {
		return nil, fmt.Errorf("query all meals: %w", err)
	}
	return recs, nil
}

// queryRecords runs a query and shapes each row into a loose
// RawRecord keyed by column name.
func (r *Repository) queryRecords(ctx context.Context, query string, args any) ([]core.RawRecord, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if args != nil {
		rows, err = r.pool.Query(ctx, query, args)
	} else {
		rows, err = r.pool.Query(ctx, query)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []core.RawRecord
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		rec := make(core.RawRecord, len(fields))
		for i, fd := range fields {
			rec[fd.Name] = values[i]
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
