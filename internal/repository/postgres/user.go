package postgres

import (
	"context"
	"fmt"

	"github.com/avdeeva/beautybook/internal/model"
)

// Upsert records a client the first time they interact and refreshes the
// mutable profile fields on every later visit.
func (r *userRepository) Upsert(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, username, display_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET username = EXCLUDED.username, display_name = EXCLUDED.display_name
		RETURNING first_seen
	`
	err := r.db.QueryRowxContext(ctx, query, user.ID, user.Username, user.DisplayName).
		Scan(&user.FirstSeen)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	query := `
		SELECT id, username, display_name, first_seen
		FROM users
		ORDER BY first_seen ASC
	`
	var users []*model.User
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
