package store

import (
	"context"

	"github.com/nikhil/teamchat/internal/models"
)

const userColumns = `id, email, username, password, created_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.Username, &u.Password, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a user with an already hashed password.
func (s *Store) CreateUser(ctx context.Context, email, username, passwordHash string) (*models.User, error) {
	now := s.now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, username, password, created_at) VALUES (?, ?, ?, ?)`,
		email, username, passwordHash, now)
	if err != nil {
		return nil, translate("insert user", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, translate("insert user", err)
	}
	return &models.User{ID: id, Email: email, Username: username, Password: passwordHash, CreatedAt: now}, nil
}

// GetUser loads a user by id.
func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return nil, translate("get user", err)
	}
	return u, nil
}

// GetUserByEmail loads a user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		return nil, translate("get user by email", err)
	}
	return u, nil
}

// UpdateUsername changes a user's display name.
func (s *Store) UpdateUsername(ctx context.Context, id int64, username string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET username = ? WHERE id = ?`, username, id)
	return translate("update username", err)
}
