package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"furnistore/internal/domain"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type postgresUserRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresUserRepository(db *sql.DB, logger *logrus.Logger) domain.UserRepository {
	return &postgresUserRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresUserRepository) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
        INSERT INTO users (name, email, password_hash, role)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at
    `
	r.log.Debugf("Attempting to create user with email: %s", user.Email)

	err := r.db.QueryRowContext(ctx, query, user.Name, user.Email, user.PasswordHash, user.Role).Scan(
		&user.ID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			r.log.Warnf("Attempted to create user with duplicate email: %s", user.Email)
			return nil, fmt.Errorf("user with email '%s' already exists", user.Email)
		}
		r.log.Errorf("Failed to create user '%s': %v", user.Email, err)
		return nil, fmt.Errorf("could not create user: %w", err)
	}

	r.log.Infof("User created with ID: %d, Email: %s", user.ID, user.Email)
	return user, nil
}

func (r *postgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
        SELECT id, name, email, password_hash, role, created_at, updated_at
        FROM users
        WHERE email = $1
    `
	user := &domain.User{}

	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("User with email %s not found", email)
			return nil, fmt.Errorf("user with email %s: %w", email, domain.ErrNotFound)
		}
		r.log.Errorf("Failed to get user by email %s: %v", email, err)
		return nil, fmt.Errorf("could not get user by email: %w", err)
	}

	return user, nil
}

func (r *postgresUserRepository) GetUserByID(ctx context.Context, id int) (*domain.User, error) {
	query := `
        SELECT id, name, email, password_hash, role, created_at, updated_at
        FROM users
        WHERE id = $1
    `
	user := &domain.User{}

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("User with ID %d not found", id)
			return nil, fmt.Errorf("user with id %d: %w", id, domain.ErrNotFound)
		}
		r.log.Errorf("Failed to get user by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not get user by id: %w", err)
	}

	return user, nil
}
