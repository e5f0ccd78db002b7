package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"furnistore/internal/domain"

	"github.com/sirupsen/logrus"
)

type postgresAddressRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresAddressRepository(db *sql.DB, logger *logrus.Logger) domain.AddressRepository {
	return &postgresAddressRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresAddressRepository) ListByUser(ctx context.Context, userID int) ([]domain.Address, error) {
	query := `
        SELECT id, user_id, title, recipient, line, city, postal_code, country, phone, is_default
        FROM addresses
        WHERE user_id = $1
        ORDER BY is_default DESC, id DESC
    `
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.log.Errorf("Failed to list addresses for user %d: %v", userID, err)
		return nil, fmt.Errorf("could not retrieve addresses: %w", err)
	}
	defer rows.Close()

	var addresses []domain.Address
	for rows.Next() {
		var a domain.Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.Title, &a.Recipient, &a.Line, &a.City, &a.PostalCode, &a.Country, &a.Phone, &a.IsDefault); err != nil {
			r.log.Errorf("Failed to scan address row for user %d: %v", userID, err)
			return nil, fmt.Errorf("error scanning address: %w", err)
		}
		addresses = append(addresses, a)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during address iteration for user %d: %v", userID, err)
		return nil, fmt.Errorf("error iterating addresses: %w", err)
	}

	if addresses == nil {
		addresses = []domain.Address{}
	}
	return addresses, nil
}

// Create demotes the user's current default and inserts the new row in one
// transaction, so the single-default invariant holds even under
// concurrent requests.
func (r *postgresAddressRepository) Create(ctx context.Context, address *domain.Address) (*domain.Address, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.log.Errorf("Failed to begin address transaction: %v", err)
		return nil, fmt.Errorf("could not start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.log.Errorf("Failed to rollback address transaction: %v", rbErr)
			}
		}
	}()

	if address.IsDefault {
		if err = demoteDefault(ctx, tx, address.UserID); err != nil {
			r.log.Errorf("Failed to demote default address for user %d: %v", address.UserID, err)
			return nil, err
		}
	}

	query := `
        INSERT INTO addresses (user_id, title, recipient, line, city, postal_code, country, phone, is_default)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id
    `
	err = tx.QueryRowContext(ctx, query,
		address.UserID, address.Title, address.Recipient, address.Line,
		address.City, address.PostalCode, address.Country, address.Phone, address.IsDefault,
	).Scan(&address.ID)
	if err != nil {
		r.log.Errorf("Failed to insert address for user %d: %v", address.UserID, err)
		return nil, fmt.Errorf("could not create address: %w", err)
	}

	if err = tx.Commit(); err != nil {
		r.log.Errorf("Failed to commit address transaction for user %d: %v", address.UserID, err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.log.Infof("Address %d created for user %d (default=%v)", address.ID, address.UserID, address.IsDefault)
	return address, nil
}

func (r *postgresAddressRepository) Update(ctx context.Context, id, userID int, updates map[string]interface{}) (*domain.Address, error) {
	if len(updates) == 0 {
		return r.getByID(ctx, id, userID)
	}

	setDefault := false
	if v, ok := updates["is_default"]; ok {
		if b, ok := v.(bool); ok && b {
			setDefault = true
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.log.Errorf("Failed to begin address update transaction: %v", err)
		return nil, fmt.Errorf("could not start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.log.Errorf("Failed to rollback address update transaction: %v", rbErr)
			}
		}
	}()

	if setDefault {
		if err = demoteDefault(ctx, tx, userID); err != nil {
			r.log.Errorf("Failed to demote default address for user %d: %v", userID, err)
			return nil, err
		}
	}

	setClauses := []string{}
	args := []interface{}{}
	argCounter := 1

	for key, value := range updates {
		switch key {
		case "title", "recipient", "line", "city", "postal_code", "country", "phone", "is_default":
			setClauses = append(setClauses, fmt.Sprintf("%s = $%d", key, argCounter))
			args = append(args, value)
			argCounter++
		default:
			r.log.Warnf("Skipping unknown field '%s' in address update %d", key, id)
		}
	}

	if len(setClauses) == 0 {
		err = fmt.Errorf("%w: no valid address fields provided", domain.ErrInvalidInput)
		return nil, err
	}

	query := "UPDATE addresses SET " + strings.Join(setClauses, ", ") +
		fmt.Sprintf(" WHERE id = $%d AND user_id = $%d", argCounter, argCounter+1)
	args = append(args, id, userID)

	var result sql.Result
	result, err = tx.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.Errorf("Failed to update address %d for user %d: %v", id, userID, err)
		return nil, fmt.Errorf("could not update address: %w", err)
	}

	rowsAffected, raErr := result.RowsAffected()
	if raErr == nil && rowsAffected == 0 {
		err = fmt.Errorf("address with id %d: %w", id, domain.ErrNotFound)
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		r.log.Errorf("Failed to commit address update transaction for %d: %v", id, err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return r.getByID(ctx, id, userID)
}

func (r *postgresAddressRepository) Delete(ctx context.Context, id, userID int) error {
	// Unconditional delete; orders copy shipping fields so no order ever
	// references the address row.
	query := `DELETE FROM addresses WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		r.log.Errorf("Failed to delete address %d for user %d: %v", id, userID, err)
		return fmt.Errorf("could not delete address: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Failed to get rows affected after deleting address %d: %v", id, err)
		return fmt.Errorf("could not confirm address deletion: %w", err)
	}
	if rowsAffected == 0 {
		r.log.Warnf("Attempted to delete non-existent address %d for user %d", id, userID)
		return fmt.Errorf("address with id %d: %w", id, domain.ErrNotFound)
	}
	r.log.Infof("Address %d deleted for user %d", id, userID)
	return nil
}

func (r *postgresAddressRepository) getByID(ctx context.Context, id, userID int) (*domain.Address, error) {
	query := `
        SELECT id, user_id, title, recipient, line, city, postal_code, country, phone, is_default
        FROM addresses
        WHERE id = $1 AND user_id = $2
    `
	a := &domain.Address{}
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&a.ID, &a.UserID, &a.Title, &a.Recipient, &a.Line, &a.City, &a.PostalCode, &a.Country, &a.Phone, &a.IsDefault,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("address with id %d: %w", id, domain.ErrNotFound)
		}
		r.log.Errorf("Failed to get address %d for user %d: %v", id, userID, err)
		return nil, fmt.Errorf("could not retrieve address: %w", err)
	}
	return a, nil
}

func demoteDefault(ctx context.Context, tx *sql.Tx, userID int) error {
	_, err := tx.ExecContext(ctx, `UPDATE addresses SET is_default = false WHERE user_id = $1 AND is_default = true`, userID)
	if err != nil {
		return fmt.Errorf("could not demote existing default address: %w", err)
	}
	return nil
}
