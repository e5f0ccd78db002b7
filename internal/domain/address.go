package domain

import "context"

type Address struct {
	ID         int    `json:"id"`
	UserID     int    `json:"user_id"`
	Title      string `json:"title"`
	Recipient  string `json:"recipient"`
	Line       string `json:"line"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
	IsDefault  bool   `json:"is_default"`
}

type AddressRepository interface {
	ListByUser(ctx context.Context, userID int) ([]Address, error)
	// Create demotes any existing default for the user in the same
	// transaction when the new address is flagged default.
	Create(ctx context.Context, address *Address) (*Address, error)
	Update(ctx context.Context, id, userID int, updates map[string]interface{}) (*Address, error)
	Delete(ctx context.Context, id, userID int) error
}
