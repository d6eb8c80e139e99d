package repository

import (
	"context"

	"tarvee/internal/model"
)

// ListingRepository defines data access for listings.
// Listings are append-only: there is no update or delete.
type ListingRepository interface {
	// Create inserts a new listing. The store assigns ID and CreatedAt;
	// the returned listing carries the stored values.
	Create(ctx context.Context, l *model.Listing) (*model.Listing, error)

	// All returns every listing. Ordering is not guaranteed.
	All(ctx context.Context) ([]model.Listing, error)
}
