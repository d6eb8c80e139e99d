package postgres

import (
	"context"
	"database/sql"

	"tarvee/internal/model"
	"tarvee/internal/repository"
)

// ListingPostgres is a PostgreSQL implementation of repository.ListingRepository.
// IDs and timestamps come from column defaults so the database is the only clock.
type ListingPostgres struct {
	db *sql.DB
}

// NewListingPostgres creates a new ListingPostgres repository.
func NewListingPostgres(db *sql.DB) *ListingPostgres {
	return &ListingPostgres{db: db}
}

var _ repository.ListingRepository = (*ListingPostgres)(nil)

const listingColumns = `id, title, description, category, condition, price, image_url, owner_id, created_at`

// Create inserts a listing row and returns the stored record.
func (r *ListingPostgres) Create(ctx context.Context, l *model.Listing) (*model.Listing, error) {
	const q = `
		INSERT INTO listings (title, description, category, condition, price, image_url, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + listingColumns
	row := r.db.QueryRowContext(ctx, q,
		l.Title,
		l.Description,
		l.Category,
		string(l.Condition),
		l.Price,
		l.ImageURL,
		l.OwnerID,
	)
	out, err := scanListing(row)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// All returns every listing, newest first.
func (r *ListingPostgres) All(ctx context.Context) ([]model.Listing, error) {
	const q = `SELECT ` + listingColumns + ` FROM listings ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanListing(s scanner) (model.Listing, error) {
	var (
		l         model.Listing
		condition string
	)
	if err := s.Scan(
		&l.ID,
		&l.Title,
		&l.Description,
		&l.Category,
		&condition,
		&l.Price,
		&l.ImageURL,
		&l.OwnerID,
		&l.CreatedAt,
	); err != nil {
		return model.Listing{}, err
	}
	l.Condition = model.Condition(condition)
	return l, nil
}
