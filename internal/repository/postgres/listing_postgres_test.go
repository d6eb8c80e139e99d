package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tarvee/internal/model"
)

var listingCols = []string{"id", "title", "description", "category", "condition", "price", "image_url", "owner_id", "created_at"}

func TestListingPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewListingPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	in := &model.Listing{
		Title:       "OS Notes",
		Description: "Printed lecture notes.",
		Category:    "os",
		Condition:   model.ConditionPreLoved,
		Price:       4.5,
		ImageURL:    "https://cdn.example/books/u1/1_notes.png",
		OwnerID:     "u1",
	}

	mock.ExpectQuery("INSERT INTO listings").
		WithArgs(in.Title, in.Description, in.Category, "pre-loved", in.Price, in.ImageURL, in.OwnerID).
		WillReturnRows(sqlmock.NewRows(listingCols).
			AddRow("gen-id", in.Title, in.Description, in.Category, "pre-loved", in.Price, in.ImageURL, in.OwnerID, now))

	out, err := repo.Create(ctx, in)

	require.NoError(t, err)
	assert.Equal(t, "gen-id", out.ID)
	assert.Equal(t, model.ConditionPreLoved, out.Condition)
	assert.Equal(t, now, out.CreatedAt)
	assert.Empty(t, in.ID, "input must not be mutated")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingPostgres_Create_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO listings").WillReturnError(errors.New("check constraint"))

	out, err := NewListingPostgres(db).Create(context.Background(), &model.Listing{})
	assert.Error(t, err)
	assert.Nil(t, out)
}

func TestListingPostgres_All(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewListingPostgres(db)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		now := time.Now().UTC()
		rows := sqlmock.NewRows(listingCols).
			AddRow("2", "OS Notes", "d", "os", "new", 3.0, "u", "o", now).
			AddRow("1", "Algorithms 101", "d", "dsa", "pre-loved", 9.99, "u", "o", now.Add(-time.Hour))
		mock.ExpectQuery("SELECT (.+) FROM listings ORDER BY").WillReturnRows(rows)

		items, err := repo.All(ctx)

		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "OS Notes", items[0].Title)
		assert.Equal(t, 9.99, items[1].Price)
	})

	t.Run("empty", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM listings").WillReturnRows(sqlmock.NewRows(listingCols))

		items, err := repo.All(ctx)

		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("query error", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM listings").WillReturnError(errors.New("conn reset"))

		items, err := repo.All(ctx)

		assert.Error(t, err)
		assert.Nil(t, items)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
