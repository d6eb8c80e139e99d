// Package catalog holds the listing read surface and the feed filter.
package catalog

import (
	"context"
	"sort"
	"strings"

	"tarvee/internal/model"
)

// Source is a read-only view over every listing in the catalog.
type Source interface {
	All(ctx context.Context) ([]model.Listing, error)
}

// Query narrows a feed. Zero values match everything.
type Query struct {
	Category string
	Search   string
}

// Normalized trims both fields; whitespace-only values become empty.
func (q Query) Normalized() Query {
	return Query{
		Category: strings.TrimSpace(q.Category),
		Search:   strings.TrimSpace(q.Search),
	}
}

// Filter keeps listings matching q.Category exactly and whose title contains
// q.Search case-insensitively, ordered newest first. Equal timestamps keep
// their input order. The input slice is not modified.
func Filter(listings []model.Listing, q Query) []model.Listing {
	q = q.Normalized()
	needle := strings.ToLower(q.Search)

	out := make([]model.Listing, 0, len(listings))
	for _, l := range listings {
		if q.Category != "" && l.Category != q.Category {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(l.Title), needle) {
			continue
		}
		out = append(out, l)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
