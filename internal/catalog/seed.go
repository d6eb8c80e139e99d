package catalog

import (
	"time"

	"tarvee/internal/model"
)

const demoOwnerID = "demo-seller"

// DemoListings returns the static demo catalog, stamped relative to now so the
// newest entry is an hour old.
func DemoListings(now time.Time) []model.Listing {
	type row struct {
		id, title, description, category string
		condition                        model.Condition
		price                            float64
		ageHours                         int
	}
	rows := []row{
		{"demo-1", "Introduction to Algorithms (CLRS)", "Third edition, light pencil notes in the graph chapters.", "dsa", model.ConditionPreLoved, 45.00, 1},
		{"demo-2", "Operating System Concepts", "Galvin 10th edition, spine intact, no highlighting.", "os", model.ConditionPreLoved, 30.50, 5},
		{"demo-3", "Database System Concepts", "Korth, brand new and still in shrink wrap.", "dbms", model.ConditionNew, 52.00, 12},
		{"demo-4", "Computer Networking: A Top-Down Approach", "Kurose and Ross, 8th edition with solved exercises.", "cn", model.ConditionPreLoved, 28.75, 20},
		{"demo-5", "Head First Design Patterns", "Great for OOP revision, cover slightly worn.", "oop", model.ConditionPreLoved, 18.00, 30},
		{"demo-6", "Hands-On Machine Learning", "Géron, second edition, unread.", "ai-ml", model.ConditionNew, 60.00, 48},
		{"demo-7", "DSA Handwritten Notes", "Full semester notes covering trees, graphs and dynamic programming.", "dsa", model.ConditionNew, 5.00, 72},
		{"demo-8", "OS Notes: Scheduling and Memory", "Printed lecture notes with annotated diagrams.", "os", model.ConditionPreLoved, 4.50, 96},
		{"demo-9", "Discrete Mathematics and Its Applications", "Rosen, a few dog-eared pages.", "misc", model.ConditionPreLoved, 25.00, 120},
	}

	out := make([]model.Listing, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.Listing{
			ID:          r.id,
			Title:       r.title,
			Description: r.description,
			Category:    r.category,
			Condition:   r.condition,
			Price:       r.price,
			ImageURL:    "https://placehold.co/600x800?text=" + r.category,
			OwnerID:     demoOwnerID,
			CreatedAt:   now.Add(-time.Duration(r.ageHours) * time.Hour).UTC(),
		})
	}
	return out
}
