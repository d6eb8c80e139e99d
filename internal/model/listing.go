package model

import "time"

// Listing is a single book or set of notes offered for sale.
// ID and CreatedAt are assigned by the store on write; CreatedAt is only used for ordering.
type Listing struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Condition   Condition `json:"condition"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"imageUrl"`
	OwnerID     string    `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Condition describes the physical state of a listed item.
type Condition string

const (
	ConditionNew      Condition = "new"
	ConditionPreLoved Condition = "pre-loved"
)

// ConditionOption pairs a condition value with its display label.
type ConditionOption struct {
	Value Condition `json:"value"`
	Label string    `json:"label"`
}

// Conditions lists the accepted conditions in display order.
var Conditions = []ConditionOption{
	{Value: ConditionNew, Label: "New"},
	{Value: ConditionPreLoved, Label: "Pre-loved"},
}

// Valid reports whether c is one of Conditions.
func (c Condition) Valid() bool {
	for _, o := range Conditions {
		if o.Value == c {
			return true
		}
	}
	return false
}
