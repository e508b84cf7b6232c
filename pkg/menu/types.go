// Package menu defines the menu entity types and the query rules
// (active filtering, category filtering, free-text search) applied to them.
package menu

import "time"

// Item is a single orderable menu item.
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`

	// Price in cents to avoid float rounding in order math.
	Price int64 `json:"price"`

	CategoryID string `json:"category_id"`
	Active     bool   `json:"active"`
	Vegetarian bool   `json:"vegetarian"`
	Vegan      bool   `json:"vegan"`

	// ModifierGroupIDs references the modifier groups shown for this item.
	ModifierGroupIDs []string `json:"modifier_group_ids,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Category groups items on the public menu.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	SortOrder   int    `json:"sort_order"`
	Active      bool   `json:"active"`
}

// ModifierGroup is a set of modifiers presented together
// (e.g. "Choice of side", "Extra toppings").
type ModifierGroup struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Required  bool   `json:"required"`
	MinSelect int    `json:"min_select"`
	MaxSelect int    `json:"max_select"`
	SortOrder int    `json:"sort_order"`
}

// Modifier is a single selectable option within a group.
type Modifier struct {
	ID      string `json:"id"`
	GroupID string `json:"group_id"`
	Name    string `json:"name"`

	// PriceDelta in cents, added to the item price when selected.
	PriceDelta int64 `json:"price_delta"`

	Active bool `json:"active"`
}

// Announcement is a site banner managed from the back office.
// Announcements are not part of the fingerprinted menu payloads and
// do not participate in menu version bumps.
type Announcement struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	Active   bool      `json:"active"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// Live reports whether the announcement should be shown at the given time.
// Zero StartsAt/EndsAt mean "no bound".
func (a Announcement) Live(now time.Time) bool {
	if !a.Active {
		return false
	}
	if !a.StartsAt.IsZero() && now.Before(a.StartsAt) {
		return false
	}
	if !a.EndsAt.IsZero() && now.After(a.EndsAt) {
		return false
	}
	return true
}
