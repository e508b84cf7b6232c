package menu

import "strings"

// FilterActive returns the items with Active set, preserving order.
func FilterActive(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Active {
			out = append(out, it)
		}
	}
	return out
}

// FilterByCategory returns the active items belonging to the given category.
func FilterByCategory(items []Item, categoryID string) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Active && it.CategoryID == categoryID {
			out = append(out, it)
		}
	}
	return out
}

// Search returns the active items matching the free-text query.
//
// An item matches when the query is a case-insensitive substring of its
// name or description. Queries containing "vegetarian" additionally match
// items flagged Vegetarian, and queries containing "vegan" match items
// flagged Vegan. The substring and flag rules are additive: an item named
// "Vegetarian Platter" matches a "vegetarian" query through either rule.
func Search(items []Item, query string) []Item {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return FilterActive(items)
	}

	wantVegetarian := strings.Contains(q, "vegetarian")
	wantVegan := strings.Contains(q, "vegan")

	out := make([]Item, 0, len(items))
	for _, it := range items {
		if !it.Active {
			continue
		}
		if matchesQuery(it, q) ||
			(wantVegetarian && it.Vegetarian) ||
			(wantVegan && it.Vegan) {
			out = append(out, it)
		}
	}
	return out
}

func matchesQuery(it Item, q string) bool {
	return strings.Contains(strings.ToLower(it.Name), q) ||
		strings.Contains(strings.ToLower(it.Description), q)
}
