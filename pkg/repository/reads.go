package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/bellavista/menu-api/pkg/menu"
	"github.com/bellavista/menu-api/pkg/store"
)

// listDocs unmarshals every document under prefix, skipping documents
// that fail to decode (logged, not fatal: one corrupt record must not
// take the whole menu down).
func listDocs[T any](ctx context.Context, r *Repository, prefix string) ([]T, error) {
	docs, err := r.store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}

	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := json.Unmarshal(doc, &v); err != nil {
			r.logger.Warn().Err(err).Str("prefix", prefix).Msg("Skipping undecodable document")
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func getDoc[T any](ctx context.Context, r *Repository, key string) (T, error) {
	var v T
	doc, err := r.store.Get(ctx, key)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(doc, &v); err != nil {
		return v, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return v, nil
}

// Item returns a single item by ID, store.ErrNotFound when missing.
func (r *Repository) Item(ctx context.Context, id string) (menu.Item, error) {
	return getDoc[menu.Item](ctx, r, itemPrefix+id)
}

// allItems returns every stored item sorted by name then ID. Store listing
// order is unspecified; sorting here keeps responder payloads (and thus
// fingerprints) deterministic for identical data.
func (r *Repository) allItems(ctx context.Context) ([]menu.Item, error) {
	items, err := listDocs[menu.Item](ctx, r, itemPrefix)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

// ActiveItems returns all active items.
func (r *Repository) ActiveItems(ctx context.Context) ([]menu.Item, error) {
	items, err := r.allItems(ctx)
	if err != nil {
		return nil, err
	}
	return menu.FilterActive(items), nil
}

// ItemsByCategory returns active items in the given category.
func (r *Repository) ItemsByCategory(ctx context.Context, categoryID string) ([]menu.Item, error) {
	items, err := r.allItems(ctx)
	if err != nil {
		return nil, err
	}
	return menu.FilterByCategory(items, categoryID), nil
}

// SearchItems returns active items matching the free-text query.
func (r *Repository) SearchItems(ctx context.Context, query string) ([]menu.Item, error) {
	items, err := r.allItems(ctx)
	if err != nil {
		return nil, err
	}
	return menu.Search(items, query), nil
}

// Category returns a single category by ID.
func (r *Repository) Category(ctx context.Context, id string) (menu.Category, error) {
	return getDoc[menu.Category](ctx, r, categoryPrefix+id)
}

// Categories returns all active categories sorted by sort order then name.
func (r *Repository) Categories(ctx context.Context) ([]menu.Category, error) {
	cats, err := listDocs[menu.Category](ctx, r, categoryPrefix)
	if err != nil {
		return nil, err
	}

	active := cats[:0]
	for _, c := range cats {
		if c.Active {
			active = append(active, c)
		}
	}

	sort.Slice(active, func(i, j int) bool {
		if active[i].SortOrder != active[j].SortOrder {
			return active[i].SortOrder < active[j].SortOrder
		}
		return active[i].Name < active[j].Name
	})
	return active, nil
}

// ModifierGroups returns all modifier groups sorted by sort order then name.
func (r *Repository) ModifierGroups(ctx context.Context) ([]menu.ModifierGroup, error) {
	groups, err := listDocs[menu.ModifierGroup](ctx, r, modGroupPrefix)
	if err != nil {
		return nil, err
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].SortOrder != groups[j].SortOrder {
			return groups[i].SortOrder < groups[j].SortOrder
		}
		return groups[i].Name < groups[j].Name
	})
	return groups, nil
}

// Modifiers returns all active modifiers sorted by group then name.
func (r *Repository) Modifiers(ctx context.Context) ([]menu.Modifier, error) {
	mods, err := listDocs[menu.Modifier](ctx, r, modifierPrefix)
	if err != nil {
		return nil, err
	}

	active := mods[:0]
	for _, m := range mods {
		if m.Active {
			active = append(active, m)
		}
	}

	sort.Slice(active, func(i, j int) bool {
		if active[i].GroupID != active[j].GroupID {
			return active[i].GroupID < active[j].GroupID
		}
		return active[i].Name < active[j].Name
	})
	return active, nil
}

// ActiveAnnouncements returns the announcements currently live, newest
// start first.
func (r *Repository) ActiveAnnouncements(ctx context.Context) ([]menu.Announcement, error) {
	anns, err := listDocs[menu.Announcement](ctx, r, announcementPrefix)
	if err != nil {
		return nil, err
	}

	now := r.now()
	live := anns[:0]
	for _, a := range anns {
		if a.Live(now) {
			live = append(live, a)
		}
	}

	sort.Slice(live, func(i, j int) bool {
		return live[i].StartsAt.After(live[j].StartsAt)
	})
	return live, nil
}

// IsNotFound reports whether err is a missing-document error.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
