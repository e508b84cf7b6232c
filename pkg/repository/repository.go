// Package repository is the single write path for menu entities. Every
// mutating method performs the primary document write first and then bumps
// the menu version as a post-commit hook, so no call site can forget the
// cache-busting step. Bump failures are logged, never propagated: the
// version is a best-effort staleness signal, not part of the write.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bellavista/menu-api/pkg/menu"
	"github.com/bellavista/menu-api/pkg/store"
	"github.com/bellavista/menu-api/pkg/version"
)

// Key prefixes per entity kind. The version counter lives under
// menu:meta: (see pkg/version), outside every entity prefix.
const (
	itemPrefix         = "menu:item:"
	categoryPrefix     = "menu:category:"
	modGroupPrefix     = "menu:modgroup:"
	modifierPrefix     = "menu:modifier:"
	announcementPrefix = "menu:announcement:"
)

// Repository stores and retrieves menu entities.
type Repository struct {
	store    store.Store
	versions *version.Tracker
	logger   zerolog.Logger
	now      func() time.Time
}

// New creates a repository over the given store and version tracker.
func New(s store.Store, versions *version.Tracker, logger zerolog.Logger) *Repository {
	return &Repository{
		store:    s,
		versions: versions,
		logger:   logger.With().Str("component", "repository").Logger(),
		now:      time.Now,
	}
}

// bumpVersion is the post-commit hook on every menu-entity mutation.
// The primary write has already committed; a failed bump only delays cache
// busting until the next successful one.
func (r *Repository) bumpVersion(ctx context.Context, entity string) {
	if _, err := r.versions.Increment(ctx); err != nil {
		r.logger.Warn().
			Err(err).
			Str("entity", entity).
			Msg("Menu version bump failed, cache invalidation delayed")
	}
}

func (r *Repository) putDoc(ctx context.Context, key string, v any) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := r.store.Put(ctx, key, doc); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}

// SaveItem creates or updates a menu item. A missing ID is assigned.
func (r *Repository) SaveItem(ctx context.Context, item menu.Item) (menu.Item, error) {
	now := r.now().UTC()
	if item.ID == "" {
		item.ID = uuid.New().String()
		item.CreatedAt = now
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	if err := r.putDoc(ctx, itemPrefix+item.ID, item); err != nil {
		return menu.Item{}, err
	}
	r.bumpVersion(ctx, "item")
	return item, nil
}

// DeleteItem removes a menu item.
func (r *Repository) DeleteItem(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, itemPrefix+id); err != nil {
		return fmt.Errorf("delete item %s: %w", id, err)
	}
	r.bumpVersion(ctx, "item")
	return nil
}

// SaveCategory creates or updates a category.
func (r *Repository) SaveCategory(ctx context.Context, c menu.Category) (menu.Category, error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if err := r.putDoc(ctx, categoryPrefix+c.ID, c); err != nil {
		return menu.Category{}, err
	}
	r.bumpVersion(ctx, "category")
	return c, nil
}

// DeleteCategory removes a category. Items referencing it keep their
// CategoryID; they simply stop matching by-category reads.
func (r *Repository) DeleteCategory(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, categoryPrefix+id); err != nil {
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	r.bumpVersion(ctx, "category")
	return nil
}

// SaveModifierGroup creates or updates a modifier group.
func (r *Repository) SaveModifierGroup(ctx context.Context, g menu.ModifierGroup) (menu.ModifierGroup, error) {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if err := r.putDoc(ctx, modGroupPrefix+g.ID, g); err != nil {
		return menu.ModifierGroup{}, err
	}
	r.bumpVersion(ctx, "modifier_group")
	return g, nil
}

// DeleteModifierGroup removes a modifier group.
func (r *Repository) DeleteModifierGroup(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, modGroupPrefix+id); err != nil {
		return fmt.Errorf("delete modifier group %s: %w", id, err)
	}
	r.bumpVersion(ctx, "modifier_group")
	return nil
}

// SaveModifier creates or updates a modifier.
func (r *Repository) SaveModifier(ctx context.Context, m menu.Modifier) (menu.Modifier, error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if err := r.putDoc(ctx, modifierPrefix+m.ID, m); err != nil {
		return menu.Modifier{}, err
	}
	r.bumpVersion(ctx, "modifier")
	return m, nil
}

// DeleteModifier removes a modifier.
func (r *Repository) DeleteModifier(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, modifierPrefix+id); err != nil {
		return fmt.Errorf("delete modifier %s: %w", id, err)
	}
	r.bumpVersion(ctx, "modifier")
	return nil
}

// SaveAnnouncement creates or updates an announcement. Announcements are
// not part of the fingerprinted menu payloads, so no version bump.
func (r *Repository) SaveAnnouncement(ctx context.Context, a menu.Announcement) (menu.Announcement, error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if err := r.putDoc(ctx, announcementPrefix+a.ID, a); err != nil {
		return menu.Announcement{}, err
	}
	return a, nil
}

// DeleteAnnouncement removes an announcement. No version bump.
func (r *Repository) DeleteAnnouncement(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, announcementPrefix+id); err != nil {
		return fmt.Errorf("delete announcement %s: %w", id, err)
	}
	return nil
}
