package client

import (
	"encoding/json"
	"time"
)

// Resource identifies a cacheable menu resource type.
type Resource string

const (
	// ResourceItems is the menu items collection.
	ResourceItems Resource = "items"

	// ResourceCategories is the category list.
	ResourceCategories Resource = "categories"

	// ResourceModifiers is the modifier groups and modifiers collection.
	ResourceModifiers Resource = "modifiers"

	// resourceVersion is the version document, cached like any other
	// resource but only consulted internally for the cheap staleness check.
	resourceVersion Resource = "version"
)

// resourcePaths maps resources to their read endpoints.
var resourcePaths = map[Resource]string{
	ResourceItems:      "/api/menu/items",
	ResourceCategories: "/api/menu/categories",
	ResourceModifiers:  "/api/menu/modifiers",
	resourceVersion:    "/api/menu/version",
}

// Entry is one cached resource payload with its revalidation bookkeeping.
type Entry struct {
	// Data is the raw JSON payload as served.
	Data json.RawMessage

	// Fingerprint is the quoted ETag the payload was served with.
	Fingerprint string

	// Version is the menu version the payload was served at.
	Version int64

	// FetchedAt is when the entry was last fetched or revalidated.
	FetchedAt time.Time
}

// clone returns a copy so callers cannot mutate the cached entry. The Data
// slice is shared; entries treat payloads as immutable.
func (e *Entry) clone() *Entry {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}
