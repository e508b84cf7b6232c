// Package responder evaluates menu read requests against the current store
// state and version counter, producing either a full payload or a
// not-modified result when the caller's fingerprint still matches.
//
// Each call is a pure function of (selector, store state, caller
// fingerprint) at call time; nothing is cached between calls.
package responder

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/bellavista/menu-api/pkg/menu"
	"github.com/bellavista/menu-api/pkg/repository"
	"github.com/bellavista/menu-api/pkg/version"
)

// Resource identifies a fingerprinted menu resource type.
type Resource string

const (
	ResourceItems      Resource = "items"
	ResourceCategories Resource = "categories"
	ResourceModifiers  Resource = "modifiers"
	ResourceVersion    Resource = "version"
)

var (
	responsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "menu_responses_total",
		Help: "Total menu read responses by resource and outcome",
	}, []string{"resource", "outcome"}) // outcome: "full", "not_modified"

	notModifiedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "menu_not_modified_total",
		Help: "Total menu reads short-circuited with a matching fingerprint",
	})
)

// Selector describes which resource a read wants.
type Selector struct {
	Resource Resource

	// CategoryID narrows an items read to one category.
	CategoryID string

	// Query is a free-text item search. CategoryID wins when both are set.
	Query string
}

// ItemsPayload is the response body for items reads.
type ItemsPayload struct {
	Items []menu.Item `json:"items"`
	Count int         `json:"count"`
}

// CategoriesPayload is the response body for categories reads.
type CategoriesPayload struct {
	Categories []menu.Category `json:"categories"`
	Count      int             `json:"count"`
}

// ModifiersPayload is the response body for modifiers reads: groups and
// their modifiers travel together.
type ModifiersPayload struct {
	ModifierGroups []menu.ModifierGroup `json:"modifier_groups"`
	Modifiers      []menu.Modifier      `json:"modifiers"`
	Count          int                  `json:"count"`
}

// Result is the outcome of evaluating a read. When NotModified is set the
// payload is omitted and only the fingerprint and version travel back.
type Result struct {
	Resource    Resource
	NotModified bool
	Fingerprint string
	Version     int64
	Payload     any
}

// Responder assembles read results from the repository and version tracker.
type Responder struct {
	repo     *repository.Repository
	versions *version.Tracker
	logger   zerolog.Logger
}

// New creates a responder.
func New(repo *repository.Repository, versions *version.Tracker, logger zerolog.Logger) *Responder {
	return &Responder{
		repo:     repo,
		versions: versions,
		logger:   logger.With().Str("component", "responder").Logger(),
	}
}

// Respond resolves the selector against current store state, fingerprints
// the payload, and short-circuits to a not-modified result when the caller
// already holds the current fingerprint. A missing or malformed caller
// fingerprint never matches and yields the full payload. Store errors are
// returned as-is; there is no empty-result fallback on the server side.
func (r *Responder) Respond(ctx context.Context, sel Selector, callerFingerprint string) (*Result, error) {
	payload, err := r.resolve(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", sel.Resource, err)
	}

	v, err := r.versions.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve version: %w", err)
	}

	fp, err := Fingerprint(v, string(sel.Resource), payload)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Resource:    sel.Resource,
		Fingerprint: fp,
		Version:     v,
	}

	if callerFingerprint != "" && callerFingerprint == fp {
		res.NotModified = true
		notModifiedTotal.Inc()
		responsesTotal.WithLabelValues(string(sel.Resource), "not_modified").Inc()
		r.logger.Debug().
			Str("resource", string(sel.Resource)).
			Int64("version", v).
			Msg("Fingerprint match, responding not modified")
		return res, nil
	}

	res.Payload = payload
	responsesTotal.WithLabelValues(string(sel.Resource), "full").Inc()
	return res, nil
}

// resolve queries the repository for the selector's payload.
func (r *Responder) resolve(ctx context.Context, sel Selector) (any, error) {
	switch sel.Resource {
	case ResourceItems:
		var items []menu.Item
		var err error
		switch {
		case sel.CategoryID != "":
			items, err = r.repo.ItemsByCategory(ctx, sel.CategoryID)
		case sel.Query != "":
			items, err = r.repo.SearchItems(ctx, sel.Query)
		default:
			items, err = r.repo.ActiveItems(ctx)
		}
		if err != nil {
			return nil, err
		}
		return ItemsPayload{Items: items, Count: len(items)}, nil

	case ResourceCategories:
		cats, err := r.repo.Categories(ctx)
		if err != nil {
			return nil, err
		}
		return CategoriesPayload{Categories: cats, Count: len(cats)}, nil

	case ResourceModifiers:
		groups, err := r.repo.ModifierGroups(ctx)
		if err != nil {
			return nil, err
		}
		mods, err := r.repo.Modifiers(ctx)
		if err != nil {
			return nil, err
		}
		return ModifiersPayload{
			ModifierGroups: groups,
			Modifiers:      mods,
			Count:          len(groups) + len(mods),
		}, nil

	case ResourceVersion:
		rec, err := r.versions.Get(ctx)
		if err != nil {
			return nil, err
		}
		return rec, nil

	default:
		return nil, fmt.Errorf("unknown resource %q", sel.Resource)
	}
}
