package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bellavista/menu-api/internal/testutil"
	"github.com/bellavista/menu-api/pkg/api"
	"github.com/bellavista/menu-api/pkg/menu"
	"github.com/bellavista/menu-api/pkg/repository"
	"github.com/bellavista/menu-api/pkg/responder"
	"github.com/bellavista/menu-api/pkg/store"
	"github.com/bellavista/menu-api/pkg/version"
)

const (
	itemsPath   = "/api/menu/items"
	versionPath = "/api/menu/version"
)

// setupBackend runs the real server stack over a memory store behind a
// request-counting mock, so tests can assert exactly which fetches the
// client performed.
func setupBackend(t *testing.T) (*testutil.MockMenuAPI, *repository.Repository) {
	t.Helper()

	s := store.NewMemoryStore()
	tracker := version.NewTracker(s, zerolog.Nop())
	repo := repository.New(s, tracker, zerolog.Nop())
	res := responder.New(repo, tracker, zerolog.Nop())
	srv := api.NewServer(res, repo, zerolog.Nop())

	mock := testutil.NewMockMenuAPI(srv.Router())
	t.Cleanup(mock.Close)

	return mock, repo
}

func newClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	cfg := DefaultConfig(baseURL)
	// Keep failure-path tests fast.
	cfg.Retry = RetryConfig{
		MaxAttempts:       1,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        time.Millisecond,
		BackoffMultiplier: 1,
	}
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func seedItems(t *testing.T, repo *repository.Repository, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := repo.SaveItem(context.Background(), menu.Item{Name: name, Active: true}); err != nil {
			t.Fatalf("SaveItem failed: %v", err)
		}
	}
}

func TestNew_RequiresBaseURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("New accepted an empty base URL")
	}
}

func TestRead_FirstFetchIsFull(t *testing.T) {
	mock, repo := setupBackend(t)
	seedItems(t, repo, "Margherita")
	c := newClient(t, mock.URL())

	data, err := c.ReadItems(context.Background())
	if err != nil {
		t.Fatalf("ReadItems failed: %v", err)
	}

	var payload struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Count != 1 {
		t.Errorf("count = %d, want 1", payload.Count)
	}
	if got := mock.PathCount(itemsPath); got != 1 {
		t.Errorf("items fetches = %d, want 1", got)
	}
}

// Two reads with no intervening mutation: the second read resolves the
// version cheaply and returns byte-identical data with zero payload fetches.
func TestRead_CacheHitSkipsPayloadFetch(t *testing.T) {
	mock, repo := setupBackend(t)
	seedItems(t, repo, "Margherita", "Calzone")
	c := newClient(t, mock.URL())
	ctx := context.Background()

	first, err := c.ReadItems(ctx)
	if err != nil {
		t.Fatalf("first ReadItems failed: %v", err)
	}

	second, err := c.ReadItems(ctx)
	if err != nil {
		t.Fatalf("second ReadItems failed: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("cache hit returned different bytes")
	}
	if got := mock.PathCount(itemsPath); got != 1 {
		t.Errorf("items fetches = %d, want 1 (second read must not refetch payload)", got)
	}
	if mock.PathCount(versionPath) == 0 {
		t.Error("cache hit skipped the version check round trip")
	}
}

// A mutation between reads bumps the version; the second read must fetch
// and return the fresh payload.
func TestRead_VersionBumpInvalidates(t *testing.T) {
	mock, repo := setupBackend(t)
	seedItems(t, repo, "Margherita")
	c := newClient(t, mock.URL())
	ctx := context.Background()

	first, err := c.ReadItems(ctx)
	if err != nil {
		t.Fatalf("first ReadItems failed: %v", err)
	}

	seedItems(t, repo, "Tiramisu")

	second, err := c.ReadItems(ctx)
	if err != nil {
		t.Fatalf("second ReadItems failed: %v", err)
	}
	if bytes.Equal(first, second) {
		t.Error("read after mutation returned stale bytes")
	}

	var payload struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(second, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Count != 2 {
		t.Errorf("count = %d, want 2", payload.Count)
	}
	if got := mock.PathCount(itemsPath); got != 2 {
		t.Errorf("items fetches = %d, want 2", got)
	}
}

// Scenario from the cache design: full fetch, mutation, fresh fetch, then
// a third read served entirely from cache.
func TestRead_FullScenario(t *testing.T) {
	mock, repo := setupBackend(t)
	seedItems(t, repo, "Margherita")
	c := newClient(t, mock.URL())
	ctx := context.Background()

	if _, err := c.ReadItems(ctx); err != nil {
		t.Fatalf("read 1 failed: %v", err)
	}
	f1 := c.Entry(ResourceItems).Fingerprint

	seedItems(t, repo, "Calzone")

	if _, err := c.ReadItems(ctx); err != nil {
		t.Fatalf("read 2 failed: %v", err)
	}
	f2 := c.Entry(ResourceItems).Fingerprint
	if f1 == f2 {
		t.Error("fingerprint unchanged across mutation")
	}

	third, err := c.ReadItems(ctx)
	if err != nil {
		t.Fatalf("read 3 failed: %v", err)
	}
	if got := mock.PathCount(itemsPath); got != 2 {
		t.Errorf("items fetches = %d, want 2 (third read must be a cache hit)", got)
	}

	var payload struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(third, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Count != 2 {
		t.Errorf("count = %d, want 2", payload.Count)
	}
}

// When the version endpoint is down the client falls through to a
// conditional payload fetch; with unchanged data that comes back 304 and
// the cached bytes are kept.
func TestRead_ConditionalRefetchOn304(t *testing.T) {
	mock, repo := setupBackend(t)
	seedItems(t, repo, "Margherita")
	c := newClient(t, mock.URL())
	ctx := context.Background()

	first, err := c.ReadItems(ctx)
	if err != nil {
		t.Fatalf("first ReadItems failed: %v", err)
	}
	before := c.Entry(ResourceItems).FetchedAt

	mock.SetResponse(versionPath, testutil.MockResponse{StatusCode: http.StatusInternalServerError})

	second, err := c.ReadItems(ctx)
	if err != nil {
		t.Fatalf("second ReadItems failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("304 refetch changed the data")
	}
	if got := mock.ConditionalCount(); got == 0 {
		t.Error("no conditional request was sent")
	}
	if !c.Entry(ResourceItems).FetchedAt.After(before) {
		t.Error("304 did not refresh entry bookkeeping")
	}
}

func TestRead_StaleFallbackWhenUnreachable(t *testing.T) {
	mock, repo := setupBackend(t)
	seedItems(t, repo, "Margherita")
	c := newClient(t, mock.URL())
	ctx := context.Background()

	first, err := c.ReadItems(ctx)
	if err != nil {
		t.Fatalf("ReadItems failed: %v", err)
	}

	mock.Close()

	second, err := c.ReadItems(ctx)
	if err != nil {
		t.Fatalf("read with cache must not fail when network is down: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("fallback returned different bytes")
	}
}

func TestRead_NoCacheNoNetworkFails(t *testing.T) {
	mock, _ := setupBackend(t)
	c := newClient(t, mock.URL())
	mock.Close()

	_, err := c.ReadItems(context.Background())
	if err == nil {
		t.Fatal("read with no cache and no network did not fail")
	}
	if !errors.Is(err, ErrNoCache) {
		t.Errorf("error = %v, want ErrNoCache", err)
	}
}

func TestClear_ForcesFullFetch(t *testing.T) {
	mock, repo := setupBackend(t)
	seedItems(t, repo, "Margherita")
	c := newClient(t, mock.URL())
	ctx := context.Background()

	if _, err := c.ReadItems(ctx); err != nil {
		t.Fatalf("ReadItems failed: %v", err)
	}
	c.Clear(ResourceItems)

	if _, err := c.ReadItems(ctx); err != nil {
		t.Fatalf("ReadItems failed: %v", err)
	}
	if got := mock.PathCount(itemsPath); got != 2 {
		t.Errorf("items fetches = %d, want 2 after Clear", got)
	}
}

func TestClearAll_DropsVersionEntryToo(t *testing.T) {
	mock, repo := setupBackend(t)
	seedItems(t, repo, "Margherita")
	c := newClient(t, mock.URL())
	ctx := context.Background()

	if _, err := c.ReadItems(ctx); err != nil {
		t.Fatalf("ReadItems failed: %v", err)
	}
	if _, err := c.ReadItems(ctx); err != nil {
		t.Fatalf("ReadItems failed: %v", err)
	}

	c.ClearAll()
	if c.Entry(ResourceItems) != nil {
		t.Error("ClearAll left an items entry")
	}

	if _, err := c.ReadItems(ctx); err != nil {
		t.Fatalf("ReadItems failed: %v", err)
	}
	if got := mock.PathCount(itemsPath); got != 2 {
		t.Errorf("items fetches = %d, want 2 (read after ClearAll is full)", got)
	}
}

func TestRead_RetriesServerErrors(t *testing.T) {
	mock, repo := setupBackend(t)
	seedItems(t, repo, "Margherita")

	cfg := DefaultConfig(mock.URL())
	cfg.Retry = RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2,
	}
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Fail twice, then let the real backend answer.
	attempts := 0
	mock.SetHandler(itemsPath, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		mock.Backend().ServeHTTP(w, r)
	})

	if _, err := c.ReadItems(context.Background()); err != nil {
		t.Fatalf("ReadItems failed despite retries: %v", err)
	}
	if attempts != 3 {
		t.Errorf("handler calls = %d, want 3 (two failures, one success)", attempts)
	}
}

func TestReadCategoriesAndModifiers(t *testing.T) {
	mock, repo := setupBackend(t)
	ctx := context.Background()

	if _, err := repo.SaveCategory(ctx, menu.Category{Name: "Mains", Active: true}); err != nil {
		t.Fatalf("SaveCategory failed: %v", err)
	}
	g, err := repo.SaveModifierGroup(ctx, menu.ModifierGroup{Name: "Sides"})
	if err != nil {
		t.Fatalf("SaveModifierGroup failed: %v", err)
	}
	if _, err := repo.SaveModifier(ctx, menu.Modifier{GroupID: g.ID, Name: "Fries", Active: true}); err != nil {
		t.Fatalf("SaveModifier failed: %v", err)
	}

	c := newClient(t, mock.URL())

	cats, err := c.ReadCategories(ctx)
	if err != nil {
		t.Fatalf("ReadCategories failed: %v", err)
	}
	var catPayload struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(cats, &catPayload); err != nil {
		t.Fatalf("unmarshal categories: %v", err)
	}
	if catPayload.Count != 1 {
		t.Errorf("categories count = %d, want 1", catPayload.Count)
	}

	mods, err := c.ReadModifiers(ctx)
	if err != nil {
		t.Fatalf("ReadModifiers failed: %v", err)
	}
	var modPayload struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(mods, &modPayload); err != nil {
		t.Fatalf("unmarshal modifiers: %v", err)
	}
	if modPayload.Count != 2 {
		t.Errorf("modifiers count = %d, want 2 (group + modifier)", modPayload.Count)
	}
}
