package responder

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/bellavista/menu-api/pkg/menu"
	"github.com/bellavista/menu-api/pkg/repository"
	"github.com/bellavista/menu-api/pkg/store"
	"github.com/bellavista/menu-api/pkg/version"
)

func setup(t *testing.T) (*Responder, *repository.Repository) {
	t.Helper()
	s := store.NewMemoryStore()
	tracker := version.NewTracker(s, zerolog.Nop())
	repo := repository.New(s, tracker, zerolog.Nop())
	return New(repo, tracker, zerolog.Nop()), repo
}

func seedItems(t *testing.T, repo *repository.Repository) {
	t.Helper()
	ctx := context.Background()
	items := []menu.Item{
		{Name: "Margherita Pizza", Description: "Tomato, mozzarella, basil", Active: true, Vegetarian: true, CategoryID: "pizza"},
		{Name: "Pepperoni Pizza", Description: "Tomato, mozzarella, pepperoni", Active: true, CategoryID: "pizza"},
		{Name: "Vegan Burger", Description: "Plant-based patty", Active: true, Vegan: true, CategoryID: "burgers"},
	}
	for _, it := range items {
		if _, err := repo.SaveItem(ctx, it); err != nil {
			t.Fatalf("SaveItem failed: %v", err)
		}
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	payload := ItemsPayload{
		Items: []menu.Item{{ID: "1", Name: "Margherita"}},
		Count: 1,
	}

	a, err := Fingerprint(3, "items", payload)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	b, err := Fingerprint(3, "items", payload)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if a != b {
		t.Errorf("identical inputs produced different fingerprints: %s vs %s", a, b)
	}
}

func TestFingerprint_SensitiveToInputs(t *testing.T) {
	payload := ItemsPayload{Items: []menu.Item{{ID: "1", Name: "Margherita"}}, Count: 1}
	base, _ := Fingerprint(3, "items", payload)

	changedVersion, _ := Fingerprint(4, "items", payload)
	if changedVersion == base {
		t.Error("version change did not change fingerprint")
	}

	changedResource, _ := Fingerprint(3, "categories", payload)
	if changedResource == base {
		t.Error("resource change did not change fingerprint")
	}

	changedData, _ := Fingerprint(3, "items", ItemsPayload{
		Items: []menu.Item{{ID: "1", Name: "Quattro Formaggi"}},
		Count: 1,
	})
	if changedData == base {
		t.Error("data change did not change fingerprint")
	}
}

func TestFingerprint_QuotedETagForm(t *testing.T) {
	fp, err := Fingerprint(1, "items", ItemsPayload{})
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if len(fp) < 3 || fp[0] != '"' || fp[len(fp)-1] != '"' {
		t.Errorf("fingerprint %s is not a quoted ETag", fp)
	}
}

func TestRespond_FullThenNotModified(t *testing.T) {
	r, repo := setup(t)
	seedItems(t, repo)
	ctx := context.Background()
	sel := Selector{Resource: ResourceItems}

	// No prior fingerprint: full payload.
	first, err := r.Respond(ctx, sel, "")
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if first.NotModified {
		t.Fatal("first read must not be not-modified")
	}
	payload, ok := first.Payload.(ItemsPayload)
	if !ok {
		t.Fatalf("payload type %T", first.Payload)
	}
	if payload.Count != 3 {
		t.Errorf("count = %d, want 3", payload.Count)
	}

	// Same fingerprint presented back: empty not-modified result.
	second, err := r.Respond(ctx, sel, first.Fingerprint)
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if !second.NotModified {
		t.Error("matching fingerprint did not short-circuit")
	}
	if second.Payload != nil {
		t.Error("not-modified result carries a payload")
	}
	if second.Fingerprint != first.Fingerprint {
		t.Error("fingerprint changed with no data change")
	}
	if second.Version != first.Version {
		t.Error("version changed with no mutation")
	}
}

func TestRespond_StaleFingerprintGetsFullPayload(t *testing.T) {
	r, repo := setup(t)
	seedItems(t, repo)
	ctx := context.Background()
	sel := Selector{Resource: ResourceItems}

	first, err := r.Respond(ctx, sel, "")
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}

	// A mutation bumps the version; the old fingerprint must stop matching.
	if _, err := repo.SaveItem(ctx, menu.Item{Name: "Tiramisu", Active: true}); err != nil {
		t.Fatalf("SaveItem failed: %v", err)
	}

	second, err := r.Respond(ctx, sel, first.Fingerprint)
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if second.NotModified {
		t.Fatal("stale fingerprint produced not-modified")
	}
	if second.Fingerprint == first.Fingerprint {
		t.Error("fingerprint unchanged across a mutation")
	}
	if second.Version <= first.Version {
		t.Errorf("version did not advance: %d -> %d", first.Version, second.Version)
	}
	if second.Payload.(ItemsPayload).Count != 4 {
		t.Errorf("count = %d, want 4", second.Payload.(ItemsPayload).Count)
	}
}

func TestRespond_MalformedFingerprintIsNoKnowledge(t *testing.T) {
	r, repo := setup(t)
	seedItems(t, repo)

	res, err := r.Respond(context.Background(), Selector{Resource: ResourceItems}, "garbage-not-an-etag")
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if res.NotModified {
		t.Error("malformed fingerprint matched")
	}
	if res.Payload == nil {
		t.Error("malformed fingerprint did not get full payload")
	}
}

func TestRespond_ByCategory(t *testing.T) {
	r, repo := setup(t)
	seedItems(t, repo)

	res, err := r.Respond(context.Background(), Selector{Resource: ResourceItems, CategoryID: "pizza"}, "")
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	payload := res.Payload.(ItemsPayload)
	if payload.Count != 2 {
		t.Errorf("count = %d, want 2", payload.Count)
	}
	for _, it := range payload.Items {
		if it.CategoryID != "pizza" {
			t.Errorf("item %s outside requested category", it.Name)
		}
	}
}

// By-category and all-items responses differ in data, so their
// fingerprints must differ even at the same version.
func TestRespond_SelectorsGetDistinctFingerprints(t *testing.T) {
	r, repo := setup(t)
	seedItems(t, repo)
	ctx := context.Background()

	all, err := r.Respond(ctx, Selector{Resource: ResourceItems}, "")
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	pizza, err := r.Respond(ctx, Selector{Resource: ResourceItems, CategoryID: "pizza"}, "")
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if all.Fingerprint == pizza.Fingerprint {
		t.Error("different selections share a fingerprint")
	}
}

func TestRespond_SearchVegetarianSynonym(t *testing.T) {
	r, repo := setup(t)
	ctx := context.Background()

	for _, it := range []menu.Item{
		{Name: "Vegetarian Platter", Description: "Grilled vegetables", Active: true},
		{Name: "Garden Bowl", Description: "Greens and grains", Active: true, Vegetarian: true},
		{Name: "Steak", Description: "Ribeye", Active: true},
	} {
		if _, err := repo.SaveItem(ctx, it); err != nil {
			t.Fatalf("SaveItem failed: %v", err)
		}
	}

	res, err := r.Respond(ctx, Selector{Resource: ResourceItems, Query: "vegetarian"}, "")
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	payload := res.Payload.(ItemsPayload)
	if payload.Count != 2 {
		t.Fatalf("count = %d, want 2 (substring match + flag match)", payload.Count)
	}
}

func TestRespond_Modifiers(t *testing.T) {
	r, repo := setup(t)
	ctx := context.Background()

	g, err := repo.SaveModifierGroup(ctx, menu.ModifierGroup{Name: "Toppings", MaxSelect: 3})
	if err != nil {
		t.Fatalf("SaveModifierGroup failed: %v", err)
	}
	if _, err := repo.SaveModifier(ctx, menu.Modifier{GroupID: g.ID, Name: "Olives", PriceDelta: 150, Active: true}); err != nil {
		t.Fatalf("SaveModifier failed: %v", err)
	}
	if _, err := repo.SaveModifier(ctx, menu.Modifier{GroupID: g.ID, Name: "Discontinued", Active: false}); err != nil {
		t.Fatalf("SaveModifier failed: %v", err)
	}

	res, err := r.Respond(ctx, Selector{Resource: ResourceModifiers}, "")
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	payload := res.Payload.(ModifiersPayload)
	if len(payload.ModifierGroups) != 1 {
		t.Errorf("groups = %d, want 1", len(payload.ModifierGroups))
	}
	if len(payload.Modifiers) != 1 {
		t.Errorf("modifiers = %d, want 1 (inactive excluded)", len(payload.Modifiers))
	}
}

func TestRespond_Version(t *testing.T) {
	r, repo := setup(t)
	ctx := context.Background()

	res, err := r.Respond(ctx, Selector{Resource: ResourceVersion}, "")
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if res.Version != 1 {
		t.Errorf("initial version = %d, want 1", res.Version)
	}

	if _, err := repo.SaveItem(ctx, menu.Item{Name: "a", Active: true}); err != nil {
		t.Fatalf("SaveItem failed: %v", err)
	}

	// The version resource supports the same conditional flow.
	after, err := r.Respond(ctx, Selector{Resource: ResourceVersion}, res.Fingerprint)
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if after.NotModified {
		t.Error("version fingerprint still matched after a bump")
	}

	again, err := r.Respond(ctx, Selector{Resource: ResourceVersion}, after.Fingerprint)
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if !again.NotModified {
		t.Error("version fingerprint did not match with no intervening bump")
	}
}

func TestRespond_UnknownResource(t *testing.T) {
	r, _ := setup(t)

	if _, err := r.Respond(context.Background(), Selector{Resource: "specials"}, ""); err == nil {
		t.Error("unknown resource did not error")
	}
}
