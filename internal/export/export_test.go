package export

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/shoplo-hq/shoplo-go/internal/domain"
	"github.com/shoplo-hq/shoplo-go/pkg/publishers"
	"github.com/shoplo-hq/shoplo-go/pkg/shops"
)

// fakeClient returns canned payloads per collection path.
type fakeClient struct {
	payloads map[string]any
	err      error
	calls    []string
}

func (f *fakeClient) Get(_ context.Context, path string) (any, error) {
	f.calls = append(f.calls, path)
	if f.err != nil {
		return nil, f.err
	}
	return f.payloads[path], nil
}

func clientFactory(client CollectionClient) ClientFactory {
	return func(shops.Profile) (CollectionClient, error) { return client, nil }
}

// fakeEnricher tags summaries so the call is visible in assertions.
type fakeEnricher struct {
	prefix string
}

func (f fakeEnricher) Enrich(_ context.Context, resources []domain.Resource) []domain.Resource {
	out := make([]domain.Resource, len(resources))
	for i, r := range resources {
		r.Summary = f.prefix + r.Summary
		out[i] = r
	}
	return out
}

// fakePublisher records published events and can inject errors.
type fakePublisher struct {
	mu        sync.Mutex
	events    []publishers.Event
	errOnID   string
	successes int
}

func (f *fakePublisher) Publish(_ context.Context, evt publishers.Event) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evt)
	if evt.Resource.ID == f.errOnID {
		return 0, errors.New("boom")
	}
	f.successes++
	return 1, nil
}

// fakeDeduper tracks marked fingerprints by key.
type fakeDeduper struct {
	mu      sync.Mutex
	marks   map[string]string
	failKey string
	failErr error
}

func (f *fakeDeduper) SeenResource(key, fingerprint string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if key == f.failKey && f.failErr != nil {
		return false, f.failErr
	}
	return f.marks[key] == fingerprint, nil
}

func (f *fakeDeduper) MarkResource(key, fingerprint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.marks == nil {
		f.marks = make(map[string]string)
	}
	f.marks[key] = fingerprint
	return nil
}

func testProfile(collections ...string) shops.Profile {
	if len(collections) == 0 {
		collections = []string{"products"}
	}
	return shops.Profile{
		ID:             "shop-1",
		Name:           "Shop One",
		Shop:           "acme",
		Username:       "alice",
		APIKey:         "secret",
		RequestDelayMs: 1,
		Collections:    collections,
	}
}

func TestShopProcessorPublishesFreshResourcesOnly(t *testing.T) {
	oldData := map[string]any{"id": "p1", "name": "Old", "description": "d1"}
	newData := map[string]any{"id": "p2", "name": "New", "description": "d2"}
	client := &fakeClient{payloads: map[string]any{
		"products": map[string]any{"products": []any{oldData, newData}},
	}}

	deduper := &fakeDeduper{marks: map[string]string{
		"shop-1/products/p1": fingerprint(oldData),
	}}
	pub := &fakePublisher{}

	processor := NewShopProcessor(clientFactory(client), fakeEnricher{prefix: "enriched-"}, pub, nil, deduper)

	if err := processor.Process(context.Background(), testProfile()); err != nil {
		t.Fatalf("Process: %v", err)
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(pub.events))
	}
	evt := pub.events[0]
	if evt.ShopID != "shop-1" || evt.ShopName != "Shop One" {
		t.Fatalf("unexpected event shop fields %+v", evt)
	}
	if evt.Resource.ID != "p2" || evt.Resource.Summary != "enriched-d2" {
		t.Fatalf("unexpected resource %+v", evt.Resource)
	}
	if deduper.marks["shop-1/products/p2"] != fingerprint(newData) {
		t.Fatalf("MarkResource not called for fresh resource")
	}
}

func TestShopProcessorAggregatesPublishErrors(t *testing.T) {
	client := &fakeClient{payloads: map[string]any{
		"products": map[string]any{"products": []any{map[string]any{"id": "bad"}}},
	}}
	pub := &fakePublisher{errOnID: "bad"}
	deduper := &fakeDeduper{}
	processor := NewShopProcessor(clientFactory(client), nil, pub, nil, deduper)

	err := processor.Process(context.Background(), testProfile())
	if err == nil || !strings.Contains(err.Error(), "bad") {
		t.Fatalf("expected error mentioning bad resource, got %v", err)
	}
	if len(deduper.marks) != 0 {
		t.Fatalf("failed publish must leave the resource unmarked, got %v", deduper.marks)
	}
}

func TestShopProcessorRepublishesChangedResources(t *testing.T) {
	client := &fakeClient{payloads: map[string]any{
		"products": map[string]any{"products": []any{map[string]any{"id": "p1", "name": "Old"}}},
	}}
	pub := &fakePublisher{}
	deduper := &fakeDeduper{}
	processor := NewShopProcessor(clientFactory(client), nil, pub, nil, deduper)

	if err := processor.Process(context.Background(), testProfile()); err != nil {
		t.Fatalf("first Process: %v", err)
	}
	if err := processor.Process(context.Background(), testProfile()); err != nil {
		t.Fatalf("second Process: %v", err)
	}
	if len(pub.events) != 1 {
		t.Fatalf("unchanged resource republished, %d events", len(pub.events))
	}

	// A changed payload produces a new fingerprint and must go out again.
	client.payloads["products"] = map[string]any{"products": []any{map[string]any{"id": "p1", "name": "Renamed"}}}
	if err := processor.Process(context.Background(), testProfile()); err != nil {
		t.Fatalf("third Process: %v", err)
	}
	if len(pub.events) != 2 {
		t.Fatalf("expected changed resource to republish, %d events", len(pub.events))
	}
}

func TestShopProcessorHonorsItemsKeyOverride(t *testing.T) {
	client := &fakeClient{payloads: map[string]any{
		"catalog": map[string]any{"entries": []any{map[string]any{"id": "e1"}}},
	}}
	pub := &fakePublisher{}
	profile := testProfile("catalog")
	profile.Config = map[string]any{"items_key": "entries"}

	processor := NewShopProcessor(clientFactory(client), nil, pub, nil, &fakeDeduper{})
	if err := processor.Process(context.Background(), profile); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(pub.events) != 1 || pub.events[0].Resource.ID != "e1" {
		t.Fatalf("expected entry e1 published, got %+v", pub.events)
	}
}

func TestShopProcessorContinuesAcrossCollections(t *testing.T) {
	client := &fakeClient{payloads: map[string]any{
		"products": map[string]any{"wrong_key": []any{}},
		"orders":   map[string]any{"orders": []any{map[string]any{"id": "o1"}}},
	}}
	pub := &fakePublisher{}
	processor := NewShopProcessor(clientFactory(client), nil, pub, nil, &fakeDeduper{})

	err := processor.Process(context.Background(), testProfile("products", "orders"))
	if err == nil || !strings.Contains(err.Error(), "products") {
		t.Fatalf("expected products extraction error, got %v", err)
	}
	if len(client.calls) != 2 {
		t.Fatalf("expected both collections fetched, got %v", client.calls)
	}
	if len(pub.events) != 1 || pub.events[0].Resource.Collection != "orders" {
		t.Fatalf("expected order published despite products failure, got %+v", pub.events)
	}
}

func TestFilterNewResourcesKeepsLookupFailures(t *testing.T) {
	deduper := &fakeDeduper{
		marks:   map[string]string{"shop-1/products/skip": "fp-skip"},
		failKey: "shop-1/products/error",
		failErr: errors.New("lookup failed"),
	}
	processor := NewShopProcessor(nil, nil, nil, nil, deduper)
	resources := []domain.Resource{
		{ID: "keep", Collection: "products", Fingerprint: "fp-keep"},
		{ID: "skip", Collection: "products", Fingerprint: "fp-skip"},
		{ID: "error", Collection: "products", Fingerprint: "fp-error"},
	}

	fresh := processor.filterNewResources(testProfile(), resources)
	if len(fresh) != 2 {
		t.Fatalf("expected 2 resources after filter, got %d", len(fresh))
	}
	if fresh[0].ID != "keep" || fresh[1].ID != "error" {
		t.Fatalf("unexpected filter result %#v", fresh)
	}
}

func TestServiceRunAllCancelsEarly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &fakeClient{}
	svc := NewService(clientFactory(client), nil, nil, nil)
	errs := svc.runAll(ctx, []shops.Profile{testProfile()})
	if len(errs) != 0 {
		t.Fatalf("expected no errors on cancelled context, got %v", errs)
	}
	if len(client.calls) != 0 {
		t.Fatalf("expected no fetches on cancelled context, got %v", client.calls)
	}
}

func TestServiceRunRequiresShops(t *testing.T) {
	svc := NewService(clientFactory(&fakeClient{}), nil, nil, nil)
	if err := svc.Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error when shops list empty")
	}
}

func TestServiceRunAggregatesShopErrors(t *testing.T) {
	client := &fakeClient{payloads: map[string]any{
		"products": map[string]any{"products": []any{map[string]any{"id": "p1", "description": "<p>Fine knit</p>"}}},
	}}
	factory := func(p shops.Profile) (CollectionClient, error) {
		if p.ID == "shop-2" {
			return nil, errors.New("no credentials")
		}
		return client, nil
	}
	pub := &fakePublisher{}
	svc := NewService(factory, pub, nil, nil)

	broken := testProfile()
	broken.ID = "shop-2"

	err := svc.Run(context.Background(), []shops.Profile{testProfile(), broken})
	if err == nil || !strings.Contains(err.Error(), "shop-2") {
		t.Fatalf("expected shop-2 failure surfaced, got %v", err)
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected healthy shop exported, got %d events", len(pub.events))
	}
	if pub.events[0].Resource.Summary != "Fine knit" {
		t.Fatalf("expected html description flattened, got %q", pub.events[0].Resource.Summary)
	}
}
