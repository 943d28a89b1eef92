package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shoplo-hq/shoplo-go/internal/domain"
	"github.com/shoplo-hq/shoplo-go/internal/logger"
	"github.com/shoplo-hq/shoplo-go/pkg/publishers"
	"github.com/shoplo-hq/shoplo-go/pkg/shops"
)

// ShopProcessor runs the export steps for a single shop: fetch each
// configured collection, enrich the resources, filter out the ones already
// exported, publish the rest and mark them.
type ShopProcessor struct {
	clients  ClientFactory
	enricher SummaryEnricher
	fanout   EventPublisher
	log      logger.Logger
	deduper  Deduper
}

// NewShopProcessor wires a processor from its collaborators.
func NewShopProcessor(clients ClientFactory, enricher SummaryEnricher, fanout EventPublisher, log logger.Logger, deduper Deduper) *ShopProcessor {
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &ShopProcessor{
		clients:  clients,
		enricher: enricher,
		fanout:   fanout,
		log:      log,
		deduper:  deduper,
	}
}

// Process exports every configured collection of one shop, throttling between
// requests. Cancellation stops the pass without an error; unmarked resources
// are picked up again on the next run.
func (p *ShopProcessor) Process(ctx context.Context, profile shops.Profile) error {
	client, err := p.clients(profile)
	if err != nil {
		return fmt.Errorf("build client for shop %s: %w", profile.ID, err)
	}

	delay := profile.RequestDelay()
	var errs []error
	for i, collection := range profile.Collections {
		if ctx.Err() != nil {
			break
		}
		if i > 0 {
			if err := waitDelay(ctx, delay); err != nil {
				break
			}
		}

		if err := p.processCollection(ctx, client, profile, collection); err != nil {
			errs = append(errs, fmt.Errorf("collection %s: %w", collection, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("export shop %s: %w", profile.ID, errors.Join(errs...))
	}
	return nil
}

func (p *ShopProcessor) processCollection(ctx context.Context, client CollectionClient, profile shops.Profile, collection string) error {
	payload, err := client.Get(ctx, collection)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	name := collectionField(collection)
	resources, err := extractResources(payload, shops.Keys(profile, name), name)
	if err != nil {
		return fmt.Errorf("extract resources: %w", err)
	}

	if p.enricher != nil {
		resources = p.enricher.Enrich(ctx, resources)
	}

	fresh := p.filterNewResources(profile, resources)

	published := 0
	var errs []error
	for _, res := range fresh {
		if ctx.Err() != nil {
			break
		}
		if err := p.publishResource(ctx, profile, res); err != nil {
			errs = append(errs, err)
			continue
		}
		published++
	}

	p.log.InfoObj("collection export completed", "collection_result", map[string]any{
		"shop_id":    profile.ID,
		"collection": collection,
		"collected":  len(resources),
		"published":  published,
		"skipped":    len(resources) - len(fresh),
	})
	return errors.Join(errs...)
}

// filterNewResources drops resources the store has seen with an unchanged
// fingerprint. Lookup failures keep the resource in the pass.
func (p *ShopProcessor) filterNewResources(profile shops.Profile, resources []domain.Resource) []domain.Resource {
	if p.deduper == nil {
		return resources
	}

	fresh := make([]domain.Resource, 0, len(resources))
	for _, res := range resources {
		key := resourceKey(profile.ID, res)
		seen, err := p.deduper.SeenResource(key, res.Fingerprint)
		if err != nil {
			p.log.WarnObj("dedup lookup failed", "dedup_error", map[string]any{
				"resource_key": key,
				"error":        err.Error(),
			})
			fresh = append(fresh, res)
			continue
		}
		if seen {
			continue
		}
		fresh = append(fresh, res)
	}
	return fresh
}

func (p *ShopProcessor) publishResource(ctx context.Context, profile shops.Profile, res domain.Resource) error {
	if p.fanout != nil {
		evt := publishers.NewEvent(profile.ID, profile.Name, res)
		if _, err := p.fanout.Publish(ctx, evt); err != nil {
			return fmt.Errorf("publish resource %s: %w", res.ID, err)
		}
	}

	if p.deduper != nil {
		if err := p.deduper.MarkResource(resourceKey(profile.ID, res), res.Fingerprint); err != nil {
			return fmt.Errorf("mark resource %s: %w", res.ID, err)
		}
	}

	return nil
}

func resourceKey(shopID string, res domain.Resource) string {
	return shopID + "/" + res.Collection + "/" + res.ID
}

// waitDelay sleeps for the per-shop throttle, aborting early on cancellation.
func waitDelay(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
