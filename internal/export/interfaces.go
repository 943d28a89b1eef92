package export

import (
	"context"

	"github.com/shoplo-hq/shoplo-go/internal/domain"
	"github.com/shoplo-hq/shoplo-go/pkg/publishers"
	"github.com/shoplo-hq/shoplo-go/pkg/shops"
)

// CollectionClient is the slice of the platform API client the exporter needs.
type CollectionClient interface {
	Get(ctx context.Context, path string) (any, error)
}

// ClientFactory builds a collection client for a shop profile.
type ClientFactory func(profile shops.Profile) (CollectionClient, error)

// SummaryEnricher rewrites embedded description markup into plain-text summaries.
type SummaryEnricher interface {
	Enrich(ctx context.Context, resources []domain.Resource) []domain.Resource
}

// EventPublisher publishes exported resources downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Deduper tracks exported resource fingerprints.
type Deduper interface {
	SeenResource(key, fingerprint string) (bool, error)
	MarkResource(key, fingerprint string) error
}
