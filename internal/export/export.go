package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/shoplo-hq/shoplo-go/internal/logger"
	"github.com/shoplo-hq/shoplo-go/internal/storage"
	"github.com/shoplo-hq/shoplo-go/pkg/shops"
)

// Service coordinates export passes across the configured shops.
type Service struct {
	processor *ShopProcessor
	log       logger.Logger
}

// NewService wires an export service with the API client factory, the
// publisher fanout and the dedup store.
func NewService(clients ClientFactory, fanout EventPublisher, log logger.Logger, store storage.Store) *Service {
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Service{
		processor: NewShopProcessor(clients, NewEnricher(log), fanout, log, store),
		log:       log,
	}
}

// Run executes an export pass for all given shop profiles.
func (s *Service) Run(ctx context.Context, profiles []shops.Profile) error {
	if s == nil || s.processor == nil {
		return fmt.Errorf("export service is not initialized")
	}

	if len(profiles) == 0 {
		return fmt.Errorf("no shops configured for export")
	}

	errs := s.runAll(ctx, profiles)
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

func (s *Service) runAll(ctx context.Context, profiles []shops.Profile) []error {
	errs := make([]error, 0, len(profiles))

	for _, profile := range profiles {
		if ctx.Err() != nil {
			break
		}
		if err := s.processor.Process(ctx, profile); err != nil {
			errs = append(errs, err)
			s.log.ErrorObj("shop export failed", "shop_error", map[string]any{
				"shop_id": profile.ID,
				"error":   err.Error(),
			})
		}
	}

	return errs
}
