package app

import (
	"context"
	"fmt"
	"time"

	"github.com/shoplo-hq/shoplo-go/internal/config"
	"github.com/shoplo-hq/shoplo-go/internal/export"
	"github.com/shoplo-hq/shoplo-go/internal/logger"
	"github.com/shoplo-hq/shoplo-go/internal/storage"
	"github.com/shoplo-hq/shoplo-go/pkg/publishers"
	"github.com/shoplo-hq/shoplo-go/pkg/shoplo"
	"github.com/shoplo-hq/shoplo-go/pkg/shops"
)

// Exporter represents the export toolkit runtime. It manages the export loop,
// coordinating between shop profiles, the export service, and publishers. It
// also handles storage initialization and cleanup.
type Exporter struct {
	cfg            *config.Config
	shopReg        *shops.Registry
	fanout         *publishers.Fanout
	exportService  *export.Service
	exportInterval time.Duration
	log            logger.Logger
	store          storage.Store
}

// NewExporter builds an exporter runtime from config files.
func NewExporter(ctx context.Context, cfg *config.Config, log logger.Logger) (*Exporter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	shopReg, err := shops.LoadRegistry(cfg.ShopsFile)
	if err != nil {
		return nil, fmt.Errorf("load shops registry: %w", err)
	}
	shopList := shopReg.Enabled()
	shopIDs := make([]string, 0, len(shopList))
	for _, p := range shopList {
		shopIDs = append(shopIDs, p.ID)
	}
	log.InfoObj("shops registry loaded", "shops_meta", map[string]any{
		"count": len(shopIDs),
		"ids":   shopIDs,
	})

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubRegistry := publishers.DefaultRegistry()
	pubClients, err := publishers.BuildAll(ctx, pubRegistry, enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients, log)
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count": fanout.Size(),
		"ids":   fanout.IDs(),
	})

	storeOpts := storage.Options{
		ResourceTTL:     cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storeOpts)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"resource_ttl_seconds":     int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	exportService := export.NewService(apiClientFactory(), fanout, log, store)

	return &Exporter{
		cfg:            cfg,
		shopReg:        shopReg,
		fanout:         fanout,
		exportService:  exportService,
		exportInterval: cfg.ExportInterval,
		log:            log,
		store:          store,
	}, nil
}

// apiClientFactory builds platform API clients per shop profile, passing the
// process-wide sugared logger through to the HTTP transport when present.
func apiClientFactory() export.ClientFactory {
	return func(profile shops.Profile) (export.CollectionClient, error) {
		clientCfg := profile.ClientConfig()
		if logger.S != nil {
			clientCfg.Logger = logger.S
		}
		return shoplo.New(clientCfg)
	}
}

// Run starts the export loop until the context is cancelled.
func (e *Exporter) Run(ctx context.Context) error {
	if e == nil || e.exportService == nil {
		return fmt.Errorf("exporter is not initialized")
	}
	defer e.closeStore()

	profiles := e.shopReg.Enabled()
	if len(profiles) == 0 {
		e.log.WarnObj("no shops enabled; exporter idle", "shops_file", e.cfg.ShopsFile)
		<-ctx.Done()
		return ctx.Err()
	}

	e.log.InfoObj("export loop starting", "exporter_state", map[string]any{
		"shops_count":      len(profiles),
		"publishers_count": e.fanout.Size(),
		"export_interval":  e.exportInterval.String(),
	})

	if err := e.runOnce(ctx, profiles); err != nil {
		e.log.ErrorObj("initial export failed", "error", err)
	}

	ticker := time.NewTicker(e.exportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.log.InfoObj("export loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := e.runOnce(ctx, profiles); err != nil {
				e.log.ErrorObj("scheduled export failed", "error", err)
			}
		}
	}
}

// runOnce performs a single export pass across all enabled shops.
func (e *Exporter) runOnce(ctx context.Context, profiles []shops.Profile) error {
	start := time.Now()
	e.log.InfoObj("export started", "export_meta", map[string]any{
		"shops_count": len(profiles),
		"started_at":  start.UTC(),
	})
	if err := e.exportService.Run(ctx, profiles); err != nil {
		return err
	}
	e.log.InfoObj("export completed", "export_meta", map[string]any{
		"shops_count": len(profiles),
		"elapsed_ms":  time.Since(start).Milliseconds(),
	})
	return nil
}

// closeStore safely closes the storage backend, logging any errors encountered.
func (e *Exporter) closeStore() {
	if e == nil || e.store == nil {
		return
	}
	if err := e.store.Close(); err != nil {
		e.log.ErrorObj("storage close failed", "error", err)
	}
}
