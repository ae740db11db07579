package worker

import (
	"context"

	"storefront/internal/broker"
	"storefront/internal/catalog"
	"storefront/internal/models"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// CatalogWorker consumes catalog change events published by admin mutations
// and triggers a full cache reload for each one. The cache is never patched
// in place: reload is the only refresh path.
type CatalogWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	cache        *catalog.Cache
	logger       *zap.Logger
}

// NewCatalogWorker creates a new catalog worker
func NewCatalogWorker(consumer *broker.Consumer, cache *catalog.Cache) *CatalogWorker {
	w := &CatalogWorker{
		consumer: consumer,
		cache:    cache,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnCatalogChanged(w.handleCatalogChanged)
	w.eventHandler = eventHandler

	return w
}

func (w *CatalogWorker) handleCatalogChanged(ctx context.Context, event *models.CatalogChangedEvent) error {
	w.logger.Info("Catalog changed, reloading cache",
		zap.String("collection", event.Collection),
		zap.String("doc_id", event.DocID),
		zap.String("action", event.Action))

	return w.cache.Reload(ctx)
}

// Start starts the worker
func (w *CatalogWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting catalog worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *CatalogWorker) Stop() error {
	w.logger.Info("Stopping catalog worker")
	return w.consumer.Close()
}
