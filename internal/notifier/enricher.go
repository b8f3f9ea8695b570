package notifier

import (
	"context"
	"sync"

	"orderpipeline/internal/catalog"
	"orderpipeline/internal/models"
	"orderpipeline/internal/util"

	"go.uber.org/zap"
)

// IdentityLookup resolves a user id to an identity record.
type IdentityLookup interface {
	FindUserByID(ctx context.Context, id string) (*models.User, error)
}

// UnknownUsername is the placeholder used when identity resolution fails.
const UnknownUsername = "Unknown"

// Enricher handles order_created events: it fills in any missing username
// and line-item names via the identity and catalog collaborators, then
// triggers the outbound notification. A failed individual lookup degrades
// that one field to a placeholder instead of aborting the notification.
type Enricher struct {
	identity IdentityLookup
	catalog  catalog.Querier
	notifier Notifier
	logger   *zap.Logger
}

// NewEnricher creates a new event enricher
func NewEnricher(identity IdentityLookup, catalog catalog.Querier, notifier Notifier) *Enricher {
	return &Enricher{
		identity: identity,
		catalog:  catalog,
		notifier: notifier,
		logger:   util.GetLogger(),
	}
}

// HandleEvent processes one parsed envelope. Only order_created triggers a
// notification; other event types are observed and skipped. Errors from the
// notification collaborator are logged, never returned, so the consume loop
// is unaffected.
func (e *Enricher) HandleEvent(ctx context.Context, event *models.OrderEvent) error {
	util.EventsConsumedTotal.WithLabelValues(event.EventType).Inc()

	if event.EventType != models.EventTypeOrderCreated {
		e.logger.Info("ignoring order event",
			zap.String("event_type", event.EventType),
			zap.String("order_id", event.Order.ID))
		return nil
	}

	order := event.Order
	e.enrich(ctx, &order)

	if err := e.notifier.Notify(ctx, &order); err != nil {
		util.NotificationsFailedTotal.Inc()
		e.logger.Error("notification delivery failed",
			zap.String("order_id", order.ID),
			zap.Error(err))
		return nil
	}

	util.NotificationsSentTotal.Inc()
	return nil
}

// enrich resolves the username and missing line-item names. Item lookups
// run concurrently; the notification waits for all of them.
func (e *Enricher) enrich(ctx context.Context, order *models.Order) {
	if order.Username == "" {
		user, err := e.identity.FindUserByID(ctx, order.UserID)
		if err != nil {
			util.EnrichmentFallbacksTotal.WithLabelValues("username").Inc()
			e.logger.Warn("failed to resolve username, using placeholder",
				zap.String("user_id", order.UserID),
				zap.Error(err))
			order.Username = UnknownUsername
		} else {
			order.Username = user.Username
		}
	}

	var wg sync.WaitGroup
	for i := range order.Items {
		item := &order.Items[i]
		if item.Name != "" {
			continue
		}
		wg.Add(1)
		go func(item *models.LineItem) {
			defer wg.Done()
			product, err := e.catalog.GetProduct(ctx, item.ProductID)
			if err != nil {
				util.EnrichmentFallbacksTotal.WithLabelValues("product_name").Inc()
				e.logger.Warn("failed to resolve product name, using placeholder",
					zap.String("product_id", item.ProductID),
					zap.Error(err))
				item.Name = item.ProductID
				return
			}
			item.Name = product.Name
		}(item)
	}
	wg.Wait()
}
