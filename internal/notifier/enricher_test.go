package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"orderpipeline/internal/apperr"
	"orderpipeline/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIdentity struct {
	users map[string]*models.User
}

func (s *stubIdentity) FindUserByID(_ context.Context, id string) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "user not found: "+id)
	}
	return user, nil
}

type stubQuerier struct {
	mu       sync.Mutex
	products map[string]*models.Product
	calls    int
}

func (s *stubQuerier) GetProduct(_ context.Context, id string) (*models.Product, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	product, ok := s.products[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "product not found: "+id)
	}
	return product, nil
}

type stubNotifier struct {
	mu     sync.Mutex
	orders []models.Order
	err    error
}

func (s *stubNotifier) Notify(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, *order)
	return s.err
}

func newTestEnricher() (*Enricher, *stubQuerier, *stubNotifier) {
	identity := &stubIdentity{users: map[string]*models.User{
		"u1": {ID: "u1", Username: "alice"},
	}}
	querier := &stubQuerier{products: map[string]*models.Product{
		"p1": {ID: "p1", Name: "Keyboard"},
		"p2": {ID: "p2", Name: "Mouse"},
	}}
	sink := &stubNotifier{}
	return NewEnricher(identity, querier, sink), querier, sink
}

func createdEvent(order models.Order) *models.OrderEvent {
	return &models.OrderEvent{
		EventID:   "ev-1",
		EventType: models.EventTypeOrderCreated,
		Timestamp: time.Now().UTC(),
		Order:     order,
	}
}

func TestHandleEventNotifiesWithSnapshot(t *testing.T) {
	enricher, querier, sink := newTestEnricher()

	err := enricher.HandleEvent(context.Background(), createdEvent(models.Order{
		ID:       "o-1",
		UserID:   "u1",
		Username: "alice",
		Items: []models.LineItem{
			{ProductID: "p1", Quantity: 2, Price: 9.0, Name: "Keyboard"},
		},
		TotalAmount: 18.0,
	}))
	require.NoError(t, err)

	require.Len(t, sink.orders, 1)
	assert.Equal(t, "alice", sink.orders[0].Username)
	assert.Equal(t, 0, querier.calls, "complete snapshots need no catalog lookups")
}

func TestHandleEventResolvesMissingFields(t *testing.T) {
	enricher, querier, sink := newTestEnricher()

	err := enricher.HandleEvent(context.Background(), createdEvent(models.Order{
		ID:     "o-2",
		UserID: "u1",
		Items: []models.LineItem{
			{ProductID: "p1", Quantity: 1},
			{ProductID: "p2", Quantity: 2},
		},
	}))
	require.NoError(t, err)

	require.Len(t, sink.orders, 1)
	assert.Equal(t, "alice", sink.orders[0].Username)
	assert.Equal(t, "Keyboard", sink.orders[0].Items[0].Name)
	assert.Equal(t, "Mouse", sink.orders[0].Items[1].Name)
	assert.Equal(t, 2, querier.calls)
}

func TestHandleEventDegradesToPlaceholders(t *testing.T) {
	enricher, _, sink := newTestEnricher()

	err := enricher.HandleEvent(context.Background(), createdEvent(models.Order{
		ID:     "o-3",
		UserID: "nobody",
		Items: []models.LineItem{
			{ProductID: "ghost", Quantity: 1},
			{ProductID: "p1", Quantity: 1},
		},
	}))
	require.NoError(t, err)

	// One failed lookup degrades that field only; the notification still
	// goes out with everything else resolved.
	require.Len(t, sink.orders, 1)
	assert.Equal(t, UnknownUsername, sink.orders[0].Username)
	assert.Equal(t, "ghost", sink.orders[0].Items[0].Name)
	assert.Equal(t, "Keyboard", sink.orders[0].Items[1].Name)
}

func TestHandleEventIgnoresOtherEventTypes(t *testing.T) {
	enricher, _, sink := newTestEnricher()

	err := enricher.HandleEvent(context.Background(), &models.OrderEvent{
		EventID:   "ev-2",
		EventType: models.EventTypeOrderStatusUpdated,
		Order:     models.Order{ID: "o-4"},
	})
	require.NoError(t, err)
	assert.Empty(t, sink.orders)
}

func TestHandleEventSwallowsNotifierErrors(t *testing.T) {
	enricher, _, sink := newTestEnricher()
	sink.err = errors.New("smtp down")

	err := enricher.HandleEvent(context.Background(), createdEvent(models.Order{
		ID: "o-5", UserID: "u1", Username: "alice",
	}))
	assert.NoError(t, err, "delivery failures must not reach the consume loop")
}

func TestHandleEventPerformsNoDedup(t *testing.T) {
	enricher, _, sink := newTestEnricher()
	event := createdEvent(models.Order{ID: "o-6", UserID: "u1", Username: "alice"})

	require.NoError(t, enricher.HandleEvent(context.Background(), event))
	require.NoError(t, enricher.HandleEvent(context.Background(), event))

	// At-least-once delivery: the consumer notifies per delivery and leaves
	// idempotency to the notification collaborator.
	assert.Len(t, sink.orders, 2)
}
