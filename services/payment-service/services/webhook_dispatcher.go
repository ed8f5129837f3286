package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/devhours/backend/services/payment-service/models"
)

// WebhookDispatcher serializes webhook delivery per transaction id. Enqueue
// refuses a transaction that already has a delivery in flight, so attempt
// N+1 can only start after attempt N's whole retry loop has finished.
type WebhookDispatcher struct {
	sender *WebhookSender

	mu       sync.Mutex
	inflight map[uuid.UUID]struct{}
	wg       sync.WaitGroup
}

func NewWebhookDispatcher(sender *WebhookSender) *WebhookDispatcher {
	return &WebhookDispatcher{
		sender:   sender,
		inflight: make(map[uuid.UUID]struct{}),
	}
}

// Enqueue starts delivery for txn on its own goroutine. Returns false if a
// delivery for the same transaction is already running.
func (d *WebhookDispatcher) Enqueue(txn *models.Transaction) bool {
	d.mu.Lock()
	if _, busy := d.inflight[txn.ID]; busy {
		d.mu.Unlock()
		return false
	}
	d.inflight[txn.ID] = struct{}{}
	d.mu.Unlock()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer d.release(txn.ID)
		// Delivery outlives the request that triggered it; no cancellation.
		_ = d.sender.Deliver(context.Background(), txn)
	}()
	return true
}

func (d *WebhookDispatcher) release(id uuid.UUID) {
	d.mu.Lock()
	delete(d.inflight, id)
	d.mu.Unlock()
}

// Wait blocks until all in-flight deliveries finish. Used in tests and on
// shutdown.
func (d *WebhookDispatcher) Wait() {
	d.wg.Wait()
}
