package notification

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
)

// Sender abstracts the web push transport so the pool can be tested with a
// fake.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender sends real web push messages.
type WebPushSender struct{}

func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// pushPayload is what the service worker on the client receives.
type pushPayload struct {
	Kind      Kind   `json:"kind"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	BookingID string `json:"booking_id"`
}

// WorkerPool fans notifications out to a user's registered push endpoints
// without blocking the request path that produced them.
type WorkerPool struct {
	size    int
	jobs    chan *Notification
	repo    Repository
	options *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a worker pool. Call Start to launch the workers.
func NewWorkerPool(size int, repo Repository, options *webpush.Options) *WorkerPool {
	if size < 1 {
		size = 1
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan *Notification, size*16),
		repo:    repo,
		options: options,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines. They exit when ctx is cancelled.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	for {
		select {
		case n := <-wp.jobs:
			wp.push(ctx, n)
		case <-ctx.Done():
			log.Printf("push worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a notification for delivery. It never blocks: when the
// queue is full the push is dropped (the record is already persisted, so the
// user still sees it in-app).
func (wp *WorkerPool) Dispatch(n *Notification) {
	select {
	case wp.jobs <- n:
	default:
		log.Printf("push queue full, dropping push for notification %s", n.ID)
	}
}

func (wp *WorkerPool) push(ctx context.Context, n *Notification) {
	subs, err := wp.repo.ListSubscriptionsForUser(ctx, n.UserID)
	if err != nil {
		log.Printf("failed to fetch push subscriptions for user %s: %v", n.UserID, err)
		return
	}
	if len(subs) == 0 {
		return
	}

	payload, err := json.Marshal(pushPayload{
		Kind:      n.Kind,
		Title:     n.Title,
		Body:      n.Body,
		BookingID: n.BookingID,
	})
	if err != nil {
		log.Printf("failed to marshal push payload for notification %s: %v", n.ID, err)
		return
	}

	for _, sub := range subs {
		wp.send(ctx, sub, payload)
	}
}

func (wp *WorkerPool) send(ctx context.Context, sub *PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.options)
	if err != nil {
		log.Printf("push to %s failed: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// The push service tells us when a subscription is gone for good.
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		if err := wp.repo.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			log.Printf("failed to prune expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
