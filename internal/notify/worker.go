// Package notify pushes web-push alerts to subscribed operator browsers when
// a banned credential is scanned at a gate.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"rfid-access-backend/internal/store"
)

// Alert describes one banned-scan event.
type Alert struct {
	UserID   int64  `json:"user_id"`
	UserName string `json:"user_name"`
	GateID   int64  `json:"gate_id"`
}

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool manages a pool of workers delivering banned-scan alerts.
type WorkerPool struct {
	size    int
	jobs    chan Alert
	store   store.Store
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new alert worker pool.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Alert, size*4),
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// SetSender overrides the push transport. Test hook.
func (wp *WorkerPool) SetSender(s NotificationSender) {
	wp.sender = s
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("[notify] worker %d started", id)
	for {
		select {
		case alert := <-wp.jobs:
			wp.deliver(ctx, alert)
		case <-ctx.Done():
			log.Printf("[notify] worker %d shutting down", id)
			return
		}
	}
}

// BannedScan queues an alert. It never blocks the decision path: if the queue
// is full the alert is dropped with a log line.
func (wp *WorkerPool) BannedScan(userID int64, userName string, gateID int64) {
	select {
	case wp.jobs <- Alert{UserID: userID, UserName: userName, GateID: gateID}:
	default:
		log.Printf("[notify] alert queue full, dropping alert for user %d", userID)
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Alert {
	return wp.jobs
}

// deliver fans one alert out to every registered subscription.
func (wp *WorkerPool) deliver(ctx context.Context, alert Alert) {
	subs, err := wp.store.Subscriptions(ctx)
	if err != nil {
		log.Printf("[notify] fetching subscriptions failed: %v", err)
		return
	}
	if len(subs) == 0 {
		return
	}

	name := alert.UserName
	if name == "" {
		name = fmt.Sprintf("user %d", alert.UserID)
	}
	payload, err := json.Marshal(map[string]any{
		"title": "Banned credential scanned",
		"body":  fmt.Sprintf("%s was refused at gate %d", name, alert.GateID),
		"tag":   fmt.Sprintf("banned-%d", alert.UserID),
	})
	if err != nil {
		log.Printf("[notify] payload marshal failed: %v", err)
		return
	}

	log.Printf("[notify] sending %d alerts for user %d", len(subs), alert.UserID)
	for _, sub := range subs {
		target := &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys: webpush.Keys{
				P256dh: sub.P256DH,
				Auth:   sub.Auth,
			},
		}
		resp, err := wp.sender.Send(payload, target, wp.webpush)
		if err != nil {
			log.Printf("[notify] push to %s failed: %v", sub.Endpoint, err)
			continue
		}
		if resp != nil {
			if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
				// Subscription is dead; drop it so we stop retrying.
				if err := wp.store.DB().Delete(&sub).Error; err != nil {
					log.Printf("[notify] pruning dead subscription failed: %v", err)
				}
			}
			resp.Body.Close()
		}
	}
}
