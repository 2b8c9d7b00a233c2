package notification

import (
	"context"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"huts4u-backend/internal/model"
)

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

// WorkerPool sends "room available again" pushes to the subscribers of a room.
type WorkerPool struct {
	size    int
	jobs    chan int64
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
	log     *zap.SugaredLogger
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options, logger *zap.SugaredLogger) *WorkerPool {
	if size < 1 {
		size = 1
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan int64, size), // Buffered channel
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{}, // Use the real sender by default
		log:     logger.Named("notification"),
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.log.Debugw("worker started", "worker", id)
	for {
		select {
		case roomID := <-wp.jobs:
			wp.log.Debugw("processing room", "worker", id, "room_id", roomID)
			wp.sendNotificationsForRoom(ctx, roomID)
		case <-ctx.Done():
			wp.log.Debugw("worker shutting down", "worker", id)
			return
		}
	}
}

// Dispatch queues a room whose inventory reopened. It blocks while the
// queue is full.
func (wp *WorkerPool) Dispatch(roomID int64) {
	wp.jobs <- roomID
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan int64 {
	return wp.jobs
}

type roomLabel struct {
	RoomType     string
	PropertyName string
}

// Message returns the push text for a room. Without a label it falls back to
// the room id.
func Message(roomID int64, roomType, hotelName string) string {
	if roomType == "" || hotelName == "" {
		return fmt.Sprintf("Room %d is available again!", roomID)
	}
	return fmt.Sprintf("Room %s at %s is available again!", roomType, hotelName)
}

// sendNotificationsForRoom fetches subscriptions and sends notifications for a given room.
func (wp *WorkerPool) sendNotificationsForRoom(ctx context.Context, roomID int64) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_room_mapping srm ON srm.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("srm.room_id = ?", roomID).
		Find(&subscriptions).Error
	if err != nil {
		wp.log.Errorw("fetching subscriptions failed", "room_id", roomID, "error", err)
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	wp.log.Infow("sending notifications", "room_id", roomID, "count", len(subscriptions))

	var label roomLabel
	if err := wp.db.WithContext(ctx).
		Table("rooms").
		Select("rooms.room_type, hotels.property_name").
		Joins("JOIN hotels ON hotels.id = rooms.hotel_id").
		Where("rooms.id = ?", roomID).
		Take(&label).Error; err != nil {
		wp.log.Warnw("fetching room label failed", "room_id", roomID, "error", err)
	}

	message := Message(roomID, label.RoomType, label.PropertyName)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.log.Errorw("sending notification failed", "endpoint", sub.Endpoint, "error", err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		wp.log.Infow("subscription expired, deleting", "endpoint", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			wp.log.Errorw("deleting expired subscription failed", "endpoint", sub.Endpoint, "error", err)
		}
	}
}
