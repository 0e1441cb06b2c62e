package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AndreiCalugar/FertiHub/internal/db"
	"github.com/AndreiCalugar/FertiHub/internal/metrics"
	"github.com/AndreiCalugar/FertiHub/internal/models"
)

// ErrNotificationNotFound is returned when marking a nonexistent notification.
var ErrNotificationNotFound = errors.New("notification not found")

// INotificationService defines the interface for in-app notifications.
//
// CreateOneShot and CreateDaily are the idempotent variants the dispatcher
// uses: instead of a read-then-write check they just insert and let the
// unique indexes reject duplicates, reporting created=false in that case.
type INotificationService interface {
	Create(ctx context.Context, userID string, typ models.NotificationType, title, message string, inquiryID *string) (*models.Notification, error)
	CreateOneShot(ctx context.Context, userID string, typ models.NotificationType, title, message string, inquiryID string) (created bool, err error)
	CreateDaily(ctx context.Context, userID string, typ models.NotificationType, title, message string, inquiryID string, day string) (created bool, err error)
	List(ctx context.Context, userID string, unreadOnly bool, limit int64) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	DeleteByInquiry(ctx context.Context, inquiryID string) error
}

const notificationsCollection = "notifications"

type notificationService struct {
	db *mongo.Database
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(db *mongo.Database) INotificationService {
	return &notificationService{db: db}
}

func (s *notificationService) insert(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	n.CreatedAt = time.Now().UTC()
	doc, err := db.InsertOne(ctx, s.db.Collection(notificationsCollection), n)
	if err != nil {
		return nil, err
	}
	metrics.NotificationsCreatedTotal.WithLabelValues(string(n.Type)).Inc()
	return doc.(*models.Notification), nil
}

// Create inserts a notification with no uniqueness constraint. Used for
// repeatable types (quote_received, follow_up_sent).
func (s *notificationService) Create(ctx context.Context, userID string, typ models.NotificationType, title, message string, inquiryID *string) (*models.Notification, error) {
	n, err := s.insert(ctx, &models.Notification{
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		InquiryID: inquiryID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return n, nil
}

// CreateOneShot inserts a notification that may exist at most once per
// (user, inquiry, type). A duplicate-key rejection means an earlier caller
// already created it; that is success with created=false, not an error.
func (s *notificationService) CreateOneShot(ctx context.Context, userID string, typ models.NotificationType, title, message string, inquiryID string) (bool, error) {
	_, err := s.insert(ctx, &models.Notification{
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		InquiryID: &inquiryID,
	})
	if err != nil {
		if db.IsMongoDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create notification: %w", err)
	}
	return true, nil
}

// CreateDaily inserts a notification that may exist at most once per
// (user, inquiry, type, UTC day).
func (s *notificationService) CreateDaily(ctx context.Context, userID string, typ models.NotificationType, title, message string, inquiryID string, day string) (bool, error) {
	_, err := s.insert(ctx, &models.Notification{
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		InquiryID: &inquiryID,
		Day:       day,
	})
	if err != nil {
		if db.IsMongoDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create notification: %w", err)
	}
	return true, nil
}

func (s *notificationService) List(ctx context.Context, userID string, unreadOnly bool, limit int64) ([]models.Notification, error) {
	filter := bson.M{"user_id": userID}
	if unreadOnly {
		filter["is_read"] = false
	}
	if limit <= 0 {
		limit = 50
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cursor, err := s.db.Collection(notificationsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return notifications, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	count, err := s.db.Collection(notificationsCollection).CountDocuments(ctx,
		bson.M{"user_id": userID, "is_read": false})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	res, err := s.db.Collection(notificationsCollection).UpdateOne(ctx,
		bson.M{"_id": notificationID, "user_id": userID},
		bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return fmt.Errorf("failed to mark notification %s read: %w", notificationID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res, err := s.db.Collection(notificationsCollection).UpdateMany(ctx,
		bson.M{"user_id": userID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return res.ModifiedCount, nil
}

// DeleteByInquiry removes all notifications tied to an inquiry, part of the
// inquiry delete cascade.
func (s *notificationService) DeleteByInquiry(ctx context.Context, inquiryID string) error {
	_, err := s.db.Collection(notificationsCollection).DeleteMany(ctx, bson.M{"inquiry_id": inquiryID})
	if err != nil {
		return fmt.Errorf("failed to delete notifications for inquiry %s: %w", inquiryID, err)
	}
	return nil
}
