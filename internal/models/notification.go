package models

import (
	"time"
)

// NotificationType identifies the event a notification reports.
type NotificationType string

const (
	NotificationQuoteReceived     NotificationType = "quote_received"
	NotificationAllQuotesReceived NotificationType = "all_quotes_received"
	NotificationDeadlineReminder  NotificationType = "deadline_reminder"
	NotificationFollowUpSent      NotificationType = "follow_up_sent"
)

// Notification is an in-app message for the inquiry owner.
//
// Day is set only for once-per-day types (deadline_reminder): a unique index
// on (user_id, inquiry_id, type, day) makes the once-a-day guarantee
// structural. For one-shot types (all_quotes_received) Day stays empty and a
// partial unique index on (user_id, inquiry_id, type) applies instead.
type Notification struct {
	Base      `bson:",inline"`
	UserID    string           `bson:"user_id" json:"user_id"`
	Type      NotificationType `bson:"type" json:"type"`
	Title     string           `bson:"title" json:"title"`
	Message   string           `bson:"message" json:"message"`
	InquiryID *string          `bson:"inquiry_id,omitempty" json:"inquiry_id,omitempty"`
	Day       string           `bson:"day,omitempty" json:"-"` // UTC date, "2006-01-02"
	IsRead    bool             `bson:"is_read" json:"is_read"`
	CreatedAt time.Time        `bson:"created_at" json:"created_at"`
}
