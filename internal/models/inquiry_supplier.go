package models

import (
	"time"
)

// EmailStatus tracks the delivery state of the request email sent to a
// supplier for one inquiry. Undeliverable is terminal: it marks a contact
// whose supplier record has no usable address, so the dispatcher stops
// selecting it instead of re-attempting forever.
type EmailStatus string

const (
	EmailStatusPending       EmailStatus = "pending"
	EmailStatusSent          EmailStatus = "sent"
	EmailStatusDelivered     EmailStatus = "delivered"
	EmailStatusFailed        EmailStatus = "failed"
	EmailStatusUndeliverable EmailStatus = "undeliverable"
)

// InquirySupplier is the per-inquiry, per-supplier contact record: whether and
// when the request and follow-ups went out, and whether a quote came back.
type InquirySupplier struct {
	Base             `bson:",inline"`
	InquiryID        string      `bson:"inquiry_id" json:"inquiry_id"`
	SupplierID       string      `bson:"supplier_id" json:"supplier_id"`
	EmailSentAt      *time.Time  `bson:"email_sent_at,omitempty" json:"email_sent_at,omitempty"`
	EmailStatus      EmailStatus `bson:"email_status" json:"email_status"`
	LastFollowedUpAt *time.Time  `bson:"last_followed_up_at,omitempty" json:"last_followed_up_at,omitempty"`
	ResponseReceived bool        `bson:"response_received" json:"response_received"`
	CreatedAt        time.Time   `bson:"created_at" json:"created_at"`
}

// ContactAnchor returns the timestamp follow-up intervals are measured from:
// the most recent follow-up, else the initial send, else the row creation.
func (c *InquirySupplier) ContactAnchor() time.Time {
	if c.LastFollowedUpAt != nil {
		return *c.LastFollowedUpAt
	}
	if c.EmailSentAt != nil {
		return *c.EmailSentAt
	}
	return c.CreatedAt
}

// ContactWithSupplier joins a contact row with its supplier record for the
// dispatcher, which needs the supplier's name and address to send.
type ContactWithSupplier struct {
	Contact  InquirySupplier `bson:"contact" json:"contact"`
	Supplier Supplier        `bson:"supplier" json:"supplier"`
}
