package models

import (
	"time"
)

// InquiryStatus is the lifecycle state of an inquiry.
type InquiryStatus string

const (
	InquiryStatusDraft     InquiryStatus = "draft"
	InquiryStatusSent      InquiryStatus = "sent"
	InquiryStatusPartial   InquiryStatus = "partial"
	InquiryStatusCompleted InquiryStatus = "completed"
	InquiryStatusExpired   InquiryStatus = "expired"
)

// Urgency levels run 1 (whenever) to 5 (need it yesterday). Anything outside
// that range is treated as the lowest urgency.
const (
	UrgencyMin = 1
	UrgencyMax = 5
)

// Inquiry is a buyer's request for quotations, sent to a chosen supplier set.
type Inquiry struct {
	Base               `bson:",inline"`
	UserID             string        `bson:"user_id" json:"user_id"`
	ProductCategoryID  *string       `bson:"product_category_id,omitempty" json:"product_category_id,omitempty"`
	ProductDescription string        `bson:"product_description" json:"product_description"`
	Quantity           int           `bson:"quantity" json:"quantity"`
	UrgencyLevel       int           `bson:"urgency_level" json:"urgency_level"`
	Status             InquiryStatus `bson:"status" json:"status"`
	Notes              *string       `bson:"notes,omitempty" json:"notes,omitempty"`
	AttachmentURL      *string       `bson:"attachment_url,omitempty" json:"attachment_url,omitempty"`
	Deadline           *time.Time    `bson:"deadline,omitempty" json:"deadline,omitempty"`
	CreatedAt          time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time     `bson:"updated_at" json:"updated_at"`
}

// EngagableStatuses are the inquiry states the follow-up dispatcher scans.
// Draft inquiries have not contacted anyone yet; completed and expired ones
// are done.
func EngagableStatuses() []InquiryStatus {
	return []InquiryStatus{InquiryStatusSent, InquiryStatusPartial}
}
