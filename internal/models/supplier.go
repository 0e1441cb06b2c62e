package models

import (
	"time"
)

// Supplier is a vendor that can be invited to quote on inquiries.
type Supplier struct {
	Base          `bson:",inline"`
	Name          string    `bson:"name" json:"name"`
	Email         string    `bson:"email" json:"email"`
	ContactPerson *string   `bson:"contact_person,omitempty" json:"contact_person,omitempty"`
	Phone         *string   `bson:"phone,omitempty" json:"phone,omitempty"`
	Website       *string   `bson:"website,omitempty" json:"website,omitempty"`
	IsVerified    bool      `bson:"is_verified" json:"is_verified"`
	Notes         *string   `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedBy     string    `bson:"created_by" json:"created_by"` // UserProfile ID
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`
}
