package models

import (
	"time"
)

// ProductCategory groups inquiries by product type (media, incubators, etc).
type ProductCategory struct {
	Base        `bson:",inline"`
	Name        string    `bson:"name" json:"name"`
	Description *string   `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}
