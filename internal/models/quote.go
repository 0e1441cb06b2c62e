package models

import (
	"time"
)

// Quote is a supplier's response to an inquiry. A supplier may submit more
// than one revision; completion counts distinct suppliers, not quote rows.
type Quote struct {
	Base            `bson:",inline"`
	InquiryID       string    `bson:"inquiry_id" json:"inquiry_id"`
	SupplierID      string    `bson:"supplier_id" json:"supplier_id"`
	ProductName     string    `bson:"product_name" json:"product_name"`
	UnitPrice       *float64  `bson:"unit_price,omitempty" json:"unit_price,omitempty"`
	TotalPrice      float64   `bson:"total_price" json:"total_price"`
	Currency        string    `bson:"currency" json:"currency"`
	LeadTimeDays    *int      `bson:"lead_time_days,omitempty" json:"lead_time_days,omitempty"`
	ValidityPeriod  *string   `bson:"validity_period,omitempty" json:"validity_period,omitempty"`
	Notes           *string   `bson:"notes,omitempty" json:"notes,omitempty"`
	PdfURL          *string   `bson:"pdf_url,omitempty" json:"pdf_url,omitempty"`
	AIExtracted     bool      `bson:"ai_extracted" json:"ai_extracted"`
	ConfidenceScore *float64  `bson:"confidence_score,omitempty" json:"confidence_score,omitempty"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at" json:"updated_at"`
}
