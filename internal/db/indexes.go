package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the engagement workflow relies on.
//
// The uniqueness of one-shot and once-per-day notifications is enforced here
// rather than by pre-insert existence queries, so two overlapping passes
// cannot both insert the same notification.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// One row per (inquiry, supplier) pairing.
	_, err := db.Collection("inquiry_suppliers").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "inquiry_id", Value: 1}, {Key: "supplier_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create inquiry_suppliers index: %w", err)
	}

	// One all_quotes_received notification per (user, inquiry), ever.
	_, err = db.Collection("notifications").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "inquiry_id", Value: 1}, {Key: "type", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"type": "all_quotes_received"}),
	})
	if err != nil {
		return fmt.Errorf("failed to create one-shot notification index: %w", err)
	}

	// One deadline_reminder notification per (user, inquiry, UTC day).
	_, err = db.Collection("notifications").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "inquiry_id", Value: 1},
			{Key: "type", Value: 1},
			{Key: "day", Value: 1},
		},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"type": "deadline_reminder"}),
	})
	if err != nil {
		return fmt.Errorf("failed to create daily notification index: %w", err)
	}

	// Account email uniqueness.
	_, err = db.Collection("user_profiles").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create user_profiles email index: %w", err)
	}

	// Quote lookups during completion checks.
	_, err = db.Collection("quotes").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "inquiry_id", Value: 1}, {Key: "supplier_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create quotes index: %w", err)
	}

	return nil
}
