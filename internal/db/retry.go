package db

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// Operation is a function that performs an action and returns an error if it fails.
type Operation func() error

// IsDuplicateKeyError is a function that checks if an error is a duplicate key error.
type IsDuplicateKeyError func(err error) bool

const DefaultMaxRetries = 3

// Try executes an operation, retrying only when a duplicate key error was
// caused by an _id collision. Duplicates on application unique indexes
// (notifications, inquiry_suppliers) are intentional rejections and are
// surfaced immediately.
func Try(op Operation) error {
	return WithRetries(op, DefaultMaxRetries, IsMongoIDCollision)
}

// WithRetries executes an operation with a retry mechanism for duplicate key
// errors. It attempts the operation up to maxRetries times with a small
// incremental backoff between attempts.
func WithRetries(op Operation, maxRetries int, isDuplicateKey IsDuplicateKeyError) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err = op()
		if err == nil {
			return nil
		}

		if attempt == maxRetries {
			break
		}

		if isDuplicateKey(err) {
			time.Sleep(time.Duration(50*(attempt+1)) * time.Millisecond)
		} else {
			return err // Not a duplicate key error, return immediately
		}
	}
	return err
}

// IsMongoIDCollision reports whether err is a duplicate key error on the _id
// index specifically. Only these are worth retrying with a fresh ID.
func IsMongoIDCollision(err error) bool {
	var e mongo.WriteException
	if errors.As(err, &e) {
		for _, we := range e.WriteErrors {
			if we.Code == 11000 && strings.Contains(we.Message, "index: _id_") {
				return true
			}
		}
	}
	return false
}

// IsMongoDuplicateKeyError checks if an error from MongoDB is a duplicate key error (code 11000).
func IsMongoDuplicateKeyError(err error) bool {
	var e mongo.WriteException
	if errors.As(err, &e) {
		for _, we := range e.WriteErrors {
			if we.Code == 11000 {
				return true
			}
		}
	}
	// Also check for BulkWriteException, which can contain duplicate key errors
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		for _, writeError := range bwe.WriteErrors {
			if writeError.Code == 11000 {
				return true
			}
		}
	}
	return false
}
