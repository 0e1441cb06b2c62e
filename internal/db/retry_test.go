package db

import (
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

// mockDuplicateKeyError builds the error shape Mongo returns for a unique
// index violation on the named index.
func mockDuplicateKeyError(index, key string) error {
	mongoErr := mongo.WriteError{
		Code:    11000,
		Message: fmt.Sprintf("E11000 duplicate key error collection: fertihub.notifications index: %s dup key: { : \"%s\" }", index, key),
	}
	return mongo.WriteException{WriteErrors: []mongo.WriteError{mongoErr}}
}

func TestWithRetries_SuccessfulFirstAttempt(t *testing.T) {
	var opCalled int
	operation := func() error {
		opCalled++
		return nil
	}

	err := WithRetries(operation, 3, IsMongoIDCollision)
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if opCalled != 1 {
		t.Errorf("Expected operation to be called 1 time, got %d", opCalled)
	}
}

func TestWithRetries_RetriesIDCollision(t *testing.T) {
	var opCalled int
	operation := func() error {
		opCalled++
		if opCalled < 3 {
			return mockDuplicateKeyError("_id_", "abc")
		}
		return nil
	}

	err := WithRetries(operation, 3, IsMongoIDCollision)
	if err != nil {
		t.Errorf("Expected no error after retries, got %v", err)
	}
	if opCalled != 3 {
		t.Errorf("Expected operation to be called 3 times, got %d", opCalled)
	}
}

func TestWithRetries_NonDuplicateErrorReturnsImmediately(t *testing.T) {
	var opCalled int
	opErr := errors.New("connection reset")
	operation := func() error {
		opCalled++
		return opErr
	}

	err := WithRetries(operation, 3, IsMongoIDCollision)
	if !errors.Is(err, opErr) {
		t.Errorf("Expected original error, got %v", err)
	}
	if opCalled != 1 {
		t.Errorf("Expected operation to be called 1 time, got %d", opCalled)
	}
}

// A duplicate on an application unique index is an intentional rejection
// (one-shot notifications, inquiry_suppliers pairing); Try must surface it
// on the first attempt instead of burning retries on it.
func TestTry_UniqueIndexViolationNotRetried(t *testing.T) {
	var opCalled int
	operation := func() error {
		opCalled++
		return mockDuplicateKeyError("user_id_1_inquiry_id_1_type_1", "all_quotes_received")
	}

	err := Try(operation)
	if !IsMongoDuplicateKeyError(err) {
		t.Errorf("Expected the duplicate key error to surface, got %v", err)
	}
	if opCalled != 1 {
		t.Errorf("Expected operation to be called 1 time, got %d", opCalled)
	}
}

func TestIsMongoIDCollision(t *testing.T) {
	if !IsMongoIDCollision(mockDuplicateKeyError("_id_", "abc")) {
		t.Error("Expected an _id duplicate to be an ID collision")
	}
	if IsMongoIDCollision(mockDuplicateKeyError("user_id_1_inquiry_id_1_type_1", "abc")) {
		t.Error("Expected a unique index duplicate not to be an ID collision")
	}
	if IsMongoIDCollision(errors.New("some other error")) {
		t.Error("Expected a plain error not to be an ID collision")
	}
}

func TestIsMongoDuplicateKeyError(t *testing.T) {
	if !IsMongoDuplicateKeyError(mockDuplicateKeyError("_id_", "abc")) {
		t.Error("Expected code 11000 to be a duplicate key error")
	}
	if IsMongoDuplicateKeyError(errors.New("some other error")) {
		t.Error("Expected a plain error not to be a duplicate key error")
	}
}
