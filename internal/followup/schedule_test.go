package followup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AndreiCalugar/FertiHub/internal/models"
)

func TestIntervalDays(t *testing.T) {
	tests := []struct {
		urgency  int
		expected int
	}{
		{5, 1},
		{4, 2},
		{3, 3},
		{2, 5},
		{1, 7},
		{0, 7},  // undefined
		{9, 7},  // out of range
		{-1, 7}, // out of range
	}
	for _, tc := range tests {
		assert.Equal(t, tc.expected, IntervalDays(tc.urgency), "urgency %d", tc.urgency)
	}
}

func TestIsDue_Boundaries(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	// Urgency 3 -> 3 day interval.
	tests := []struct {
		name     string
		elapsed  time.Duration
		expected bool
	}{
		{"one day short", 2 * 24 * time.Hour, false},
		{"exactly on the boundary", 3 * 24 * time.Hour, true},
		{"one day over", 4 * 24 * time.Hour, true},
		{"fractional remainder does not round up", 3*24*time.Hour - time.Minute, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sentAt := now.Add(-tc.elapsed)
			contact := &models.InquirySupplier{
				EmailSentAt: &sentAt,
				EmailStatus: models.EmailStatusSent,
				CreatedAt:   sentAt,
			}
			assert.Equal(t, tc.expected, IsDue(contact, 3, now))
		})
	}
}

func TestIsDue_Responded(t *testing.T) {
	now := time.Now().UTC()
	longAgo := now.Add(-30 * 24 * time.Hour)
	contact := &models.InquirySupplier{
		EmailSentAt:      &longAgo,
		EmailStatus:      models.EmailStatusSent,
		ResponseReceived: true,
		CreatedAt:        longAgo,
	}
	assert.False(t, IsDue(contact, 5, now), "responded contact is never due")
}

func TestIsDue_Undeliverable(t *testing.T) {
	now := time.Now().UTC()
	longAgo := now.Add(-30 * 24 * time.Hour)
	contact := &models.InquirySupplier{
		EmailStatus: models.EmailStatusUndeliverable,
		CreatedAt:   longAgo,
	}
	assert.False(t, IsDue(contact, 5, now), "undeliverable contact is terminal")
}

func TestIsDue_AnchorPrecedence(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	sentAt := now.Add(-10 * 24 * time.Hour)
	followedUpAt := now.Add(-12 * time.Hour)

	// A recent follow-up resets the timer even if the initial send is old.
	contact := &models.InquirySupplier{
		EmailSentAt:      &sentAt,
		LastFollowedUpAt: &followedUpAt,
		EmailStatus:      models.EmailStatusSent,
		CreatedAt:        sentAt,
	}
	assert.False(t, IsDue(contact, 5, now))

	// Without the follow-up the old send makes it due.
	contact.LastFollowedUpAt = nil
	assert.True(t, IsDue(contact, 5, now))

	// Without any send the creation time anchors the interval.
	contact.EmailSentAt = nil
	assert.True(t, IsDue(contact, 5, now))
}

func TestDaysSince(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 2, DaysSince(now.Add(-49*time.Hour), now))
	assert.Equal(t, 0, DaysSince(now.Add(-time.Hour), now))
	assert.Equal(t, 0, DaysSince(now.Add(time.Hour), now), "future anchor clamps to zero")
}
