package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// IFollowUpClaims hands out per-(contact, calendar day) claims so two
// overlapping dispatcher passes cannot both send a follow-up to the same
// contact on the same day.
type IFollowUpClaims interface {
	Claim(ctx context.Context, contactID string, day string) (bool, error)
	Release(ctx context.Context, contactID string, day string) error
}

// followUpClaims implements IFollowUpClaims on Redis SETNX keys.
type followUpClaims struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFollowUpClaims creates a Redis-backed claim store. The TTL should be at
// least as long as the shortest follow-up interval (one day) so a claim never
// outlives the window it protects by much.
func NewFollowUpClaims(client *redis.Client, ttl time.Duration) IFollowUpClaims {
	return &followUpClaims{client: client, ttl: ttl}
}

func claimKey(contactID, day string) string {
	return fmt.Sprintf("followup:claim:%s:%s", contactID, day)
}

// Claim returns true if this caller won the (contact, day) claim.
func (c *followUpClaims) Claim(ctx context.Context, contactID string, day string) (bool, error) {
	ok, err := c.client.SetNX(ctx, claimKey(contactID, day), 1, c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim follow-up for contact %s: %w", contactID, err)
	}
	return ok, nil
}

// Release drops a claim so the contact can be retried within the same day.
// Called when the send failed and the failure should not consume the claim.
func (c *followUpClaims) Release(ctx context.Context, contactID string, day string) error {
	if err := c.client.Del(ctx, claimKey(contactID, day)).Err(); err != nil {
		return fmt.Errorf("failed to release follow-up claim for contact %s: %w", contactID, err)
	}
	return nil
}
