package email

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AndreiCalugar/FertiHub/internal/config"
)

// RedisSender implements the Sender interface by storing emails in Redis.
// Used when MOCK_SERVICES is enabled so integration tests can fetch outbound
// mail through the service API instead of a real provider.
type RedisSender struct {
	client *redis.Client
	cfg    *config.Config
}

// NewRedisSender creates a new RedisSender.
func NewRedisSender(client *redis.Client, cfg *config.Config) Sender {
	return &RedisSender{
		client: client,
		cfg:    cfg,
	}
}

// MockEmailKey builds the Redis key a mocked email is stored under.
func MockEmailKey(to string, kind Kind) string {
	return fmt.Sprintf("mockemail:%s:%s", to, kind)
}

// Send stores a representation of the email in Redis instead of delivering it.
func (s *RedisSender) Send(ctx context.Context, msg *Message) error {
	primaryTo := ""
	if len(msg.To) > 0 {
		primaryTo = msg.To[0]
	}

	emailData := map[string]interface{}{
		"to":      strings.Join(msg.To, ", "),
		"from":    s.cfg.EmailFromAddress,
		"subject": msg.Subject,
		"body":    msg.HTML,
		"kind":    string(msg.Kind),
		"sent_at": time.Now().UTC().Format(time.RFC3339Nano),
	}

	jsonData, err := json.Marshal(emailData)
	if err != nil {
		return fmt.Errorf("failed to marshal email data: %w", err)
	}

	key := MockEmailKey(primaryTo, msg.Kind)
	ttl := 5 * time.Minute

	if err := s.client.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store email in Redis key '%s': %w", key, err)
	}

	log.Printf("Mock email stored in Redis key '%s' (TTL: %v, To: %s, Subject: %s)", key, ttl, strings.Join(msg.To, ", "), msg.Subject)
	return nil
}
