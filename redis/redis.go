// Package redis provides the refresh-token allowlist, presence cache and
// pub/sub fanout for multi-instance council chat.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Client wraps the Redis client with Iron Brothers specific operations.
type Client struct {
	rdb    *redis.Client
	nodeID string
	prefix string
}

// Config holds Redis connection settings.
type Config struct {
	Addr     string // host:port
	Password string
	DB       int
	NodeID   string // Unique ID for this instance (hostname, UUID, etc.)
	Prefix   string // Key prefix (default: "ironbros:")
}

// New creates a new Redis client.
func New(cfg Config) (*Client, error) {
	if cfg.Prefix == "" {
		cfg.Prefix = "ironbros:"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{
		rdb:    rdb,
		nodeID: cfg.NodeID,
		prefix: cfg.Prefix,
	}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// NodeID returns this instance's node ID.
func (c *Client) NodeID() string {
	return c.nodeID
}

func (c *Client) key(k string) string {
	return c.prefix + k
}

// ============================================================================
// Refresh Token Allowlist
// ============================================================================
//
// Only refresh tokens whose ID is present here are honored. Logout and
// rotation delete the entry, so a stolen cookie dies with the session.

// SaveRefreshToken allowlists a refresh token ID for a user until expiry.
func (c *Client) SaveRefreshToken(ctx context.Context, userID, tokenID uuid.UUID, ttl time.Duration) error {
	key := c.key("refresh:" + tokenID.String())
	return c.rdb.Set(ctx, key, userID.String(), ttl).Err()
}

// ConsumeRefreshToken atomically checks and removes a refresh token ID.
// Returns false when the token was never issued, already rotated or revoked.
func (c *Client) ConsumeRefreshToken(ctx context.Context, userID, tokenID uuid.UUID) (bool, error) {
	key := c.key("refresh:" + tokenID.String())
	val, err := c.rdb.GetDel(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return val == userID.String(), nil
}

// RevokeRefreshToken removes a refresh token ID without rotating.
func (c *Client) RevokeRefreshToken(ctx context.Context, tokenID uuid.UUID) error {
	return c.rdb.Del(ctx, c.key("refresh:"+tokenID.String())).Err()
}

// ============================================================================
// Presence Cache
// ============================================================================

// SetOnline marks a user as online on this node.
func (c *Client) SetOnline(ctx context.Context, userID string) error {
	key := c.key("online:" + userID)
	// Node ID with 5 minute TTL, refreshed while the socket lives
	return c.rdb.Set(ctx, key, c.nodeID, 5*time.Minute).Err()
}

// SetOffline removes a user's online status.
func (c *Client) SetOffline(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, c.key("online:"+userID)).Err()
}

// IsOnline checks if a user is online (on any node).
func (c *Client) IsOnline(ctx context.Context, userID string) (bool, error) {
	exists, err := c.rdb.Exists(ctx, c.key("online:"+userID)).Result()
	return exists > 0, err
}

// RefreshOnline extends the TTL for a user's online status.
func (c *Client) RefreshOnline(ctx context.Context, userID string) error {
	return c.rdb.Expire(ctx, c.key("online:"+userID), 5*time.Minute).Err()
}

// ============================================================================
// Pub/Sub
// ============================================================================

// Message represents a pub/sub message exchanged between nodes.
type Message struct {
	Type     string          `json:"type"` // "council", "pres"
	FromNode string          `json:"from"`
	Payload  json.RawMessage `json:"payload"`
}

// PubSub handles pub/sub operations.
type PubSub struct {
	client  *Client
	pubsub  *redis.PubSub
	handler func(msg *Message)
}

// NewPubSub creates a new pub/sub handler.
func (c *Client) NewPubSub(handler func(msg *Message)) *PubSub {
	return &PubSub{
		client:  c,
		handler: handler,
	}
}

// Subscribe subscribes to council channels for receiving messages.
func (ps *PubSub) Subscribe(ctx context.Context, channels ...string) error {
	prefixed := make([]string, len(channels))
	for i, ch := range channels {
		prefixed[i] = ps.client.key("ch:" + ch)
	}
	ps.pubsub = ps.client.rdb.Subscribe(ctx, prefixed...)
	return nil
}

// Listen starts listening for messages (blocking).
func (ps *PubSub) Listen(ctx context.Context) {
	if ps.pubsub == nil {
		return
	}

	ch := ps.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case redisMsg, ok := <-ch:
			if !ok {
				return
			}
			var msg Message
			if err := json.Unmarshal([]byte(redisMsg.Payload), &msg); err != nil {
				continue
			}
			// Skip messages from self
			if msg.FromNode == ps.client.nodeID {
				continue
			}
			if ps.handler != nil {
				ps.handler(&msg)
			}
		}
	}
}

// Close closes the pub/sub connection.
func (ps *PubSub) Close() error {
	if ps.pubsub != nil {
		return ps.pubsub.Close()
	}
	return nil
}

// Publish publishes a message to a council channel.
func (c *Client) Publish(ctx context.Context, channel string, msgType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	msg := Message{
		Type:     msgType,
		FromNode: c.nodeID,
		Payload:  data,
	}

	msgData, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return c.rdb.Publish(ctx, c.key("ch:"+channel), msgData).Err()
}
