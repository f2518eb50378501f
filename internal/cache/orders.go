package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/empanadas-abdonur/api/internal/enum"
)

// DefaultTTL bounds staleness of admin order listings between invalidations.
const DefaultTTL = 30 * time.Second

// OrderListCache keeps rendered admin order listings in redis so the panel
// polling does not hammer postgres. New orders and status changes
// invalidate the affected branch view and the global view.
type OrderListCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects to redis and verifies the connection.
func New(addr, password string, db int) (*OrderListCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &OrderListCache{rdb: rdb, ttl: DefaultTTL}, nil
}

// Close closes the redis connection.
func (c *OrderListCache) Close() error {
	return c.rdb.Close()
}

func listKey(branchID *uuid.UUID, status string) string {
	if status == "" {
		status = "any"
	}
	if branchID == nil {
		return "admin:orders:all:" + status
	}
	return "admin:orders:branch:" + branchID.String() + ":" + status
}

// GetOrderList returns a cached rendered listing. Redis failures read as a
// miss; the caller falls through to the store.
func (c *OrderListCache) GetOrderList(ctx context.Context, branchID *uuid.UUID, status string) ([]byte, bool) {
	payload, err := c.rdb.Get(ctx, listKey(branchID, status)).Bytes()
	if err != nil {
		if err != redis.Nil {
			zap.L().Warn("order list cache get failed", zap.Error(err))
		}
		return nil, false
	}
	return payload, true
}

// SetOrderList stores a rendered listing with the cache TTL.
func (c *OrderListCache) SetOrderList(ctx context.Context, branchID *uuid.UUID, status string, payload []byte) {
	if err := c.rdb.Set(ctx, listKey(branchID, status), payload, c.ttl).Err(); err != nil {
		zap.L().Warn("order list cache set failed", zap.Error(err))
	}
}

// InvalidateOrders drops every listing that could include an order of the
// given branch: the branch's own views and the global views, across all
// status filters.
func (c *OrderListCache) InvalidateOrders(ctx context.Context, branchID uuid.UUID) {
	statuses := append([]string{""}, enum.OrderStatuses...)

	keys := make([]string, 0, 2*len(statuses))
	for _, status := range statuses {
		keys = append(keys, listKey(&branchID, status), listKey(nil, status))
	}

	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		zap.L().Warn("order list cache invalidation failed", zap.Error(err))
	}
}
