package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client caches report payloads so hot dashboard endpoints do not hammer
// the aggregation queries on every poll.
type Client struct {
	*redis.Client
}

func NewClient(redisURL string) *Client {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{
			Addr: redisURL,
		}
	}

	client := redis.NewClient(opt)

	return &Client{client}
}

func (c *Client) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.Set(ctx, key, data, expiration).Err()
}

func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := c.Get(ctx, key).Result()
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(data), dest)
}

// Report caching. TTLs are short: reports are cheap to recompute and
// dashboards tolerate half a minute of staleness.

const reportTTL = 30 * time.Second

func reportKey(tenantID, report string) string {
	return fmt.Sprintf("reports:%s:%s", tenantID, report)
}

func (c *Client) CacheReport(ctx context.Context, tenantID, report string, payload interface{}) error {
	return c.SetJSON(ctx, reportKey(tenantID, report), payload, reportTTL)
}

func (c *Client) GetCachedReport(ctx context.Context, tenantID, report string, dest interface{}) error {
	return c.GetJSON(ctx, reportKey(tenantID, report), dest)
}
