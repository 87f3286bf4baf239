package ratelimit

import "context"

// RateLimiter controls outbound delivery throughput per message kind.
type RateLimiter interface {
	Allow(ctx context.Context, kind string) (bool, error)
	Wait(ctx context.Context, kind string) error
}
