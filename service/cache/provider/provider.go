package provider

import (
	"errors"
	"time"

	"github.com/x-xyz/dealexchange/base/ctx"
)

var (
	ErrNotFound = errors.New("Cache not found")
)

// raw cache implementation. A zero ttl means no expiration.
type Provider interface {
	Get(c ctx.Ctx, key string) ([]byte, time.Duration, error)
	Set(c ctx.Ctx, key string, value []byte, ttl time.Duration) error
	Del(c ctx.Ctx, key string) error
}
