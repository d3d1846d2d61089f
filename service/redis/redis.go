package redis

import (
	"errors"
	"time"

	"github.com/x-xyz/dealexchange/base/ctx"
)

const (
	// Forever means no expiration
	Forever = time.Duration(-1)
)

var (
	// ErrNotFound is returned when the key does not exist
	ErrNotFound = errors.New("redis: key not found")
	// ErrKeyExists is returned by SetNX when the key is already set
	ErrKeyExists = errors.New("redis: key exists")
	// ErrNoPool is returned when no pool is configured
	ErrNoPool = errors.New("redis: no pool")
)

// Service is the subset of redis commands used by the exchange
type Service interface {
	Get(context ctx.Ctx, key string) ([]byte, error)
	Set(context ctx.Ctx, key string, val []byte, expire time.Duration) error
	// SetNX returns ErrKeyExists if key is already set
	SetNX(context ctx.Ctx, key string, val []byte, expire time.Duration) error
	// GetDel atomically reads and removes key
	GetDel(context ctx.Ctx, key string) ([]byte, error)
	Del(context ctx.Ctx, keys ...string) (int, error)
	// TTL returns Forever for a key without expiration and ErrNotFound for a missing key
	TTL(context ctx.Ctx, key string) (time.Duration, error)
	Publish(context ctx.Ctx, channel string, message []byte) (int, error)
}
