package cache

import (
	"errors"
	"time"

	"github.com/x-xyz/dealexchange/base/ctx"
	"github.com/x-xyz/dealexchange/service/cache/provider"
)

var (
	ErrNotFound = errors.New("Cache not found")
)

// OneTimeGetter loads the value on a miss. It must return a pointer, a nil
// pointer is reported as ErrNotFound and left uncached.
type OneTimeGetter func() (interface{}, error)

type Serializer func(interface{}) ([]byte, error)

type Deserializer func([]byte, interface{}) error

// Service caches json documents under a key prefix with one ttl
type Service interface {
	// GetByFunc fills container from cache, or from getter on a miss or a
	// cache failure. Getter errors are returned as is and never cached.
	GetByFunc(c ctx.Ctx, key string, container interface{}, getter OneTimeGetter) error
	Get(c ctx.Ctx, key string, container interface{}) error
	Set(c ctx.Ctx, key string, value interface{}) error
	Del(c ctx.Ctx, key string) error
}

type ServiceConfig struct {
	Ttl         time.Duration
	Pfx         string
	Cache       provider.Provider
	Serialize   Serializer
	Deserialize Deserializer
}
