package ctx

import (
	"context"
	"time"

	log "github.com/x-xyz/dealexchange/base/log"
)

type Ctx struct {
	context.Context
	log.Logger
}

func Background() Ctx {
	return Ctx{
		Context: context.Background(),
		Logger:  log.Log(),
	}
}

// Silent is a background context whose logger discards everything.
func Silent() Ctx {
	return Ctx{
		Context: context.Background(),
		Logger:  log.Nop(),
	}
}

// From keeps the logger of parent but swaps the underlying context.
func From(parent Ctx, c context.Context) Ctx {
	return Ctx{
		Context: c,
		Logger:  parent.Logger,
	}
}

func WithValue(parent Ctx, key interface{}, val interface{}) Ctx {
	logger := parent.Logger
	if k, ok := key.(string); ok {
		logger = logger.WithField(k, val)
	}
	return Ctx{
		Context: context.WithValue(parent, key, val),
		Logger:  logger,
	}
}

func WithValues(parent Ctx, kvs map[string]interface{}) Ctx {
	c := parent
	for k, v := range kvs {
		c = WithValue(c, k, v)
	}
	return c
}

func WithTimeout(parent Ctx, timeout time.Duration) (Ctx, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return Ctx{
		Context: ctx,
		Logger:  parent.Logger,
	}, cancel
}
