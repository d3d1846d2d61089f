package compound

import (
	"time"

	"github.com/x-xyz/dealexchange/base/ctx"
	"github.com/x-xyz/dealexchange/base/log"
	"github.com/x-xyz/dealexchange/service/cache/provider"
)

type impl struct {
	layers []provider.Provider
}

// NewCompound reads layers front to back and back fills the front layers on a
// hit, so put the cheapest layer first. A failing layer is skipped rather
// than failing the lookup.
func NewCompound(layers []provider.Provider) provider.Provider {
	return &impl{layers}
}

func (im *impl) Get(c ctx.Ctx, key string) ([]byte, time.Duration, error) {
	for idx, lyr := range im.layers {
		val, ttl, err := lyr.Get(c, key)
		if err == provider.ErrNotFound {
			continue
		} else if err != nil {
			c.WithFields(log.Fields{"err": err, "key": key, "layer": idx}).Warn("layer Get failed")
			continue
		}

		for _, front := range im.layers[:idx] {
			if err := front.Set(c, key, val, ttl); err != nil {
				c.WithFields(log.Fields{"err": err, "key": key}).Warn("back fill failed")
			}
		}
		return val, ttl, nil
	}
	return nil, time.Duration(0), provider.ErrNotFound
}

// Set writes every layer and reports the first failure
func (im *impl) Set(c ctx.Ctx, key string, value []byte, ttl time.Duration) error {
	var first error
	for _, lyr := range im.layers {
		if err := lyr.Set(c, key, value, ttl); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Del clears every layer and reports the first failure
func (im *impl) Del(c ctx.Ctx, key string) error {
	var first error
	for _, lyr := range im.layers {
		if err := lyr.Del(c, key); err != nil && first == nil {
			first = err
		}
	}
	return first
}
