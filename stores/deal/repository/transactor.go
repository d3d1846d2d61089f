package repository

import (
	"github.com/x-xyz/dealexchange/base/ctx"
	"github.com/x-xyz/dealexchange/domain/deal"
)

type chain struct {
	ts []deal.Transactor
}

// Chain composes transactors outermost-first: fn runs inside every one of them
// and a failure anywhere rolls all of them back
func Chain(ts ...deal.Transactor) deal.Transactor {
	return &chain{ts}
}

func (ch *chain) RunWithTransaction(c ctx.Ctx, fn func(ctx.Ctx) error) error {
	return ch.run(c, 0, fn)
}

func (ch *chain) run(c ctx.Ctx, i int, fn func(ctx.Ctx) error) error {
	if i == len(ch.ts) {
		return fn(c)
	}
	return ch.ts[i].RunWithTransaction(c, func(c ctx.Ctx) error {
		return ch.run(c, i+1, fn)
	})
}
