package repository

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/x-xyz/dealexchange/base/ctx"
	"github.com/x-xyz/dealexchange/domain"
	"github.com/x-xyz/dealexchange/domain/deal"
)

// Journal is a transactor that accepts undo steps for mutations made inside it
type Journal interface {
	deal.Transactor
	Record(undo func())
}

type memStatusRepo struct {
	journal Journal
	// guards the map for readers racing a running transaction
	mu       sync.RWMutex
	statuses map[common.Hash]deal.Status
}

// NewMemoryStatusRepo keeps statuses in process. Writes are journaled so a
// rolled back transaction of journal forgets them.
func NewMemoryStatusRepo(journal Journal) deal.StatusRepo {
	return &memStatusRepo{
		journal:  journal,
		statuses: make(map[common.Hash]deal.Status),
	}
}

func (im *memStatusRepo) FindOne(c ctx.Ctx, hash common.Hash) (*deal.Status, error) {
	im.mu.RLock()
	defer im.mu.RUnlock()
	s, ok := im.statuses[hash]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (im *memStatusRepo) Insert(c ctx.Ctx, status *deal.Status) error {
	return im.journal.RunWithTransaction(c, func(ctx.Ctx) error {
		im.mu.Lock()
		defer im.mu.Unlock()
		if _, ok := im.statuses[status.DealHash]; ok {
			return domain.ErrConflict
		}
		hash := status.DealHash
		im.statuses[hash] = *status
		im.journal.Record(func() {
			im.mu.Lock()
			defer im.mu.Unlock()
			delete(im.statuses, hash)
		})
		return nil
	})
}

type memRewardRepo struct {
	journal  Journal
	mu       sync.RWMutex
	balances map[common.Address]*big.Int
}

func NewMemoryRewardRepo(journal Journal) deal.RewardRepo {
	return &memRewardRepo{
		journal:  journal,
		balances: make(map[common.Address]*big.Int),
	}
}

func (im *memRewardRepo) BalanceOf(c ctx.Ctx, owner common.Address) (*big.Int, error) {
	im.mu.RLock()
	defer im.mu.RUnlock()
	if b, ok := im.balances[owner]; ok {
		return new(big.Int).Set(b), nil
	}
	return new(big.Int), nil
}

func (im *memRewardRepo) set(owner common.Address, v *big.Int) {
	im.mu.Lock()
	defer im.mu.Unlock()
	old, existed := im.balances[owner]
	im.balances[owner] = v
	im.journal.Record(func() {
		im.mu.Lock()
		defer im.mu.Unlock()
		if existed {
			im.balances[owner] = old
		} else {
			delete(im.balances, owner)
		}
	})
}

func (im *memRewardRepo) Accrue(c ctx.Ctx, owner common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return domain.ErrBadParamInput
	}
	return im.journal.RunWithTransaction(c, func(c ctx.Ctx) error {
		cur, _ := im.BalanceOf(c, owner)
		im.set(owner, cur.Add(cur, amount))
		return nil
	})
}

func (im *memRewardRepo) Reset(c ctx.Ctx, owner common.Address) error {
	return im.journal.RunWithTransaction(c, func(c ctx.Ctx) error {
		im.set(owner, new(big.Int))
		return nil
	})
}
