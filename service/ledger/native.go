package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/x-xyz/dealexchange/base/ctx"
)

// Native is the chain's native coin
type Native struct {
	l *Ledger
}

func (l *Ledger) Native() *Native {
	return &Native{l: l}
}

func nativeSlot(owner common.Address) slot {
	return slot{owner: owner}
}

func (n *Native) BalanceOf(c ctx.Ctx, owner common.Address) (*big.Int, error) {
	var bal *big.Int
	err := n.l.RunWithTransaction(c, func(ctx.Ctx) error {
		bal = n.l.balanceOf(nativeSlot(owner))
		return nil
	})
	return bal, err
}

// Deposit credits to out of thin air, used to fund accounts
func (n *Native) Deposit(c ctx.Ctx, to common.Address, amount *big.Int) error {
	return n.l.RunWithTransaction(c, func(ctx.Ctx) error {
		return n.l.credit(nativeSlot(to), amount)
	})
}

func (n *Native) Transfer(c ctx.Ctx, from, to common.Address, amount *big.Int) error {
	return n.l.RunWithTransaction(c, func(c ctx.Ctx) error {
		if to == (common.Address{}) {
			return ErrTransferToZero
		}
		if err := n.l.move(nativeSlot(from), nativeSlot(to), amount); err != nil {
			return err
		}
		return n.l.emit(c, TransferEvent{
			Kind:     KindNone,
			Operator: from,
			From:     from,
			To:       to,
			Amount:   new(big.Int).Set(amount),
		})
	})
}
