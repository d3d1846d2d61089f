package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/x-xyz/dealexchange/base/ctx"
)

// Erc1155 gives access to every multi-quantity collection deployed on the ledger
type Erc1155 struct {
	l *Ledger
}

func (l *Ledger) Erc1155() *Erc1155 {
	return &Erc1155{l: l}
}

func itemSlot(token, owner common.Address, id *big.Int) slot {
	return slot{token: token, id: idKey(id), owner: owner}
}

func (e *Erc1155) BalanceOf(c ctx.Ctx, token, owner common.Address, id *big.Int) (*big.Int, error) {
	var bal *big.Int
	err := e.l.RunWithTransaction(c, func(ctx.Ctx) error {
		if _, err := e.l.contractOf(token, KindErc1155); err != nil {
			return err
		}
		bal = e.l.balanceOf(itemSlot(token, owner, id))
		return nil
	})
	return bal, err
}

func (e *Erc1155) Mint(c ctx.Ctx, token, minter, to common.Address, id, amount *big.Int) error {
	return e.l.RunWithTransaction(c, func(c ctx.Ctx) error {
		ct, err := e.l.contractOf(token, KindErc1155)
		if err != nil {
			return err
		}
		if ct.minter != minter {
			return ErrNotMinter
		}
		if to == (common.Address{}) {
			return ErrTransferToZero
		}
		if amount == nil || amount.Sign() <= 0 {
			return ErrInvalidAmount
		}
		if err := e.l.credit(itemSlot(token, to, id), amount); err != nil {
			return err
		}
		return e.l.emit(c, TransferEvent{
			Kind:     KindErc1155,
			Token:    token,
			Operator: minter,
			To:       to,
			Id:       new(big.Int).Set(id),
			Amount:   new(big.Int).Set(amount),
		})
	})
}

func (e *Erc1155) SetApprovalForAll(c ctx.Ctx, token, owner, operator common.Address, approved bool) error {
	return e.l.RunWithTransaction(c, func(ctx.Ctx) error {
		if _, err := e.l.contractOf(token, KindErc1155); err != nil {
			return err
		}
		e.l.setOperator(operatorKey{token, owner, operator}, approved)
		return nil
	})
}

func (e *Erc1155) IsApprovedForAll(c ctx.Ctx, token, owner, operator common.Address) bool {
	approved := false
	_ = e.l.RunWithTransaction(c, func(ctx.Ctx) error {
		approved = e.l.operators[operatorKey{token, owner, operator}]
		return nil
	})
	return approved
}

func (e *Erc1155) SafeTransferFrom(c ctx.Ctx, token, operator, from, to common.Address, id, amount *big.Int) error {
	return e.l.RunWithTransaction(c, func(c ctx.Ctx) error {
		if _, err := e.l.contractOf(token, KindErc1155); err != nil {
			return err
		}
		if operator != from && !e.l.operators[operatorKey{token, from, operator}] {
			return ErrNotOwnerNorApproved
		}
		if to == (common.Address{}) {
			return ErrTransferToZero
		}
		if err := e.l.move(itemSlot(token, from, id), itemSlot(token, to, id), amount); err != nil {
			return err
		}
		return e.l.emit(c, TransferEvent{
			Kind:     KindErc1155,
			Token:    token,
			Operator: operator,
			From:     from,
			To:       to,
			Id:       new(big.Int).Set(id),
			Amount:   new(big.Int).Set(amount),
		})
	})
}
