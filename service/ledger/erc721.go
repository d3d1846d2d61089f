package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/x-xyz/dealexchange/base/ctx"
)

// Erc721 gives access to every unique-item collection deployed on the ledger
type Erc721 struct {
	l *Ledger
}

func (l *Ledger) Erc721() *Erc721 {
	return &Erc721{l: l}
}

func (e *Erc721) OwnerOf(c ctx.Ctx, token common.Address, id *big.Int) (common.Address, error) {
	var owner common.Address
	err := e.l.RunWithTransaction(c, func(ctx.Ctx) error {
		if _, err := e.l.contractOf(token, KindErc721); err != nil {
			return err
		}
		o, ok := e.l.owners[itemKey{token, idKey(id)}]
		if !ok {
			return ErrNonexistentToken
		}
		owner = o
		return nil
	})
	return owner, err
}

func (e *Erc721) Mint(c ctx.Ctx, token, minter, to common.Address, id *big.Int) error {
	return e.l.RunWithTransaction(c, func(c ctx.Ctx) error {
		ct, err := e.l.contractOf(token, KindErc721)
		if err != nil {
			return err
		}
		if ct.minter != minter {
			return ErrNotMinter
		}
		if to == (common.Address{}) {
			return ErrTransferToZero
		}
		key := itemKey{token, idKey(id)}
		if _, ok := e.l.owners[key]; ok {
			return ErrTokenExists
		}
		e.l.setOwner(key, to)
		e.l.setBalance(tokenSlot(token, to), new(big.Int).Add(e.l.balanceOf(tokenSlot(token, to)), big.NewInt(1)))
		return e.l.emit(c, TransferEvent{
			Kind:     KindErc721,
			Token:    token,
			Operator: minter,
			To:       to,
			Id:       new(big.Int).Set(id),
			Amount:   big.NewInt(1),
		})
	})
}

// Approve lets spender move one item, caller must be owner or operator
func (e *Erc721) Approve(c ctx.Ctx, token, caller, spender common.Address, id *big.Int) error {
	return e.l.RunWithTransaction(c, func(ctx.Ctx) error {
		if _, err := e.l.contractOf(token, KindErc721); err != nil {
			return err
		}
		key := itemKey{token, idKey(id)}
		owner, ok := e.l.owners[key]
		if !ok {
			return ErrNonexistentToken
		}
		if caller != owner && !e.l.operators[operatorKey{token, owner, caller}] {
			return ErrNotOwnerNorApproved
		}
		e.l.setApproval(key, spender)
		return nil
	})
}

func (e *Erc721) SetApprovalForAll(c ctx.Ctx, token, owner, operator common.Address, approved bool) error {
	return e.l.RunWithTransaction(c, func(ctx.Ctx) error {
		if _, err := e.l.contractOf(token, KindErc721); err != nil {
			return err
		}
		e.l.setOperator(operatorKey{token, owner, operator}, approved)
		return nil
	})
}

func (e *Erc721) SafeTransferFrom(c ctx.Ctx, token, operator, from, to common.Address, id *big.Int) error {
	return e.l.RunWithTransaction(c, func(c ctx.Ctx) error {
		if _, err := e.l.contractOf(token, KindErc721); err != nil {
			return err
		}
		key := itemKey{token, idKey(id)}
		owner, ok := e.l.owners[key]
		if !ok {
			return ErrNonexistentToken
		}
		if operator != owner && !e.l.operators[operatorKey{token, owner, operator}] && e.l.approvals[key] != operator {
			return ErrNotOwnerNorApproved
		}
		if owner != from {
			return ErrIncorrectOwner
		}
		if to == (common.Address{}) {
			return ErrTransferToZero
		}
		e.l.setApproval(key, common.Address{})
		e.l.setOwner(key, to)
		if err := e.l.move(tokenSlot(token, from), tokenSlot(token, to), big.NewInt(1)); err != nil {
			return err
		}
		return e.l.emit(c, TransferEvent{
			Kind:     KindErc721,
			Token:    token,
			Operator: operator,
			From:     from,
			To:       to,
			Id:       new(big.Int).Set(id),
			Amount:   big.NewInt(1),
		})
	})
}
