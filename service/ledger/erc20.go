package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/x-xyz/dealexchange/base/ctx"
)

// Erc20 gives access to every fungible token deployed on the ledger
type Erc20 struct {
	l *Ledger
}

func (l *Ledger) Erc20() *Erc20 {
	return &Erc20{l: l}
}

func tokenSlot(token, owner common.Address) slot {
	return slot{token: token, owner: owner}
}

func (e *Erc20) BalanceOf(c ctx.Ctx, token, owner common.Address) (*big.Int, error) {
	var bal *big.Int
	err := e.l.RunWithTransaction(c, func(ctx.Ctx) error {
		if _, err := e.l.contractOf(token, KindErc20); err != nil {
			return err
		}
		bal = e.l.balanceOf(tokenSlot(token, owner))
		return nil
	})
	return bal, err
}

func (e *Erc20) Allowance(c ctx.Ctx, token, owner, spender common.Address) (*big.Int, error) {
	res := new(big.Int)
	err := e.l.RunWithTransaction(c, func(ctx.Ctx) error {
		if _, err := e.l.contractOf(token, KindErc20); err != nil {
			return err
		}
		if a, ok := e.l.allowance[allowanceKey{token, owner, spender}]; ok {
			res.Set(a)
		}
		return nil
	})
	return res, err
}

// Mint credits to with newly issued tokens
func (e *Erc20) Mint(c ctx.Ctx, token, to common.Address, amount *big.Int) error {
	return e.l.RunWithTransaction(c, func(ctx.Ctx) error {
		if _, err := e.l.contractOf(token, KindErc20); err != nil {
			return err
		}
		if to == (common.Address{}) {
			return ErrTransferToZero
		}
		return e.l.credit(tokenSlot(token, to), amount)
	})
}

func (e *Erc20) Approve(c ctx.Ctx, token, owner, spender common.Address, amount *big.Int) error {
	return e.l.RunWithTransaction(c, func(ctx.Ctx) error {
		if _, err := e.l.contractOf(token, KindErc20); err != nil {
			return err
		}
		if amount == nil || amount.Sign() < 0 {
			return ErrInvalidAmount
		}
		e.l.setAllowance(allowanceKey{token, owner, spender}, new(big.Int).Set(amount))
		return nil
	})
}

func (e *Erc20) Transfer(c ctx.Ctx, token, from, to common.Address, amount *big.Int) error {
	return e.l.RunWithTransaction(c, func(c ctx.Ctx) error {
		return e.transfer(c, token, from, from, to, amount)
	})
}

// TransferFrom moves amount on behalf of from, spending spender's allowance
func (e *Erc20) TransferFrom(c ctx.Ctx, token, spender, from, to common.Address, amount *big.Int) error {
	return e.l.RunWithTransaction(c, func(c ctx.Ctx) error {
		if _, err := e.l.contractOf(token, KindErc20); err != nil {
			return err
		}
		if spender != from {
			key := allowanceKey{token, from, spender}
			allowed := new(big.Int)
			if a, ok := e.l.allowance[key]; ok {
				allowed.Set(a)
			}
			if amount == nil || allowed.Cmp(amount) < 0 {
				return ErrInsufficientAllow
			}
			e.l.setAllowance(key, allowed.Sub(allowed, amount))
		}
		return e.transfer(c, token, spender, from, to, amount)
	})
}

func (e *Erc20) transfer(c ctx.Ctx, token, operator, from, to common.Address, amount *big.Int) error {
	if _, err := e.l.contractOf(token, KindErc20); err != nil {
		return err
	}
	if to == (common.Address{}) {
		return ErrTransferToZero
	}
	if err := e.l.move(tokenSlot(token, from), tokenSlot(token, to), amount); err != nil {
		return err
	}
	return e.l.emit(c, TransferEvent{
		Kind:     KindErc20,
		Token:    token,
		Operator: operator,
		From:     from,
		To:       to,
		Amount:   new(big.Int).Set(amount),
	})
}
