/*
Package ledger is an in-process host for the assets a settlement touches:
native coin, fungible tokens, unique-item and multi-quantity collections.

Every mutation is journaled. RunWithTransaction serializes callers globally and
reverts the journal when the callback fails, so a failed call leaves no trace.
Calls made with a context that is already inside a transaction of the same
ledger (e.g. from a transfer hook) run inline with their own nested snapshot.
*/
package ledger

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/x-xyz/dealexchange/base/ctx"
)

var (
	ErrNotOwnerNorApproved = errors.New("caller is not owner nor approved")
	ErrInsufficientBalance = errors.New("insufficient balance for transfer")
	ErrInsufficientAllow   = errors.New("insufficient allowance")
	ErrTransferToZero      = errors.New("transfer to the zero address")
	ErrIncorrectOwner      = errors.New("transfer from incorrect owner")
	ErrNonexistentToken    = errors.New("owner query for nonexistent token")
	ErrTokenExists         = errors.New("token already minted")
	ErrNotMinter           = errors.New("caller is not the minter")
	ErrUnknownToken        = errors.New("unknown token contract")
	ErrTokenDeployed       = errors.New("token contract already deployed")
	ErrInvalidAmount       = errors.New("invalid amount")
)

type Kind int

const (
	KindNone Kind = iota
	KindErc20
	KindErc721
	KindErc1155
)

func (k Kind) String() string {
	switch k {
	case KindErc20:
		return "erc20"
	case KindErc721:
		return "erc721"
	case KindErc1155:
		return "erc1155"
	}
	return "native"
}

// TransferEvent describes one executed movement of value
type TransferEvent struct {
	Kind     Kind
	Token    common.Address
	Operator common.Address
	From     common.Address
	To       common.Address
	Id       *big.Int
	Amount   *big.Int
}

// TransferHook runs after every transfer inside the caller's transaction.
// Returning an error fails the transfer.
type TransferHook func(ctx ctx.Ctx, ev TransferEvent) error

type slot struct {
	token common.Address
	id    string
	owner common.Address
}

type allowanceKey struct {
	token   common.Address
	owner   common.Address
	spender common.Address
}

type itemKey struct {
	token common.Address
	id    string
}

type operatorKey struct {
	token    common.Address
	owner    common.Address
	operator common.Address
}

type contract struct {
	kind   Kind
	minter common.Address
}

type txKey struct{}

type Ledger struct {
	mu sync.Mutex

	contracts map[common.Address]contract
	balances  map[slot]*big.Int
	allowance map[allowanceKey]*big.Int
	owners    map[itemKey]common.Address
	approvals map[itemKey]common.Address
	operators map[operatorKey]bool

	journal []func()
	hooks   []TransferHook
}

func New() *Ledger {
	return &Ledger{
		contracts: make(map[common.Address]contract),
		balances:  make(map[slot]*big.Int),
		allowance: make(map[allowanceKey]*big.Int),
		owners:    make(map[itemKey]common.Address),
		approvals: make(map[itemKey]common.Address),
		operators: make(map[operatorKey]bool),
	}
}

func (l *Ledger) inTx(c ctx.Ctx) bool {
	if c.Context == nil {
		return false
	}
	v, _ := c.Value(txKey{}).(*Ledger)
	return v == l
}

// RunWithTransaction runs fn atomically against the ledger and every store journaling through it
func (l *Ledger) RunWithTransaction(c ctx.Ctx, fn func(ctx.Ctx) error) (err error) {
	if l.inTx(c) {
		mark := len(l.journal)
		defer func() {
			if r := recover(); r != nil {
				l.revert(mark)
				panic(r)
			}
		}()
		if err := fn(c); err != nil {
			l.revert(mark)
			return err
		}
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.journal = nil
	defer func() {
		if r := recover(); r != nil {
			l.revert(0)
			l.journal = nil
			panic(r)
		}
	}()

	if err := fn(ctx.WithValue(c, txKey{}, l)); err != nil {
		l.revert(0)
		l.journal = nil
		return err
	}
	l.journal = nil
	return nil
}

// Record appends an undo step to the running transaction. It must only be
// called from inside RunWithTransaction.
func (l *Ledger) Record(undo func()) {
	l.journal = append(l.journal, undo)
}

func (l *Ledger) revert(mark int) {
	for i := len(l.journal) - 1; i >= mark; i-- {
		l.journal[i]()
	}
	l.journal = l.journal[:mark]
}

// OnTransfer registers a hook fired after each transfer
func (l *Ledger) OnTransfer(hook TransferHook) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hooks = append(l.hooks, hook)
}

func (l *Ledger) emit(c ctx.Ctx, ev TransferEvent) error {
	for _, hook := range l.hooks {
		if err := hook(c, ev); err != nil {
			return err
		}
	}
	return nil
}

// Deploy registers a token contract. minter is the only account allowed to mint
// collection items, it is ignored for fungible tokens.
func (l *Ledger) Deploy(c ctx.Ctx, token common.Address, kind Kind, minter common.Address) error {
	return l.RunWithTransaction(c, func(c ctx.Ctx) error {
		if _, ok := l.contracts[token]; ok {
			return ErrTokenDeployed
		}
		if kind == KindNone || token == (common.Address{}) {
			return fmt.Errorf("invalid contract %s of kind %s", token.Hex(), kind)
		}
		l.contracts[token] = contract{kind: kind, minter: minter}
		l.Record(func() { delete(l.contracts, token) })
		return nil
	})
}

// KindOf returns the kind a token was deployed as
func (l *Ledger) KindOf(c ctx.Ctx, token common.Address) Kind {
	var kind Kind
	_ = l.RunWithTransaction(c, func(ctx.Ctx) error {
		kind = l.contracts[token].kind
		return nil
	})
	return kind
}

// Mint creates quantity units of id on a collection. Unique items take exactly one.
func (l *Ledger) Mint(c ctx.Ctx, token, minter, to common.Address, id, quantity *big.Int) error {
	switch l.KindOf(c, token) {
	case KindErc721:
		if quantity == nil || quantity.Cmp(big.NewInt(1)) != 0 {
			return ErrInvalidAmount
		}
		return l.Erc721().Mint(c, token, minter, to, id)
	case KindErc1155:
		return l.Erc1155().Mint(c, token, minter, to, id, quantity)
	}
	return ErrUnknownToken
}

func (l *Ledger) contractOf(token common.Address, kind Kind) (contract, error) {
	ct, ok := l.contracts[token]
	if !ok || ct.kind != kind {
		return contract{}, ErrUnknownToken
	}
	return ct, nil
}

func (l *Ledger) balanceOf(s slot) *big.Int {
	if b, ok := l.balances[s]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

func (l *Ledger) setBalance(s slot, v *big.Int) {
	old, existed := l.balances[s]
	l.balances[s] = v
	l.Record(func() {
		if existed {
			l.balances[s] = old
		} else {
			delete(l.balances, s)
		}
	})
}

// move debits from and credits to, from and to may be equal
func (l *Ledger) move(from, to slot, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	bal := l.balanceOf(from)
	if bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	l.setBalance(from, bal.Sub(bal, amount))
	l.setBalance(to, new(big.Int).Add(l.balanceOf(to), amount))
	return nil
}

func (l *Ledger) credit(to slot, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	l.setBalance(to, new(big.Int).Add(l.balanceOf(to), amount))
	return nil
}

func (l *Ledger) setAllowance(k allowanceKey, v *big.Int) {
	old, existed := l.allowance[k]
	l.allowance[k] = v
	l.Record(func() {
		if existed {
			l.allowance[k] = old
		} else {
			delete(l.allowance, k)
		}
	})
}

func (l *Ledger) setOwner(k itemKey, owner common.Address) {
	old, existed := l.owners[k]
	l.owners[k] = owner
	l.Record(func() {
		if existed {
			l.owners[k] = old
		} else {
			delete(l.owners, k)
		}
	})
}

func (l *Ledger) setApproval(k itemKey, spender common.Address) {
	old, existed := l.approvals[k]
	if spender == (common.Address{}) {
		delete(l.approvals, k)
	} else {
		l.approvals[k] = spender
	}
	l.Record(func() {
		if existed {
			l.approvals[k] = old
		} else {
			delete(l.approvals, k)
		}
	})
}

func (l *Ledger) setOperator(k operatorKey, approved bool) {
	old := l.operators[k]
	l.operators[k] = approved
	l.Record(func() { l.operators[k] = old })
}

func idKey(id *big.Int) string {
	if id == nil {
		return ""
	}
	return id.String()
}
