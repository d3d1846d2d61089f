package ledger

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/dealexchange/base/ctx"
	"github.com/x-xyz/dealexchange/domain/deal"
)

var (
	_ deal.NativeCoin   = (*Native)(nil)
	_ deal.PaymentToken = (*Erc20)(nil)
	_ deal.Erc721       = (*Erc721)(nil)
	_ deal.Erc1155      = (*Erc1155)(nil)
	_ deal.Transactor   = (*Ledger)(nil)
)

var (
	alice  = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob    = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	carol  = common.HexToAddress("0x00000000000000000000000000000000000ca201")
	minter = common.HexToAddress("0x000000000000000000000000000000000000beef")
	usdc   = common.HexToAddress("0x0000000000000000000000000000000000000020")
	punks  = common.HexToAddress("0x0000000000000000000000000000000000000721")
	items  = common.HexToAddress("0x0000000000000000000000000000000000001155")
)

type ledgerSuite struct {
	suite.Suite
	c ctx.Ctx
	l *Ledger
}

func (s *ledgerSuite) SetupTest() {
	s.c = ctx.Silent()
	s.l = New()
	s.Require().NoError(s.l.Deploy(s.c, usdc, KindErc20, common.Address{}))
	s.Require().NoError(s.l.Deploy(s.c, punks, KindErc721, minter))
	s.Require().NoError(s.l.Deploy(s.c, items, KindErc1155, minter))
}

func (s *ledgerSuite) balance20(owner common.Address) int64 {
	bal, err := s.l.Erc20().BalanceOf(s.c, usdc, owner)
	s.Require().NoError(err)
	return bal.Int64()
}

func (s *ledgerSuite) TestDeploy() {
	s.ErrorIs(s.l.Deploy(s.c, usdc, KindErc20, common.Address{}), ErrTokenDeployed)
	s.Equal(KindErc721, s.l.KindOf(s.c, punks))
	s.Equal(KindNone, s.l.KindOf(s.c, alice))
}

func (s *ledgerSuite) TestNative() {
	n := s.l.Native()
	s.Require().NoError(n.Deposit(s.c, alice, big.NewInt(10)))
	s.ErrorIs(n.Transfer(s.c, alice, bob, big.NewInt(11)), ErrInsufficientBalance)
	s.ErrorIs(n.Transfer(s.c, alice, common.Address{}, big.NewInt(1)), ErrTransferToZero)
	s.Require().NoError(n.Transfer(s.c, alice, bob, big.NewInt(4)))

	bal, err := n.BalanceOf(s.c, alice)
	s.Require().NoError(err)
	s.Equal(int64(6), bal.Int64())
	bal, err = n.BalanceOf(s.c, bob)
	s.Require().NoError(err)
	s.Equal(int64(4), bal.Int64())
}

func (s *ledgerSuite) TestErc20() {
	e := s.l.Erc20()
	s.Require().NoError(e.Mint(s.c, usdc, alice, big.NewInt(100)))

	s.ErrorIs(e.TransferFrom(s.c, usdc, bob, alice, carol, big.NewInt(10)), ErrInsufficientAllow)
	s.Require().NoError(e.Approve(s.c, usdc, alice, bob, big.NewInt(30)))
	s.Require().NoError(e.TransferFrom(s.c, usdc, bob, alice, carol, big.NewInt(10)))

	allowed, err := e.Allowance(s.c, usdc, alice, bob)
	s.Require().NoError(err)
	s.Equal(int64(20), allowed.Int64())
	s.Equal(int64(90), s.balance20(alice))
	s.Equal(int64(10), s.balance20(carol))

	s.Require().NoError(e.Transfer(s.c, usdc, carol, bob, big.NewInt(10)))
	s.Equal(int64(10), s.balance20(bob))
	s.ErrorIs(e.Transfer(s.c, usdc, carol, bob, big.NewInt(1)), ErrInsufficientBalance)

	_, err = e.BalanceOf(s.c, punks, alice)
	s.ErrorIs(err, ErrUnknownToken)
}

func (s *ledgerSuite) TestErc721() {
	e := s.l.Erc721()
	id := big.NewInt(1)
	s.ErrorIs(e.Mint(s.c, punks, alice, alice, id), ErrNotMinter)
	s.Require().NoError(e.Mint(s.c, punks, minter, alice, id))
	s.ErrorIs(e.Mint(s.c, punks, minter, bob, id), ErrTokenExists)

	s.ErrorIs(e.SafeTransferFrom(s.c, punks, bob, alice, bob, id), ErrNotOwnerNorApproved)
	s.Require().NoError(e.SetApprovalForAll(s.c, punks, alice, bob, true))
	s.ErrorIs(e.SafeTransferFrom(s.c, punks, bob, carol, bob, id), ErrIncorrectOwner)
	s.Require().NoError(e.SafeTransferFrom(s.c, punks, bob, alice, bob, id))

	owner, err := e.OwnerOf(s.c, punks, id)
	s.Require().NoError(err)
	s.Equal(bob, owner)

	// single item approval is cleared on transfer
	s.Require().NoError(e.Approve(s.c, punks, bob, carol, id))
	s.Require().NoError(e.SafeTransferFrom(s.c, punks, carol, bob, carol, id))
	s.ErrorIs(e.SafeTransferFrom(s.c, punks, bob, carol, bob, id), ErrNotOwnerNorApproved)

	_, err = e.OwnerOf(s.c, punks, big.NewInt(2))
	s.ErrorIs(err, ErrNonexistentToken)
}

func (s *ledgerSuite) TestErc1155() {
	e := s.l.Erc1155()
	id := big.NewInt(7)
	s.Require().NoError(e.Mint(s.c, items, minter, alice, id, big.NewInt(5)))

	s.ErrorIs(e.SafeTransferFrom(s.c, items, bob, alice, bob, id, big.NewInt(1)), ErrNotOwnerNorApproved)
	s.Require().NoError(e.SetApprovalForAll(s.c, items, alice, bob, true))
	s.True(e.IsApprovedForAll(s.c, items, alice, bob))
	s.ErrorIs(e.SafeTransferFrom(s.c, items, bob, alice, bob, id, big.NewInt(6)), ErrInsufficientBalance)
	s.Require().NoError(e.SafeTransferFrom(s.c, items, bob, alice, bob, id, big.NewInt(2)))

	bal, err := e.BalanceOf(s.c, items, bob, id)
	s.Require().NoError(err)
	s.Equal(int64(2), bal.Int64())
	bal, err = e.BalanceOf(s.c, items, alice, id)
	s.Require().NoError(err)
	s.Equal(int64(3), bal.Int64())
}

func (s *ledgerSuite) TestMint() {
	s.ErrorIs(s.l.Mint(s.c, punks, minter, alice, big.NewInt(1), big.NewInt(2)), ErrInvalidAmount)
	s.Require().NoError(s.l.Mint(s.c, punks, minter, alice, big.NewInt(1), big.NewInt(1)))
	s.Require().NoError(s.l.Mint(s.c, items, minter, alice, big.NewInt(1), big.NewInt(3)))
	s.ErrorIs(s.l.Mint(s.c, usdc, minter, alice, big.NewInt(1), big.NewInt(1)), ErrUnknownToken)
}

func (s *ledgerSuite) TestRollback() {
	e := s.l.Erc20()
	s.Require().NoError(e.Mint(s.c, usdc, alice, big.NewInt(100)))
	s.Require().NoError(e.Approve(s.c, usdc, alice, bob, big.NewInt(100)))

	errBoom := errors.New("boom")
	err := s.l.RunWithTransaction(s.c, func(c ctx.Ctx) error {
		s.Require().NoError(e.TransferFrom(c, usdc, bob, alice, carol, big.NewInt(40)))
		s.Require().NoError(s.l.Erc721().Mint(c, punks, minter, carol, big.NewInt(1)))
		s.Equal(int64(40), s.balanceIn(c, carol))
		return errBoom
	})
	s.ErrorIs(err, errBoom)

	s.Equal(int64(100), s.balance20(alice))
	s.Equal(int64(0), s.balance20(carol))
	allowed, err := e.Allowance(s.c, usdc, alice, bob)
	s.Require().NoError(err)
	s.Equal(int64(100), allowed.Int64())
	_, err = s.l.Erc721().OwnerOf(s.c, punks, big.NewInt(1))
	s.ErrorIs(err, ErrNonexistentToken)
}

func (s *ledgerSuite) balanceIn(c ctx.Ctx, owner common.Address) int64 {
	bal, err := s.l.Erc20().BalanceOf(c, usdc, owner)
	s.Require().NoError(err)
	return bal.Int64()
}

func (s *ledgerSuite) TestNestedRollback() {
	e := s.l.Erc20()
	s.Require().NoError(e.Mint(s.c, usdc, alice, big.NewInt(100)))

	errInner := errors.New("inner")
	err := s.l.RunWithTransaction(s.c, func(c ctx.Ctx) error {
		s.Require().NoError(e.Transfer(c, usdc, alice, bob, big.NewInt(10)))
		inner := s.l.RunWithTransaction(c, func(c ctx.Ctx) error {
			s.Require().NoError(e.Transfer(c, usdc, alice, carol, big.NewInt(20)))
			return errInner
		})
		s.ErrorIs(inner, errInner)
		return nil
	})
	s.Require().NoError(err)

	// outer leg kept, inner leg reverted
	s.Equal(int64(90), s.balance20(alice))
	s.Equal(int64(10), s.balance20(bob))
	s.Equal(int64(0), s.balance20(carol))
}

func (s *ledgerSuite) TestTransferHook() {
	e := s.l.Erc20()
	s.Require().NoError(e.Mint(s.c, usdc, alice, big.NewInt(100)))

	seen := []TransferEvent{}
	s.l.OnTransfer(func(c ctx.Ctx, ev TransferEvent) error {
		seen = append(seen, ev)
		if ev.To == carol {
			return errors.New("carol rejects tokens")
		}
		return nil
	})

	s.Require().NoError(e.Transfer(s.c, usdc, alice, bob, big.NewInt(1)))
	s.Error(e.Transfer(s.c, usdc, alice, carol, big.NewInt(1)))
	s.Len(seen, 2)
	s.Equal(bob, seen[0].To)
	s.Equal(int64(0), s.balance20(carol))
	s.Equal(int64(99), s.balance20(alice))
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(ledgerSuite))
}
