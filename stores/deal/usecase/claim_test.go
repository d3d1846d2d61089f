package usecase

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/x-xyz/dealexchange/base/ctx"
	"github.com/x-xyz/dealexchange/domain"
	"github.com/x-xyz/dealexchange/domain/deal"
	"github.com/x-xyz/dealexchange/service/cache"
	"github.com/x-xyz/dealexchange/service/cache/provider/primitive"
	"github.com/x-xyz/dealexchange/service/ledger"
	controller "github.com/x-xyz/dealexchange/stores/controller/usecase"
)

// settle runs the fixture deal through so the taker accrues its reward
func (s *dealSuite) settle() {
	s.fundTaker(weth, 200)
	s.mintToMaker(2)
	s.approveEngine(nft721)
	_, err := s.perform(s.taker)
	s.Require().NoError(err)
}

func (s *dealSuite) TestClaimNothing() {
	_, err := s.im.Claim(mockCtx, deal.CallOpts{From: s.taker})
	s.Equal(deal.ErrNoReward, err)
	s.Empty(s.claims)
}

func (s *dealSuite) TestClaimUnderfunded() {
	s.settle()
	s.Require().NoError(s.ledger.Erc20().Mint(mockCtx, rewardToken, engineAddr, big.NewInt(4)))

	_, err := s.im.Claim(mockCtx, deal.CallOpts{From: s.taker})
	s.Equal(deal.ErrRewardUnderfunded, err)
	s.Equal(int64(5), s.rewardOf(s.taker))
	s.Equal(int64(4), s.erc20(rewardToken, engineAddr))
}

func (s *dealSuite) TestClaim() {
	s.settle()
	s.Require().NoError(s.ledger.Erc20().Mint(mockCtx, rewardToken, engineAddr, big.NewInt(10)))

	paid, err := s.im.Claim(mockCtx, deal.CallOpts{From: s.taker})
	s.Require().NoError(err)
	s.Equal(int64(5), paid.Int64())
	s.Equal(int64(0), s.rewardOf(s.taker))
	s.Equal(int64(5), s.erc20(rewardToken, s.taker))
	s.Equal(int64(5), s.erc20(rewardToken, engineAddr))

	s.Require().Len(s.claims, 1)
	s.Equal(s.taker, s.claims[0].Claimant)
	s.Equal(rewardToken, s.claims[0].RewardToken)
	s.Equal(int64(5), s.claims[0].Amount.Int64())

	_, err = s.im.Claim(mockCtx, deal.CallOpts{From: s.taker})
	s.Equal(deal.ErrNoReward, err)
	s.Len(s.claims, 1)
}

func (s *dealSuite) TestClaimIsPerOwner() {
	s.settle()
	s.Require().NoError(s.ledger.Erc20().Mint(mockCtx, rewardToken, engineAddr, big.NewInt(10)))

	_, err := s.im.Claim(mockCtx, deal.CallOpts{From: stranger})
	s.Equal(deal.ErrNoReward, err)
	s.Equal(int64(5), s.rewardOf(s.taker))
}

func (s *dealSuite) TestReentrantClaim() {
	s.settle()
	s.Require().NoError(s.ledger.Erc20().Mint(mockCtx, rewardToken, engineAddr, big.NewInt(10)))

	var nested error
	entered := false
	s.ledger.OnTransfer(func(c ctx.Ctx, ev ledger.TransferEvent) error {
		if ev.Token != rewardToken || entered {
			return nil
		}
		entered = true
		_, nested = s.im.Claim(c, deal.CallOpts{From: s.taker})
		return nil
	})

	paid, err := s.im.Claim(mockCtx, deal.CallOpts{From: s.taker})
	s.Require().NoError(err)
	s.True(entered)
	s.Equal(deal.ErrNoReward, nested)
	s.Equal(int64(5), paid.Int64())
	s.Equal(int64(5), s.erc20(rewardToken, s.taker))
}

func (s *dealSuite) TestSetController() {
	next := controller.New(&controller.ControllerCfg{
		Address:         common.HexToAddress("0x00000000000000000000000000000000000000c1"),
		FeeTo:           feeTo,
		SupportPayments: []common.Address{weth},
		Signers:         []common.Address{s.broker},
		Minter:          s.ledger,
	})

	s.Equal(deal.ErrNotController, s.im.SetController(mockCtx, deal.CallOpts{From: stranger}, next))
	s.Equal(deal.ErrZeroController, s.im.SetController(mockCtx, deal.CallOpts{From: controllerAddr}, nil))
	s.Equal(deal.ErrZeroController, s.im.SetController(mockCtx, deal.CallOpts{From: controllerAddr},
		controller.New(&controller.ControllerCfg{})))
	s.Equal(controllerAddr, s.im.Controller().Address())

	s.Require().NoError(s.im.SetController(mockCtx, deal.CallOpts{From: controllerAddr}, next))
	s.Equal(next.Address(), s.im.Controller().Address())

	// the new schedule has no protocol fee
	s.settle()
	s.Equal(int64(195), s.erc20(weth, s.maker))
	s.Equal(int64(0), s.erc20(weth, feeTo))

	s.Equal(deal.ErrNotController, s.im.SetController(mockCtx, deal.CallOpts{From: controllerAddr}, s.controller))
}

func (s *dealSuite) TestGetStatusCached() {
	layer := primitive.NewPrimitive("status", 64)
	s.im.statusCache = cache.New(cache.ServiceConfig{
		Ttl:   time.Minute,
		Pfx:   "deal-status",
		Cache: layer,
	})

	hash, err := s.dealOrder.Hash(s.domain)
	s.Require().NoError(err)

	// misses are not cached
	_, err = s.im.GetStatus(mockCtx, hash)
	s.Equal(domain.ErrNotFound, err)

	s.settle()
	status, err := s.im.GetStatus(mockCtx, hash)
	s.Require().NoError(err)
	s.True(status.ProcessRes)

	status, err = s.im.GetStatus(mockCtx, hash)
	s.Require().NoError(err)
	s.Equal(hash, status.DealHash)
	s.True(status.Executed)
}
