package usecase

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"

	"github.com/x-xyz/dealexchange/base/ctx"
	"github.com/x-xyz/dealexchange/domain"
	"github.com/x-xyz/dealexchange/domain/deal"
	"github.com/x-xyz/dealexchange/domain/deal/mocks"
	"github.com/x-xyz/dealexchange/service/ledger"
	controller "github.com/x-xyz/dealexchange/stores/controller/usecase"
)

func (s *dealSuite) TestPerformTransfersMintedItem() {
	s.fundTaker(weth, 200)
	s.mintToMaker(2)
	s.approveEngine(nft721)

	receipt, err := s.perform(s.taker)
	s.Require().NoError(err)
	s.True(receipt.ProcessRes)
	// protocol 2% + author 2.5% of 200
	s.Equal(int64(9), receipt.TotalFee.Int64())
	s.Equal(s.dealOrder.MakerOrderHash, receipt.MakerOrderHash)

	s.Equal(int64(0), s.erc20(weth, s.taker))
	s.Equal(int64(191), s.erc20(weth, s.maker))
	s.Equal(int64(4), s.erc20(weth, feeTo))
	s.Equal(int64(5), s.erc20(weth, author))
	s.Equal(s.taker, s.ownerOf(2))
	s.Equal(int64(5), s.rewardOf(s.taker))

	status, err := s.im.GetStatus(mockCtx, receipt.DealHash)
	s.Require().NoError(err)
	s.True(status.Executed)
	s.True(status.ProcessRes)

	s.Require().Len(s.deals, 1)
	ev := s.deals[0]
	s.Equal(receipt.DealHash, ev.DealHash)
	s.Equal(receipt.MakerOrderHash, ev.MakerOrderHash)
	s.Equal(deal.SaleTypeMarket, ev.SaleType)
	s.Equal(s.maker, ev.Maker)
	s.Equal(s.taker, ev.Taker)
	s.Equal(int64(200), ev.DealAmount.Int64())
	s.Equal(int64(9), ev.TotalFee.Int64())
	s.True(ev.ProcessRes)
	s.NotEmpty(ev.Id)
}

func (s *dealSuite) TestReplay() {
	s.fundTaker(weth, 400)
	s.mintToMaker(2)
	s.approveEngine(nft721)

	_, err := s.perform(s.taker)
	s.Require().NoError(err)

	_, err = s.perform(s.taker)
	s.Equal(deal.ErrDealCompleted, err)
	s.Equal(int64(200), s.erc20(weth, s.taker))
	s.Equal(int64(5), s.rewardOf(s.taker))
	s.Len(s.deals, 1)
}

func (s *dealSuite) TestMintedNeedsBalanceAndApproval() {
	s.fundTaker(weth, 200)

	// maker does not hold the item
	_, err := s.perform(s.taker)
	s.ErrorIs(err, ledger.ErrNonexistentToken)
	s.assertUntouched(200)

	// maker holds it but the engine is not approved
	s.mintToMaker(2)
	_, err = s.perform(s.taker)
	s.ErrorIs(err, ledger.ErrNotOwnerNorApproved)
	s.Equal("deliver item: caller is not owner nor approved", err.Error())
	s.assertUntouched(200)
	s.Equal(s.maker, s.ownerOf(2))

	s.approveEngine(nft721)
	receipt, err := s.perform(s.taker)
	s.Require().NoError(err)
	s.True(receipt.ProcessRes)
	s.Equal(s.taker, s.ownerOf(2))
}

func (s *dealSuite) TestTakerFundsRequired() {
	s.mintToMaker(2)
	s.approveEngine(nft721)

	_, err := s.perform(s.taker)
	s.ErrorIs(err, ledger.ErrInsufficientAllow)

	s.Require().NoError(s.ledger.Erc20().Approve(mockCtx, weth, s.taker, engineAddr, big.NewInt(200)))
	_, err = s.perform(s.taker)
	s.ErrorIs(err, ledger.ErrInsufficientBalance)
	s.Equal(s.maker, s.ownerOf(2))
}

func (s *dealSuite) TestPerformMintsToTaker() {
	s.dealOrder.Minted = false
	s.sign()
	s.fundTaker(weth, 200)

	receipt, err := s.perform(s.taker)
	s.Require().NoError(err)
	s.True(receipt.ProcessRes)
	s.Equal(s.taker, s.ownerOf(2))
	s.Equal(int64(191), s.erc20(weth, s.maker))
}

func (s *dealSuite) TestPerformMints1155ToTaker() {
	s.nftInfo.NftToken = nft1155
	s.nftInfo.NftType = deal.NftTypeErc1155
	s.dealOrder.Minted = false
	s.sign()
	s.fundTaker(weth, 200)

	_, err := s.perform(s.taker)
	s.Require().NoError(err)
	b, err := s.ledger.Erc1155().BalanceOf(mockCtx, nft1155, s.taker, big.NewInt(2))
	s.Require().NoError(err)
	s.Equal(int64(1), b.Int64())
}

func (s *dealSuite) TestMintNeedsSingleUnitListing() {
	s.makerOrder.Quantity = big.NewInt(2)
	s.dealOrder.Minted = false
	s.sign()
	s.fundTaker(weth, 200)

	_, err := s.perform(s.taker)
	s.Equal(deal.ErrMintQuantity, err)
	s.assertUntouched(200)
}

func (s *dealSuite) TestPerformTransfersPartial1155() {
	s.nftInfo.NftToken = nft1155
	s.nftInfo.NftType = deal.NftTypeErc1155
	s.makerOrder.Quantity = big.NewInt(5)
	s.dealOrder.Quantity = big.NewInt(3)
	s.dealOrder.DealAmount = big.NewInt(600)
	s.sign()

	s.fundTaker(weth, 600)
	s.Require().NoError(s.ledger.Erc1155().Mint(mockCtx, nft1155, controllerAddr, s.maker, big.NewInt(2), big.NewInt(5)))
	s.approveEngine(nft1155)

	receipt, err := s.perform(s.taker)
	s.Require().NoError(err)
	s.Equal(int64(12+15), receipt.TotalFee.Int64())

	b, _ := s.ledger.Erc1155().BalanceOf(mockCtx, nft1155, s.taker, big.NewInt(2))
	s.Equal(int64(3), b.Int64())
	b, _ = s.ledger.Erc1155().BalanceOf(mockCtx, nft1155, s.maker, big.NewInt(2))
	s.Equal(int64(2), b.Int64())
}

func (s *dealSuite) TestMaker1155BalanceTooLow() {
	s.nftInfo.NftToken = nft1155
	s.nftInfo.NftType = deal.NftTypeErc1155
	s.makerOrder.Quantity = big.NewInt(5)
	s.dealOrder.Quantity = big.NewInt(3)
	s.dealOrder.DealAmount = big.NewInt(600)
	s.sign()

	s.fundTaker(weth, 600)
	s.Require().NoError(s.ledger.Erc1155().Mint(mockCtx, nft1155, controllerAddr, s.maker, big.NewInt(2), big.NewInt(2)))
	s.approveEngine(nft1155)

	_, err := s.perform(s.taker)
	s.ErrorIs(err, ledger.ErrInsufficientBalance)
	s.assertUntouched(600)
}

func (s *dealSuite) TestQuantityOverrun() {
	s.dealOrder.Quantity = big.NewInt(2)
	s.dealOrder.DealAmount = big.NewInt(400)

	// stale signatures do not matter, quantity is checked first
	_, err := s.perform(s.taker)
	s.Equal(deal.ErrQuantityVerification, err)

	s.sign()
	_, err = s.perform(s.taker)
	s.Equal(deal.ErrQuantityVerification, err)

	s.dealOrder.Quantity = big.NewInt(0)
	s.sign()
	_, err = s.perform(s.taker)
	s.Equal(deal.ErrQuantityVerification, err)
}

func (s *dealSuite) TestTokenData() {
	s.nftInfo.BatchPrices[1] = big.NewInt(250)
	s.sign()
	_, err := s.perform(s.taker)
	s.Equal(deal.ErrTokenDataValidation, err)

	s.nftInfo.BatchPrices[1] = big.NewInt(200)
	s.nftInfo.TokenId = big.NewInt(4)
	s.sign()
	_, err = s.perform(s.taker)
	s.Equal(deal.ErrTokenDataValidation, err)

	s.nftInfo.TokenId = big.NewInt(2)
	s.nftInfo.BatchPrices = s.nftInfo.BatchPrices[:2]
	s.sign()
	_, err = s.perform(s.taker)
	s.Equal(deal.ErrBatchArraysMismatch, err)
}

func (s *dealSuite) TestDealAmountBelowPrice() {
	s.dealOrder.DealAmount = big.NewInt(199)
	s.sign()
	_, err := s.perform(s.taker)
	s.Equal(deal.ErrDealAmountTooLow, err)
}

func (s *dealSuite) TestListingSwapRejected() {
	// a deal signed for one listing cannot settle another
	other := *s.makerOrder
	other.Price = big.NewInt(100)
	s.Require().NoError(other.Sign(s.domain, s.nftInfo, s.makerKey))
	s.nftInfo.TokenId = big.NewInt(1)

	_, err := s.im.PerformOrder(mockCtx, deal.CallOpts{From: s.taker}, s.nftInfo, &other, s.dealOrder)
	s.Equal(deal.ErrMakerOrderHash, err)
}

func (s *dealSuite) TestCallerAuthorization() {
	s.fundTaker(weth, 200)
	s.mintToMaker(2)
	s.approveEngine(nft721)

	_, err := s.perform(stranger)
	s.Equal(deal.ErrCallerNotTaker, err)
	_, err = s.perform(s.broker)
	s.Equal(deal.ErrCallerNotTaker, err)

	s.makerOrder.SaleType = deal.SaleTypeAuction
	s.sign()
	_, err = s.perform(s.taker)
	s.Equal(deal.ErrCallerNotSigner, err)

	_, err = s.perform(s.broker)
	s.Require().NoError(err)
}

func (s *dealSuite) TestDeadline() {
	s.fundTaker(weth, 200)
	s.mintToMaker(2)
	s.approveEngine(nft721)

	timeNow = func() time.Time { return time.Unix(3001, 0) }
	_, err := s.perform(s.taker)
	s.Equal(deal.ErrTransactionTooOld, err)
	s.Equal("transaction too old", err.Error())

	// the deadline second itself is still valid
	timeNow = func() time.Time { return time.Unix(3000, 0) }
	_, err = s.perform(s.taker)
	s.Require().NoError(err)
}

func (s *dealSuite) TestPaymentNotSupported() {
	s.makerOrder.PaymentToken = stranger
	s.sign()
	_, err := s.perform(s.taker)
	s.Equal(deal.ErrPaymentNotSupported, err)
}

func (s *dealSuite) TestSignatureTampering() {
	tests := []struct {
		desc   string
		tamper func()
		exp    error
	}{
		{
			desc: "listing end time changed after maker signed",
			tamper: func() {
				s.makerOrder.EndTime = big.NewInt(9999)
				hash, err := s.makerOrder.Hash(s.domain)
				s.Require().NoError(err)
				s.dealOrder.MakerOrderHash = hash
				s.Require().NoError(s.dealOrder.SignTaker(s.domain, s.takerKey))
				s.Require().NoError(s.dealOrder.SignBroker(s.domain, s.brokerKey))
			},
			exp: deal.ErrMakerSignature,
		},
		{
			desc: "listing signed by another key",
			tamper: func() {
				s.Require().NoError(s.makerOrder.Sign(s.domain, s.nftInfo, mustKey()))
			},
			exp: deal.ErrMakerSignature,
		},
		{
			desc: "deadline changed after taker signed",
			tamper: func() {
				s.dealOrder.Deadline = big.NewInt(4000)
				s.Require().NoError(s.dealOrder.SignBroker(s.domain, s.brokerKey))
			},
			exp: deal.ErrTakerSignature,
		},
		{
			desc: "deal amount changed after taker signed",
			tamper: func() {
				s.dealOrder.DealAmount = big.NewInt(300)
				s.Require().NoError(s.dealOrder.SignBroker(s.domain, s.brokerKey))
			},
			exp: deal.ErrTakerSignature,
		},
		{
			desc: "reward changed after broker signed",
			tamper: func() {
				s.dealOrder.RewardAmount = big.NewInt(500)
			},
			exp: deal.ErrSignerSignature,
		},
		{
			desc: "author changed after broker signed",
			tamper: func() {
				s.dealOrder.Author = stranger
			},
			exp: deal.ErrSignerSignature,
		},
		{
			desc: "taker signature swapped after broker signed",
			tamper: func() {
				s.Require().NoError(s.dealOrder.SignTaker(s.domain, s.takerKey))
				s.dealOrder.TakerSig[0] ^= 0xff
				s.Require().NoError(s.dealOrder.SignBroker(s.domain, s.brokerKey))
			},
			exp: deal.ErrTakerSignature,
		},
		{
			desc: "broker is not an authorized signer",
			tamper: func() {
				s.Require().NoError(s.dealOrder.SignBroker(s.domain, mustKey()))
			},
			exp: deal.ErrSignerSignature,
		},
		{
			desc: "truncated broker signature",
			tamper: func() {
				s.dealOrder.SignerSig = s.dealOrder.SignerSig[:64]
			},
			exp: deal.ErrSignerSignature,
		},
		{
			desc: "signed for another exchange instance",
			tamper: func() {
				d := s.domain
				d.VerifyingContract = stranger
				s.Require().NoError(s.makerOrder.Sign(d, s.nftInfo, s.makerKey))
			},
			exp: deal.ErrMakerSignature,
		},
	}

	mo, do := *s.makerOrder, *s.dealOrder
	for _, tt := range tests {
		*s.makerOrder, *s.dealOrder = mo, do
		s.sign()
		tt.tamper()
		_, err := s.perform(s.taker)
		s.Equal(tt.exp, err, tt.desc)
	}
	s.Empty(s.deals)
}

func (s *dealSuite) TestFeeMismatch() {
	c := &mocks.Controller{}
	c.On("IsSigAddress", mock.Anything, s.broker).Return(true)
	c.On("IsSupportPayment", mock.Anything, weth).Return(true)
	c.On("CheckFeeAmount", mock.Anything, big.NewInt(200), big.NewInt(250)).Return(&deal.FeeAmount{
		Amount:      big.NewInt(190),
		TotalFee:    big.NewInt(9),
		ProtocolFee: big.NewInt(4),
		AuthorFee:   big.NewInt(5),
	}, nil).Once()
	s.im = s.newEngine(c)

	s.fundTaker(weth, 200)
	s.mintToMaker(2)
	s.approveEngine(nft721)

	_, err := s.perform(s.taker)
	s.Equal(deal.ErrFeeMismatch, err)
	s.assertUntouched(200)
	c.AssertExpectations(s.T())
}

func (s *dealSuite) TestZeroFeeRecipient() {
	s.im = s.newEngine(controller.New(&controller.ControllerCfg{
		Address:         controllerAddr,
		ProtocolFeeBps:  200,
		SupportPayments: []common.Address{weth},
		Signers:         []common.Address{s.broker},
		Minter:          s.ledger,
	}))
	s.fundTaker(weth, 200)
	s.mintToMaker(2)
	s.approveEngine(nft721)

	_, err := s.perform(s.taker)
	s.Equal(deal.ErrZeroAddress, err)
	s.assertUntouched(200)
}

func (s *dealSuite) TestZeroAuthor() {
	s.fundTaker(weth, 200)
	s.mintToMaker(2)
	s.approveEngine(nft721)

	s.dealOrder.Author = common.Address{}
	s.sign()
	_, err := s.perform(s.taker)
	s.Equal(deal.ErrZeroAddress, err)
	s.assertUntouched(200)

	// no author leg is paid once the author rate is zero
	s.makerOrder.AuthorProtocolFee = big.NewInt(0)
	s.sign()
	receipt, err := s.perform(s.taker)
	s.Require().NoError(err)
	s.Equal(int64(4), receipt.TotalFee.Int64())
	s.Equal(int64(196), s.erc20(weth, s.maker))
	s.Equal(int64(4), s.erc20(weth, feeTo))
}

func (s *dealSuite) TestNativePayment() {
	s.nftInfo.BatchPrices[1] = big.NewInt(1)
	s.makerOrder.Price = big.NewInt(1)
	s.makerOrder.PaymentToken = native
	s.makerOrder.AuthorProtocolFee = big.NewInt(0)
	s.dealOrder.DealAmount = big.NewInt(1)
	s.sign()

	s.mintToMaker(2)
	s.approveEngine(nft721)
	s.Require().NoError(s.ledger.Native().Deposit(mockCtx, s.taker, big.NewInt(1)))

	_, err := s.im.PerformOrder(mockCtx, deal.CallOpts{From: s.taker}, s.nftInfo, s.makerOrder, s.dealOrder)
	s.Equal(deal.ErrInsufficientValue, err)

	receipt, err := s.im.PerformOrder(mockCtx, deal.CallOpts{From: s.taker, Value: big.NewInt(1)}, s.nftInfo, s.makerOrder, s.dealOrder)
	s.Require().NoError(err)
	s.Equal(int64(0), receipt.TotalFee.Int64())
	s.Equal(int64(1), s.nativeOf(s.maker))
	s.Equal(int64(0), s.nativeOf(s.taker))
	s.Equal(int64(0), s.nativeOf(engineAddr))
	s.Equal(s.taker, s.ownerOf(2))

	s.Require().NoError(s.ledger.Native().Deposit(mockCtx, s.taker, big.NewInt(1)))
	_, err = s.im.PerformOrder(mockCtx, deal.CallOpts{From: s.taker, Value: big.NewInt(1)}, s.nftInfo, s.makerOrder, s.dealOrder)
	s.Require().Error(err)
	s.Equal("deal order has been completed", err.Error())
	s.Equal(int64(1), s.nativeOf(s.taker))
}

func (s *dealSuite) TestNativePaymentSplitsFees() {
	s.makerOrder.PaymentToken = native
	s.sign()
	s.mintToMaker(2)
	s.approveEngine(nft721)
	s.Require().NoError(s.ledger.Native().Deposit(mockCtx, s.taker, big.NewInt(200)))

	_, err := s.im.PerformOrder(mockCtx, deal.CallOpts{From: s.taker, Value: big.NewInt(200)}, s.nftInfo, s.makerOrder, s.dealOrder)
	s.Require().NoError(err)
	s.Equal(int64(191), s.nativeOf(s.maker))
	s.Equal(int64(4), s.nativeOf(feeTo))
	s.Equal(int64(5), s.nativeOf(author))
}

func (s *dealSuite) TestNativeValueMustBeFunded() {
	s.makerOrder.PaymentToken = native
	s.sign()
	s.mintToMaker(2)
	s.approveEngine(nft721)

	_, err := s.im.PerformOrder(mockCtx, deal.CallOpts{From: s.taker, Value: big.NewInt(200)}, s.nftInfo, s.makerOrder, s.dealOrder)
	s.ErrorIs(err, ledger.ErrInsufficientBalance)
	s.Equal(s.maker, s.ownerOf(2))
}

func (s *dealSuite) TestAuctionInert() {
	s.makerOrder.SaleType = deal.SaleTypeAuction
	s.sign()

	receipt, err := s.perform(s.broker)
	s.Require().NoError(err)
	s.False(receipt.ProcessRes)
	s.Equal(int64(0), receipt.TotalFee.Int64())

	status, err := s.im.GetStatus(mockCtx, receipt.DealHash)
	s.Require().NoError(err)
	s.True(status.Executed)
	s.False(status.ProcessRes)

	s.Equal(int64(0), s.erc20(weth, s.maker))
	// the rebate accrues even though nothing moved
	s.Equal(int64(5), s.rewardOf(s.taker))

	s.Require().Len(s.deals, 1)
	s.False(s.deals[0].ProcessRes)

	_, err = s.perform(s.broker)
	s.Equal(deal.ErrDealCompleted, err)
}

func (s *dealSuite) TestAuctionInertWhenMakerSoldItem() {
	s.makerOrder.SaleType = deal.SaleTypeAuction
	s.sign()
	s.fundTaker(weth, 200)
	s.mintToMaker(2)
	s.Require().NoError(s.ledger.Erc721().SafeTransferFrom(mockCtx, nft721, s.maker, s.maker, stranger, big.NewInt(2)))

	receipt, err := s.perform(s.broker)
	s.Require().NoError(err)
	s.False(receipt.ProcessRes)
	s.Equal(int64(200), s.erc20(weth, s.taker))
}

func (s *dealSuite) TestAuctionDelivered() {
	s.makerOrder.SaleType = deal.SaleTypeAuction
	s.sign()
	s.fundTaker(weth, 200)
	s.mintToMaker(2)
	s.approveEngine(nft721)

	receipt, err := s.perform(s.broker)
	s.Require().NoError(err)
	s.True(receipt.ProcessRes)
	s.Equal(s.taker, s.ownerOf(2))
	s.Equal(int64(191), s.erc20(weth, s.maker))
}

func (s *dealSuite) TestAuctionRejectsNative() {
	s.makerOrder.SaleType = deal.SaleTypeAuction
	s.makerOrder.PaymentToken = native
	s.sign()

	_, err := s.perform(s.broker)
	s.Equal(deal.ErrNativeAuction, err)
}

func (s *dealSuite) TestReentrantReplay() {
	s.fundTaker(weth, 400)
	s.mintToMaker(2)
	s.approveEngine(nft721)

	var nested error
	entered := false
	s.ledger.OnTransfer(func(c ctx.Ctx, ev ledger.TransferEvent) error {
		if ev.Kind != ledger.KindErc20 || entered {
			return nil
		}
		entered = true
		_, nested = s.im.PerformOrder(c, deal.CallOpts{From: s.taker}, s.nftInfo, s.makerOrder, s.dealOrder)
		return nil
	})

	_, err := s.perform(s.taker)
	s.Require().NoError(err)
	s.True(entered)
	s.Equal(deal.ErrDealCompleted, nested)
	s.Equal(int64(200), s.erc20(weth, s.taker))
	s.Len(s.deals, 1)
}

func (s *dealSuite) TestValidate() {
	hashes, err := s.im.Validate(mockCtx, s.nftInfo, s.makerOrder, s.dealOrder)
	s.Require().NoError(err)
	s.Equal(s.dealOrder.MakerOrderHash, hashes.MakerOrderHash)

	dealHash, err := s.dealOrder.Hash(s.domain)
	s.Require().NoError(err)
	s.Equal(dealHash, hashes.DealHash)

	_, err = s.im.Validate(mockCtx, nil, s.makerOrder, s.dealOrder)
	s.Equal(deal.ErrMalformedOrder, err)
}

func (s *dealSuite) TestGetStatusUnseen() {
	_, err := s.im.GetStatus(mockCtx, common.HexToHash("0x01"))
	s.Equal(domain.ErrNotFound, err)
}
