package usecase

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"golang.org/x/xerrors"

	"github.com/x-xyz/dealexchange/base/ctx"
	"github.com/x-xyz/dealexchange/base/log"
	"github.com/x-xyz/dealexchange/domain"
	"github.com/x-xyz/dealexchange/domain/deal"
)

type settlement struct {
	controller deal.Controller
	opts       deal.CallOpts
	nftInfo    *deal.NftInfo
	makerOrder *deal.MakerOrder
	dealOrder  *deal.DealOrder
	hashes     *deal.Hashes
	processRes bool
	fee        *deal.FeeAmount
}

// PerformOrder settles dealOrder against makerOrder. Either the settlement is
// recorded (delivered, or inert for an auction whose balances fall short) or
// the call fails and nothing changes.
func (im *impl) PerformOrder(c ctx.Ctx, opts deal.CallOpts, nftInfo *deal.NftInfo, makerOrder *deal.MakerOrder, dealOrder *deal.DealOrder) (*deal.Receipt, error) {
	defer im.met.BumpTime("perform.time").End()

	s := &settlement{
		controller: im.Controller(),
		opts:       opts,
		nftInfo:    nftInfo,
		makerOrder: makerOrder,
		dealOrder:  dealOrder,
	}

	err := im.transactor.RunWithTransaction(c, func(c ctx.Ctx) error {
		return im.perform(c, s)
	})
	if err != nil {
		im.met.BumpSum("perform.err", 1, "reason", reason(err))
		fields := log.Fields{"err": err, "from": opts.From.Hex()}
		if s.hashes != nil {
			fields["dealHash"] = s.hashes.DealHash.Hex()
		}
		c.WithFields(fields).Warn("performOrder failed")
		return nil, err
	}

	totalFee := new(big.Int)
	if s.fee != nil {
		totalFee.Set(s.fee.TotalFee)
	}
	if !s.processRes {
		im.met.BumpSum("perform.inert", 1)
	}

	if im.publisher != nil {
		im.publisher.PublishDeal(c, &deal.DealEvent{
			Id:             uuid.NewString(),
			DealHash:       s.hashes.DealHash,
			MakerOrderHash: s.hashes.MakerOrderHash,
			SaleType:       makerOrder.SaleType,
			Maker:          makerOrder.Maker,
			Taker:          dealOrder.Taker,
			Author:         dealOrder.Author,
			NftToken:       nftInfo.NftToken,
			TokenId:        new(big.Int).Set(nftInfo.TokenId),
			Quantity:       new(big.Int).Set(dealOrder.Quantity),
			PaymentToken:   makerOrder.PaymentToken,
			DealAmount:     new(big.Int).Set(dealOrder.DealAmount),
			TotalFee:       new(big.Int).Set(totalFee),
			ProcessRes:     s.processRes,
			Timestamp:      timeNow(),
		})
	}

	return &deal.Receipt{
		DealHash:       s.hashes.DealHash,
		MakerOrderHash: s.hashes.MakerOrderHash,
		TotalFee:       totalFee,
		ProcessRes:     s.processRes,
	}, nil
}

func (im *impl) perform(ctx ctx.Ctx, s *settlement) error {
	if err := im.checkGates(ctx, s); err != nil {
		return err
	}

	hashes, err := deal.Validate(im.domain, s.nftInfo, s.makerOrder, s.dealOrder)
	if err != nil {
		return err
	}
	s.hashes = hashes
	ctx.Logger = ctx.WithField("dealHash", hashes.DealHash.Hex())

	isSigner := func(a common.Address) bool {
		return s.controller.IsSigAddress(ctx, a)
	}
	if err := deal.VerifySignatures(hashes, s.makerOrder, s.dealOrder, isSigner); err != nil {
		ctx.WithField("err", err).Warn("deal.VerifySignatures failed")
		return err
	}

	if status, err := im.statusRepo.FindOne(ctx, hashes.DealHash); err == nil && status.Executed {
		return deal.ErrDealCompleted
	} else if err != nil && err != domain.ErrNotFound {
		ctx.WithField("err", err).Error("statusRepo.FindOne failed")
		return err
	}

	s.processRes = true
	if s.makerOrder.SaleType == deal.SaleTypeAuction {
		ok, err := im.auctionBalancesHold(ctx, s)
		if err != nil {
			return err
		}
		s.processRes = ok
	}

	// the status lands before any transfer so a re-entrant call sees it
	if err := im.statusRepo.Insert(ctx, &deal.Status{
		DealHash:   hashes.DealHash,
		Executed:   true,
		ProcessRes: s.processRes,
		CreatedAt:  timeNow(),
	}); err == domain.ErrConflict {
		return deal.ErrDealCompleted
	} else if err != nil {
		ctx.WithField("err", err).Error("statusRepo.Insert failed")
		return err
	}

	if s.processRes {
		if err := im.pay(ctx, s); err != nil {
			return err
		}
		if err := im.deliver(ctx, s); err != nil {
			return err
		}
	} else {
		ctx.Info("auction balances fall short, settlement recorded inert")
	}

	if reward := s.dealOrder.RewardAmount; reward.Sign() > 0 {
		if err := im.rewardRepo.Accrue(ctx, s.dealOrder.Taker, reward); err != nil {
			ctx.WithField("err", err).Error("rewardRepo.Accrue failed")
			return err
		}
	}
	return nil
}

func (im *impl) checkGates(ctx ctx.Ctx, s *settlement) error {
	mo, do := s.makerOrder, s.dealOrder
	if s.nftInfo == nil || mo == nil || do == nil || do.Deadline == nil || do.Quantity == nil || mo.Quantity == nil {
		return deal.ErrMalformedOrder
	}

	if mo.SaleType == deal.SaleTypeAuction {
		if !s.controller.IsSigAddress(ctx, s.opts.From) {
			return deal.ErrCallerNotSigner
		}
	} else if s.opts.From != do.Taker {
		return deal.ErrCallerNotTaker
	}

	if big.NewInt(timeNow().Unix()).Cmp(do.Deadline) > 0 {
		return deal.ErrTransactionTooOld
	}

	if !s.controller.IsSupportPayment(ctx, mo.PaymentToken) {
		return deal.ErrPaymentNotSupported
	}

	if do.Quantity.Cmp(mo.Quantity) > 0 {
		return deal.ErrQuantityVerification
	}
	return nil
}

// auctionBalancesHold reports whether the maker still holds the item and the
// taker holds the deal amount
func (im *impl) auctionBalancesHold(ctx ctx.Ctx, s *settlement) (bool, error) {
	mo, do, info := s.makerOrder, s.dealOrder, s.nftInfo
	if s.controller.IsOriginToken(ctx, mo.PaymentToken) {
		return false, deal.ErrNativeAuction
	}

	if do.Minted {
		switch info.NftType {
		case deal.NftTypeErc721:
			owner, err := im.erc721.OwnerOf(ctx, info.NftToken, info.TokenId)
			if err != nil || owner != mo.Maker {
				return false, nil
			}
		case deal.NftTypeErc1155:
			balance, err := im.erc1155.BalanceOf(ctx, info.NftToken, mo.Maker, info.TokenId)
			if err != nil || balance.Cmp(do.Quantity) < 0 {
				return false, nil
			}
		}
	}

	balance, err := im.paymentToken.BalanceOf(ctx, mo.PaymentToken, do.Taker)
	if err != nil || balance.Cmp(do.DealAmount) < 0 {
		return false, nil
	}
	return true, nil
}

func (im *impl) pay(ctx ctx.Ctx, s *settlement) error {
	mo, do := s.makerOrder, s.dealOrder

	fee, err := s.controller.CheckFeeAmount(ctx, do.DealAmount, mo.AuthorProtocolFee)
	if err != nil {
		ctx.WithField("err", err).Error("controller.CheckFeeAmount failed")
		return xerrors.Errorf("check fee amount: %w", err)
	}
	if !feeAddsUp(fee, do.DealAmount) {
		ctx.WithFields(log.Fields{"fee": fee, "dealAmount": do.DealAmount.String()}).Error("fee split does not add up")
		return deal.ErrFeeMismatch
	}
	s.fee = fee

	legs := []struct {
		name   string
		to     common.Address
		amount *big.Int
	}{
		{"maker", mo.Maker, fee.Amount},
		{"protocol", s.controller.FeeTo(ctx), fee.ProtocolFee},
		{"author", do.Author, fee.AuthorFee},
	}

	if s.controller.IsOriginToken(ctx, mo.PaymentToken) {
		if s.opts.Value == nil || s.opts.Value.Cmp(do.DealAmount) < 0 {
			return deal.ErrInsufficientValue
		}
		if err := im.native.Transfer(ctx, s.opts.From, im.address, s.opts.Value); err != nil {
			return xerrors.Errorf("attach value: %w", err)
		}
		for _, leg := range legs {
			if leg.amount.Sign() == 0 {
				continue
			}
			if leg.to == (common.Address{}) {
				return deal.ErrZeroAddress
			}
			if err := im.native.Transfer(ctx, im.address, leg.to, leg.amount); err != nil {
				return xerrors.Errorf("pay %s: %w", leg.name, err)
			}
		}
		return nil
	}

	for _, leg := range legs {
		if leg.amount.Sign() == 0 {
			continue
		}
		if leg.to == (common.Address{}) {
			return deal.ErrZeroAddress
		}
		if err := im.paymentToken.TransferFrom(ctx, mo.PaymentToken, im.address, do.Taker, leg.to, leg.amount); err != nil {
			return xerrors.Errorf("pay %s: %w", leg.name, err)
		}
	}
	return nil
}

func feeAddsUp(fee *deal.FeeAmount, dealAmount *big.Int) bool {
	if fee == nil || fee.Amount == nil || fee.TotalFee == nil || fee.ProtocolFee == nil || fee.AuthorFee == nil {
		return false
	}
	for _, n := range []*big.Int{fee.Amount, fee.ProtocolFee, fee.AuthorFee} {
		if n.Sign() < 0 {
			return false
		}
	}
	fees := new(big.Int).Add(fee.ProtocolFee, fee.AuthorFee)
	if fees.Cmp(fee.TotalFee) != 0 {
		return false
	}
	return fees.Add(fees, fee.Amount).Cmp(dealAmount) == 0
}

func (im *impl) deliver(ctx ctx.Ctx, s *settlement) error {
	mo, do, info := s.makerOrder, s.dealOrder, s.nftInfo

	if !do.Minted {
		if mo.Quantity.Cmp(big.NewInt(1)) != 0 {
			return deal.ErrMintQuantity
		}
		return s.controller.Mint(ctx, info.NftToken, do.Taker, info.TokenId, do.Quantity)
	}

	switch info.NftType {
	case deal.NftTypeErc721:
		if do.Quantity.Cmp(big.NewInt(1)) != 0 {
			return deal.ErrQuantityVerification
		}
		if err := im.erc721.SafeTransferFrom(ctx, info.NftToken, im.address, mo.Maker, do.Taker, info.TokenId); err != nil {
			return xerrors.Errorf("deliver item: %w", err)
		}
	case deal.NftTypeErc1155:
		if err := im.erc1155.SafeTransferFrom(ctx, info.NftToken, im.address, mo.Maker, do.Taker, info.TokenId, do.Quantity); err != nil {
			return xerrors.Errorf("deliver item: %w", err)
		}
	default:
		return deal.ErrUnsupportedNftType
	}
	return nil
}
