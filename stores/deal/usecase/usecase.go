package usecase

import (
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"golang.org/x/xerrors"

	"github.com/x-xyz/dealexchange/base/ctx"
	"github.com/x-xyz/dealexchange/base/log"
	"github.com/x-xyz/dealexchange/base/metrics"
	"github.com/x-xyz/dealexchange/domain"
	"github.com/x-xyz/dealexchange/domain/deal"
	"github.com/x-xyz/dealexchange/service/cache"
)

var timeNow = time.Now

type DealUseCaseCfg struct {
	Domain deal.Domain
	// Address is the engine account: native value is pulled into it, token
	// and collection approvals are granted to it and rewards are paid from it.
	Address     common.Address
	RewardToken common.Address

	Controller   deal.Controller
	Native       deal.NativeCoin
	PaymentToken deal.PaymentToken
	Erc721       deal.Erc721
	Erc1155      deal.Erc1155

	Transactor deal.Transactor
	StatusRepo deal.StatusRepo
	RewardRepo deal.RewardRepo

	// optional
	Publisher   deal.EventPublisher
	StatusCache cache.Service
	Metrics     metrics.Service
}

type impl struct {
	domain      deal.Domain
	address     common.Address
	rewardToken common.Address

	mu         sync.RWMutex
	controller deal.Controller

	native       deal.NativeCoin
	paymentToken deal.PaymentToken
	erc721       deal.Erc721
	erc1155      deal.Erc1155

	transactor deal.Transactor
	statusRepo deal.StatusRepo
	rewardRepo deal.RewardRepo

	publisher   deal.EventPublisher
	statusCache cache.Service
	met         metrics.Service
}

func New(cfg *DealUseCaseCfg) deal.UseCase {
	met := cfg.Metrics
	if met == nil {
		met = metrics.NewNop()
	}
	return &impl{
		domain:       cfg.Domain,
		address:      cfg.Address,
		rewardToken:  cfg.RewardToken,
		controller:   cfg.Controller,
		native:       cfg.Native,
		paymentToken: cfg.PaymentToken,
		erc721:       cfg.Erc721,
		erc1155:      cfg.Erc1155,
		transactor:   cfg.Transactor,
		statusRepo:   cfg.StatusRepo,
		rewardRepo:   cfg.RewardRepo,
		publisher:    cfg.Publisher,
		statusCache:  cfg.StatusCache,
		met:          met,
	}
}

func (im *impl) Domain() deal.Domain {
	return im.domain
}

func (im *impl) Address() common.Address {
	return im.address
}

func (im *impl) Controller() deal.Controller {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return im.controller
}

// SetController hands control over to next. Only the current controller may call it.
func (im *impl) SetController(ctx ctx.Ctx, opts deal.CallOpts, next deal.Controller) error {
	if next == nil || next.Address() == (common.Address{}) {
		return deal.ErrZeroController
	}

	im.mu.Lock()
	defer im.mu.Unlock()
	if opts.From != im.controller.Address() {
		ctx.WithFields(log.Fields{
			"from":       opts.From.Hex(),
			"controller": im.controller.Address().Hex(),
		}).Warn("setController from non controller")
		return deal.ErrNotController
	}

	ctx.WithFields(log.Fields{
		"old": im.controller.Address().Hex(),
		"new": next.Address().Hex(),
	}).Info("controller changed")
	im.controller = next
	return nil
}

func (im *impl) Validate(ctx ctx.Ctx, nftInfo *deal.NftInfo, makerOrder *deal.MakerOrder, dealOrder *deal.DealOrder) (*deal.Hashes, error) {
	hashes, err := deal.Validate(im.domain, nftInfo, makerOrder, dealOrder)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Info("deal.Validate failed")
		return nil, err
	}
	return hashes, nil
}

func (im *impl) GetStatus(c ctx.Ctx, dealHash common.Hash) (*deal.Status, error) {
	find := func() (*deal.Status, error) {
		var res *deal.Status
		err := im.transactor.RunWithTransaction(c, func(c ctx.Ctx) error {
			s, err := im.statusRepo.FindOne(c, dealHash)
			res = s
			return err
		})
		return res, err
	}

	if im.statusCache == nil {
		return find()
	}

	// statuses are write-once, an existing one never goes stale
	res := &deal.Status{}
	err := im.statusCache.GetByFunc(c, dealHash.Hex(), res, func() (interface{}, error) {
		return find()
	})
	if err != nil {
		if err != domain.ErrNotFound {
			c.WithFields(log.Fields{
				"err":      err,
				"dealHash": dealHash.Hex(),
			}).Error("statusCache.GetByFunc failed")
		}
		return nil, err
	}
	return res, nil
}

func (im *impl) RewardOf(c ctx.Ctx, owner common.Address) (*big.Int, error) {
	var res *big.Int
	err := im.transactor.RunWithTransaction(c, func(c ctx.Ctx) error {
		b, err := im.rewardRepo.BalanceOf(c, owner)
		res = b
		return err
	})
	if err != nil {
		c.WithFields(log.Fields{
			"err":   err,
			"owner": owner.Hex(),
		}).Error("rewardRepo.BalanceOf failed")
		return nil, err
	}
	return res, nil
}

// Claim pays the caller's whole reward balance in the reward token
func (im *impl) Claim(c ctx.Ctx, opts deal.CallOpts) (*big.Int, error) {
	var owed *big.Int
	err := im.transactor.RunWithTransaction(c, func(c ctx.Ctx) error {
		balance, err := im.rewardRepo.BalanceOf(c, opts.From)
		if err != nil {
			return err
		}
		if balance.Sign() <= 0 {
			return deal.ErrNoReward
		}

		held, err := im.paymentToken.BalanceOf(c, im.rewardToken, im.address)
		if err != nil {
			return xerrors.Errorf("reward token balance: %w", err)
		}
		if held.Cmp(balance) < 0 {
			return deal.ErrRewardUnderfunded
		}

		// zero first, a re-entrant claim finds nothing to pay
		if err := im.rewardRepo.Reset(c, opts.From); err != nil {
			return err
		}
		if err := im.paymentToken.Transfer(c, im.rewardToken, im.address, opts.From, balance); err != nil {
			return xerrors.Errorf("pay reward: %w", err)
		}
		owed = balance
		return nil
	})
	if err != nil {
		im.met.BumpSum("claim.err", 1, "reason", reason(err))
		c.WithFields(log.Fields{
			"err":      err,
			"claimant": opts.From.Hex(),
		}).Error("claim failed")
		return nil, err
	}

	if im.publisher != nil {
		im.publisher.PublishClaim(c, &deal.ClaimEvent{
			Id:          uuid.NewString(),
			Claimant:    opts.From,
			RewardToken: im.rewardToken,
			Amount:      new(big.Int).Set(owed),
			Timestamp:   timeNow(),
		})
	}
	return owed, nil
}

var knownErrs = []error{
	deal.ErrCallerNotTaker, deal.ErrCallerNotSigner, deal.ErrNotController,
	deal.ErrTransactionTooOld, deal.ErrPaymentNotSupported, deal.ErrZeroAddress,
	deal.ErrNativeAuction, deal.ErrFeeMismatch, deal.ErrMalformedOrder,
	deal.ErrQuantityVerification, deal.ErrBatchArraysMismatch, deal.ErrTokenDataValidation,
	deal.ErrDealAmountTooLow, deal.ErrMakerOrderHash, deal.ErrUnsupportedNftType,
	deal.ErrUnsupportedSaleType, deal.ErrMintQuantity, deal.ErrInsufficientValue,
	deal.ErrMakerSignature, deal.ErrTakerSignature, deal.ErrSignerSignature,
	deal.ErrDealCompleted, deal.ErrNoReward, deal.ErrRewardUnderfunded,
}

// reason is a bounded metric tag for err
func reason(err error) string {
	for _, known := range knownErrs {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "other"
}
