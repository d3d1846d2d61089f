package usecase

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/xerrors"

	"github.com/x-xyz/dealexchange/base/ctx"
	"github.com/x-xyz/dealexchange/base/log"
	"github.com/x-xyz/dealexchange/domain"
	"github.com/x-xyz/dealexchange/domain/deal"
)

var (
	ErrFeeRate     = errors.New("fee rates exceed 100%")
	ErrFeeAmount   = errors.New("invalid deal amount")
	ErrMintAllowed = errors.New("collection is not mintable by controller")
)

// Minter creates collection items. minter is the account the collection checks authority against.
type Minter interface {
	Mint(ctx ctx.Ctx, token, minter, to common.Address, id, quantity *big.Int) error
}

type ControllerCfg struct {
	Address         common.Address
	FeeTo           common.Address
	ProtocolFeeBps  int64
	OriginToken     common.Address
	SupportPayments []common.Address
	Signers         []common.Address
	// Mintable limits Mint to these collections, empty allows any collection Minter knows
	Mintable []common.Address
	Minter   Minter
}

type impl struct {
	address        common.Address
	feeTo          common.Address
	protocolFeeBps *big.Int
	originToken    common.Address
	payments       map[common.Address]bool
	signers        map[common.Address]bool
	mintable       map[common.Address]bool
	minter         Minter
}

func toSet(addrs []common.Address) map[common.Address]bool {
	set := make(map[common.Address]bool, len(addrs))
	for _, a := range addrs {
		set[a] = true
	}
	return set
}

func New(cfg *ControllerCfg) deal.Controller {
	return &impl{
		address:        cfg.Address,
		feeTo:          cfg.FeeTo,
		protocolFeeBps: big.NewInt(cfg.ProtocolFeeBps),
		originToken:    cfg.OriginToken,
		payments:       toSet(cfg.SupportPayments),
		signers:        toSet(cfg.Signers),
		mintable:       toSet(cfg.Mintable),
		minter:         cfg.Minter,
	}
}

func (im *impl) Address() common.Address {
	return im.address
}

func (im *impl) IsSupportPayment(ctx ctx.Ctx, token common.Address) bool {
	return im.payments[token]
}

func (im *impl) IsOriginToken(ctx ctx.Ctx, token common.Address) bool {
	return token == im.originToken
}

func (im *impl) IsSigAddress(ctx ctx.Ctx, addr common.Address) bool {
	return addr != (common.Address{}) && im.signers[addr]
}

func (im *impl) FeeTo(ctx ctx.Ctx) common.Address {
	return im.feeTo
}

// CheckFeeAmount splits dealAmount into the maker amount, the protocol fee and the author fee.
// Fees round down, the maker amount takes the remainder so the parts always add up.
func (im *impl) CheckFeeAmount(ctx ctx.Ctx, dealAmount, authorRateBps *big.Int) (*deal.FeeAmount, error) {
	if dealAmount == nil || dealAmount.Sign() < 0 {
		return nil, ErrFeeAmount
	}
	if authorRateBps == nil || authorRateBps.Sign() < 0 {
		return nil, ErrFeeRate
	}
	if new(big.Int).Add(authorRateBps, im.protocolFeeBps).Cmp(domain.BpsBase) > 0 {
		ctx.WithFields(log.Fields{
			"authorRateBps":   authorRateBps.String(),
			"protocolRateBps": im.protocolFeeBps.String(),
		}).Warn("fee rates exceed 100%")
		return nil, ErrFeeRate
	}

	protocolFee := new(big.Int).Mul(dealAmount, im.protocolFeeBps)
	protocolFee.Quo(protocolFee, domain.BpsBase)
	authorFee := new(big.Int).Mul(dealAmount, authorRateBps)
	authorFee.Quo(authorFee, domain.BpsBase)
	totalFee := new(big.Int).Add(protocolFee, authorFee)

	return &deal.FeeAmount{
		Amount:      new(big.Int).Sub(dealAmount, totalFee),
		TotalFee:    totalFee,
		ProtocolFee: protocolFee,
		AuthorFee:   authorFee,
	}, nil
}

func (im *impl) Mint(ctx ctx.Ctx, nftToken, to common.Address, id, quantity *big.Int) error {
	if len(im.mintable) > 0 && !im.mintable[nftToken] {
		return ErrMintAllowed
	}
	if err := im.minter.Mint(ctx, nftToken, im.address, to, id, quantity); err != nil {
		ctx.WithFields(log.Fields{
			"err":      err,
			"nftToken": nftToken.Hex(),
			"to":       to.Hex(),
			"id":       id.String(),
		}).Error("minter.Mint failed")
		return xerrors.Errorf("mint %s #%s: %w", nftToken.Hex(), id.String(), err)
	}
	return nil
}
