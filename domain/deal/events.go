package deal

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/x-xyz/dealexchange/base/ctx"
)

// DealEvent is the outcome of a settlement, published after commit
type DealEvent struct {
	Id             string
	DealHash       common.Hash
	MakerOrderHash common.Hash
	SaleType       SaleType
	Maker          common.Address
	Taker          common.Address
	Author         common.Address
	NftToken       common.Address
	TokenId        *big.Int
	Quantity       *big.Int
	PaymentToken   common.Address
	DealAmount     *big.Int
	TotalFee       *big.Int
	ProcessRes     bool
	Timestamp      time.Time
}

type ClaimEvent struct {
	Id          string
	Claimant    common.Address
	RewardToken common.Address
	Amount      *big.Int
	Timestamp   time.Time
}

type EventPublisher interface {
	PublishDeal(ctx ctx.Ctx, event *DealEvent)
	PublishClaim(ctx ctx.Ctx, event *ClaimEvent)
}
