package repository

import (
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/dealexchange/base/ctx"
	"github.com/x-xyz/dealexchange/base/log"
	"github.com/x-xyz/dealexchange/domain"
	"github.com/x-xyz/dealexchange/domain/deal"
	"github.com/x-xyz/dealexchange/service/query"
)

// amounts are kept as decimal strings, uint256 does not fit any bson number
type rewardDoc struct {
	Owner     string    `bson:"owner"`
	Amount    string    `bson:"amount"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type rewardRepoImpl struct {
	q query.Mongo
}

func NewRewardRepo(q query.Mongo) deal.RewardRepo {
	return &rewardRepoImpl{q}
}

func ownerKey(a common.Address) string {
	return strings.ToLower(a.Hex())
}

func (im *rewardRepoImpl) BalanceOf(ctx ctx.Ctx, owner common.Address) (*big.Int, error) {
	qry := bson.M{"owner": ownerKey(owner)}

	res := rewardDoc{}
	err := im.q.FindOne(ctx, domain.TableDealRewards, qry, &res)
	if err == query.ErrNotFound {
		return new(big.Int), nil
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": qry,
		}).Error("failed to q.FindOne")
		return nil, err
	}

	amount, err := decimal.NewFromString(res.Amount)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":    err,
			"amount": res.Amount,
		}).Error("failed to decimal.NewFromString")
		return nil, err
	}
	return amount.BigInt(), nil
}

func (im *rewardRepoImpl) set(ctx ctx.Ctx, owner common.Address, amount *big.Int) error {
	selector := bson.M{"owner": ownerKey(owner)}
	doc := &rewardDoc{
		Owner:     ownerKey(owner),
		Amount:    decimal.NewFromBigInt(amount, 0).String(),
		UpdatedAt: time.Now(),
	}
	if err := im.q.Upsert(ctx, domain.TableDealRewards, selector, doc); err != nil {
		ctx.WithFields(log.Fields{
			"err":      err,
			"selector": selector,
		}).Error("failed to q.Upsert")
		return err
	}
	return nil
}

func (im *rewardRepoImpl) Accrue(c ctx.Ctx, owner common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return domain.ErrBadParamInput
	}
	return im.q.RunWithTransaction(c, func(c ctx.Ctx) error {
		cur, err := im.BalanceOf(c, owner)
		if err != nil {
			return err
		}
		return im.set(c, owner, cur.Add(cur, amount))
	})
}

func (im *rewardRepoImpl) Reset(ctx ctx.Ctx, owner common.Address) error {
	return im.set(ctx, owner, new(big.Int))
}
