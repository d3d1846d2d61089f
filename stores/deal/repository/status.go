package repository

import (
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/dealexchange/base/ctx"
	"github.com/x-xyz/dealexchange/base/log"
	"github.com/x-xyz/dealexchange/domain"
	"github.com/x-xyz/dealexchange/domain/deal"
	"github.com/x-xyz/dealexchange/service/query"
)

type statusDoc struct {
	DealHash   string    `bson:"dealHash"`
	Executed   bool      `bson:"executed"`
	ProcessRes bool      `bson:"processRes"`
	CreatedAt  time.Time `bson:"createdAt"`
}

func hashKey(h common.Hash) string {
	return strings.ToLower(h.Hex())
}

func (d *statusDoc) toStatus() *deal.Status {
	return &deal.Status{
		DealHash:   common.HexToHash(d.DealHash),
		Executed:   d.Executed,
		ProcessRes: d.ProcessRes,
		CreatedAt:  d.CreatedAt,
	}
}

type statusRepoImpl struct {
	q query.Mongo
}

func NewStatusRepo(q query.Mongo) deal.StatusRepo {
	return &statusRepoImpl{q}
}

func (im *statusRepoImpl) FindOne(ctx ctx.Ctx, hash common.Hash) (*deal.Status, error) {
	qry := bson.M{"dealHash": hashKey(hash)}

	res := statusDoc{}
	err := im.q.FindOne(ctx, domain.TableDealOrderStatus, qry, &res)
	if err == query.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": qry,
		}).Error("failed to q.FindOne")
		return nil, err
	}

	return res.toStatus(), nil
}

func (im *statusRepoImpl) Insert(ctx ctx.Ctx, status *deal.Status) error {
	doc := &statusDoc{
		DealHash:   hashKey(status.DealHash),
		Executed:   status.Executed,
		ProcessRes: status.ProcessRes,
		CreatedAt:  status.CreatedAt,
	}

	err := im.q.Insert(ctx, domain.TableDealOrderStatus, doc)
	if err == query.ErrDuplicateKey {
		return domain.ErrConflict
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":    err,
			"status": doc,
		}).Error("failed to q.Insert")
		return err
	}
	return nil
}
