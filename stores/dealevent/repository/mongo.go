package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/dealexchange/base/ctx"
	"github.com/x-xyz/dealexchange/base/database/mongoclient"
	"github.com/x-xyz/dealexchange/base/log"
	"github.com/x-xyz/dealexchange/domain"
	"github.com/x-xyz/dealexchange/domain/dealevent"
	"github.com/x-xyz/dealexchange/service/query"
)

const defaultLimit = 100

type eventRepo struct {
	q query.Mongo
}

func NewEventRepo(q query.Mongo) dealevent.Repo {
	return &eventRepo{q: q}
}

// EnsureIndexes creates the keys archive lookups run on
func EnsureIndexes(c ctx.Ctx, q query.Mongo) error {
	if err := q.EnsureIndexes(c, domain.TableDealEvents,
		query.Index{Keys: bson.D{{Key: "id", Value: 1}}, Unique: true},
		query.Index{Keys: bson.D{{Key: "dealHash", Value: 1}}},
		query.Index{Keys: bson.D{{Key: "taker", Value: 1}, {Key: "timestamp", Value: -1}}},
		query.Index{Keys: bson.D{{Key: "maker", Value: 1}, {Key: "timestamp", Value: -1}}},
		query.Index{Keys: bson.D{{Key: "timestamp", Value: -1}}},
	); err != nil {
		return err
	}
	return q.EnsureIndexes(c, domain.TableClaimEvents,
		query.Index{Keys: bson.D{{Key: "id", Value: 1}}, Unique: true},
		query.Index{Keys: bson.D{{Key: "claimant", Value: 1}, {Key: "timestamp", Value: -1}}},
	)
}

func (r *eventRepo) insert(ctx ctx.Ctx, table domain.Table, doc interface{}) error {
	if err := r.q.Insert(ctx, table, doc); err == query.ErrDuplicateKey {
		return domain.ErrConflict
	} else if err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"table": table,
		}).Error("q.Insert failed")
		return err
	}
	return nil
}

func (r *eventRepo) InsertDeal(ctx ctx.Ctx, record *dealevent.DealRecord) error {
	return r.insert(ctx, domain.TableDealEvents, record)
}

func (r *eventRepo) InsertClaim(ctx ctx.Ctx, record *dealevent.ClaimRecord) error {
	return r.insert(ctx, domain.TableClaimEvents, record)
}

func (r *eventRepo) FindAllDeals(ctx ctx.Ctx, optsFns ...dealevent.FindAllOptionsFunc) ([]dealevent.DealRecord, error) {
	opts, err := dealevent.GetFindAllOptions(optsFns...)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err": err,
		}).Error("GetFindAllOptions failed")
		return nil, err
	}
	var (
		offset int    = 0
		limit  int    = defaultLimit
		sort   string = "-timestamp"
	)
	if opts.Offset != nil {
		offset = int(*opts.Offset)
	}
	if opts.Limit != nil && *opts.Limit > 0 {
		limit = int(*opts.Limit)
	}
	if opts.SortBy != nil && opts.SortDir != nil {
		sort = *opts.SortBy
		if *opts.SortDir == domain.SortDirDesc {
			sort = "-" + sort
		}
	}
	qry, err := mongoclient.MakeBsonM(opts)
	if err != nil {
		ctx.WithFields(log.Fields{
			"opts": opts,
			"err":  err,
		}).Error("MakeBsonM failed")
		return nil, err
	}
	res := []dealevent.DealRecord{}
	if err := r.q.Search(ctx, domain.TableDealEvents, offset, limit, sort, qry, &res); err != nil {
		ctx.WithField("err", err).Error("q.Search failed")
		return nil, err
	}
	return res, nil
}

func (r *eventRepo) FindAllClaims(ctx ctx.Ctx, claimant domain.Address, offset, limit int32) ([]dealevent.ClaimRecord, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	qry := bson.M{"claimant": claimant.ToLower()}
	res := []dealevent.ClaimRecord{}
	if err := r.q.Search(ctx, domain.TableClaimEvents, int(offset), int(limit), "-timestamp", qry, &res); err != nil {
		ctx.WithFields(log.Fields{
			"err":   err,
			"query": qry,
		}).Error("q.Search failed")
		return nil, err
	}
	return res, nil
}
