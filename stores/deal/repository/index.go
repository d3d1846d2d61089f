package repository

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/x-xyz/dealexchange/base/ctx"
	"github.com/x-xyz/dealexchange/domain"
	"github.com/x-xyz/dealexchange/service/query"
)

// EnsureIndexes creates the unique keys the status and reward collections rely on
func EnsureIndexes(c ctx.Ctx, q query.Mongo) error {
	if err := q.EnsureIndexes(c, domain.TableDealOrderStatus, query.Index{
		Keys:   bson.D{{Key: "dealHash", Value: 1}},
		Unique: true,
	}); err != nil {
		return err
	}
	return q.EnsureIndexes(c, domain.TableDealRewards, query.Index{
		Keys:   bson.D{{Key: "owner", Value: 1}},
		Unique: true,
	})
}
