package dealevent

import (
	"math/big"
	"strings"
	"time"

	"github.com/x-xyz/dealexchange/base/ctx"
	"github.com/x-xyz/dealexchange/domain"
	"github.com/x-xyz/dealexchange/domain/deal"
)

// DealRecord is the archived form of deal.DealEvent. Amounts are decimal strings.
type DealRecord struct {
	Id             string         `json:"id" bson:"id"`
	DealHash       string         `json:"dealHash" bson:"dealHash"`
	MakerOrderHash string         `json:"makerOrderHash" bson:"makerOrderHash"`
	SaleType       string         `json:"saleType" bson:"saleType"`
	Maker          domain.Address `json:"maker" bson:"maker"`
	Taker          domain.Address `json:"taker" bson:"taker"`
	Author         domain.Address `json:"author" bson:"author"`
	NftToken       domain.Address `json:"nftToken" bson:"nftToken"`
	TokenId        string         `json:"tokenId" bson:"tokenId"`
	Quantity       string         `json:"quantity" bson:"quantity"`
	PaymentToken   domain.Address `json:"paymentToken" bson:"paymentToken"`
	DealAmount     string         `json:"dealAmount" bson:"dealAmount"`
	TotalFee       string         `json:"totalFee" bson:"totalFee"`
	ProcessRes     bool           `json:"processRes" bson:"processRes"`
	Timestamp      time.Time      `json:"timestamp" bson:"timestamp"`
}

type ClaimRecord struct {
	Id          string         `json:"id" bson:"id"`
	Claimant    domain.Address `json:"claimant" bson:"claimant"`
	RewardToken domain.Address `json:"rewardToken" bson:"rewardToken"`
	Amount      string         `json:"amount" bson:"amount"`
	Timestamp   time.Time      `json:"timestamp" bson:"timestamp"`
}

func decimalString(n *big.Int) string {
	if n == nil {
		return "0"
	}
	return n.String()
}

func FromDeal(ev *deal.DealEvent) *DealRecord {
	return &DealRecord{
		Id:             ev.Id,
		DealHash:       strings.ToLower(ev.DealHash.Hex()),
		MakerOrderHash: strings.ToLower(ev.MakerOrderHash.Hex()),
		SaleType:       ev.SaleType.String(),
		Maker:          domain.FromCommon(ev.Maker),
		Taker:          domain.FromCommon(ev.Taker),
		Author:         domain.FromCommon(ev.Author),
		NftToken:       domain.FromCommon(ev.NftToken),
		TokenId:        decimalString(ev.TokenId),
		Quantity:       decimalString(ev.Quantity),
		PaymentToken:   domain.FromCommon(ev.PaymentToken),
		DealAmount:     decimalString(ev.DealAmount),
		TotalFee:       decimalString(ev.TotalFee),
		ProcessRes:     ev.ProcessRes,
		Timestamp:      ev.Timestamp,
	}
}

func FromClaim(ev *deal.ClaimEvent) *ClaimRecord {
	return &ClaimRecord{
		Id:          ev.Id,
		Claimant:    domain.FromCommon(ev.Claimant),
		RewardToken: domain.FromCommon(ev.RewardToken),
		Amount:      decimalString(ev.Amount),
		Timestamp:   ev.Timestamp,
	}
}

type FindAllOptionsFunc func(*FindAllOptions) error

func GetFindAllOptions(opts ...FindAllOptionsFunc) (FindAllOptions, error) {
	res := FindAllOptions{}

	for _, opt := range opts {
		if err := opt(&res); err != nil {
			return res, err
		}
	}

	return res, nil
}

func WithTaker(taker domain.Address) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		taker = taker.ToLower()
		options.Taker = &taker
		return nil
	}
}

func WithMaker(maker domain.Address) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		maker = maker.ToLower()
		options.Maker = &maker
		return nil
	}
}

func WithDealHash(hash string) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		hash = strings.ToLower(hash)
		options.DealHash = &hash
		return nil
	}
}

func WithProcessRes(processRes bool) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.ProcessRes = &processRes
		return nil
	}
}

func WithPagination(offset int32, limit int32) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		if offset < 0 || limit < 0 {
			return domain.ErrBadParamInput
		}
		options.Offset = &offset
		options.Limit = &limit
		return nil
	}
}

func WithSort(sortby string, sortdir domain.SortDir) FindAllOptionsFunc {
	return func(options *FindAllOptions) error {
		options.SortBy = &sortby
		options.SortDir = &sortdir
		return nil
	}
}

type FindAllOptions struct {
	SortBy     *string         `bson:"-"`
	SortDir    *domain.SortDir `bson:"-"`
	Offset     *int32          `bson:"-"`
	Limit      *int32          `bson:"-"`
	Taker      *domain.Address `bson:"taker"`
	Maker      *domain.Address `bson:"maker"`
	DealHash   *string         `bson:"dealHash"`
	ProcessRes *bool           `bson:"processRes"`
}

type Repo interface {
	// InsertDeal returns domain.ErrConflict if a record with the same id exists
	InsertDeal(ctx ctx.Ctx, record *DealRecord) error
	InsertClaim(ctx ctx.Ctx, record *ClaimRecord) error
	FindAllDeals(ctx ctx.Ctx, opts ...FindAllOptionsFunc) ([]DealRecord, error)
	FindAllClaims(ctx ctx.Ctx, claimant domain.Address, offset, limit int32) ([]ClaimRecord, error)
}

// Sink is one destination of settlement outcomes
type Sink interface {
	Name() string
	Deal(ctx ctx.Ctx, record *DealRecord) error
	Claim(ctx ctx.Ctx, record *ClaimRecord) error
}

type UseCase interface {
	deal.EventPublisher

	FindDeals(ctx ctx.Ctx, opts ...FindAllOptionsFunc) ([]DealRecord, error)
	FindClaims(ctx ctx.Ctx, claimant domain.Address, offset, limit int32) ([]ClaimRecord, error)
	// Close waits for the queued deliveries to finish
	Close()
}
