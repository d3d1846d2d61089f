package repository

import (
	"errors"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/dealexchange/base/ctx"
	"github.com/x-xyz/dealexchange/base/database/mongoclient"
	"github.com/x-xyz/dealexchange/base/metrics"
	"github.com/x-xyz/dealexchange/domain"
	"github.com/x-xyz/dealexchange/domain/deal"
	"github.com/x-xyz/dealexchange/service/ledger"
	"github.com/x-xyz/dealexchange/service/query"
)

type mongoSuite struct {
	suite.Suite
	client  *mongoclient.Client
	q       query.Mongo
	status  deal.StatusRepo
	rewards deal.RewardRepo
}

func (s *mongoSuite) SetupSuite() {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	client, err := mongoclient.Connect(mongoclient.Config{URI: uri, AuthDBName: "admin", DbName: "deal_repo_test", SetSafe: true, PoolSizeMultiplier: 1})
	if err != nil {
		s.T().Skipf("mongo is not reachable at %s: %v", uri, err)
	}
	s.client = client
	// index checking runs every query outside a transaction through explain
	q := query.New(client, true, metrics.NewNop())
	s.q = q
	s.status = NewStatusRepo(q)
	s.rewards = NewRewardRepo(q)

	s.Require().NoError(client.Database(client.DbName).Drop(mockCtx))
	s.Require().NoError(EnsureIndexes(mockCtx, q))
}

func (s *mongoSuite) TearDownSuite() {
	if s.client != nil {
		s.client.Database(s.client.DbName).Drop(mockCtx)
	}
}

func TestMongoSuite(t *testing.T) {
	suite.Run(t, new(mongoSuite))
}

func (s *mongoSuite) TestStatus() {
	hash := common.HexToHash("0xabcdef")

	_, err := s.status.FindOne(mockCtx, hash)
	s.Equal(domain.ErrNotFound, err)

	st := &deal.Status{DealHash: hash, Executed: true, ProcessRes: true, CreatedAt: time.Unix(1000, 0).UTC()}
	s.Require().NoError(s.status.Insert(mockCtx, st))
	s.Equal(domain.ErrConflict, s.status.Insert(mockCtx, st))

	got, err := s.status.FindOne(mockCtx, hash)
	s.Require().NoError(err)
	s.Equal(hash, got.DealHash)
	s.True(got.Executed)
	s.True(got.ProcessRes)
	s.True(st.CreatedAt.Equal(got.CreatedAt))
}

func (s *mongoSuite) TestRewards() {
	owner := common.HexToAddress("0x00000000000000000000000000000000000000Aa")
	huge, _ := new(big.Int).SetString("100000000000000000000000000000", 10)

	b, err := s.rewards.BalanceOf(mockCtx, owner)
	s.Require().NoError(err)
	s.Equal(0, b.Sign())

	s.Require().NoError(s.rewards.Accrue(mockCtx, owner, huge))
	s.Require().NoError(s.rewards.Accrue(mockCtx, owner, big.NewInt(1)))
	b, err = s.rewards.BalanceOf(mockCtx, owner)
	s.Require().NoError(err)
	s.Equal("100000000000000000000000000001", b.String())

	s.Require().NoError(s.rewards.Reset(mockCtx, owner))
	b, _ = s.rewards.BalanceOf(mockCtx, owner)
	s.Equal(0, b.Sign())
}

func (s *mongoSuite) TestFailedSettlementLeavesNoStatus() {
	var (
		token  = common.HexToAddress("0x00000000000000000000000000000000000000E2")
		engine = common.HexToAddress("0x00000000000000000000000000000000000000E1")
		taker  = common.HexToAddress("0x00000000000000000000000000000000000000B1")
		maker  = common.HexToAddress("0x00000000000000000000000000000000000000A1")
		hash   = common.HexToHash("0xfeed")
	)
	book := ledger.New()
	s.Require().NoError(book.Deploy(mockCtx, token, ledger.KindErc20, common.Address{}))
	s.Require().NoError(book.Erc20().Mint(mockCtx, token, taker, big.NewInt(10)))
	s.Require().NoError(s.rewards.Accrue(mockCtx, taker, big.NewInt(7)))

	err := Chain(book, s.q).RunWithTransaction(mockCtx, func(c ctx.Ctx) error {
		if err := s.status.Insert(c, &deal.Status{DealHash: hash, Executed: true, ProcessRes: true, CreatedAt: time.Unix(1000, 0).UTC()}); err != nil {
			return err
		}
		if err := s.rewards.Reset(c, taker); err != nil {
			return err
		}
		// the taker never approved the engine
		return book.Erc20().TransferFrom(c, token, engine, taker, maker, big.NewInt(10))
	})
	if !errors.Is(err, ledger.ErrInsufficientAllow) {
		s.T().Skipf("transactions need a replica set: %v", err)
	}

	_, err = s.status.FindOne(mockCtx, hash)
	s.Equal(domain.ErrNotFound, err)
	b, err := s.rewards.BalanceOf(mockCtx, taker)
	s.Require().NoError(err)
	s.Equal(int64(7), b.Int64())
	b, _ = book.Erc20().BalanceOf(mockCtx, token, taker)
	s.Equal(int64(10), b.Int64())
}
