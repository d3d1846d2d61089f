package usecase

import (
	"errors"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/dealexchange/base/ctx"
	"github.com/x-xyz/dealexchange/domain"
	"github.com/x-xyz/dealexchange/domain/deal"
	"github.com/x-xyz/dealexchange/domain/dealevent"
	"github.com/x-xyz/dealexchange/domain/dealevent/mocks"
)

var (
	mockCtx = ctx.Silent()
	errBoom = errors.New("boom")

	taker = common.HexToAddress("0x00000000000000000000000000000000000000A1")
	maker = common.HexToAddress("0x00000000000000000000000000000000000000B0")
)

func dealEvent() *deal.DealEvent {
	return &deal.DealEvent{
		Id:           "ev-1",
		DealHash:     common.HexToHash("0x01"),
		SaleType:     deal.SaleTypeMarket,
		Maker:        maker,
		Taker:        taker,
		TokenId:      big.NewInt(2),
		Quantity:     big.NewInt(1),
		PaymentToken: common.HexToAddress("0xaa"),
		DealAmount:   big.NewInt(200),
		TotalFee:     big.NewInt(9),
		ProcessRes:   true,
		Timestamp:    time.Unix(100, 0),
	}
}

type dispatcherSuite struct {
	suite.Suite
	a, b *mocks.Sink
	repo *mocks.Repo
	im   dealevent.UseCase
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(dispatcherSuite))
}

func (s *dispatcherSuite) SetupTest() {
	s.a, s.b, s.repo = &mocks.Sink{}, &mocks.Sink{}, &mocks.Repo{}
	s.a.On("Name").Return("a")
	s.b.On("Name").Return("b")
	s.im = New(&DispatcherCfg{
		Sinks:        []dealevent.Sink{s.a, s.b},
		Repo:         s.repo,
		Workers:      2,
		Attempts:     3,
		BackoffStart: time.Millisecond,
		BackoffLimit: 5 * time.Millisecond,
	})
}

func (s *dispatcherSuite) TestFanOut() {
	matches := mock.MatchedBy(func(r *dealevent.DealRecord) bool {
		return r.Id == "ev-1" && r.DealAmount == "200" && r.Taker == domain.FromCommon(taker)
	})
	s.a.On("Deal", mock.Anything, matches).Return(nil).Once()
	s.b.On("Deal", mock.Anything, matches).Return(nil).Once()

	s.im.PublishDeal(mockCtx, dealEvent())
	s.im.Close()

	s.a.AssertExpectations(s.T())
	s.b.AssertExpectations(s.T())
}

func (s *dispatcherSuite) TestSinkPanic() {
	s.a.On("Deal", mock.Anything, mock.Anything).Run(func(mock.Arguments) { panic("sink bug") }).Return(nil).Once()
	s.b.On("Deal", mock.Anything, mock.Anything).Return(nil).Once()

	s.im.PublishDeal(mockCtx, dealEvent())
	s.im.Close()

	s.a.AssertExpectations(s.T())
	s.b.AssertExpectations(s.T())
}

func (s *dispatcherSuite) TestRetry() {
	s.a.On("Deal", mock.Anything, mock.Anything).Return(errBoom).Twice()
	s.a.On("Deal", mock.Anything, mock.Anything).Return(nil).Once()
	// a sink already holding the event counts as delivered
	s.b.On("Deal", mock.Anything, mock.Anything).Return(domain.ErrConflict).Once()

	s.im.PublishDeal(mockCtx, dealEvent())
	s.im.Close()

	s.a.AssertNumberOfCalls(s.T(), "Deal", 3)
	s.b.AssertNumberOfCalls(s.T(), "Deal", 1)
}

func (s *dispatcherSuite) TestGiveUp() {
	s.a.On("Claim", mock.Anything, mock.Anything).Return(errBoom)
	s.b.On("Claim", mock.Anything, mock.Anything).Return(nil).Once()

	s.im.PublishClaim(mockCtx, &deal.ClaimEvent{
		Id:       "claim-1",
		Claimant: taker,
		Amount:   big.NewInt(5),
	})
	s.im.Close()

	s.a.AssertNumberOfCalls(s.T(), "Claim", 3)
	s.b.AssertExpectations(s.T())
}

func (s *dispatcherSuite) TestFindDeals() {
	s.repo.On("FindAllDeals", mock.Anything, mock.Anything).Return([]dealevent.DealRecord{{Id: "ev-1"}}, nil).Once()
	res, err := s.im.FindDeals(mockCtx, dealevent.WithTaker(domain.FromCommon(taker)))
	s.Require().NoError(err)
	s.Len(res, 1)

	s.repo.On("FindAllClaims", mock.Anything, domain.Address("0xa1"), int32(0), int32(10)).Return(nil, errBoom).Once()
	_, err = s.im.FindClaims(mockCtx, "0xa1", 0, 10)
	s.Equal(errBoom, err)
	s.im.Close()
}

func TestWithoutArchive(t *testing.T) {
	var n int32
	sink := &mocks.Sink{}
	sink.On("Name").Return("counter")
	sink.On("Deal", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		atomic.AddInt32(&n, 1)
	}).Return(nil)

	im := New(&DispatcherCfg{Sinks: []dealevent.Sink{sink}})
	for i := 0; i < 50; i++ {
		im.PublishDeal(mockCtx, dealEvent())
	}
	im.Close()

	if atomic.LoadInt32(&n) != 50 {
		t.Fatalf("delivered %d of 50", n)
	}
	res, err := im.FindDeals(mockCtx)
	if err != nil || len(res) != 0 {
		t.Fatalf("unexpected archive result %v %v", res, err)
	}
}
