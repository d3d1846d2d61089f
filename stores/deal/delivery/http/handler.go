package http

import (
	"errors"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/labstack/echo/v4"

	"github.com/x-xyz/dealexchange/base/ctx"
	"github.com/x-xyz/dealexchange/base/delivery"
	"github.com/x-xyz/dealexchange/base/log"
	"github.com/x-xyz/dealexchange/domain"
	"github.com/x-xyz/dealexchange/domain/deal"
	"github.com/x-xyz/dealexchange/domain/dealevent"
	"github.com/x-xyz/dealexchange/middleware"
	"github.com/x-xyz/dealexchange/service/cache/provider"
	"github.com/x-xyz/dealexchange/service/ledger"
	authMiddleware "github.com/x-xyz/dealexchange/stores/auth/delivery/http/middleware"
)

type handler struct {
	deal   deal.UseCase
	events dealevent.UseCase
}

// New registers the deal and reward routes. httpCache may be nil.
func New(e *echo.Echo, dealUC deal.UseCase, events dealevent.UseCase, am *authMiddleware.AuthMiddleware, httpCache provider.Provider) {
	h := &handler{dealUC, events}

	g := e.Group("/deals")
	g.POST("/validate", h.validate)
	g.POST("/perform", h.perform, am.Auth())
	g.GET("/:hash/status", h.getStatus, middleware.IsValidHash("hash"))
	if httpCache != nil {
		g.GET("/events", h.getEvents, middleware.CacheHttp(httpCache, 5*time.Second))
	} else {
		g.GET("/events", h.getEvents)
	}

	r := e.Group("/rewards")
	r.GET("/:address", h.getReward, middleware.IsValidAddress("address"))
	r.GET("/:address/claims", h.getClaims, middleware.IsValidAddress("address"))
	r.POST("/claim", h.claim, am.Auth())
}

var clientErrs = []error{
	deal.ErrTransactionTooOld, deal.ErrPaymentNotSupported, deal.ErrZeroAddress,
	deal.ErrNativeAuction, deal.ErrMalformedOrder, deal.ErrQuantityVerification,
	deal.ErrBatchArraysMismatch, deal.ErrTokenDataValidation, deal.ErrDealAmountTooLow,
	deal.ErrMakerOrderHash, deal.ErrUnsupportedNftType, deal.ErrUnsupportedSaleType,
	deal.ErrMintQuantity, deal.ErrInsufficientValue, deal.ErrMakerSignature,
	deal.ErrTakerSignature, deal.ErrSignerSignature, deal.ErrNoReward,
	deal.ErrZeroController,
	ledger.ErrNotOwnerNorApproved, ledger.ErrInsufficientBalance, ledger.ErrInsufficientAllow,
	ledger.ErrIncorrectOwner, ledger.ErrNonexistentToken, ledger.ErrTokenExists,
	domain.ErrInvalidNumberFormat, domain.ErrInvalidSignature,
}

// failStatus is 400 for errors the caller can fix, 500 otherwise.
// MakeJsonResp refines it for authorization, replay and not found.
func failStatus(err error) int {
	for _, e := range clientErrs {
		if errors.Is(err, e) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

func (h *handler) bindSettlement(c echo.Context) (*deal.NftInfo, *deal.MakerOrder, *deal.DealOrder, *big.Int, error) {
	p := &settlementDTO{}
	if err := c.Bind(p); err != nil {
		return nil, nil, nil, nil, err
	}
	if err := c.Validate(p); err != nil {
		return nil, nil, nil, nil, err
	}
	info, mo, do, err := p.parse()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	value := new(big.Int)
	if p.Value != "" {
		if value, err = domain.ToBigIntOne(p.Value); err != nil {
			return nil, nil, nil, nil, err
		}
	}
	return info, mo, do, value, nil
}

// validate
//
//	@Summary		Validate settlement
//	@Description	Run the structural checks and return the canonical hashes
//	@Tags			deals
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	object{data=hashesDTO}
//	@Failure		400
//	@Router			/deals/validate [post]
func (h *handler) validate(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	info, mo, do, _, err := h.bindSettlement(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	hashes, err := h.deal.Validate(ctx, info, mo, do)
	if err != nil {
		return delivery.MakeJsonResp(c, failStatus(err), err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, hashesDTO{
		MakerOrderHash: hashes.MakerOrderHash.Hex(),
		TakerHash:      hashes.TakerHash.Hex(),
		DealHash:       hashes.DealHash.Hex(),
	})
}

// perform
//
//	@Summary		Perform settlement
//	@Description	Settle a deal order as the authenticated caller
//	@Tags			deals
//	@Accept			json
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Success		200	{object}	object{data=receiptDTO}
//	@Failure		400
//	@Failure		403
//	@Failure		409
//	@Router			/deals/perform [post]
func (h *handler) perform(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := authMiddleware.Caller(c)

	info, mo, do, value, err := h.bindSettlement(c)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	receipt, err := h.deal.PerformOrder(ctx, deal.CallOpts{From: caller.ToCommon(), Value: value}, info, mo, do)
	if err != nil {
		return delivery.MakeJsonResp(c, failStatus(err), err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, receiptDTO{
		DealHash:       receipt.DealHash.Hex(),
		MakerOrderHash: receipt.MakerOrderHash.Hex(),
		TotalFee:       receipt.TotalFee.String(),
		ProcessRes:     receipt.ProcessRes,
	})
}

func (h *handler) getStatus(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	hash := common.HexToHash(c.Param("hash"))

	status, err := h.deal.GetStatus(ctx, hash)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, statusDTO{
		DealHash:   status.DealHash.Hex(),
		Executed:   status.Executed,
		ProcessRes: status.ProcessRes,
	})
}

// getEvents
//
//	@Summary		List settlements
//	@Tags			deals
//	@Produce		json
//	@Param			taker		query	string	false	"taker address"
//	@Param			maker		query	string	false	"maker address"
//	@Param			processRes	query	bool	false	"delivered or inert"
//	@Param			offset		query	int		false	"offset"
//	@Param			limit		query	int		false	"limit"
//	@Success		200	{object}	object{data=[]dealevent.DealRecord}
//	@Router			/deals/events [get]
func (h *handler) getEvents(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	type params struct {
		Taker      string `query:"taker" validate:"omitempty,address"`
		Maker      string `query:"maker" validate:"omitempty,address"`
		ProcessRes string `query:"processRes" validate:"omitempty,oneof=true false"`
		DealHash   string `query:"dealHash" validate:"omitempty,len=66,startswith=0x,hexadecimal"`
		SortDir    string `query:"sortDir" validate:"omitempty,oneof=asc desc"`
		Offset     int32  `query:"offset" validate:"gte=0"`
		Limit      int32  `query:"limit" validate:"gte=0,lte=1000"`
	}

	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	opts := []dealevent.FindAllOptionsFunc{
		dealevent.WithPagination(p.Offset, p.Limit),
	}
	if p.Taker != "" {
		opts = append(opts, dealevent.WithTaker(domain.Address(p.Taker)))
	}
	if p.Maker != "" {
		opts = append(opts, dealevent.WithMaker(domain.Address(p.Maker)))
	}
	if p.ProcessRes != "" {
		opts = append(opts, dealevent.WithProcessRes(p.ProcessRes == "true"))
	}
	if p.DealHash != "" {
		opts = append(opts, dealevent.WithDealHash(p.DealHash))
	}
	if p.SortDir == "asc" {
		opts = append(opts, dealevent.WithSort("timestamp", domain.SortDirAsc))
	}

	res, err := h.events.FindDeals(ctx, opts...)
	if err != nil {
		ctx.WithFields(log.Fields{
			"err":    err,
			"params": p,
		}).Error("events.FindDeals failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

func (h *handler) getReward(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	address := domain.Address(c.Param("address"))

	amount, err := h.deal.RewardOf(ctx, address.ToCommon())
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, rewardDTO{
		Address: address.ToLower(),
		Amount:  amount.String(),
	})
}

func (h *handler) getClaims(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	address := domain.Address(c.Param("address"))

	type params struct {
		Offset int32 `query:"offset" validate:"gte=0"`
		Limit  int32 `query:"limit" validate:"gte=0,lte=1000"`
	}
	p := &params{}
	if err := c.Bind(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid params")
	}
	if err := c.Validate(p); err != nil {
		return delivery.MakeJsonResp(c, http.StatusBadRequest, err)
	}

	res, err := h.events.FindClaims(ctx, address, p.Offset, p.Limit)
	if err != nil {
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, res)
}

// claim
//
//	@Summary		Claim rewards
//	@Description	Pay the caller's whole reward balance
//	@Tags			rewards
//	@Produce		json
//	@Security		ApiKeyAuth
//	@Success		200	{object}	object{data=rewardDTO}
//	@Failure		400
//	@Router			/rewards/claim [post]
func (h *handler) claim(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)
	caller := authMiddleware.Caller(c)

	amount, err := h.deal.Claim(ctx, deal.CallOpts{From: caller.ToCommon()})
	if err != nil {
		return delivery.MakeJsonResp(c, failStatus(err), err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, rewardDTO{
		Address: caller.ToLower(),
		Amount:  amount.String(),
	})
}
