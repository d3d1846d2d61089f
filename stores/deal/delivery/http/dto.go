package http

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/x-xyz/dealexchange/domain"
	"github.com/x-xyz/dealexchange/domain/deal"
)

// Numbers travel as decimal strings, addresses, hashes and signatures as 0x-hex.

type nftInfoDTO struct {
	NftToken    string   `json:"nftToken" validate:"required,address"`
	TokenId     string   `json:"tokenId" validate:"required,uint256"`
	BatchIds    []string `json:"batchIds" validate:"required,dive,uint256"`
	BatchPrices []string `json:"batchPrices" validate:"required,dive,uint256"`
	NftType     uint8    `json:"nftType"`
	ChainId     string   `json:"chainId" validate:"required,uint256"`
	Salt        string   `json:"salt" validate:"required,uint256"`
}

type makerOrderDTO struct {
	NftTokenHash      string `json:"nftTokenHash" validate:"omitempty,hash"`
	Maker             string `json:"maker" validate:"required,address"`
	Price             string `json:"price" validate:"required,uint256"`
	Quantity          string `json:"quantity" validate:"required,uint256"`
	PaymentToken      string `json:"paymentToken" validate:"required,address"`
	AuthorProtocolFee string `json:"authorProtocolFee" validate:"required,uint256"`
	SaleType          uint8  `json:"saleType"`
	StartTime         string `json:"startTime" validate:"required,uint256"`
	EndTime           string `json:"endTime" validate:"required,uint256"`
	CreateTime        string `json:"createTime" validate:"required,uint256"`
	CancelTime        string `json:"cancelTime" validate:"required,uint256"`
	Signature         string `json:"signature" validate:"required,sig"`
}

type dealOrderDTO struct {
	MakerOrderHash string `json:"makerOrderHash" validate:"required,hash"`
	Taker          string `json:"taker" validate:"required,address"`
	Author         string `json:"author" validate:"required,address"`
	DealAmount     string `json:"dealAmount" validate:"required,uint256"`
	RewardAmount   string `json:"rewardAmount" validate:"required,uint256"`
	Salt           string `json:"salt" validate:"required,uint256"`
	Minted         bool   `json:"minted"`
	Deadline       string `json:"deadline" validate:"required,uint256"`
	CreateTime     string `json:"createTime" validate:"required,uint256"`
	TakerSig       string `json:"takerSig" validate:"required,sig"`
	Quantity       string `json:"quantity" validate:"required,uint256"`
	SignerSig      string `json:"signerSig" validate:"required,sig"`
}

type settlementDTO struct {
	NftInfo    nftInfoDTO    `json:"nftInfo"`
	MakerOrder makerOrderDTO `json:"makerOrder"`
	DealOrder  dealOrderDTO  `json:"dealOrder"`
	// Value is the native coin attached to the call
	Value string `json:"value" validate:"omitempty,uint256"`
}

type hashesDTO struct {
	MakerOrderHash string `json:"makerOrderHash"`
	TakerHash      string `json:"takerHash"`
	DealHash       string `json:"dealHash"`
}

type receiptDTO struct {
	DealHash       string `json:"dealHash"`
	MakerOrderHash string `json:"makerOrderHash"`
	TotalFee       string `json:"totalFee"`
	ProcessRes     bool   `json:"processRes"`
}

type statusDTO struct {
	DealHash   string `json:"dealHash"`
	Executed   bool   `json:"executed"`
	ProcessRes bool   `json:"processRes"`
}

type rewardDTO struct {
	Address domain.Address `json:"address"`
	Amount  string         `json:"amount"`
}

// bigs parses every decimal string, validation has already vetted the format
func bigs(ns ...string) ([]*big.Int, error) {
	return domain.ToBigInt(ns)
}

func (d *nftInfoDTO) toNftInfo() (*deal.NftInfo, error) {
	n, err := bigs(d.TokenId, d.ChainId, d.Salt)
	if err != nil {
		return nil, err
	}
	ids, err := domain.ToBigInt(d.BatchIds)
	if err != nil {
		return nil, err
	}
	prices, err := domain.ToBigInt(d.BatchPrices)
	if err != nil {
		return nil, err
	}
	return &deal.NftInfo{
		NftToken:    common.HexToAddress(d.NftToken),
		TokenId:     n[0],
		BatchIds:    ids,
		BatchPrices: prices,
		NftType:     deal.NftType(d.NftType),
		ChainId:     n[1],
		Salt:        n[2],
	}, nil
}

func (d *makerOrderDTO) toMakerOrder() (*deal.MakerOrder, error) {
	n, err := bigs(d.Price, d.Quantity, d.AuthorProtocolFee, d.StartTime, d.EndTime, d.CreateTime, d.CancelTime)
	if err != nil {
		return nil, err
	}
	sig, err := hexutil.Decode(d.Signature)
	if err != nil {
		return nil, domain.ErrInvalidSignature
	}
	o := &deal.MakerOrder{
		Maker:             common.HexToAddress(d.Maker),
		Price:             n[0],
		Quantity:          n[1],
		PaymentToken:      common.HexToAddress(d.PaymentToken),
		AuthorProtocolFee: n[2],
		SaleType:          deal.SaleType(d.SaleType),
		StartTime:         n[3],
		EndTime:           n[4],
		CreateTime:        n[5],
		CancelTime:        n[6],
		Signature:         sig,
	}
	if d.NftTokenHash != "" {
		o.NftTokenHash = common.HexToHash(d.NftTokenHash)
	}
	return o, nil
}

func (d *dealOrderDTO) toDealOrder() (*deal.DealOrder, error) {
	n, err := bigs(d.DealAmount, d.RewardAmount, d.Salt, d.Deadline, d.CreateTime, d.Quantity)
	if err != nil {
		return nil, err
	}
	takerSig, err := hexutil.Decode(d.TakerSig)
	if err != nil {
		return nil, domain.ErrInvalidSignature
	}
	signerSig, err := hexutil.Decode(d.SignerSig)
	if err != nil {
		return nil, domain.ErrInvalidSignature
	}
	return &deal.DealOrder{
		MakerOrderHash: common.HexToHash(d.MakerOrderHash),
		Taker:          common.HexToAddress(d.Taker),
		Author:         common.HexToAddress(d.Author),
		DealAmount:     n[0],
		RewardAmount:   n[1],
		Salt:           n[2],
		Minted:         d.Minted,
		Deadline:       n[3],
		CreateTime:     n[4],
		TakerSig:       takerSig,
		Quantity:       n[5],
		SignerSig:      signerSig,
	}, nil
}

func (d *settlementDTO) parse() (*deal.NftInfo, *deal.MakerOrder, *deal.DealOrder, error) {
	info, err := d.NftInfo.toNftInfo()
	if err != nil {
		return nil, nil, nil, err
	}
	mo, err := d.MakerOrder.toMakerOrder()
	if err != nil {
		return nil, nil, nil, err
	}
	do, err := d.DealOrder.toDealOrder()
	if err != nil {
		return nil, nil, nil, err
	}
	return info, mo, do, nil
}
