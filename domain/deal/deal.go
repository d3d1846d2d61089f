package deal

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/x-xyz/dealexchange/base/ctx"
)

// NftType is the asset kind of a listing. Zero is reserved.
type NftType uint8

const (
	NftTypeBase NftType = iota
	NftTypeErc721
	NftTypeErc1155
)

func (t NftType) IsValid() bool {
	return t == NftTypeErc721 || t == NftTypeErc1155
}

func (t NftType) String() string {
	switch t {
	case NftTypeErc721:
		return "erc721"
	case NftTypeErc1155:
		return "erc1155"
	}
	return "base"
}

// SaleType is the sale mode of a listing. Zero is reserved.
type SaleType uint8

const (
	SaleTypeBase SaleType = iota
	SaleTypeMarket
	SaleTypeAuction
)

func (t SaleType) IsValid() bool {
	return t == SaleTypeMarket || t == SaleTypeAuction
}

func (t SaleType) String() string {
	switch t {
	case SaleTypeMarket:
		return "market"
	case SaleTypeAuction:
		return "auction"
	}
	return "base"
}

// NftInfo is the asset batch a listing commits to through NftTokenHash
type NftInfo struct {
	NftToken    common.Address
	TokenId     *big.Int
	BatchIds    []*big.Int
	BatchPrices []*big.Int
	NftType     NftType
	ChainId     *big.Int
	Salt        *big.Int
}

// MakerOrder is the listing signed by the seller
type MakerOrder struct {
	NftTokenHash      common.Hash
	Maker             common.Address
	Price             *big.Int
	Quantity          *big.Int
	PaymentToken      common.Address
	AuthorProtocolFee *big.Int
	SaleType          SaleType
	StartTime         *big.Int
	EndTime           *big.Int
	CreateTime        *big.Int
	CancelTime        *big.Int
	Signature         []byte
}

// DealOrder is the settlement instruction. TakerSig covers the buyer subset,
// SignerSig covers the whole instruction including keccak(TakerSig).
type DealOrder struct {
	MakerOrderHash common.Hash
	Taker          common.Address
	Author         common.Address
	DealAmount     *big.Int
	RewardAmount   *big.Int
	Salt           *big.Int
	Minted         bool
	Deadline       *big.Int
	CreateTime     *big.Int
	TakerSig       []byte
	Quantity       *big.Int
	SignerSig      []byte
}

// Status is the write-once record of a settlement hash
type Status struct {
	DealHash   common.Hash
	Executed   bool
	ProcessRes bool
	CreatedAt  time.Time
}

// CallOpts carries the authenticated caller and the native value attached to a call
type CallOpts struct {
	From  common.Address
	Value *big.Int
}

type Receipt struct {
	DealHash       common.Hash
	MakerOrderHash common.Hash
	TotalFee       *big.Int
	ProcessRes     bool
}

// Hashes are the canonical digests of a validated settlement
type Hashes struct {
	MakerOrderHash common.Hash
	TakerHash      common.Hash
	DealHash       common.Hash
}

type FeeAmount struct {
	Amount      *big.Int
	TotalFee    *big.Int
	ProtocolFee *big.Int
	AuthorFee   *big.Int
}

// Controller supplies payment and signer allow-lists, the fee schedule and mint authority
type Controller interface {
	Address() common.Address
	IsSupportPayment(ctx ctx.Ctx, token common.Address) bool
	IsOriginToken(ctx ctx.Ctx, token common.Address) bool
	IsSigAddress(ctx ctx.Ctx, addr common.Address) bool
	FeeTo(ctx ctx.Ctx) common.Address
	CheckFeeAmount(ctx ctx.Ctx, dealAmount, authorRateBps *big.Int) (*FeeAmount, error)
	Mint(ctx ctx.Ctx, nftToken, to common.Address, id, quantity *big.Int) error
}

// NativeCoin moves the chain's native coin
type NativeCoin interface {
	BalanceOf(ctx ctx.Ctx, owner common.Address) (*big.Int, error)
	Transfer(ctx ctx.Ctx, from, to common.Address, amount *big.Int) error
}

// PaymentToken is a fungible token contract
type PaymentToken interface {
	BalanceOf(ctx ctx.Ctx, token, owner common.Address) (*big.Int, error)
	Transfer(ctx ctx.Ctx, token, from, to common.Address, amount *big.Int) error
	TransferFrom(ctx ctx.Ctx, token, spender, from, to common.Address, amount *big.Int) error
}

// Erc721 is a unique-item collection
type Erc721 interface {
	OwnerOf(ctx ctx.Ctx, token common.Address, id *big.Int) (common.Address, error)
	SafeTransferFrom(ctx ctx.Ctx, token, operator, from, to common.Address, id *big.Int) error
}

// Erc1155 is a multi-quantity collection
type Erc1155 interface {
	BalanceOf(ctx ctx.Ctx, token, owner common.Address, id *big.Int) (*big.Int, error)
	SafeTransferFrom(ctx ctx.Ctx, token, operator, from, to common.Address, id, amount *big.Int) error
}

// Transactor runs fn atomically: any error leaves no observable change
type Transactor interface {
	RunWithTransaction(ctx ctx.Ctx, fn func(ctx.Ctx) error) error
}

type StatusRepo interface {
	// FindOne returns domain.ErrNotFound for an unseen hash
	FindOne(ctx ctx.Ctx, hash common.Hash) (*Status, error)
	// Insert returns domain.ErrConflict if the hash already has a status
	Insert(ctx ctx.Ctx, status *Status) error
}

type RewardRepo interface {
	BalanceOf(ctx ctx.Ctx, owner common.Address) (*big.Int, error)
	Accrue(ctx ctx.Ctx, owner common.Address, amount *big.Int) error
	Reset(ctx ctx.Ctx, owner common.Address) error
}

type UseCase interface {
	// Validate runs the pure structural checks and returns the canonical hashes
	Validate(ctx ctx.Ctx, nftInfo *NftInfo, makerOrder *MakerOrder, dealOrder *DealOrder) (*Hashes, error)
	PerformOrder(ctx ctx.Ctx, opts CallOpts, nftInfo *NftInfo, makerOrder *MakerOrder, dealOrder *DealOrder) (*Receipt, error)
	GetStatus(ctx ctx.Ctx, dealHash common.Hash) (*Status, error)

	RewardOf(ctx ctx.Ctx, owner common.Address) (*big.Int, error)
	Claim(ctx ctx.Ctx, opts CallOpts) (*big.Int, error)

	SetController(ctx ctx.Ctx, opts CallOpts, controller Controller) error
	Controller() Controller
	Domain() Domain
	// Address is the account funds and approvals are granted to
	Address() common.Address
}
