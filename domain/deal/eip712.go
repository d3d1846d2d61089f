package deal

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

func init() {
	var err error
	addressTy, err = abi.NewType("address", "", nil)
	if err != nil {
		panic(err)
	}
	uintTy, err = abi.NewType("uint256", "", nil)
	if err != nil {
		panic(err)
	}
	uintArrTy, err = abi.NewType("uint256[]", "", nil)
	if err != nil {
		panic(err)
	}
	uint8Ty, err = abi.NewType("uint8", "", nil)
	if err != nil {
		panic(err)
	}
	nftInfoArgs = abi.Arguments{
		{Type: addressTy}, // nftToken
		{Type: uintArrTy}, // batchIds
		{Type: uintArrTy}, // batchPrices
		{Type: uint8Ty},   // nftType
		{Type: uintTy},    // chainId
		{Type: uintTy},    // salt
	}
}

var (
	addressTy   abi.Type
	uintTy      abi.Type
	uintArrTy   abi.Type
	uint8Ty     abi.Type
	nftInfoArgs abi.Arguments
)

const (
	MakerOrderType   = "MakerOrder"
	TakerOrderType   = "TakerOrder"
	DealOrderType    = "DealOrder"
	Eip712DomainName = "EIP712Domain"
)

// Domain namespaces every order hash to one exchange instance on one chain
type Domain struct {
	Name              string
	Version           string
	ChainId           *big.Int
	VerifyingContract common.Address
}

func (d Domain) typed() apitypes.TypedDataDomain {
	chainId := new(big.Int)
	if d.ChainId != nil {
		chainId.Set(d.ChainId)
	}
	return apitypes.TypedDataDomain{
		Name:              d.Name,
		Version:           d.Version,
		ChainId:           (*math.HexOrDecimal256)(chainId),
		VerifyingContract: strings.ToLower(d.VerifyingContract.Hex()),
	}
}

var OrderTypes = apitypes.Types{
	MakerOrderType: {
		{Name: "nftTokenHash", Type: "bytes32"},
		{Name: "maker", Type: "address"},
		{Name: "price", Type: "uint256"},
		{Name: "quantity", Type: "uint256"},
		{Name: "paymentToken", Type: "address"},
		{Name: "authorProtocolFee", Type: "uint256"},
		{Name: "saleType", Type: "uint8"},
		{Name: "startTime", Type: "uint256"},
		{Name: "endTime", Type: "uint256"},
		{Name: "createTime", Type: "uint256"},
		{Name: "cancelTime", Type: "uint256"},
	},
	TakerOrderType: {
		{Name: "makerOrderHash", Type: "bytes32"},
		{Name: "taker", Type: "address"},
		{Name: "dealAmount", Type: "uint256"},
		{Name: "salt", Type: "uint256"},
		{Name: "deadline", Type: "uint256"},
		{Name: "createTime", Type: "uint256"},
	},
	DealOrderType: {
		{Name: "makerOrderHash", Type: "bytes32"},
		{Name: "taker", Type: "address"},
		{Name: "author", Type: "address"},
		{Name: "dealAmount", Type: "uint256"},
		{Name: "rewardAmount", Type: "uint256"},
		{Name: "salt", Type: "uint256"},
		{Name: "minted", Type: "bool"},
		{Name: "deadline", Type: "uint256"},
		{Name: "createTime", Type: "uint256"},
		{Name: "takerSigHash", Type: "bytes32"},
		{Name: "quantity", Type: "uint256"},
	},
	Eip712DomainName: {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
}

func addr(a common.Address) string {
	return strings.ToLower(a.Hex())
}

// num renders a uint256 field. nil renders as a value the encoder rejects,
// an empty string would silently encode as zero.
func num(n *big.Int) string {
	if n == nil {
		return "nil"
	}
	return n.String()
}

// NftTokenHash is keccak256(abi.encode(nftToken, batchIds, batchPrices, nftType, chainId, salt)).
// The traded TokenId is not part of it so one listing covers the whole priced batch.
func (n *NftInfo) NftTokenHash() (common.Hash, error) {
	nums := append([]*big.Int{n.ChainId, n.Salt}, n.BatchIds...)
	for _, v := range append(nums, n.BatchPrices...) {
		// the packer silently wraps values wider than uint256
		if v == nil || v.Sign() < 0 || v.BitLen() > 256 {
			return common.Hash{}, ErrMalformedOrder
		}
	}
	encoded, err := nftInfoArgs.Pack(
		n.NftToken,
		nonNilSlice(n.BatchIds),
		nonNilSlice(n.BatchPrices),
		uint8(n.NftType),
		n.ChainId,
		n.Salt,
	)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(encoded), nil
}

func nonNilSlice(s []*big.Int) []*big.Int {
	if s == nil {
		return []*big.Int{}
	}
	return s
}

func (o *MakerOrder) ToMessage() apitypes.TypedDataMessage {
	return apitypes.TypedDataMessage{
		"nftTokenHash":      o.NftTokenHash.Hex(),
		"maker":             addr(o.Maker),
		"price":             num(o.Price),
		"quantity":          num(o.Quantity),
		"paymentToken":      addr(o.PaymentToken),
		"authorProtocolFee": num(o.AuthorProtocolFee),
		"saleType":          fmt.Sprintf("%d", o.SaleType),
		"startTime":         num(o.StartTime),
		"endTime":           num(o.EndTime),
		"createTime":        num(o.CreateTime),
		"cancelTime":        num(o.CancelTime),
	}
}

// Hash is the domain separated digest the maker signs
func (o *MakerOrder) Hash(d Domain) (common.Hash, error) {
	return typedDataHash(d, MakerOrderType, o.ToMessage())
}

// ToTakerMessage is the reduced subset the buyer signs
func (o *DealOrder) ToTakerMessage() apitypes.TypedDataMessage {
	return apitypes.TypedDataMessage{
		"makerOrderHash": o.MakerOrderHash.Hex(),
		"taker":          addr(o.Taker),
		"dealAmount":     num(o.DealAmount),
		"salt":           num(o.Salt),
		"deadline":       num(o.Deadline),
		"createTime":     num(o.CreateTime),
	}
}

func (o *DealOrder) ToMessage() apitypes.TypedDataMessage {
	return apitypes.TypedDataMessage{
		"makerOrderHash": o.MakerOrderHash.Hex(),
		"taker":          addr(o.Taker),
		"author":         addr(o.Author),
		"dealAmount":     num(o.DealAmount),
		"rewardAmount":   num(o.RewardAmount),
		"salt":           num(o.Salt),
		"minted":         o.Minted,
		"deadline":       num(o.Deadline),
		"createTime":     num(o.CreateTime),
		"takerSigHash":   hexutil.Encode(crypto.Keccak256(o.TakerSig)),
		"quantity":       num(o.Quantity),
	}
}

// TakerHash is the domain separated digest the buyer signs
func (o *DealOrder) TakerHash(d Domain) (common.Hash, error) {
	return typedDataHash(d, TakerOrderType, o.ToTakerMessage())
}

// Hash is the settlement hash: the digest the broker signs and the replay key
func (o *DealOrder) Hash(d Domain) (common.Hash, error) {
	return typedDataHash(d, DealOrderType, o.ToMessage())
}

func typedDataHash(d Domain, primaryType string, message apitypes.TypedDataMessage) (common.Hash, error) {
	typedData := apitypes.TypedData{
		Types:       OrderTypes,
		PrimaryType: primaryType,
		Domain:      d.typed(),
		Message:     message,
	}
	domainSeparator, err := typedData.HashStruct(Eip712DomainName, typedData.Domain.Map())
	if err != nil {
		return common.Hash{}, err
	}
	structHash, err := typedData.HashStruct(typedData.PrimaryType, typedData.Message)
	if err != nil {
		return common.Hash{}, err
	}
	rawData := []byte(fmt.Sprintf("\x19\x01%s%s", string(domainSeparator), string(structHash)))
	return crypto.Keccak256Hash(rawData), nil
}
