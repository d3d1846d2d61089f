package deal

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/x-xyz/dealexchange/base/ethereum"
)

// Validate runs the structural checks of one settlement and returns its canonical hashes.
// It reads no state and every failure is a distinct error.
func Validate(d Domain, nftInfo *NftInfo, makerOrder *MakerOrder, dealOrder *DealOrder) (*Hashes, error) {
	if !wellFormed(nftInfo, makerOrder, dealOrder) {
		return nil, ErrMalformedOrder
	}

	if dealOrder.Quantity.Sign() <= 0 || makerOrder.Quantity.Cmp(dealOrder.Quantity) < 0 {
		return nil, ErrQuantityVerification
	}

	if len(nftInfo.BatchIds) != len(nftInfo.BatchPrices) {
		return nil, ErrBatchArraysMismatch
	}

	found := false
	for i, id := range nftInfo.BatchIds {
		if id.Cmp(nftInfo.TokenId) == 0 && nftInfo.BatchPrices[i].Cmp(makerOrder.Price) == 0 {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrTokenDataValidation
	}

	total := new(big.Int).Mul(makerOrder.Price, dealOrder.Quantity)
	if dealOrder.DealAmount.Cmp(total) < 0 {
		return nil, ErrDealAmountTooLow
	}

	if !nftInfo.NftType.IsValid() {
		return nil, ErrUnsupportedNftType
	}
	if !makerOrder.SaleType.IsValid() {
		return nil, ErrUnsupportedSaleType
	}

	nftTokenHash, err := nftInfo.NftTokenHash()
	if err != nil {
		return nil, err
	}
	if makerOrder.NftTokenHash != (common.Hash{}) && makerOrder.NftTokenHash != nftTokenHash {
		return nil, ErrMakerOrderHash
	}
	listing := *makerOrder
	listing.NftTokenHash = nftTokenHash
	makerOrderHash, err := listing.Hash(d)
	if err != nil {
		return nil, err
	}
	if makerOrderHash != dealOrder.MakerOrderHash {
		return nil, ErrMakerOrderHash
	}

	takerHash, err := dealOrder.TakerHash(d)
	if err != nil {
		return nil, err
	}
	dealHash, err := dealOrder.Hash(d)
	if err != nil {
		return nil, err
	}

	return &Hashes{
		MakerOrderHash: makerOrderHash,
		TakerHash:      takerHash,
		DealHash:       dealHash,
	}, nil
}

// VerifySignatures checks the maker, taker and broker signatures in that order.
// The broker is whoever recovers from SignerSig, accepted if isSigner says so.
func VerifySignatures(hashes *Hashes, makerOrder *MakerOrder, dealOrder *DealOrder, isSigner func(common.Address) bool) error {
	if !ethereum.VerifyHashSignature(hashes.MakerOrderHash.Bytes(), makerOrder.Signature, makerOrder.Maker) {
		return ErrMakerSignature
	}
	if !ethereum.VerifyHashSignature(hashes.TakerHash.Bytes(), dealOrder.TakerSig, dealOrder.Taker) {
		return ErrTakerSignature
	}
	signer, err := ethereum.RecoverAddress(hashes.DealHash.Bytes(), dealOrder.SignerSig)
	if err != nil || !isSigner(signer) {
		return ErrSignerSignature
	}
	return nil
}

func wellFormed(nftInfo *NftInfo, makerOrder *MakerOrder, dealOrder *DealOrder) bool {
	if nftInfo == nil || makerOrder == nil || dealOrder == nil {
		return false
	}
	nums := []*big.Int{
		nftInfo.TokenId, nftInfo.ChainId, nftInfo.Salt,
		makerOrder.Price, makerOrder.Quantity, makerOrder.AuthorProtocolFee,
		makerOrder.StartTime, makerOrder.EndTime, makerOrder.CreateTime, makerOrder.CancelTime,
		dealOrder.DealAmount, dealOrder.RewardAmount, dealOrder.Salt,
		dealOrder.Deadline, dealOrder.CreateTime, dealOrder.Quantity,
	}
	nums = append(nums, nftInfo.BatchIds...)
	nums = append(nums, nftInfo.BatchPrices...)
	for _, n := range nums {
		// abi packing wraps anything wider than uint256
		if n == nil || n.Sign() < 0 || n.BitLen() > 256 {
			return false
		}
	}
	return true
}
