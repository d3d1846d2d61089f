package deal

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

type fixture struct {
	domain    Domain
	makerKey  *ecdsa.PrivateKey
	takerKey  *ecdsa.PrivateKey
	brokerKey *ecdsa.PrivateKey
	nftInfo   *NftInfo
	maker     *MakerOrder
	deal      *DealOrder
}

func mustKey() *ecdsa.PrivateKey {
	key, err := crypto.GenerateKey()
	if err != nil {
		panic(err)
	}
	return key
}

func newFixture() *fixture {
	f := &fixture{
		domain: Domain{
			Name:              "DealExchange",
			Version:           "1",
			ChainId:           big.NewInt(1),
			VerifyingContract: common.HexToAddress("0x00000000000000000000000000000000000000e1"),
		},
		makerKey:  mustKey(),
		takerKey:  mustKey(),
		brokerKey: mustKey(),
	}
	f.nftInfo = &NftInfo{
		NftToken:    common.HexToAddress("0x0000000000000000000000000000000000000721"),
		TokenId:     big.NewInt(2),
		BatchIds:    []*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3)},
		BatchPrices: []*big.Int{big.NewInt(100), big.NewInt(200), big.NewInt(300)},
		NftType:     NftTypeErc721,
		ChainId:     big.NewInt(1),
		Salt:        big.NewInt(7),
	}
	f.maker = &MakerOrder{
		Maker:             crypto.PubkeyToAddress(f.makerKey.PublicKey),
		Price:             big.NewInt(200),
		Quantity:          big.NewInt(1),
		PaymentToken:      common.HexToAddress("0x00000000000000000000000000000000000000aa"),
		AuthorProtocolFee: big.NewInt(250),
		SaleType:          SaleTypeMarket,
		StartTime:         big.NewInt(1000),
		EndTime:           big.NewInt(2000),
		CreateTime:        big.NewInt(1000),
		CancelTime:        big.NewInt(0),
	}
	f.deal = &DealOrder{
		Taker:        crypto.PubkeyToAddress(f.takerKey.PublicKey),
		Author:       common.HexToAddress("0x00000000000000000000000000000000000000a7"),
		DealAmount:   big.NewInt(200),
		RewardAmount: big.NewInt(5),
		Salt:         big.NewInt(42),
		Minted:       true,
		Deadline:     big.NewInt(3000),
		CreateTime:   big.NewInt(1500),
		Quantity:     big.NewInt(1),
	}
	f.sign()
	return f
}

// sign recomputes every link and signature after a field change
func (f *fixture) sign() {
	if err := f.maker.Sign(f.domain, f.nftInfo, f.makerKey); err != nil {
		panic(err)
	}
	hash, err := f.maker.Hash(f.domain)
	if err != nil {
		panic(err)
	}
	f.deal.MakerOrderHash = hash
	if err := f.deal.SignTaker(f.domain, f.takerKey); err != nil {
		panic(err)
	}
	if err := f.deal.SignBroker(f.domain, f.brokerKey); err != nil {
		panic(err)
	}
}

func (f *fixture) isBroker(a common.Address) bool {
	return a == crypto.PubkeyToAddress(f.brokerKey.PublicKey)
}
