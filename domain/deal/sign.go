package deal

import (
	"crypto/ecdsa"

	"github.com/x-xyz/dealexchange/base/ethereum"
)

// Sign fills NftTokenHash from nftInfo and signs the listing as its maker
func (o *MakerOrder) Sign(d Domain, nftInfo *NftInfo, key *ecdsa.PrivateKey) error {
	nftTokenHash, err := nftInfo.NftTokenHash()
	if err != nil {
		return err
	}
	o.NftTokenHash = nftTokenHash
	hash, err := o.Hash(d)
	if err != nil {
		return err
	}
	o.Signature, err = ethereum.SignHash(hash.Bytes(), key)
	return err
}

// SignTaker signs the buyer subset. It has to run before SignBroker.
func (o *DealOrder) SignTaker(d Domain, key *ecdsa.PrivateKey) error {
	hash, err := o.TakerHash(d)
	if err != nil {
		return err
	}
	o.TakerSig, err = ethereum.SignHash(hash.Bytes(), key)
	return err
}

// SignBroker countersigns the full instruction
func (o *DealOrder) SignBroker(d Domain, key *ecdsa.PrivateKey) error {
	hash, err := o.Hash(d)
	if err != nil {
		return err
	}
	o.SignerSig, err = ethereum.SignHash(hash.Bytes(), key)
	return err
}
