package ethereum

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ValidateMsgSignature checks a personal_sign signature over message
func ValidateMsgSignature(message []byte, signature, signer string) (bool, error) {
	hash := accounts.TextHash(message)
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return false, err
	}
	recoveredAddress, err := RecoverAddress(hash, sig)
	if err != nil {
		return false, err
	}
	return recoveredAddress == common.HexToAddress(signer), nil
}

// VerifyHashSignature reports whether sig over hash was produced by expected.
// Malformed signatures never match.
func VerifyHashSignature(hash []byte, sig []byte, expected common.Address) bool {
	if expected == (common.Address{}) {
		return false
	}
	recovered, err := RecoverAddress(hash, sig)
	if err != nil {
		return false
	}
	return recovered == expected
}

// RecoverAddress returns the address for the account that was used to create the signature.
// It accepts both 0/1 and 27/28 recovery ids and rejects malleable (high s) signatures.
// Adapted from go-ethereum's internal ecRecover:
// https://github.com/ethereum/go-ethereum/blob/v1.10.9/internal/ethapi/api.go#L524
func RecoverAddress(hash []byte, sig []byte) (common.Address, error) {
	if len(hash) != common.HashLength {
		return common.Address{}, fmt.Errorf("hash must be %d bytes long", common.HashLength)
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("signature must be %d bytes long", crypto.SignatureLength)
	}

	// never touch the caller's slice
	rsv := make([]byte, crypto.SignatureLength)
	copy(rsv, sig)

	// support both versions of `eth_sign` responses
	//	@see	https://github.com/ethereumjs/ethereumjs-util/blob/master/src/signature.ts#L112
	if rsv[crypto.RecoveryIDOffset] < 27 {
		rsv[crypto.RecoveryIDOffset] += 27
	}
	if rsv[crypto.RecoveryIDOffset] != 27 && rsv[crypto.RecoveryIDOffset] != 28 {
		return common.Address{}, fmt.Errorf("invalid Ethereum signature (V is not 27 or 28)")
	}
	rsv[crypto.RecoveryIDOffset] -= 27 // Transform yellow paper V from 27/28 to 0/1

	r := new(big.Int).SetBytes(rsv[:32])
	s := new(big.Int).SetBytes(rsv[32:64])
	if !crypto.ValidateSignatureValues(rsv[crypto.RecoveryIDOffset], r, s, true) {
		return common.Address{}, fmt.Errorf("invalid signature values")
	}

	rpk, err := crypto.SigToPub(hash, rsv)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*rpk), nil
}

// SignHash signs a 32 bytes digest and returns r || s || v with v in {27, 28}
func SignHash(hash []byte, key *ecdsa.PrivateKey) ([]byte, error) {
	sig, err := crypto.Sign(hash, key)
	if err != nil {
		return nil, err
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}

// SignMsg signs message with the personal_sign prefix
func SignMsg(message []byte, key *ecdsa.PrivateKey) ([]byte, error) {
	return SignHash(accounts.TextHash(message), key)
}
