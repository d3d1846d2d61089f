package domain

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// BpsBase is the denominator of basis points rates
	BpsBase = big.NewInt(10000)
)

type SortDir int8

const (
	SortDirAsc  = 1
	SortDirDesc = -1
)

type Address string

func (a Address) ToLower() Address {
	return Address(strings.ToLower(string(a)))
}

func (a Address) ToLowerStr() string {
	return strings.ToLower(string(a))
}

func (a Address) IsValid() bool {
	return common.IsHexAddress(string(a))
}

// ToCommon converts a into its 20 bytes form
func (a Address) ToCommon() common.Address {
	return common.HexToAddress(string(a))
}

// FromCommon returns the lowercase hex form of a
func FromCommon(a common.Address) Address {
	return Address(strings.ToLower(a.Hex()))
}

// ToBigInt parses decimal strings
func ToBigInt(nums []string) ([]*big.Int, error) {
	var bns []*big.Int
	for _, n := range nums {
		bn, ok := new(big.Int).SetString(n, 10)
		if !ok {
			return nil, ErrInvalidNumberFormat
		}
		bns = append(bns, bn)
	}
	return bns, nil
}

// ToBigIntOne parses a single decimal string
func ToBigIntOne(n string) (*big.Int, error) {
	bns, err := ToBigInt([]string{n})
	if err != nil {
		return nil, err
	}
	return bns[0], nil
}
