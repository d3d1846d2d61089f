package validator

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// IsValidAddress returns is an address valid or not
func IsValidAddress(address string) bool {
	checksum := common.HexToAddress(address).Hex()
	return strings.ToLower(checksum) == strings.ToLower(address)
}

// IsUint256 reports whether s is a non-negative decimal integer fitting in 256 bits
func IsUint256(s string) bool {
	n, ok := new(big.Int).SetString(s, 10)
	return ok && n.Sign() >= 0 && n.BitLen() <= 256
}

// IsHash reports whether s is a 0x-prefixed 32 byte hex string
func IsHash(s string) bool {
	b, err := hexutil.Decode(s)
	return err == nil && len(b) == common.HashLength
}

// IsSignature reports whether s is a 0x-prefixed 65 byte hex string
func IsSignature(s string) bool {
	b, err := hexutil.Decode(s)
	return err == nil && len(b) == 65
}

func stringFunc(f func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return f(fl.Field().String())
	}
}

// New returns a validator with the `address`, `uint256`, `hash` and `sig` tags registered
func New() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("address", stringFunc(IsValidAddress))
	v.RegisterValidation("uint256", stringFunc(IsUint256))
	v.RegisterValidation("hash", stringFunc(IsHash))
	v.RegisterValidation("sig", stringFunc(IsSignature))
	return v
}

func NewCustomValidator(v *validator.Validate) echo.Validator {
	return &CustomValidator{v}
}

type CustomValidator struct {
	validator *validator.Validate
}

func (v *CustomValidator) Validate(i interface{}) error {
	if err := v.validator.Struct(i); err != nil {
		return err
	}
	return nil
}
