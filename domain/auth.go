package domain

import (
	"github.com/golang-jwt/jwt"

	"github.com/x-xyz/dealexchange/base/ctx"
)

type JwtCustomClaims struct {
	Address string `json:"data"` // name data for backward compatibility
	jwt.StandardClaims
}

type AuthUsecase interface {
	SignToken(ctx ctx.Ctx, address Address) (string, error)
	ParseToken(ctx ctx.Ctx, token string) (address string, err error)

	// IssueNonce creates a one-time nonce the address has to sign with personal_sign
	IssueNonce(ctx ctx.Ctx, address Address) (message string, err error)
	// SignIn consumes the nonce of address, verifies signature and returns a jwt
	SignIn(ctx ctx.Ctx, address Address, signature string) (token string, err error)
}
