package usecase

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"

	"github.com/x-xyz/dealexchange/base/ctx"
	"github.com/x-xyz/dealexchange/base/ethereum"
	"github.com/x-xyz/dealexchange/domain"
	"github.com/x-xyz/dealexchange/domain/keys"
	"github.com/x-xyz/dealexchange/service/redis"
)

const (
	defaultNonceTTL = 5 * time.Minute
	tokenTTL        = 24 * time.Hour
)

type AuthUseCaseCfg struct {
	JwtSecret string
	// SigningMsgTemplate is formatted with the nonce, e.g. "Sign in to DealExchange: %s"
	SigningMsgTemplate string
	NonceTTL           time.Duration
	Redis              redis.Service
}

type impl struct {
	jwtSecret    []byte
	signatureMsg string
	nonceTTL     time.Duration
	redis        redis.Service
}

func New(cfg *AuthUseCaseCfg) domain.AuthUsecase {
	ttl := cfg.NonceTTL
	if ttl <= 0 {
		ttl = defaultNonceTTL
	}
	return &impl{
		jwtSecret:    []byte(cfg.JwtSecret),
		signatureMsg: cfg.SigningMsgTemplate,
		nonceTTL:     ttl,
		redis:        cfg.Redis,
	}
}

func (im *impl) SignToken(ctx ctx.Ctx, address domain.Address) (string, error) {
	claims := domain.JwtCustomClaims{
		Address: address.ToLowerStr(),
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(tokenTTL).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	if ss, err := token.SignedString(im.jwtSecret); err != nil {
		ctx.WithField("err", err).Error("token.SignedString failed")
		return "", err
	} else {
		return ss, nil
	}
}

func (im *impl) ParseToken(ctx ctx.Ctx, str string) (string, error) {
	token, err := jwt.ParseWithClaims(str, &domain.JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("Unexpected signing method: %v", token.Header["alg"])
		}
		return im.jwtSecret, nil
	})

	if token != nil {
		if claims, ok := token.Claims.(*domain.JwtCustomClaims); ok && token.Valid {
			return claims.Address, nil
		}
	}

	return "", err
}

func nonceKey(address domain.Address) string {
	return keys.RedisKey(keys.PfxNonce, address.ToLowerStr())
}

func (im *impl) makeMessageWithNonce(nonce string) []byte {
	return []byte(fmt.Sprintf(im.signatureMsg, nonce))
}

func (im *impl) IssueNonce(c ctx.Ctx, address domain.Address) (string, error) {
	if !address.IsValid() {
		return "", domain.ErrInvalidAddress
	}
	c = ctx.WithValue(c, "address", address)

	nonce := uuid.NewString()
	if err := im.redis.Set(c, nonceKey(address), []byte(nonce), im.nonceTTL); err != nil {
		c.WithField("err", err).Error("redis.Set failed")
		return "", err
	}
	return string(im.makeMessageWithNonce(nonce)), nil
}

func (im *impl) SignIn(c ctx.Ctx, address domain.Address, signature string) (string, error) {
	if !address.IsValid() {
		return "", domain.ErrInvalidAddress
	}
	c = ctx.WithValues(c, map[string]interface{}{
		"address":   address,
		"signature": signature,
	})

	// a nonce is good for one attempt whatever the outcome
	nonce, err := im.redis.GetDel(c, nonceKey(address))
	if err == redis.ErrNotFound {
		return "", domain.ErrInvalidNonce
	} else if err != nil {
		c.WithField("err", err).Error("redis.GetDel failed")
		return "", err
	}

	msg := im.makeMessageWithNonce(string(nonce))
	if isValid, err := ethereum.ValidateMsgSignature(msg, signature, string(address)); err != nil {
		c.WithField("err", err).Warn("ValidateMsgSignature failed")
		return "", domain.ErrInvalidSignature
	} else if !isValid {
		return "", domain.ErrInvalidSignature
	}

	return im.SignToken(c, address)
}
