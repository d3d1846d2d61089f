package usecase_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/x-xyz/dealexchange/base/ctx"
	"github.com/x-xyz/dealexchange/base/ethereum"
	"github.com/x-xyz/dealexchange/domain"
	"github.com/x-xyz/dealexchange/service/redis"
	"github.com/x-xyz/dealexchange/service/redis/mocks"
	"github.com/x-xyz/dealexchange/stores/auth/usecase"
)

const template = "Sign in to DealExchange: %s"

func TestSignAndParseToken(t *testing.T) {
	ctx := ctx.Silent()
	u := usecase.New(&usecase.AuthUseCaseCfg{JwtSecret: "jwt-secret"})
	tkn, err := u.SignToken(ctx, "0xAbC")
	assert.NoError(t, err)
	assert.NotEmpty(t, tkn)
	ads, err := u.ParseToken(ctx, tkn)
	assert.NoError(t, err)
	assert.Equal(t, "0xabc", ads)

	other := usecase.New(&usecase.AuthUseCaseCfg{JwtSecret: "other-secret"})
	_, err = other.ParseToken(ctx, tkn)
	assert.Error(t, err)

	_, err = u.ParseToken(ctx, "not-a-token")
	assert.Error(t, err)
}

func TestSignIn(t *testing.T) {
	ctx := ctx.Silent()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := domain.Address(crypto.PubkeyToAddress(key.PublicKey).Hex())
	nonceKey := "nonce:" + strings.ToLower(string(address))

	var stored []byte
	r := &mocks.Service{}
	r.On("Set", mock.Anything, nonceKey, mock.Anything, time.Minute).Run(func(args mock.Arguments) {
		stored = args.Get(2).([]byte)
	}).Return(nil).Once()

	u := usecase.New(&usecase.AuthUseCaseCfg{
		JwtSecret:          "jwt-secret",
		SigningMsgTemplate: template,
		NonceTTL:           time.Minute,
		Redis:              r,
	})

	msg, err := u.IssueNonce(ctx, address)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf(template, string(stored)), msg)

	sig, err := ethereum.SignMsg([]byte(msg), key)
	require.NoError(t, err)

	r.On("GetDel", mock.Anything, nonceKey).Return(stored, nil).Once()
	tkn, err := u.SignIn(ctx, address, hexutil.Encode(sig))
	require.NoError(t, err)

	ads, err := u.ParseToken(ctx, tkn)
	require.NoError(t, err)
	assert.Equal(t, address.ToLowerStr(), ads)

	// the nonce is gone once consumed
	r.On("GetDel", mock.Anything, nonceKey).Return(nil, redis.ErrNotFound).Once()
	_, err = u.SignIn(ctx, address, hexutil.Encode(sig))
	assert.Equal(t, domain.ErrInvalidNonce, err)

	r.AssertExpectations(t)
}

func TestSignInRejectsOtherSigner(t *testing.T) {
	ctx := ctx.Silent()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	other, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := domain.Address(crypto.PubkeyToAddress(key.PublicKey).Hex())

	r := &mocks.Service{}
	r.On("GetDel", mock.Anything, mock.Anything).Return([]byte("n0nce"), nil)
	u := usecase.New(&usecase.AuthUseCaseCfg{
		JwtSecret:          "jwt-secret",
		SigningMsgTemplate: template,
		Redis:              r,
	})

	sig, err := ethereum.SignMsg([]byte(fmt.Sprintf(template, "n0nce")), other)
	require.NoError(t, err)
	_, err = u.SignIn(ctx, address, hexutil.Encode(sig))
	assert.Equal(t, domain.ErrInvalidSignature, err)

	_, err = u.SignIn(ctx, address, "0x1234")
	assert.Equal(t, domain.ErrInvalidSignature, err)

	_, err = u.SignIn(ctx, "not-an-address", hexutil.Encode(sig))
	assert.Equal(t, domain.ErrInvalidAddress, err)
}
