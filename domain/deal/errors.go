package deal

import "errors"

var (
	// authorization
	ErrCallerNotTaker  = errors.New("caller is not the taker")
	ErrCallerNotSigner = errors.New("caller is not a signature address")
	ErrNotController   = errors.New("caller is not the controller")

	// temporal
	ErrTransactionTooOld = errors.New("transaction too old")

	// configuration
	ErrPaymentNotSupported = errors.New("payment token is not supported")
	ErrZeroAddress         = errors.New("transfer to the zero address")
	ErrZeroController      = errors.New("controller is the zero address")
	ErrNativeAuction       = errors.New("auction does not support native payment")
	ErrFeeMismatch         = errors.New("fee amounts do not add up to deal amount")

	// structural
	ErrMalformedOrder       = errors.New("malformed order")
	ErrQuantityVerification = errors.New("quantity verification failed")
	ErrBatchArraysMismatch  = errors.New("batch arrays do not match")
	ErrTokenDataValidation  = errors.New("token data validation failed")
	ErrDealAmountTooLow     = errors.New("deal amount is lower than total price")
	ErrMakerOrderHash       = errors.New("maker order hash does not match")
	ErrUnsupportedNftType   = errors.New("unsupported nft type")
	ErrUnsupportedSaleType  = errors.New("unsupported sale type")
	ErrMintQuantity         = errors.New("mint requires a single unit listing")
	ErrInsufficientValue    = errors.New("insufficient value attached")

	// authenticity
	ErrMakerSignature  = errors.New("maker signature verification failed")
	ErrTakerSignature  = errors.New("taker signature verification failed")
	ErrSignerSignature = errors.New("signer signature verification failed")

	// replay
	ErrDealCompleted = errors.New("deal order has been completed")

	// insufficiency
	ErrNoReward          = errors.New("no reward to claim")
	ErrRewardUnderfunded = errors.New("insufficient reward token balance")
)
