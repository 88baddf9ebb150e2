package state

import "errors"

const Codespace = "agora"

// Initialization errors
var (
	ErrAlreadyInitialized       = errors.New("already initialized")
	ErrNotInitialized           = errors.New("not initialized")
	ErrInvalidTemplateReference = errors.New("invalid vote template reference")
)

// Validation errors
var (
	ErrEmptyMetadataPointer = errors.New("empty metadata pointer")
	ErrEmptyName            = errors.New("empty name")
	ErrEmptyPrompt          = errors.New("empty prompt")
	ErrEmptyOption          = errors.New("empty option")
	ErrNotEnoughOptions     = errors.New("not enough options")
	ErrTooManyOptions       = errors.New("too many options")
	ErrInvalidVotingPeriod  = errors.New("invalid voting period")
	ErrEmptyAddressList     = errors.New("empty address list")
	ErrIndexOutOfRange      = errors.New("index out of range")
)

// Authorization errors
var (
	ErrUnauthorized = errors.New("unauthorized")
)

// State conflict errors
var (
	ErrVotingEnded             = errors.New("voting ended")
	ErrVotingNotEnded          = errors.New("voting not ended")
	ErrAlreadyVoted            = errors.New("already voted")
	ErrAlreadyHoldsPassport    = errors.New("already holds passport")
	ErrNotAllowlisted          = errors.New("not allowlisted")
	ErrMissingRequiredPassport = errors.New("missing required passport")
	ErrReentrantCall           = errors.New("reentrant call")
)

// Not found errors
var (
	ErrNotFound               = errors.New("not found")
	ErrInstanceNotFound       = errors.New("instance not found")
	ErrCredentialTypeNotFound = errors.New("passport type does not exist")
	ErrInvalidOption          = errors.New("invalid option")
)

// Integrity errors
var (
	ErrTransferNotAllowed = errors.New("transfers not allowed")
)

// Envelope errors
var (
	ErrTxNonceInvalid = errors.New("nonce invalid")
	ErrTxSigInvalid   = errors.New("signature invalid")
)

var errorCodes = []struct {
	err  error
	code uint32
}{
	{ErrAlreadyInitialized, 10},
	{ErrNotInitialized, 11},
	{ErrInvalidTemplateReference, 12},

	{ErrEmptyMetadataPointer, 20},
	{ErrEmptyName, 21},
	{ErrEmptyPrompt, 22},
	{ErrEmptyOption, 23},
	{ErrNotEnoughOptions, 24},
	{ErrTooManyOptions, 25},
	{ErrInvalidVotingPeriod, 26},
	{ErrEmptyAddressList, 27},
	{ErrIndexOutOfRange, 28},

	{ErrUnauthorized, 30},

	{ErrVotingEnded, 40},
	{ErrVotingNotEnded, 41},
	{ErrAlreadyVoted, 42},
	{ErrAlreadyHoldsPassport, 43},
	{ErrNotAllowlisted, 44},
	{ErrMissingRequiredPassport, 45},
	{ErrReentrantCall, 46},

	{ErrNotFound, 50},
	{ErrInstanceNotFound, 51},
	{ErrCredentialTypeNotFound, 52},
	{ErrInvalidOption, 53},

	{ErrTransferNotAllowed, 60},

	{ErrTxNonceInvalid, 70},
	{ErrTxSigInvalid, 71},
}

// ErrorCode maps err to the result code reported to clients. Errors outside
// the governance taxonomy map to 1.
func ErrorCode(err error) uint32 {
	if err == nil {
		return 0
	}
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return 1
}

// CodeError returns the sentinel registered for code, or nil.
func CodeError(code uint32) error {
	for _, c := range errorCodes {
		if c.code == code {
			return c.err
		}
	}
	return nil
}
