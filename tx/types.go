package tx

import (
	"errors"
)

type AgoraTxType uint8

const (
	AgoraTxTypeUnknown              AgoraTxType = 0
	AgoraTxTypeCreateInstance       AgoraTxType = 1
	AgoraTxTypeAddAdmin             AgoraTxType = 2
	AgoraTxTypeRemoveAdmin          AgoraTxType = 3
	AgoraTxTypeUpdateMetadata       AgoraTxType = 4
	AgoraTxTypeCreateCredentialType AgoraTxType = 5
	AgoraTxTypeAddToAllowlist       AgoraTxType = 6
	AgoraTxTypeMint                 AgoraTxType = 7
	AgoraTxTypeMintTo               AgoraTxType = 8
	AgoraTxTypeTransfer             AgoraTxType = 9
	AgoraTxTypeBatchTransfer        AgoraTxType = 10
	AgoraTxTypeCreateVote           AgoraTxType = 11
	AgoraTxTypeCastVote             AgoraTxType = 12
)

func (t AgoraTxType) String() string {
	switch t {
	case AgoraTxTypeCreateInstance:
		return "create_instance"
	case AgoraTxTypeAddAdmin:
		return "add_admin"
	case AgoraTxTypeRemoveAdmin:
		return "remove_admin"
	case AgoraTxTypeUpdateMetadata:
		return "update_metadata"
	case AgoraTxTypeCreateCredentialType:
		return "create_credential_type"
	case AgoraTxTypeAddToAllowlist:
		return "add_to_allowlist"
	case AgoraTxTypeMint:
		return "mint"
	case AgoraTxTypeMintTo:
		return "mint_to"
	case AgoraTxTypeTransfer:
		return "transfer"
	case AgoraTxTypeBatchTransfer:
		return "batch_transfer"
	case AgoraTxTypeCreateVote:
		return "create_vote"
	case AgoraTxTypeCastVote:
		return "cast_vote"
	}
	return "unknown"
}

const (
	AgoraTxVersion0 uint8 = 0
	AgoraTxVersion1 uint8 = 1
)

var (
	ErrInvalidTx            = errors.New("invalid tx")
	ErrUnsupportedTxType    = errors.New("unsupported tx type")
	ErrUnsupportedTxVersion = errors.New("unsupported tx version")
	ErrMissingSignature     = errors.New("missing signature")
)
