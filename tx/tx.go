package tx

import (
	"crypto/ecdsa"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

type AgoraTx struct {
	Version uint8          `json:"version"`
	Type    AgoraTxType    `json:"type"`
	Nonce   uint64         `json:"nonce"`
	From    common.Address `json:"from"`
	Tx      any            `json:"tx"`
	Sig     []byte         `json:"sig"`
}

type CreateInstanceTx struct {
	Metadata string `json:"metadata"`
}

type AddAdminTx struct {
	Unit  common.Address `json:"unit"`
	Admin common.Address `json:"admin"`
}

type RemoveAdminTx struct {
	Unit  common.Address `json:"unit"`
	Admin common.Address `json:"admin"`
}

type UpdateMetadataTx struct {
	Unit     common.Address `json:"unit"`
	Metadata string         `json:"metadata"`
}

type CreateCredentialTypeTx struct {
	Unit     common.Address `json:"unit"`
	Name     string         `json:"name"`
	Metadata string         `json:"metadata"`
	IsOpen   bool           `json:"isOpen"`
}

type AddToAllowlistTx struct {
	Unit      common.Address   `json:"unit"`
	TypeID    uint64           `json:"typeId"`
	Addresses []common.Address `json:"addresses"`
}

type MintTx struct {
	Issuer common.Address `json:"issuer"`
	TypeID uint64         `json:"typeId"`
}

// MintToTx is issued by a unit admin; the unit mints on the holder's behalf.
type MintToTx struct {
	Unit   common.Address `json:"unit"`
	Holder common.Address `json:"holder"`
	TypeID uint64         `json:"typeId"`
}

type TransferTx struct {
	Issuer common.Address `json:"issuer"`
	To     common.Address `json:"to"`
	TypeID uint64         `json:"typeId"`
	Amount uint64         `json:"amount"`
}

type BatchTransferTx struct {
	Issuer  common.Address `json:"issuer"`
	To      common.Address `json:"to"`
	TypeIDs []uint64       `json:"typeIds"`
	Amounts []uint64       `json:"amounts"`
}

type CreateVoteTx struct {
	Unit          common.Address `json:"unit"`
	Prompt        string         `json:"prompt"`
	Options       []string       `json:"options"`
	Duration      uint64         `json:"duration"`
	RequiredTypes []uint64       `json:"requiredTypes"`
}

type CastVoteTx struct {
	Vote   common.Address `json:"vote"`
	Option uint64         `json:"option"`
}

type agoraTxTmpl[Tx any] struct {
	Version uint8          `json:"version"`
	Type    AgoraTxType    `json:"type"`
	Nonce   uint64         `json:"nonce"`
	From    common.Address `json:"from"`
	Tx      Tx             `json:"tx"`
	Sig     []byte         `json:"sig"`
}

// SigData is the envelope with the signature replaced by ext.
func (tx *AgoraTx) SigData(ext []byte) (dat []byte, err error) {
	ntx := *tx
	ntx.Sig = ext
	dat, err = json.Marshal(ntx)
	return
}

func (tx *AgoraTx) SigHash(chainId []byte) (h common.Hash, err error) {
	dat, err := tx.SigData(chainId)
	if err != nil {
		return
	}
	h = crypto.Keccak256Hash(dat)
	return
}

// Sign sets From to the key's address and signs the envelope for chainId.
func (tx *AgoraTx) Sign(chainId []byte, key *ecdsa.PrivateKey) (err error) {
	tx.From = crypto.PubkeyToAddress(key.PublicKey)
	h, err := tx.SigHash(chainId)
	if err != nil {
		return
	}
	tx.Sig, err = crypto.Sign(h[:], key)
	return
}

// Signer recovers the address that produced Sig.
func (tx *AgoraTx) Signer(chainId []byte) (addr common.Address, err error) {
	if len(tx.Sig) != crypto.SignatureLength {
		return addr, ErrMissingSignature
	}
	h, err := tx.SigHash(chainId)
	if err != nil {
		return
	}
	pub, err := crypto.SigToPub(h[:], tx.Sig)
	if err != nil {
		return
	}
	addr = crypto.PubkeyToAddress(*pub)
	return
}

func parseAgoraTxType(dat []byte) AgoraTxType {
	var tx struct {
		Type AgoraTxType `json:"type"`
	}
	err := json.Unmarshal(dat, &tx)
	if err != nil {
		return AgoraTxTypeUnknown
	}
	return tx.Type
}

func unmarshalAgoraTx[Tx any](dat []byte) (btx *AgoraTx, err error) {
	var txt agoraTxTmpl[Tx]
	err = json.Unmarshal(dat, &txt)
	if err != nil {
		return
	}
	if txt.Version != AgoraTxVersion1 {
		return nil, ErrUnsupportedTxVersion
	}
	btx = new(AgoraTx)
	btx.Version = txt.Version
	btx.Type = txt.Type
	btx.Nonce = txt.Nonce
	btx.From = txt.From
	btx.Tx = &txt.Tx
	btx.Sig = txt.Sig
	return
}

func UnmarshalAgoraTx(dat []byte) (btx *AgoraTx, err error) {
	tp := parseAgoraTxType(dat)
	switch tp {
	case AgoraTxTypeCreateInstance:
		return unmarshalAgoraTx[CreateInstanceTx](dat)
	case AgoraTxTypeAddAdmin:
		return unmarshalAgoraTx[AddAdminTx](dat)
	case AgoraTxTypeRemoveAdmin:
		return unmarshalAgoraTx[RemoveAdminTx](dat)
	case AgoraTxTypeUpdateMetadata:
		return unmarshalAgoraTx[UpdateMetadataTx](dat)
	case AgoraTxTypeCreateCredentialType:
		return unmarshalAgoraTx[CreateCredentialTypeTx](dat)
	case AgoraTxTypeAddToAllowlist:
		return unmarshalAgoraTx[AddToAllowlistTx](dat)
	case AgoraTxTypeMint:
		return unmarshalAgoraTx[MintTx](dat)
	case AgoraTxTypeMintTo:
		return unmarshalAgoraTx[MintToTx](dat)
	case AgoraTxTypeTransfer:
		return unmarshalAgoraTx[TransferTx](dat)
	case AgoraTxTypeBatchTransfer:
		return unmarshalAgoraTx[BatchTransferTx](dat)
	case AgoraTxTypeCreateVote:
		return unmarshalAgoraTx[CreateVoteTx](dat)
	case AgoraTxTypeCastVote:
		return unmarshalAgoraTx[CastVoteTx](dat)
	default:
		err = ErrUnsupportedTxType
	}
	return
}

func MarshalAgoraTx(btx *AgoraTx) (dat []byte, err error) {
	return json.Marshal(btx)
}
