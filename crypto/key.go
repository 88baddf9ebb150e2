package crypto

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cmtos "github.com/cometbft/cometbft/libs/os"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrKeyExists = errors.New("key file already exists")

// Key is a secp256k1 account key used to sign governance txs.
type Key struct {
	privateKey *ecdsa.PrivateKey
}

func GenerateKey() (*Key, error) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return &Key{privateKey: priv}, nil
}

// LoadKey reads a hex encoded private key.
func LoadKey(keyFilePath string) (*Key, error) {
	dat, err := os.ReadFile(keyFilePath)
	if err != nil {
		return nil, err
	}
	priv, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(string(dat)), "0x"))
	if err != nil {
		return nil, fmt.Errorf("error reading key from %v: %w", keyFilePath, err)
	}
	return &Key{privateKey: priv}, nil
}

// Save writes the key as hex. An existing file is kept unless overwrite is set.
func (k *Key) Save(keyFilePath string, overwrite bool) error {
	if !overwrite && cmtos.FileExists(keyFilePath) {
		return ErrKeyExists
	}
	if err := cmtos.EnsureDir(filepath.Dir(keyFilePath), 0o700); err != nil {
		return err
	}
	return os.WriteFile(keyFilePath, []byte(hex.EncodeToString(crypto.FromECDSA(k.privateKey))), 0o600)
}

func (k *Key) PrivateKey() *ecdsa.PrivateKey {
	return k.privateKey
}

func (k *Key) PublicKey() []byte {
	return crypto.CompressPubkey(&k.privateKey.PublicKey)
}

func (k *Key) Address() common.Address {
	return crypto.PubkeyToAddress(k.privateKey.PublicKey)
}

func (k *Key) Sign(hash []byte) ([]byte, error) {
	return crypto.Sign(hash, k.privateKey)
}
