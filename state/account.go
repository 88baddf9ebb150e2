package state

import (
	"fmt"

	"github.com/Emmo00/agora/tx"
	"github.com/ethereum/go-ethereum/common"
)

type Account struct {
	Address common.Address `json:"address"`
	Nonce   uint64         `json:"nonce"`
}

func (s *State) GetAccount(addr common.Address) (acnt *Account, err error) {
	acnt = &Account{Address: addr}
	_, err = s.getRecord(fmt.Sprintf(KeyAccount, addr), acnt)
	if err != nil {
		return nil, err
	}
	return
}

// BumpNonce advances the sender nonce. It is applied outside the operation
// journal so failed operations still consume their nonce.
func (s *State) BumpNonce(addr common.Address) error {
	a, err := s.GetAccount(addr)
	if err != nil {
		return err
	}
	a.Nonce += 1
	return s.putRecord(fmt.Sprintf(KeyAccount, addr), a)
}

// Verify checks the envelope signature and nonce of btx against the sender
// account.
func (s *State) Verify(btx *tx.AgoraTx, allowNonceGap bool) (succ bool, err error) {
	signer, err := btx.Signer([]byte(s.header.ChainId))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrTxSigInvalid, err)
	}
	if signer != btx.From {
		return false, ErrTxSigInvalid
	}
	a, err := s.GetAccount(btx.From)
	if err != nil {
		return false, err
	}
	if !(a.Nonce == btx.Nonce || (allowNonceGap && a.Nonce < btx.Nonce)) {
		return false, ErrTxNonceInvalid
	}
	return true, nil
}
