package state

import (
	"fmt"

	"github.com/Emmo00/agora/types"
	"github.com/ethereum/go-ethereum/common"
)

func (s *State) newIssuer(addr, owner common.Address) error {
	iss := new(types.Issuer)
	found, err := s.getRecord(fmt.Sprintf(KeyIssuer, addr), iss)
	if err != nil {
		return err
	}
	if found {
		return ErrAlreadyInitialized
	}
	return s.putIssuer(&types.Issuer{
		Address:    addr,
		Owner:      owner,
		NextTypeID: 1,
	})
}

func (s *State) putIssuer(iss *types.Issuer) error {
	return s.putRecord(fmt.Sprintf(KeyIssuer, iss.Address), iss)
}

func (s *State) Issuer(addr common.Address) (*types.Issuer, error) {
	iss := new(types.Issuer)
	found, err := s.getRecord(fmt.Sprintf(KeyIssuer, addr), iss)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotInitialized
	}
	return iss, nil
}

func (s *State) requireOwner(issuer, caller common.Address) (*types.Issuer, error) {
	iss, err := s.Issuer(issuer)
	if err != nil {
		return nil, err
	}
	if caller != iss.Owner {
		return nil, ErrUnauthorized
	}
	return iss, nil
}

func (s *State) CredentialType(issuer common.Address, typeId uint64) (ct *types.CredentialType, err error) {
	ct = new(types.CredentialType)
	_, err = s.getRecord(fmt.Sprintf(KeyCredentialType, issuer, typeId), ct)
	if err != nil {
		return nil, err
	}
	return
}

func (s *State) requireType(issuer common.Address, typeId uint64) (*types.CredentialType, error) {
	ct, err := s.CredentialType(issuer, typeId)
	if err != nil {
		return nil, err
	}
	if !ct.Exists {
		return nil, ErrCredentialTypeNotFound
	}
	return ct, nil
}

// CreateType registers a credential type with the next sequential id.
func (s *State) CreateType(issuer, caller common.Address, name, metadata string, isOpen bool) (id uint64, event *types.EventCredentialTypeCreated, err error) {
	err = s.atomic(func() error {
		iss, err := s.requireOwner(issuer, caller)
		if err != nil {
			return err
		}
		if name == "" {
			return ErrEmptyName
		}
		if metadata == "" {
			return ErrEmptyMetadataPointer
		}
		id = iss.NextTypeID
		ct := &types.CredentialType{
			ID:       id,
			Name:     name,
			Metadata: metadata,
			IsOpen:   isOpen,
			Exists:   true,
		}
		if err = s.putRecord(fmt.Sprintf(KeyCredentialType, issuer, id), ct); err != nil {
			return err
		}
		iss.NextTypeID += 1
		if err = s.putIssuer(iss); err != nil {
			return err
		}
		event = &types.EventCredentialTypeCreated{
			Issuer:   issuer,
			TypeID:   id,
			Name:     name,
			Metadata: metadata,
			IsOpen:   isOpen,
		}
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return
}

// AddToAllowlist marks every address as eligible to mint typeId. Entries are
// never removed.
func (s *State) AddToAllowlist(issuer, caller common.Address, typeId uint64, addrs []common.Address) (event *types.EventAllowlistUpdated, err error) {
	err = s.atomic(func() error {
		if _, err := s.requireOwner(issuer, caller); err != nil {
			return err
		}
		if _, err := s.requireType(issuer, typeId); err != nil {
			return err
		}
		if len(addrs) == 0 {
			return ErrEmptyAddressList
		}
		for _, addr := range addrs {
			if err := s.putRecord(fmt.Sprintf(KeyAllowlist, issuer, typeId, addr), true); err != nil {
				return err
			}
		}
		event = &types.EventAllowlistUpdated{
			Issuer:    issuer,
			TypeID:    typeId,
			Addresses: addrs,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return
}

func (s *State) IsAllowlisted(issuer common.Address, typeId uint64, addr common.Address) (ok bool, err error) {
	_, err = s.getRecord(fmt.Sprintf(KeyAllowlist, issuer, typeId, addr), &ok)
	return
}

// Mint issues one credential of typeId to caller.
func (s *State) Mint(issuer, caller common.Address, typeId uint64) (event *types.EventCredentialMinted, err error) {
	s.logger.Debug("apply mint", "issuer", issuer, "holder", caller, "type", typeId, "height", s.header.Height)
	exit, err := s.enter(issuer)
	if err != nil {
		return nil, err
	}
	defer exit()
	err = s.atomic(func() error {
		if _, err := s.Issuer(issuer); err != nil {
			return err
		}
		ct, err := s.requireType(issuer, typeId)
		if err != nil {
			return err
		}
		if err = s.requireNotHolding(issuer, caller, typeId); err != nil {
			return err
		}
		if !ct.IsOpen {
			ok, err := s.IsAllowlisted(issuer, typeId, caller)
			if err != nil {
				return err
			}
			if !ok {
				return ErrNotAllowlisted
			}
		}
		event, err = s.issue(issuer, caller, caller, typeId)
		return err
	})
	if err != nil {
		return nil, err
	}
	return
}

// MintTo issues one credential of typeId to holder on behalf of the owner.
// Open and allowlist eligibility do not apply.
func (s *State) MintTo(issuer, caller, holder common.Address, typeId uint64) (event *types.EventCredentialMinted, err error) {
	s.logger.Debug("apply mint to", "issuer", issuer, "holder", holder, "type", typeId, "height", s.header.Height)
	exit, err := s.enter(issuer)
	if err != nil {
		return nil, err
	}
	defer exit()
	err = s.atomic(func() error {
		if _, err := s.requireOwner(issuer, caller); err != nil {
			return err
		}
		if _, err := s.requireType(issuer, typeId); err != nil {
			return err
		}
		if err := s.requireNotHolding(issuer, holder, typeId); err != nil {
			return err
		}
		event, err = s.issue(issuer, holder, caller, typeId)
		return err
	})
	if err != nil {
		return nil, err
	}
	return
}

func (s *State) requireNotHolding(issuer, holder common.Address, typeId uint64) error {
	bal, err := s.BalanceOf(issuer, holder, typeId)
	if err != nil {
		return err
	}
	if bal > 0 {
		return ErrAlreadyHoldsPassport
	}
	return nil
}

func (s *State) issue(issuer, holder, operator common.Address, typeId uint64) (*types.EventCredentialMinted, error) {
	if err := s.putUint(fmt.Sprintf(KeyCredentialBalance, issuer, typeId, holder), 1); err != nil {
		return nil, err
	}
	return &types.EventCredentialMinted{
		Issuer:   issuer,
		TypeID:   typeId,
		Holder:   holder,
		Operator: operator,
	}, nil
}

// Transfer always fails: credentials are bound to their holder.
func (s *State) Transfer(issuer, from, to common.Address, typeId, amount uint64) error {
	return ErrTransferNotAllowed
}

// BatchTransfer always fails: credentials are bound to their holder.
func (s *State) BatchTransfer(issuer, from, to common.Address, typeIds, amounts []uint64) error {
	return ErrTransferNotAllowed
}

func (s *State) URI(issuer common.Address, typeId uint64) (string, error) {
	ct, err := s.requireType(issuer, typeId)
	if err != nil {
		return "", err
	}
	return ct.Metadata, nil
}

func (s *State) BalanceOf(issuer, holder common.Address, typeId uint64) (uint64, error) {
	return s.getUint(fmt.Sprintf(KeyCredentialBalance, issuer, typeId, holder))
}

func (s *State) HoldsPassport(issuer, holder common.Address, typeId uint64) (bool, error) {
	bal, err := s.BalanceOf(issuer, holder, typeId)
	if err != nil {
		return false, err
	}
	return bal > 0, nil
}

// HoldsAnyPassport reports whether holder has a balance in any of typeIds.
func (s *State) HoldsAnyPassport(issuer, holder common.Address, typeIds []uint64) (bool, error) {
	for _, id := range typeIds {
		ok, err := s.HoldsPassport(issuer, holder, id)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (s *State) NextTypeID(issuer common.Address) (uint64, error) {
	iss, err := s.Issuer(issuer)
	if err != nil {
		return 0, err
	}
	return iss.NextTypeID, nil
}
