package state

import (
	"fmt"

	"github.com/Emmo00/agora/types"
	"github.com/ethereum/go-ethereum/common"
)

// getUnit returns the unit stored at addr. A handle with no record reads as
// an uninitialized unit.
func (s *State) getUnit(addr common.Address) (u *types.Unit, err error) {
	u = &types.Unit{Address: addr}
	_, err = s.getRecord(fmt.Sprintf(KeyUnit, addr), u)
	if err != nil {
		return nil, err
	}
	return
}

func (s *State) requireUnit(addr common.Address) (*types.Unit, error) {
	u, err := s.getUnit(addr)
	if err != nil {
		return nil, err
	}
	if !u.Initialized {
		return nil, ErrNotInitialized
	}
	return u, nil
}

func (s *State) putUnit(u *types.Unit) error {
	return s.putRecord(fmt.Sprintf(KeyUnit, u.Address), u)
}

func (s *State) newUnit(addr common.Address, index uint64) error {
	return s.putUnit(&types.Unit{
		Address:   addr,
		Index:     index,
		CreatedAt: s.Now(),
	})
}

// InitializeUnit performs the one-time setup of a unit: creator becomes the
// first admin and a credential issuer owned by the unit is provisioned.
func (s *State) InitializeUnit(addr, creator common.Address, metadata string, template common.Address) error {
	return s.atomic(func() error {
		u := new(types.Unit)
		found, err := s.getRecord(fmt.Sprintf(KeyUnit, addr), u)
		if err != nil {
			return err
		}
		if !found {
			return ErrInstanceNotFound
		}
		if u.Initialized {
			return ErrAlreadyInitialized
		}
		if metadata == "" {
			return ErrEmptyMetadataPointer
		}
		if template == (common.Address{}) {
			return ErrInvalidTemplateReference
		}
		admins := newAdminSet(nil)
		admins.Add(creator)

		u.Initialized = true
		u.Creator = creator
		u.Metadata = metadata
		u.VoteTemplate = template
		u.Admins = admins.Members()
		u.Issuer = types.IssuerAddress(addr)
		if err = s.newIssuer(u.Issuer, addr); err != nil {
			return err
		}
		return s.putUnit(u)
	})
}

// Unit returns the full record of an initialized unit.
func (s *State) Unit(addr common.Address) (*types.Unit, error) {
	return s.requireUnit(addr)
}

func (s *State) AddAdmin(unit, caller, admin common.Address) (event *types.EventAdmin, err error) {
	s.logger.Debug("apply add admin", "unit", unit, "admin", admin, "height", s.header.Height)
	err = s.atomic(func() error {
		u, err := s.requireUnit(unit)
		if err != nil {
			return err
		}
		admins := newAdminSet(u.Admins)
		if err = authorize(unitAuthorizer{admins}, caller, ActionManageAdmins); err != nil {
			return err
		}
		if !admins.Add(admin) {
			return nil
		}
		u.Admins = admins.Members()
		if err = s.putUnit(u); err != nil {
			return err
		}
		event = &types.EventAdmin{Unit: unit, Admin: admin, Actor: caller, Added: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return
}

func (s *State) RemoveAdmin(unit, caller, admin common.Address) (event *types.EventAdmin, err error) {
	s.logger.Debug("apply remove admin", "unit", unit, "admin", admin, "height", s.header.Height)
	err = s.atomic(func() error {
		u, err := s.requireUnit(unit)
		if err != nil {
			return err
		}
		admins := newAdminSet(u.Admins)
		if err = authorize(unitAuthorizer{admins}, caller, ActionManageAdmins); err != nil {
			return err
		}
		if !admins.Remove(admin) {
			return nil
		}
		u.Admins = admins.Members()
		if err = s.putUnit(u); err != nil {
			return err
		}
		event = &types.EventAdmin{Unit: unit, Admin: admin, Actor: caller, Added: false}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return
}

func (s *State) IsAdmin(unit, addr common.Address) (bool, error) {
	u, err := s.requireUnit(unit)
	if err != nil {
		return false, err
	}
	return newAdminSet(u.Admins).Has(addr), nil
}

func (s *State) AdminCount(unit common.Address) (uint64, error) {
	u, err := s.requireUnit(unit)
	if err != nil {
		return 0, err
	}
	return uint64(len(u.Admins)), nil
}

func (s *State) AdminAt(unit common.Address, index uint64) (common.Address, error) {
	u, err := s.requireUnit(unit)
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := newAdminSet(u.Admins).At(index)
	if !ok {
		return addr, ErrIndexOutOfRange
	}
	return addr, nil
}

func (s *State) UpdateMetadata(unit, caller common.Address, metadata string) (event *types.EventMetadataUpdated, err error) {
	err = s.atomic(func() error {
		u, err := s.requireUnit(unit)
		if err != nil {
			return err
		}
		if err = authorize(unitAuthorizer{newAdminSet(u.Admins)}, caller, ActionUpdateMetadata); err != nil {
			return err
		}
		if metadata == "" {
			return ErrEmptyMetadataPointer
		}
		event = &types.EventMetadataUpdated{
			Unit:        unit,
			OldMetadata: u.Metadata,
			NewMetadata: metadata,
		}
		u.Metadata = metadata
		return s.putUnit(u)
	})
	if err != nil {
		return nil, err
	}
	return
}

// CreateCredentialType creates a credential type on the unit's issuer.
func (s *State) CreateCredentialType(unit, caller common.Address, name, metadata string, isOpen bool) (id uint64, event *types.EventCredentialTypeCreated, err error) {
	err = s.atomic(func() error {
		u, err := s.requireUnit(unit)
		if err != nil {
			return err
		}
		if err = authorize(unitAuthorizer{newAdminSet(u.Admins)}, caller, ActionManageCredentials); err != nil {
			return err
		}
		id, event, err = s.CreateType(u.Issuer, u.Address, name, metadata, isOpen)
		return err
	})
	if err != nil {
		return 0, nil, err
	}
	return
}

func (s *State) AddToCredentialAllowlist(unit, caller common.Address, typeId uint64, addrs []common.Address) (event *types.EventAllowlistUpdated, err error) {
	err = s.atomic(func() error {
		u, err := s.requireUnit(unit)
		if err != nil {
			return err
		}
		if err = authorize(unitAuthorizer{newAdminSet(u.Admins)}, caller, ActionManageCredentials); err != nil {
			return err
		}
		event, err = s.AddToAllowlist(u.Issuer, u.Address, typeId, addrs)
		return err
	})
	if err != nil {
		return nil, err
	}
	return
}

// MintCredentialTo issues a credential to holder through the unit, skipping
// the open/allowlist eligibility check.
func (s *State) MintCredentialTo(unit, caller, holder common.Address, typeId uint64) (event *types.EventCredentialMinted, err error) {
	err = s.atomic(func() error {
		u, err := s.requireUnit(unit)
		if err != nil {
			return err
		}
		if err = authorize(unitAuthorizer{newAdminSet(u.Admins)}, caller, ActionManageCredentials); err != nil {
			return err
		}
		event, err = s.MintTo(u.Issuer, u.Address, holder, typeId)
		return err
	})
	if err != nil {
		return nil, err
	}
	return
}

// CreateVote instantiates a vote from the unit's template. Argument
// validation is left to the vote's own initialization.
func (s *State) CreateVote(unit, caller common.Address, prompt string, options []string, duration uint64, requiredTypes []uint64) (vote common.Address, event *types.EventVoteCreated, err error) {
	s.logger.Debug("apply create vote", "unit", unit, "caller", caller, "height", s.header.Height)
	exit, err := s.enter(unit)
	if err != nil {
		return vote, nil, err
	}
	defer exit()
	err = s.atomic(func() error {
		u, err := s.requireUnit(unit)
		if err != nil {
			return err
		}
		if err = authorize(unitAuthorizer{newAdminSet(u.Admins)}, caller, ActionCreateVote); err != nil {
			return err
		}
		if u.VoteTemplate == (common.Address{}) {
			return ErrInvalidTemplateReference
		}
		addr := types.VoteAddress(unit, u.VoteCount)
		if err = s.newVote(addr); err != nil {
			return err
		}
		if err = s.InitializeVote(addr, unit, u.Issuer, prompt, options, duration, requiredTypes); err != nil {
			return err
		}
		if err = s.putRecord(fmt.Sprintf(KeyUnitVote, unit, u.VoteCount), addr); err != nil {
			return err
		}
		v, err := s.getVote(addr)
		if err != nil {
			return err
		}
		event = &types.EventVoteCreated{
			Unit:          unit,
			Vote:          addr,
			Index:         u.VoteCount,
			Prompt:        v.Prompt,
			Options:       v.Options,
			VotingEnd:     v.VotingEnd,
			RequiredTypes: v.RequiredTypes,
		}
		vote = addr
		u.VoteCount += 1
		return s.putUnit(u)
	})
	if err != nil {
		return common.Address{}, nil, err
	}
	return
}

func (s *State) AllVotes(unit common.Address) ([]common.Address, error) {
	u, err := s.requireUnit(unit)
	if err != nil {
		return nil, err
	}
	res := make([]common.Address, 0, u.VoteCount)
	for i := uint64(0); i < u.VoteCount; i++ {
		var addr common.Address
		if _, err = s.getRecord(fmt.Sprintf(KeyUnitVote, unit, i), &addr); err != nil {
			return nil, err
		}
		res = append(res, addr)
	}
	return res, nil
}

func (s *State) ActiveVotes(unit common.Address) ([]common.Address, error) {
	all, err := s.AllVotes(unit)
	if err != nil {
		return nil, err
	}
	res := make([]common.Address, 0, len(all))
	for _, addr := range all {
		active, err := s.IsActive(addr)
		if err != nil {
			return nil, err
		}
		if active {
			res = append(res, addr)
		}
	}
	return res, nil
}

func (s *State) UnitInfo(unit common.Address) (*types.UnitInfo, error) {
	u, err := s.requireUnit(unit)
	if err != nil {
		return nil, err
	}
	return &types.UnitInfo{
		Issuer:     u.Issuer,
		Metadata:   u.Metadata,
		VoteCount:  u.VoteCount,
		AdminCount: uint64(len(u.Admins)),
	}, nil
}
