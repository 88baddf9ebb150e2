package state

import (
	"fmt"

	"github.com/Emmo00/agora/types"
	"github.com/ethereum/go-ethereum/common"
)

func (s *State) Registry() (reg *types.Registry, err error) {
	reg = new(types.Registry)
	_, err = s.getRecord(KeyRegistry, reg)
	if err != nil {
		return nil, err
	}
	return
}

// SetRegistry installs the genesis configuration of the registry.
func (s *State) SetRegistry(g *types.AppGenesis) error {
	if err := g.Validate(); err != nil {
		return err
	}
	reg, err := s.Registry()
	if err != nil {
		return err
	}
	reg.VoteTemplate = g.VoteTemplate
	return s.putRecord(KeyRegistry, reg)
}

// CreateInstance produces a new governance unit initialized with creator as
// its first admin.
func (s *State) CreateInstance(creator common.Address, metadata string) (unit *types.Unit, event *types.EventInstanceCreated, err error) {
	s.logger.Debug("apply create instance", "creator", creator, "height", s.header.Height)
	err = s.atomic(func() error {
		if metadata == "" {
			return ErrEmptyMetadataPointer
		}
		reg, err := s.Registry()
		if err != nil {
			return err
		}
		index := reg.InstanceCount
		addr := types.UnitAddress(index)
		if err = s.newUnit(addr, index); err != nil {
			return err
		}
		if err = s.InitializeUnit(addr, creator, metadata, reg.VoteTemplate); err != nil {
			return err
		}
		if err = s.putRecord(fmt.Sprintf(KeyInstance, index), addr); err != nil {
			return err
		}
		n, err := s.getUint(fmt.Sprintf(KeyCreatorCount, creator))
		if err != nil {
			return err
		}
		if err = s.putRecord(fmt.Sprintf(KeyCreatorInstance, creator, n), addr); err != nil {
			return err
		}
		if err = s.putUint(fmt.Sprintf(KeyCreatorCount, creator), n+1); err != nil {
			return err
		}
		reg.InstanceCount += 1
		if err = s.putRecord(KeyRegistry, reg); err != nil {
			return err
		}
		unit, err = s.getUnit(addr)
		if err != nil {
			return err
		}
		event = &types.EventInstanceCreated{
			Instance: addr,
			Creator:  creator,
			Metadata: metadata,
			Index:    index,
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return
}

func (s *State) InstanceCount() (uint64, error) {
	reg, err := s.Registry()
	if err != nil {
		return 0, err
	}
	return reg.InstanceCount, nil
}

func (s *State) Instance(index uint64) (addr common.Address, err error) {
	total, err := s.InstanceCount()
	if err != nil {
		return
	}
	if index >= total {
		return addr, ErrInstanceNotFound
	}
	found, err := s.getRecord(fmt.Sprintf(KeyInstance, index), &addr)
	if err != nil {
		return
	}
	if !found {
		return addr, ErrInstanceNotFound
	}
	return
}

func (s *State) instanceRange(from, to uint64) ([]common.Address, error) {
	res := make([]common.Address, 0, to-from)
	for i := from; i < to; i++ {
		addr, err := s.Instance(i)
		if err != nil {
			return nil, err
		}
		res = append(res, addr)
	}
	return res, nil
}

func (s *State) AllInstances() ([]common.Address, error) {
	total, err := s.InstanceCount()
	if err != nil {
		return nil, err
	}
	return s.instanceRange(0, total)
}

func (s *State) InstancesByCreator(creator common.Address) ([]common.Address, error) {
	n, err := s.getUint(fmt.Sprintf(KeyCreatorCount, creator))
	if err != nil {
		return nil, err
	}
	res := make([]common.Address, 0, n)
	for i := uint64(0); i < n; i++ {
		var addr common.Address
		if _, err = s.getRecord(fmt.Sprintf(KeyCreatorInstance, creator, i), &addr); err != nil {
			return nil, err
		}
		res = append(res, addr)
	}
	return res, nil
}

// InstancesPaginated returns instances [offset, min(offset+limit, total))
// and the total. An offset past the end yields an empty page.
func (s *State) InstancesPaginated(offset, limit uint64) (page []common.Address, total uint64, err error) {
	total, err = s.InstanceCount()
	if err != nil {
		return nil, 0, err
	}
	if offset >= total {
		return []common.Address{}, total, nil
	}
	end := total
	if limit < total-offset {
		end = offset + limit
	}
	page, err = s.instanceRange(offset, end)
	return
}

// RecentInstances returns up to count instances, newest first.
func (s *State) RecentInstances(count uint64) ([]common.Address, error) {
	total, err := s.InstanceCount()
	if err != nil {
		return nil, err
	}
	if count > total {
		count = total
	}
	res := make([]common.Address, 0, count)
	for i := uint64(0); i < count; i++ {
		addr, err := s.Instance(total - 1 - i)
		if err != nil {
			return nil, err
		}
		res = append(res, addr)
	}
	return res, nil
}

// VerifyInstance reports whether handle was produced by CreateInstance.
func (s *State) VerifyInstance(handle common.Address) (bool, error) {
	u := new(types.Unit)
	found, err := s.getRecord(fmt.Sprintf(KeyUnit, handle), u)
	if err != nil || !found {
		return false, err
	}
	return u.Address == handle && types.UnitAddress(u.Index) == handle, nil
}
