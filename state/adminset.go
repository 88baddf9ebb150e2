package state

import "github.com/ethereum/go-ethereum/common"

// adminSet is an insertion-ordered set over the admin list persisted in the
// unit record.
type adminSet struct {
	list []common.Address
	pos  map[common.Address]int
}

func newAdminSet(list []common.Address) *adminSet {
	a := &adminSet{
		list: list,
		pos:  make(map[common.Address]int, len(list)),
	}
	for i, addr := range list {
		a.pos[addr] = i
	}
	return a
}

func (a *adminSet) Has(addr common.Address) bool {
	_, ok := a.pos[addr]
	return ok
}

func (a *adminSet) Add(addr common.Address) bool {
	if a.Has(addr) {
		return false
	}
	a.pos[addr] = len(a.list)
	a.list = append(a.list, addr)
	return true
}

// Remove deletes addr keeping the order of the remaining members.
func (a *adminSet) Remove(addr common.Address) bool {
	i, ok := a.pos[addr]
	if !ok {
		return false
	}
	delete(a.pos, addr)
	list := make([]common.Address, 0, len(a.list)-1)
	list = append(list, a.list[:i]...)
	list = append(list, a.list[i+1:]...)
	for j := i; j < len(list); j++ {
		a.pos[list[j]] = j
	}
	a.list = list
	return true
}

func (a *adminSet) At(i uint64) (common.Address, bool) {
	if i >= uint64(len(a.list)) {
		return common.Address{}, false
	}
	return a.list[i], true
}

func (a *adminSet) Len() int {
	return len(a.list)
}

func (a *adminSet) Members() []common.Address {
	return a.list
}
