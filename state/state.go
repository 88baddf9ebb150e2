package state

import (
	"fmt"
	"sort"

	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cosmos/iavl"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/syndtr/goleveldb/leveldb"
)

var (
	KeyState = "s"

	KeyAccount = "a/%x"

	KeyRegistry          = "r"
	KeyInstance          = "r/i/%016x"
	KeyCreatorCount      = "r/c/%x"
	KeyCreatorInstance   = "r/c/%x/%016x"
	KeyUnit              = "u/%x"
	KeyUnitVote          = "u/%x/v/%016x"
	KeyIssuer            = "c/%x"
	KeyCredentialType    = "c/%x/t/%016x"
	KeyCredentialBalance = "c/%x/b/%016x/%x"
	KeyAllowlist         = "c/%x/w/%016x/%x"
	KeyVote              = "v/%x"
	KeyBallot            = "v/%x/b/%x"
)

type StateHeader struct {
	ChainId   string
	Height    uint64
	BlockTime uint64
	RootHash  []byte
	Hash      []byte
}

func (h *StateHeader) clone() *StateHeader {
	n := *h
	n.RootHash = common.CopyBytes(h.RootHash)
	n.Hash = common.CopyBytes(h.Hash)
	return &n
}

// State is the governance state of one block. Writes of a running operation
// go to journal and reach dirty only when the operation succeeds; dirty is
// flushed to the tree by Update.
type State struct {
	logger cmtlog.Logger
	db     *iavl.MutableTree
	dbVer  int64
	// view is set on read-only snapshots and replaces db for reads.
	view treeReader

	header  *StateHeader
	dirty   map[string][]byte
	journal map[string][]byte
	entered map[common.Address]bool
}

func newState(db *iavl.MutableTree, logger cmtlog.Logger) *State {
	return &State{
		logger:  logger,
		db:      db,
		dbVer:   0,
		header:  new(StateHeader),
		dirty:   make(map[string][]byte),
		entered: make(map[common.Address]bool),
	}
}

func (s *State) nextState() *State {
	n := &State{
		logger:  s.logger,
		db:      s.db,
		dbVer:   s.dbVer,
		header:  s.header.clone(),
		dirty:   make(map[string][]byte),
		entered: make(map[common.Address]bool),
	}
	if s.header.Hash != nil {
		n.header.Height = s.header.Height + 1
	}
	return n
}

// Clone returns a scratch copy sharing the underlying tree. Writes to the
// copy are never visible to s.
func (s *State) Clone() *State {
	n := &State{
		logger:  s.logger,
		db:      s.db,
		dbVer:   s.dbVer,
		header:  s.header.clone(),
		dirty:   make(map[string][]byte, len(s.dirty)),
		entered: make(map[common.Address]bool),
	}
	for k, v := range s.dirty {
		n.dirty[k] = v
	}
	return n
}

type treeReader interface {
	Get(key []byte) ([]byte, error)
}

type emptyTree struct{}

func (emptyTree) Get([]byte) ([]byte, error) { return nil, nil }

// snapshot returns a read-only copy of s that reads the saved tree version
// dbVer, so writes to the working tree made after the save stay invisible.
func (s *State) snapshot() (*State, error) {
	var view treeReader = emptyTree{}
	if s.dbVer > 0 {
		imm, err := s.db.GetImmutable(s.dbVer)
		if err != nil {
			return nil, err
		}
		view = imm
	}
	return &State{
		logger:  s.logger,
		db:      s.db,
		dbVer:   s.dbVer,
		view:    view,
		header:  s.header.clone(),
		dirty:   make(map[string][]byte),
		entered: make(map[common.Address]bool),
	}, nil
}

func (s *State) load() (err error) {
	val, err := s.db.Get([]byte(KeyState))
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil
		}
		return err
	}
	if val != nil {
		err = rlp.DecodeBytes(val, s.header)
		if err != nil {
			return
		}
		h := s.db.Hash()
		if h != nil {
			s.calcHash(h, true)
		}
	}
	return
}

func (s *State) calcHash(rootHash []byte, update bool) (h common.Hash) {
	h = crypto.Keccak256Hash(rootHash)
	if update {
		s.header.RootHash = common.CopyBytes(rootHash)
		s.header.Hash = common.CopyBytes(h[:])
	}
	return
}

// Update writes the block's changes into the working tree and returns the
// resulting app hash.
func (s *State) Update() (h common.Hash, err error) {
	var hash []byte
	defer func() {
		if hash == nil {
			s.db.Rollback()
		}
	}()
	val, err := rlp.EncodeToBytes(s.header)
	if err != nil {
		return
	}
	_, err = s.db.Set([]byte(KeyState), val)
	if err != nil {
		return
	}

	keys := make([]string, 0, len(s.dirty))
	for k := range s.dirty {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_, err = s.db.Set([]byte(k), s.dirty[k])
		if err != nil {
			return
		}
	}
	hash = s.db.WorkingHash()
	h = s.calcHash(hash, false)
	s.dirty = make(map[string][]byte)
	return
}

func (s *State) save() (h common.Hash, err error) {
	hash, ver, err := s.db.SaveVersion()
	if err != nil {
		return h, err
	}

	s.dbVer = ver
	h = s.calcHash(hash, true)

	return
}

func (s *State) Header() *StateHeader {
	return s.header
}

func (s *State) Hash() (h common.Hash) {
	if s.header.Hash != nil {
		copy(h[:], s.header.Hash)
	}
	return
}

func (s *State) SetChainId(chainId string) {
	s.header.ChainId = chainId
}

// SetBlockTime sets the clock every time comparison of this block uses.
func (s *State) SetBlockTime(t uint64) {
	s.header.BlockTime = t
}

func (s *State) Now() uint64 {
	return s.header.BlockTime
}

// atomic runs fn as one all-or-nothing operation. Nested calls join the
// outermost operation.
func (s *State) atomic(fn func() error) error {
	if s.journal != nil {
		return fn()
	}
	s.journal = make(map[string][]byte)
	defer func() {
		s.journal = nil
	}()
	if err := fn(); err != nil {
		return err
	}
	for k, v := range s.journal {
		s.dirty[k] = v
	}
	return nil
}

// enter marks handle as busy for the duration of a mutating call.
func (s *State) enter(handle common.Address) (exit func(), err error) {
	if s.entered[handle] {
		return nil, ErrReentrantCall
	}
	s.entered[handle] = true
	return func() {
		delete(s.entered, handle)
	}, nil
}

func (s *State) get(key string) ([]byte, error) {
	if s.journal != nil {
		if v, ok := s.journal[key]; ok {
			return v, nil
		}
	}
	if v, ok := s.dirty[key]; ok {
		return v, nil
	}
	var r treeReader = s.db
	if s.view != nil {
		r = s.view
	}
	val, err := r.Get([]byte(key))
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return val, nil
}

func (s *State) set(key string, val []byte) {
	if s.journal != nil {
		s.journal[key] = val
		return
	}
	s.dirty[key] = val
}

func (s *State) getRecord(key string, v any) (found bool, err error) {
	val, err := s.get(key)
	if err != nil || val == nil {
		return false, err
	}
	if err = rlp.DecodeBytes(val, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *State) putRecord(key string, v any) error {
	val, err := rlp.EncodeToBytes(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	s.set(key, val)
	return nil
}

func (s *State) getUint(key string) (n uint64, err error) {
	_, err = s.getRecord(key, &n)
	return
}

func (s *State) putUint(key string, n uint64) error {
	return s.putRecord(key, n)
}
