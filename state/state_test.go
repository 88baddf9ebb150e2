package state

import (
	"errors"
	"testing"

	"github.com/Emmo00/agora/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

const testNow = uint64(1_700_000_000)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	carol = common.HexToAddress("0x00000000000000000000000000000000000ca201")
)

func newTestState(t *testing.T) *State {
	t.Helper()
	db, err := NewMemStateDB(cmtlog.NewNopLogger())
	require.NoError(t, err)
	st := db.NewState()
	st.SetChainId("agora-test")
	st.SetBlockTime(testNow)
	require.NoError(t, st.SetRegistry(types.DefaultAppGenesis()))
	return st
}

func newTestUnit(t *testing.T, st *State, creator common.Address) *types.Unit {
	t.Helper()
	u, _, err := st.CreateInstance(creator, "ipfs://unit")
	require.NoError(t, err)
	return u
}

func TestAtomicDiscardsFailedWrites(t *testing.T) {
	st := newTestState(t)
	err := st.atomic(func() error {
		require.NoError(t, st.putUint("k", 7))
		return ErrUnauthorized
	})
	require.ErrorIs(t, err, ErrUnauthorized)
	n, err := st.getUint("k")
	require.NoError(t, err)
	require.Zero(t, n)

	require.NoError(t, st.atomic(func() error {
		return st.putUint("k", 9)
	}))
	n, err = st.getUint("k")
	require.NoError(t, err)
	require.Equal(t, uint64(9), n)
}

func TestEnterRejectsReentry(t *testing.T) {
	st := newTestState(t)
	exit, err := st.enter(alice)
	require.NoError(t, err)
	_, err = st.enter(alice)
	require.ErrorIs(t, err, ErrReentrantCall)
	exit()
	exit, err = st.enter(alice)
	require.NoError(t, err)
	exit()
}

func TestCloneIsolatesWrites(t *testing.T) {
	st := newTestState(t)
	newTestUnit(t, st, alice)

	c := st.Clone()
	_, _, err := c.CreateInstance(bob, "ipfs://other")
	require.NoError(t, err)

	n, err := st.InstanceCount()
	require.NoError(t, err)
	require.Equal(t, uint64(1), n)
	n, err = c.InstanceCount()
	require.NoError(t, err)
	require.Equal(t, uint64(2), n)
}

func TestStateDBPersists(t *testing.T) {
	dir := t.TempDir()
	db, err := NewStateDB(dir, cmtlog.NewNopLogger())
	require.NoError(t, err)

	st := db.NewState()
	st.SetChainId("agora-test")
	st.SetBlockTime(testNow)
	require.NoError(t, st.SetRegistry(types.DefaultAppGenesis()))
	u := newTestUnit(t, st, alice)
	require.NoError(t, st.BumpNonce(alice))
	_, err = st.Update()
	require.NoError(t, err)
	hash, err := db.SetState(st)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = NewStateDB(dir, cmtlog.NewNopLogger())
	require.NoError(t, err)
	defer db.Close()
	require.Equal(t, hash, db.State().Hash())
	require.Equal(t, "agora-test", db.Header().ChainId)

	acnt, _, err := db.GetAccount(alice)
	require.NoError(t, err)
	require.Equal(t, uint64(1), acnt.Nonce)

	_, err = db.View(func(st *State) error {
		ok, err := st.VerifyInstance(u.Address)
		if err != nil {
			return err
		}
		require.True(t, ok)
		return nil
	})
	require.NoError(t, err)
}

func TestStateDBCloseReleasesStore(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 3; i++ {
		db, err := NewStateDB(dir, cmtlog.NewNopLogger())
		require.NoError(t, err)
		require.NoError(t, db.Close())
	}
}

func TestViewReadsCommittedVersion(t *testing.T) {
	db, err := NewMemStateDB(cmtlog.NewNopLogger())
	require.NoError(t, err)
	defer db.Close()

	st := db.NewState()
	st.SetChainId("agora-test")
	st.SetBlockTime(testNow)
	require.NoError(t, st.SetRegistry(types.DefaultAppGenesis()))
	require.NoError(t, st.BumpNonce(alice))
	_, err = st.Update()
	require.NoError(t, err)

	acnt, height, err := db.GetAccount(alice)
	require.NoError(t, err)
	require.Zero(t, height)
	require.Zero(t, acnt.Nonce)

	_, err = db.SetState(st)
	require.NoError(t, err)

	next := db.NewState()
	next.SetBlockTime(testNow + 5)
	u := newTestUnit(t, next, alice)
	require.NoError(t, next.BumpNonce(alice))
	_, err = next.Update()
	require.NoError(t, err)

	verify := func() (ok bool, height uint64) {
		height, err := db.View(func(st *State) (err error) {
			ok, err = st.VerifyInstance(u.Address)
			return
		})
		require.NoError(t, err)
		return
	}
	ok, height := verify()
	require.False(t, ok)
	require.Zero(t, height)
	acnt, _, err = db.GetAccount(alice)
	require.NoError(t, err)
	require.Equal(t, uint64(1), acnt.Nonce)

	_, err = db.SetState(next)
	require.NoError(t, err)
	ok, height = verify()
	require.True(t, ok)
	require.Equal(t, uint64(1), height)
	acnt, _, err = db.GetAccount(alice)
	require.NoError(t, err)
	require.Equal(t, uint64(2), acnt.Nonce)
}

func TestErrorCode(t *testing.T) {
	require.Zero(t, ErrorCode(nil))
	require.Equal(t, uint32(42), ErrorCode(ErrAlreadyVoted))
	require.Equal(t, uint32(1), ErrorCode(errors.New("disk full")))
	require.Equal(t, ErrMissingRequiredPassport, CodeError(ErrorCode(ErrMissingRequiredPassport)))
	require.Nil(t, CodeError(999))
}
