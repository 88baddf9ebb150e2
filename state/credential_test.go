package state

import (
	"testing"

	"github.com/Emmo00/agora/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestOpenTypeMint(t *testing.T) {
	st := newTestState(t)
	u := newTestUnit(t, st, alice)

	id, _, err := st.CreateCredentialType(u.Address, alice, "Member", "ipfs://member", true)
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)

	event, err := st.Mint(u.Issuer, bob, id)
	require.NoError(t, err)
	require.Equal(t, &types.EventCredentialMinted{Issuer: u.Issuer, TypeID: id, Holder: bob, Operator: bob}, event)

	_, err = st.Mint(u.Issuer, bob, id)
	require.ErrorIs(t, err, ErrAlreadyHoldsPassport)

	bal, err := st.BalanceOf(u.Issuer, bob, id)
	require.NoError(t, err)
	require.Equal(t, uint64(1), bal)
	ok, err := st.HoldsPassport(u.Issuer, bob, id)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = st.HoldsPassport(u.Issuer, carol, id)
	require.NoError(t, err)
	require.False(t, ok)

	uri, err := st.URI(u.Issuer, id)
	require.NoError(t, err)
	require.Equal(t, "ipfs://member", uri)
	_, err = st.URI(u.Issuer, 2)
	require.ErrorIs(t, err, ErrCredentialTypeNotFound)
}

func TestAllowlistMint(t *testing.T) {
	st := newTestState(t)
	u := newTestUnit(t, st, alice)

	_, _, err := st.CreateCredentialType(u.Address, alice, "Member", "ipfs://member", true)
	require.NoError(t, err)
	id, _, err := st.CreateCredentialType(u.Address, alice, "Council", "ipfs://council", false)
	require.NoError(t, err)
	require.Equal(t, uint64(2), id)

	next, err := st.NextTypeID(u.Issuer)
	require.NoError(t, err)
	require.Equal(t, uint64(3), next)

	_, err = st.AddToCredentialAllowlist(u.Address, alice, id, nil)
	require.ErrorIs(t, err, ErrEmptyAddressList)
	_, err = st.AddToCredentialAllowlist(u.Address, alice, 9, []common.Address{bob})
	require.ErrorIs(t, err, ErrCredentialTypeNotFound)

	event, err := st.AddToCredentialAllowlist(u.Address, alice, id, []common.Address{bob, bob})
	require.NoError(t, err)
	require.Equal(t, []common.Address{bob, bob}, event.Addresses)

	ok, err := st.IsAllowlisted(u.Issuer, id, bob)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = st.Mint(u.Issuer, bob, id)
	require.NoError(t, err)
	_, err = st.Mint(u.Issuer, carol, id)
	require.ErrorIs(t, err, ErrNotAllowlisted)

	bal, err := st.BalanceOf(u.Issuer, carol, id)
	require.NoError(t, err)
	require.Zero(t, bal)
}

func TestRemintAfterAllowlist(t *testing.T) {
	st := newTestState(t)
	u := newTestUnit(t, st, alice)

	open, _, err := st.CreateCredentialType(u.Address, alice, "Member", "ipfs://member", true)
	require.NoError(t, err)
	gated, _, err := st.CreateCredentialType(u.Address, alice, "Council", "ipfs://council", false)
	require.NoError(t, err)

	_, err = st.Mint(u.Issuer, bob, open)
	require.NoError(t, err)
	_, err = st.AddToCredentialAllowlist(u.Address, alice, gated, []common.Address{carol})
	require.NoError(t, err)
	_, err = st.Mint(u.Issuer, carol, gated)
	require.NoError(t, err)

	_, err = st.AddToCredentialAllowlist(u.Address, alice, open, []common.Address{bob})
	require.NoError(t, err)
	_, err = st.AddToCredentialAllowlist(u.Address, alice, gated, []common.Address{carol})
	require.NoError(t, err)

	_, err = st.Mint(u.Issuer, bob, open)
	require.ErrorIs(t, err, ErrAlreadyHoldsPassport)
	_, err = st.Mint(u.Issuer, carol, gated)
	require.ErrorIs(t, err, ErrAlreadyHoldsPassport)

	bal, err := st.BalanceOf(u.Issuer, bob, open)
	require.NoError(t, err)
	require.Equal(t, uint64(1), bal)
	bal, err = st.BalanceOf(u.Issuer, carol, gated)
	require.NoError(t, err)
	require.Equal(t, uint64(1), bal)
}

func TestMintChecks(t *testing.T) {
	st := newTestState(t)
	u := newTestUnit(t, st, alice)

	_, err := st.Mint(u.Issuer, bob, 1)
	require.ErrorIs(t, err, ErrCredentialTypeNotFound)
	_, err = st.Mint(bob, bob, 1)
	require.ErrorIs(t, err, ErrNotInitialized)

	id, _, err := st.CreateCredentialType(u.Address, alice, "Council", "ipfs://council", false)
	require.NoError(t, err)

	exit, err := st.enter(u.Issuer)
	require.NoError(t, err)
	_, err = st.Mint(u.Issuer, bob, id)
	require.ErrorIs(t, err, ErrReentrantCall)
	exit()

	_, err = st.MintTo(u.Issuer, alice, bob, id)
	require.ErrorIs(t, err, ErrUnauthorized)
	_, err = st.MintTo(u.Issuer, u.Address, bob, id)
	require.NoError(t, err)
	_, err = st.MintTo(u.Issuer, u.Address, bob, id)
	require.ErrorIs(t, err, ErrAlreadyHoldsPassport)
}

func TestCreateTypeValidation(t *testing.T) {
	st := newTestState(t)
	u := newTestUnit(t, st, alice)

	_, _, err := st.CreateCredentialType(u.Address, alice, "", "ipfs://x", true)
	require.ErrorIs(t, err, ErrEmptyName)
	_, _, err = st.CreateCredentialType(u.Address, alice, "Member", "", true)
	require.ErrorIs(t, err, ErrEmptyMetadataPointer)

	next, err := st.NextTypeID(u.Issuer)
	require.NoError(t, err)
	require.Equal(t, uint64(1), next)

	ct, err := st.CredentialType(u.Issuer, 1)
	require.NoError(t, err)
	require.False(t, ct.Exists)
}

func TestCredentialsAreSoulbound(t *testing.T) {
	st := newTestState(t)
	u := newTestUnit(t, st, alice)
	id, _, err := st.CreateCredentialType(u.Address, alice, "Member", "ipfs://member", true)
	require.NoError(t, err)
	_, err = st.Mint(u.Issuer, bob, id)
	require.NoError(t, err)

	require.ErrorIs(t, st.Transfer(u.Issuer, bob, carol, id, 1), ErrTransferNotAllowed)
	require.ErrorIs(t, st.BatchTransfer(u.Issuer, bob, carol, []uint64{id}, []uint64{1}), ErrTransferNotAllowed)
	require.ErrorIs(t, st.Transfer(u.Issuer, bob, carol, id, 0), ErrTransferNotAllowed)

	bal, err := st.BalanceOf(u.Issuer, bob, id)
	require.NoError(t, err)
	require.Equal(t, uint64(1), bal)
}

func TestHoldsAnyPassport(t *testing.T) {
	st := newTestState(t)
	u := newTestUnit(t, st, alice)
	for _, name := range []string{"A", "B", "C"} {
		_, _, err := st.CreateCredentialType(u.Address, alice, name, "ipfs://"+name, true)
		require.NoError(t, err)
	}
	_, err := st.Mint(u.Issuer, bob, 3)
	require.NoError(t, err)

	ok, err := st.HoldsAnyPassport(u.Issuer, bob, []uint64{1, 2, 3})
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = st.HoldsAnyPassport(u.Issuer, bob, []uint64{1, 2})
	require.NoError(t, err)
	require.False(t, ok)
	ok, err = st.HoldsAnyPassport(u.Issuer, bob, nil)
	require.NoError(t, err)
	require.False(t, ok)
}
