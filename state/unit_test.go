package state

import (
	"testing"

	"github.com/Emmo00/agora/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestInitializeUnit(t *testing.T) {
	st := newTestState(t)
	u := newTestUnit(t, st, alice)

	err := st.InitializeUnit(u.Address, bob, "ipfs://again", types.DefaultVoteTemplate)
	require.ErrorIs(t, err, ErrAlreadyInitialized)

	err = st.InitializeUnit(types.UnitAddress(7), bob, "ipfs://x", types.DefaultVoteTemplate)
	require.ErrorIs(t, err, ErrInstanceNotFound)

	addr := types.UnitAddress(1)
	require.NoError(t, st.newUnit(addr, 1))
	err = st.InitializeUnit(addr, bob, "", types.DefaultVoteTemplate)
	require.ErrorIs(t, err, ErrEmptyMetadataPointer)
	err = st.InitializeUnit(addr, bob, "ipfs://x", common.Address{})
	require.ErrorIs(t, err, ErrInvalidTemplateReference)

	_, err = st.Unit(addr)
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestAdminManagement(t *testing.T) {
	st := newTestState(t)
	u := newTestUnit(t, st, alice)

	_, err := st.AddAdmin(u.Address, bob, carol)
	require.ErrorIs(t, err, ErrUnauthorized)

	event, err := st.AddAdmin(u.Address, alice, bob)
	require.NoError(t, err)
	require.Equal(t, &types.EventAdmin{Unit: u.Address, Admin: bob, Actor: alice, Added: true}, event)

	event, err = st.AddAdmin(u.Address, bob, bob)
	require.NoError(t, err)
	require.Nil(t, event)

	n, err := st.AdminCount(u.Address)
	require.NoError(t, err)
	require.Equal(t, uint64(2), n)
	addr, err := st.AdminAt(u.Address, 1)
	require.NoError(t, err)
	require.Equal(t, bob, addr)
	_, err = st.AdminAt(u.Address, 2)
	require.ErrorIs(t, err, ErrIndexOutOfRange)

	event, err = st.RemoveAdmin(u.Address, bob, alice)
	require.NoError(t, err)
	require.Equal(t, &types.EventAdmin{Unit: u.Address, Admin: alice, Actor: bob, Added: false}, event)

	ok, err := st.IsAdmin(u.Address, alice)
	require.NoError(t, err)
	require.False(t, ok)
	_, err = st.AddAdmin(u.Address, alice, carol)
	require.ErrorIs(t, err, ErrUnauthorized)

	event, err = st.RemoveAdmin(u.Address, bob, carol)
	require.NoError(t, err)
	require.Nil(t, event)

	_, err = st.AddAdmin(types.UnitAddress(5), alice, bob)
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestUpdateMetadata(t *testing.T) {
	st := newTestState(t)
	u := newTestUnit(t, st, alice)

	_, err := st.UpdateMetadata(u.Address, bob, "ipfs://new")
	require.ErrorIs(t, err, ErrUnauthorized)
	_, err = st.UpdateMetadata(u.Address, alice, "")
	require.ErrorIs(t, err, ErrEmptyMetadataPointer)

	event, err := st.UpdateMetadata(u.Address, alice, "ipfs://new")
	require.NoError(t, err)
	require.Equal(t, "ipfs://unit", event.OldMetadata)
	require.Equal(t, "ipfs://new", event.NewMetadata)

	info, err := st.UnitInfo(u.Address)
	require.NoError(t, err)
	require.Equal(t, &types.UnitInfo{
		Issuer:     u.Issuer,
		Metadata:   "ipfs://new",
		VoteCount:  0,
		AdminCount: 1,
	}, info)
}

func TestUnitCredentialDelegation(t *testing.T) {
	st := newTestState(t)
	u := newTestUnit(t, st, alice)

	_, _, err := st.CreateCredentialType(u.Address, bob, "Member", "ipfs://member", false)
	require.ErrorIs(t, err, ErrUnauthorized)

	id, event, err := st.CreateCredentialType(u.Address, alice, "Member", "ipfs://member", false)
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)
	require.Equal(t, u.Issuer, event.Issuer)

	_, err = st.AddToCredentialAllowlist(u.Address, bob, id, []common.Address{bob})
	require.ErrorIs(t, err, ErrUnauthorized)
	_, err = st.AddToCredentialAllowlist(u.Address, alice, id, []common.Address{bob})
	require.NoError(t, err)

	minted, err := st.MintCredentialTo(u.Address, alice, carol, id)
	require.NoError(t, err)
	require.Equal(t, &types.EventCredentialMinted{Issuer: u.Issuer, TypeID: id, Holder: carol, Operator: u.Address}, minted)

	_, err = st.MintCredentialTo(u.Address, bob, bob, id)
	require.ErrorIs(t, err, ErrUnauthorized)

	// the unit owns its issuer; admins cannot drive it directly
	_, _, err = st.CreateType(u.Issuer, alice, "Direct", "ipfs://direct", true)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreateVote(t *testing.T) {
	st := newTestState(t)
	u := newTestUnit(t, st, alice)

	_, _, err := st.CreateVote(u.Address, bob, "Lunch?", []string{"yes", "no"}, 3600, nil)
	require.ErrorIs(t, err, ErrUnauthorized)

	vote, event, err := st.CreateVote(u.Address, alice, "Lunch?", []string{"yes", "no"}, 3600, []uint64{2, 1, 2})
	require.NoError(t, err)
	require.Equal(t, types.VoteAddress(u.Address, 0), vote)
	require.Equal(t, &types.EventVoteCreated{
		Unit:          u.Address,
		Vote:          vote,
		Index:         0,
		Prompt:        "Lunch?",
		Options:       []string{"yes", "no"},
		VotingEnd:     testNow + 3600,
		RequiredTypes: []uint64{2, 1},
	}, event)

	v, err := st.Vote(vote)
	require.NoError(t, err)
	require.Equal(t, u.Issuer, v.Issuer)
	require.Equal(t, []uint64{0, 0}, v.Tallies)

	_, _, err = st.CreateVote(u.Address, alice, "", []string{"yes", "no"}, 3600, nil)
	require.ErrorIs(t, err, ErrEmptyPrompt)
	_, err = st.Vote(types.VoteAddress(u.Address, 1))
	require.ErrorIs(t, err, ErrNotInitialized)

	second, _, err := st.CreateVote(u.Address, alice, "Dinner?", []string{"a", "b", "c"}, 60, nil)
	require.NoError(t, err)
	require.Equal(t, types.VoteAddress(u.Address, 1), second)

	votes, err := st.AllVotes(u.Address)
	require.NoError(t, err)
	require.Equal(t, []common.Address{vote, second}, votes)

	st.SetBlockTime(testNow + 60)
	active, err := st.ActiveVotes(u.Address)
	require.NoError(t, err)
	require.Equal(t, []common.Address{vote}, active)

	info, err := st.UnitInfo(u.Address)
	require.NoError(t, err)
	require.Equal(t, uint64(2), info.VoteCount)
}

func TestCreateVoteReentry(t *testing.T) {
	st := newTestState(t)
	u := newTestUnit(t, st, alice)

	exit, err := st.enter(u.Address)
	require.NoError(t, err)
	_, _, err = st.CreateVote(u.Address, alice, "Lunch?", []string{"yes", "no"}, 3600, nil)
	require.ErrorIs(t, err, ErrReentrantCall)
	exit()

	_, _, err = st.CreateVote(u.Address, alice, "Lunch?", []string{"yes", "no"}, 3600, nil)
	require.NoError(t, err)
}
