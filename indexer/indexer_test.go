package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/Emmo00/agora/types"
	abci "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type fakeChain struct {
	blocks map[int64][]*abci.ExecTxResult
	latest int64
}

func (f *fakeChain) Status(ctx context.Context) (*coretypes.ResultStatus, error) {
	res := &coretypes.ResultStatus{}
	res.SyncInfo.LatestBlockHeight = f.latest
	return res, nil
}

func (f *fakeChain) BlockResults(ctx context.Context, height *int64) (*coretypes.ResultBlockResults, error) {
	return &coretypes.ResultBlockResults{Height: *height, TxsResults: f.blocks[*height]}, nil
}

func (f *fakeChain) add(results ...*abci.ExecTxResult) {
	f.latest++
	f.blocks[f.latest] = results
}

func ok(events ...abci.Event) *abci.ExecTxResult {
	return &abci.ExecTxResult{Events: events}
}

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	unit  = types.UnitAddress(0)
	iss   = types.IssuerAddress(unit)
	vote  = types.VoteAddress(unit, 0)
)

type IndexerSuite struct {
	suite.Suite
	chain   *fakeChain
	indexer *ChainIndexer
	server  *httptest.Server
	dbPath  string
}

func TestIndexerSuite(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(IndexerSuite))
}

func (s *IndexerSuite) SetupTest() {
	s.chain = &fakeChain{blocks: make(map[int64][]*abci.ExecTxResult)}
	s.dbPath = filepath.Join(s.T().TempDir(), "indexer.db")
	db, err := OpenDB(s.dbPath)
	s.Require().NoError(err)
	s.indexer, err = newChainIndexer(cmtlog.NewNopLogger(), db, s.chain)
	s.Require().NoError(err)
	s.server = httptest.NewServer(NewService("", s.indexer, cmtlog.NewNopLogger()).Handler())

	s.chain.add(
		ok(types.EncodeEventInstanceCreated(&types.EventInstanceCreated{Instance: unit, Creator: alice, Metadata: "ipfs://unit", Index: 0})),
		ok(types.EncodeEventCredentialTypeCreated(&types.EventCredentialTypeCreated{Issuer: iss, TypeID: 1, Name: "Member", Metadata: "ipfs://member", IsOpen: true})),
	)
	s.chain.add(
		ok(types.EncodeEventCredentialMinted(&types.EventCredentialMinted{Issuer: iss, TypeID: 1, Holder: bob, Operator: bob})),
		ok(types.EncodeEventAdmin(&types.EventAdmin{Unit: unit, Admin: bob, Actor: alice, Added: true})),
		ok(types.EncodeEventVoteCreated(&types.EventVoteCreated{Unit: unit, Vote: vote, Prompt: "Pick one?", Options: []string{"A", "B"}, VotingEnd: 100, RequiredTypes: []uint64{1}})),
		&abci.ExecTxResult{Code: 42, Events: []abci.Event{
			types.EncodeEventVoteCast(&types.EventVoteCast{Vote: vote, Voter: alice, Option: 1}),
		}},
	)
	s.chain.add(
		ok(types.EncodeEventVoteCast(&types.EventVoteCast{Vote: vote, Voter: bob, Option: 0})),
		ok(types.EncodeEventMetadataUpdated(&types.EventMetadataUpdated{Unit: unit, OldMetadata: "ipfs://unit", NewMetadata: "ipfs://v2"})),
	)
	s.Require().NoError(s.indexer.Sync(context.Background()))
}

func (s *IndexerSuite) TearDownTest() {
	s.server.Close()
	s.Require().NoError(s.indexer.Close())
}

func (s *IndexerSuite) post(path string, body any, out any) int {
	dat, err := json.Marshal(body)
	s.Require().NoError(err)
	resp, err := http.Post(s.server.URL+path, "application/json", bytes.NewReader(dat))
	s.Require().NoError(err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (s *IndexerSuite) TestServiceStartReturnsAfterShutdown() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := NewService("127.0.0.1:0", s.indexer, cmtlog.NewNopLogger())
	s.Require().NoError(svc.Start(ctx))
}

func (s *IndexerSuite) TestSyncProgress() {
	s.Equal(int64(4), s.indexer.Height)

	s.chain.add(ok(types.EncodeEventAdmin(&types.EventAdmin{Unit: unit, Admin: alice, Actor: bob})))
	s.Require().NoError(s.indexer.Sync(context.Background()))
	s.Equal(int64(5), s.indexer.Height)

	admins, err := s.indexer.getAdmins(unit.Hex())
	s.Require().NoError(err)
	s.Equal([]string{bob.Hex()}, admins)
}

func (s *IndexerSuite) TestResumesFromStoredHeight() {
	s.Require().NoError(s.indexer.Close())
	db, err := OpenDB(s.dbPath)
	s.Require().NoError(err)
	s.indexer, err = newChainIndexer(cmtlog.NewNopLogger(), db, s.chain)
	s.Require().NoError(err)
	s.Equal(int64(4), s.indexer.Height)
}

func (s *IndexerSuite) TestGetInstances() {
	var res GetInstancesResponse
	s.Equal(http.StatusOK, s.post("/getInstances", GetInstancesReq{Creator: alice.Hex()}, &res))
	s.Require().Len(res.Instances, 1)
	s.Equal(uint64(1), res.Total)
	got := res.Instances[0]
	s.Equal(unit.Hex(), got.Instance.Address)
	s.Equal("ipfs://v2", got.Instance.Metadata)
	s.Equal(uint64(3), got.Instance.MetadataHeight)
	s.Equal([]string{alice.Hex(), bob.Hex()}, got.Admins)

	s.Equal(http.StatusNotFound, s.post("/getInstances", GetInstancesReq{Address: bob.Hex()}, nil))

	res = GetInstancesResponse{}
	s.Equal(http.StatusOK, s.post("/getInstances", GetInstancesReq{Creator: bob.Hex()}, &res))
	s.Empty(res.Instances)
	s.Zero(res.Total)
}

func (s *IndexerSuite) TestGetVotes() {
	var res GetVotesResponse
	s.Equal(http.StatusOK, s.post("/getVotes", GetVotesReq{Unit: unit.Hex()}, &res))
	s.Require().Len(res.Votes, 1)
	v := res.Votes[0]
	s.Equal(vote.Hex(), v.Address)
	s.Equal([]string{"A", "B"}, v.Options)
	s.Equal([]uint64{1, 0}, v.Tallies)
	s.Equal(uint64(1), v.Total)
	s.Equal([]uint64{1}, v.RequiredTypes)

	s.Equal(http.StatusBadRequest, s.post("/getVotes", GetVotesReq{}, nil))
	s.Equal(http.StatusNotFound, s.post("/getVotes", GetVotesReq{Vote: bob.Hex()}, nil))
}

func (s *IndexerSuite) TestGetCredentials() {
	var res GetCredentialsResponse
	s.Equal(http.StatusOK, s.post("/getCredentials", GetCredentialsReq{Issuer: iss.Hex()}, &res))
	s.Require().Len(res.Types, 1)
	s.Equal("Member", res.Types[0].Name)
	s.Require().Len(res.Credentials, 1)
	s.Equal(bob.Hex(), res.Credentials[0].Holder)

	res = GetCredentialsResponse{}
	s.Equal(http.StatusOK, s.post("/getCredentials", GetCredentialsReq{Holder: alice.Hex()}, &res))
	s.Empty(res.Credentials)
	s.Empty(res.Types)

	s.Equal(http.StatusBadRequest, s.post("/getCredentials", GetCredentialsReq{}, nil))
}

func TestPageBounds(t *testing.T) {
	offset, limit := pageBounds(2, 10)
	require.Equal(t, 20, offset)
	require.Equal(t, 10, limit)

	offset, limit = pageBounds(-1, 0)
	require.Zero(t, offset)
	require.Equal(t, maxPageSize, limit)

	_, limit = pageBounds(0, 1000)
	require.Equal(t, maxPageSize, limit)
}
