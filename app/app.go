package app

import (
	"context"

	"github.com/Emmo00/agora/config"
	"github.com/Emmo00/agora/state"
	"github.com/Emmo00/agora/tx"
	"github.com/Emmo00/agora/tx/handler"
	"github.com/Emmo00/agora/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/cometbft/cometbft/store"
	"github.com/ethereum/go-ethereum/common"
)

type finalizeBlock struct {
	Height uint64
	Hash   common.Hash
}

func (b *finalizeBlock) Set(blk *abcitypes.RequestFinalizeBlock) {
	b.Height = uint64(blk.Height)
	b.Hash = common.BytesToHash(blk.Hash)
}

var _ abcitypes.Application = &AgoraApp{}

// AgoraApp runs the governance engine as a CometBFT application.
type AgoraApp struct {
	cfg    *config.AgoraAppConfig
	logger cmtlog.Logger

	db       *state.StateDB
	lastBlk  finalizeBlock
	txHdlrs  map[tx.AgoraTxType]handler.TxHandler
	queriers map[string]Querier

	st *state.State
}

func NewAgoraApp(cfg *config.AgoraAppConfig, logger cmtlog.Logger) (app *AgoraApp, err error) {
	logger = logger.With("module", "app")
	db, err := state.NewStateDB(cfg.DataDir(), logger)
	if err != nil {
		return nil, err
	}
	return newAgoraApp(cfg, db, logger), nil
}

func newAgoraApp(cfg *config.AgoraAppConfig, db *state.StateDB, logger cmtlog.Logger) (app *AgoraApp) {
	app = &AgoraApp{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		txHdlrs:  make(map[tx.AgoraTxType]handler.TxHandler),
		queriers: make(map[string]Querier),
	}
	app.registerTxHandler()
	app.registerQuerier()
	return
}

func (app *AgoraApp) Start(bs *store.BlockStore) {
	height := app.db.Header().Height
	if height > 0 {
		blk := bs.LoadBlock(int64(height))
		if blk == nil {
			panic("unexpected BlockStore")
		}
		app.lastBlk.Height = height
		app.lastBlk.Hash = common.BytesToHash(blk.Hash())
	}
}

func (app *AgoraApp) Stop() {
	err := app.db.Close()
	if err != nil {
		app.logger.Error("close db fail", "err", err)
	}
	app.logger.Info("agora app stopped")
}

func (app *AgoraApp) registerTxHandler() {
	app.txHdlrs = handler.NewTxHandlers(app.logger)
}

func (app *AgoraApp) registerQuerier() {
	app.queriers[types.QueryPathAccounts] = NewAccountQuerier(app.db, app.logger)
	app.queriers[types.QueryPathRegistry] = NewRegistryQuerier(app.db, app.logger)
	app.queriers[types.QueryPathUnits] = NewUnitQuerier(app.db, app.logger)
	app.queriers[types.QueryPathCredentials] = NewCredentialQuerier(app.db, app.logger)
	app.queriers[types.QueryPathVotes] = NewVoteQuerier(app.db, app.logger)
}

func (app *AgoraApp) InitChain(_ context.Context, chain *abcitypes.RequestInitChain) (res *abcitypes.ResponseInitChain, err error) {
	genesis, err := types.ParseAppGenesis(chain.AppStateBytes)
	if err != nil {
		app.logger.Error("InitChain parse app genesis fail", "err", err)
		return nil, err
	}
	st := app.db.NewState()
	st.SetChainId(chain.ChainId)
	st.SetBlockTime(uint64(chain.Time.Unix()))
	err = st.SetRegistry(genesis)
	if err != nil {
		app.logger.Error("InitChain set registry fail", "err", err)
		return nil, err
	}
	var h common.Hash
	_, err = st.Update()
	if err != nil {
		app.logger.Error("InitChain update state fail", "err", err)
		return nil, err
	}
	h, err = app.db.SetState(st)
	if err != nil {
		app.logger.Error("InitChain apply state fail", "err", err)
		return nil, err
	}
	app.logger.Info("InitChain", "chainId", chain.ChainId, "voteTemplate", genesis.VoteTemplate)
	return &abcitypes.ResponseInitChain{
		AppHash: h.Bytes(),
	}, nil
}

func (app *AgoraApp) Info(ctx context.Context, info *abcitypes.RequestInfo) (*abcitypes.ResponseInfo, error) {
	header := app.db.Header()
	return &abcitypes.ResponseInfo{
		Version:          Version,
		LastBlockHeight:  int64(header.Height),
		LastBlockAppHash: header.Hash,
	}, nil
}

func (app *AgoraApp) ExtendVote(_ context.Context, extend *abcitypes.RequestExtendVote) (*abcitypes.ResponseExtendVote, error) {
	return &abcitypes.ResponseExtendVote{}, nil
}

func (app *AgoraApp) VerifyVoteExtension(_ context.Context, verify *abcitypes.RequestVerifyVoteExtension) (*abcitypes.ResponseVerifyVoteExtension, error) {
	return &abcitypes.ResponseVerifyVoteExtension{Status: abcitypes.ResponseVerifyVoteExtension_ACCEPT}, nil
}

func (app *AgoraApp) ApplySnapshotChunk(context.Context, *abcitypes.RequestApplySnapshotChunk) (*abcitypes.ResponseApplySnapshotChunk, error) {
	return &abcitypes.ResponseApplySnapshotChunk{}, nil
}

func (app *AgoraApp) ListSnapshots(context.Context, *abcitypes.RequestListSnapshots) (*abcitypes.ResponseListSnapshots, error) {
	return &abcitypes.ResponseListSnapshots{}, nil
}

func (app *AgoraApp) LoadSnapshotChunk(context.Context, *abcitypes.RequestLoadSnapshotChunk) (*abcitypes.ResponseLoadSnapshotChunk, error) {
	return &abcitypes.ResponseLoadSnapshotChunk{}, nil
}

func (app *AgoraApp) OfferSnapshot(context.Context, *abcitypes.RequestOfferSnapshot) (*abcitypes.ResponseOfferSnapshot, error) {
	return &abcitypes.ResponseOfferSnapshot{}, nil
}
