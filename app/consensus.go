package app

import (
	"context"
	"errors"

	"github.com/Emmo00/agora/state"
	"github.com/Emmo00/agora/tx"
	"github.com/Emmo00/agora/tx/handler"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmttypes "github.com/cometbft/cometbft/types"
)

var (
	ErrUnexpectedTxProcess = errors.New("unexpected tx process")
	ErrNoBlockState        = errors.New("commit without finalized block")
)

// getState starts the state of the block being finalized.
func (app *AgoraApp) getState(blockTime int64) (st *state.State) {
	st = app.db.NewState()
	st.SetBlockTime(uint64(blockTime))
	app.st = st
	return
}

// scratchState starts a throwaway state for proposal building and checking.
func (app *AgoraApp) scratchState(blockTime int64) (st *state.State) {
	st = app.db.NewState()
	st.SetBlockTime(uint64(blockTime))
	return
}

// parseTx decodes txDat and verifies its envelope against st.
func (app *AgoraApp) parseTx(st *state.State, txDat []byte, allowNonceGap bool) (btx *tx.AgoraTx, h handler.TxHandler, err error) {
	btx, err = tx.UnmarshalAgoraTx(txDat)
	if err != nil {
		return
	}
	h, ok := app.txHdlrs[btx.Type]
	if !ok {
		return nil, nil, tx.ErrUnsupportedTxType
	}
	_, err = st.Verify(btx, allowNonceGap)
	return
}

func envelopeFail(err error) (code uint32, codespace string) {
	code = state.ErrorCode(err)
	if code != 1 {
		codespace = state.Codespace
	}
	return
}

func (app *AgoraApp) CheckTx(ctx context.Context, check *abcitypes.RequestCheckTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	st := app.db.State()
	btx, h, err := app.parseTx(st, check.Tx, true)
	if err != nil {
		app.logger.Info("parse tx fail", "err", err)
		res.Code, res.Codespace = envelopeFail(err)
		res.Log = err.Error()
		err = nil
		return
	}
	app.logger.Debug("check tx", "type", btx.Type, "from", btx.From, "nonce", btx.Nonce)
	res, err = h.Check(ctx, st, btx)
	if err != nil {
		app.logger.Error("check tx fail", "err", err)
		res = &abcitypes.ResponseCheckTx{Code: 1, Log: err.Error()}
		err = nil
	}
	return
}

func (app *AgoraApp) PrepareProposal(ctx context.Context, proposal *abcitypes.RequestPrepareProposal) (res *abcitypes.ResponsePrepareProposal, err error) {
	app.logger.Info("PrepareProposal", "height", proposal.Height, "txs", len(proposal.Txs))
	st := app.scratchState(proposal.Time.Unix())
	for _, h := range app.txHdlrs {
		h.NewContext(ctx)
	}
	txs := make([][]byte, 0, len(proposal.Txs))
	var size int64
	for _, stx := range proposal.Txs {
		btx, h, err := app.parseTx(st, stx, false)
		if err != nil {
			app.logger.Info("drop tx, parse fail", "err", err)
			continue
		}
		txSize := cmttypes.ComputeProtoSizeForTxs([]cmttypes.Tx{stx})
		if proposal.MaxTxBytes > 0 && size+txSize > proposal.MaxTxBytes {
			break
		}
		result, err := h.Prepare(ctx, st, btx)
		if err != nil || result == nil {
			app.logger.Error("prepare tx fail", "type", btx.Type, "err", err)
			continue
		}
		if err = st.BumpNonce(btx.From); err != nil {
			app.logger.Error("prepare bump nonce fail", "from", btx.From, "err", err)
			return &abcitypes.ResponsePrepareProposal{Txs: txs}, nil
		}
		size += txSize
		txs = append(txs, stx)
	}
	return &abcitypes.ResponsePrepareProposal{Txs: txs}, nil
}

// execTxs runs txs in order on st. Operation failures become result codes;
// a tx with a bad envelope fails without consuming a nonce.
func (app *AgoraApp) execTxs(ctx context.Context, st *state.State, txs [][]byte, strict bool) (res []*abcitypes.ExecTxResult, err error) {
	for _, h := range app.txHdlrs {
		h.NewContext(ctx)
	}
	res = make([]*abcitypes.ExecTxResult, len(txs))
	for i, stx := range txs {
		btx, h, err1 := app.parseTx(st, stx, false)
		if err1 != nil {
			if strict {
				return nil, err1
			}
			app.logger.Info("tx envelope invalid", "index", i, "err", err1)
			code, codespace := envelopeFail(err1)
			res[i] = &abcitypes.ExecTxResult{Code: code, Codespace: codespace, Log: err1.Error()}
			continue
		}
		result, err1 := h.Process(ctx, st, btx)
		if err1 != nil {
			app.logger.Error("unexpected process tx fail", "type", btx.Type, "err", err1)
			return nil, ErrUnexpectedTxProcess
		}
		if result == nil {
			app.logger.Error("unexpected process tx nil result", "type", btx.Type)
			return nil, ErrUnexpectedTxProcess
		}
		if err = st.BumpNonce(btx.From); err != nil {
			return nil, err
		}
		res[i] = result
	}
	return
}

func (app *AgoraApp) ProcessProposal(ctx context.Context, proposal *abcitypes.RequestProcessProposal) (res *abcitypes.ResponseProcessProposal, err error) {
	app.logger.Info("ProcessProposal", "height", proposal.Height, "txs", len(proposal.Txs))
	res = &abcitypes.ResponseProcessProposal{Status: abcitypes.ResponseProcessProposal_REJECT}
	if len(proposal.Txs) == 0 {
		res.Status = abcitypes.ResponseProcessProposal_ACCEPT
		return res, nil
	}
	st := app.scratchState(proposal.Time.Unix())
	_, err = app.execTxs(ctx, st, proposal.Txs, true)
	if err != nil {
		app.logger.Error("process fail", "err", err)
		return res, nil
	}
	res.Status = abcitypes.ResponseProcessProposal_ACCEPT
	app.logger.Info("proposal accepted", "height", proposal.Height)
	return res, nil
}

func (app *AgoraApp) FinalizeBlock(ctx context.Context, req *abcitypes.RequestFinalizeBlock) (*abcitypes.ResponseFinalizeBlock, error) {
	app.logger.Info("FinalizeBlock", "height", req.Height, "txs", len(req.Txs))
	app.lastBlk.Set(req)
	st := app.getState(req.Time.Unix())
	res, err := app.execTxs(ctx, st, req.Txs, false)
	if err != nil {
		return nil, err
	}
	h, err := st.Update()
	if err != nil {
		app.logger.Error("state update hash fail", "err", err)
		return nil, err
	}
	return &abcitypes.ResponseFinalizeBlock{
		TxResults: res,
		AppHash:   h.Bytes(),
	}, nil
}

func (app *AgoraApp) Commit(ctx context.Context, commit *abcitypes.RequestCommit) (*abcitypes.ResponseCommit, error) {
	if app.st == nil {
		return nil, ErrNoBlockState
	}
	_, err := app.db.SetState(app.st)
	if err != nil {
		return nil, err
	}
	app.st = nil
	app.logger.Info("Commit", "height", app.lastBlk.Height)
	return &abcitypes.ResponseCommit{}, nil
}
