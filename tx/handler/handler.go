package handler

import (
	"context"

	"github.com/Emmo00/agora/state"
	"github.com/Emmo00/agora/tx"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

// TxHandler executes one family of governance transactions. Prepare and
// Process report operation failures in the result code; a returned error
// means the block itself cannot be built.
type TxHandler interface {
	Check(ctx context.Context, st *state.State, btx *tx.AgoraTx) (res *abcitypes.ResponseCheckTx, err error)
	NewContext(ctx context.Context)
	Prepare(ctx context.Context, st *state.State, btx *tx.AgoraTx) (res *abcitypes.ExecTxResult, err error)
	Process(ctx context.Context, st *state.State, btx *tx.AgoraTx) (res *abcitypes.ExecTxResult, err error)
}

type applyFunc func(ctx context.Context, st *state.State, btx *tx.AgoraTx) (events []abcitypes.Event, err error)

// baseHandler adapts an applyFunc to TxHandler.
type baseHandler struct {
	logger cmtlog.Logger
	apply  applyFunc
}

func (h *baseHandler) Check(ctx context.Context, st *state.State, btx *tx.AgoraTx) (res *abcitypes.ResponseCheckTx, err error) {
	res = &abcitypes.ResponseCheckTx{Code: 0}
	_, err1 := h.apply(ctx, st.Clone(), btx)
	if err1 != nil {
		h.logger.Info("CheckTx fail", "type", btx.Type, "from", btx.From, "err", err1)
		res.Code = state.ErrorCode(err1)
		res.Codespace = state.Codespace
		res.Log = err1.Error()
	}
	return
}

func (h *baseHandler) NewContext(ctx context.Context) {}

func (h *baseHandler) handle(ctx context.Context, st *state.State, btx *tx.AgoraTx) (res *abcitypes.ExecTxResult, err error) {
	res = &abcitypes.ExecTxResult{}
	events, err1 := h.apply(ctx, st, btx)
	if err1 != nil {
		h.logger.Info("tx fail", "type", btx.Type, "from", btx.From, "err", err1)
		res.Code = state.ErrorCode(err1)
		res.Codespace = state.Codespace
		res.Log = err1.Error()
		return
	}
	res.Events = events
	return
}

func (h *baseHandler) Prepare(ctx context.Context, st *state.State, btx *tx.AgoraTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

func (h *baseHandler) Process(ctx context.Context, st *state.State, btx *tx.AgoraTx) (res *abcitypes.ExecTxResult, err error) {
	return h.handle(ctx, st, btx)
}

// NewTxHandlers returns the handler of every supported tx type.
func NewTxHandlers(logger cmtlog.Logger) map[tx.AgoraTxType]TxHandler {
	rh := NewRegistryTxHandler(logger)
	uh := NewUnitTxHandler(logger)
	ch := NewCredentialTxHandler(logger)
	vh := NewVoteTxHandler(logger)
	return map[tx.AgoraTxType]TxHandler{
		tx.AgoraTxTypeCreateInstance:       rh,
		tx.AgoraTxTypeAddAdmin:             uh,
		tx.AgoraTxTypeRemoveAdmin:          uh,
		tx.AgoraTxTypeUpdateMetadata:       uh,
		tx.AgoraTxTypeCreateCredentialType: uh,
		tx.AgoraTxTypeAddToAllowlist:       uh,
		tx.AgoraTxTypeMintTo:               uh,
		tx.AgoraTxTypeCreateVote:           uh,
		tx.AgoraTxTypeMint:                 ch,
		tx.AgoraTxTypeTransfer:             ch,
		tx.AgoraTxTypeBatchTransfer:        ch,
		tx.AgoraTxTypeCastVote:             vh,
	}
}
