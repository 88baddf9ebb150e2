package app

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/Emmo00/agora/state"
	"github.com/Emmo00/agora/types"
	abcitypes "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
)

var ErrUnknownQueryMethod = errors.New("unknown query method")

func (app *AgoraApp) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	path := req.Path
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	q, ok := app.queriers[path]
	if !ok {
		res = &abcitypes.ResponseQuery{}
		res.Code = 404
		res.Log = "unknown path " + req.Path
		return
	}
	res, err = q.Query(ctx, req)
	return
}

type Querier interface {
	Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error)
}

type queryFunc func(st *state.State, req *types.QueryRequest) (any, error)

// methodQuerier decodes a types.QueryRequest and dispatches on its method.
// Every method reads a snapshot of the last committed state.
type methodQuerier struct {
	db      *state.StateDB
	logger  cmtlog.Logger
	methods map[string]queryFunc
}

func (q *methodQuerier) Query(ctx context.Context, req *abcitypes.RequestQuery) (res *abcitypes.ResponseQuery, err error) {
	res = &abcitypes.ResponseQuery{}
	var qr types.QueryRequest
	if len(req.Data) > 0 {
		if err1 := json.Unmarshal(req.Data, &qr); err1 != nil {
			res.Code = 1
			res.Log = err1.Error()
			return
		}
	}
	fn, ok := q.methods[qr.Method]
	if !ok {
		res.Code = 1
		res.Log = ErrUnknownQueryMethod.Error() + ": " + qr.Method
		return
	}
	var value any
	height, err1 := q.db.View(func(st *state.State) (err error) {
		value, err = fn(st, &qr)
		return
	})
	res.Height = int64(height)
	if err1 != nil {
		q.logger.Debug("query fail", "path", req.Path, "method", qr.Method, "err", err1)
		res.Code = state.ErrorCode(err1)
		res.Codespace = state.Codespace
		res.Log = err1.Error()
		return
	}
	res.Value, err1 = json.Marshal(value)
	if err1 != nil {
		res.Code = 1
		res.Log = err1.Error()
	}
	return
}

func NewAccountQuerier(db *state.StateDB, logger cmtlog.Logger) Querier {
	return &methodQuerier{
		db:     db,
		logger: logger.With("querier", "accounts"),
		methods: map[string]queryFunc{
			"": func(st *state.State, req *types.QueryRequest) (any, error) {
				return st.GetAccount(req.Address)
			},
		},
	}
}

func NewRegistryQuerier(db *state.StateDB, logger cmtlog.Logger) Querier {
	return &methodQuerier{
		db:     db,
		logger: logger.With("querier", "registry"),
		methods: map[string]queryFunc{
			"getAllInstances": func(st *state.State, req *types.QueryRequest) (any, error) {
				return st.AllInstances()
			},
			"getInstance": func(st *state.State, req *types.QueryRequest) (any, error) {
				return st.Instance(req.Index)
			},
			"getInstanceCount": func(st *state.State, req *types.QueryRequest) (any, error) {
				return st.InstanceCount()
			},
			"getInstancesByCreator": func(st *state.State, req *types.QueryRequest) (any, error) {
				return st.InstancesByCreator(req.Address)
			},
			"getInstancesPaginated": func(st *state.State, req *types.QueryRequest) (any, error) {
				page, total, err := st.InstancesPaginated(req.Offset, req.Limit)
				if err != nil {
					return nil, err
				}
				return &types.InstancePage{Instances: page, Total: total}, nil
			},
			"getRecentInstances": func(st *state.State, req *types.QueryRequest) (any, error) {
				return st.RecentInstances(req.Count)
			},
			"verifyInstance": func(st *state.State, req *types.QueryRequest) (any, error) {
				return st.VerifyInstance(req.Target)
			},
		},
	}
}

func NewUnitQuerier(db *state.StateDB, logger cmtlog.Logger) Querier {
	return &methodQuerier{
		db:     db,
		logger: logger.With("querier", "units"),
		methods: map[string]queryFunc{
			"getUnit": func(st *state.State, req *types.QueryRequest) (any, error) {
				return st.Unit(req.Target)
			},
			"getInfo": func(st *state.State, req *types.QueryRequest) (any, error) {
				return st.UnitInfo(req.Target)
			},
			"isAdmin": func(st *state.State, req *types.QueryRequest) (any, error) {
				return st.IsAdmin(req.Target, req.Address)
			},
			"getAdminCount": func(st *state.State, req *types.QueryRequest) (any, error) {
				return st.AdminCount(req.Target)
			},
			"getAdminAt": func(st *state.State, req *types.QueryRequest) (any, error) {
				return st.AdminAt(req.Target, req.Index)
			},
			"getAllVotes": func(st *state.State, req *types.QueryRequest) (any, error) {
				return st.AllVotes(req.Target)
			},
			"getActiveVotes": func(st *state.State, req *types.QueryRequest) (any, error) {
				return st.ActiveVotes(req.Target)
			},
		},
	}
}

func NewCredentialQuerier(db *state.StateDB, logger cmtlog.Logger) Querier {
	return &methodQuerier{
		db:     db,
		logger: logger.With("querier", "credentials"),
		methods: map[string]queryFunc{
			"getType": func(st *state.State, req *types.QueryRequest) (any, error) {
				return st.CredentialType(req.Target, req.TypeID)
			},
			"uri": func(st *state.State, req *types.QueryRequest) (any, error) {
				return st.URI(req.Target, req.TypeID)
			},
			"balanceOf": func(st *state.State, req *types.QueryRequest) (any, error) {
				return st.BalanceOf(req.Target, req.Address, req.TypeID)
			},
			"holdsPassport": func(st *state.State, req *types.QueryRequest) (any, error) {
				return st.HoldsPassport(req.Target, req.Address, req.TypeID)
			},
			"holdsAnyPassport": func(st *state.State, req *types.QueryRequest) (any, error) {
				return st.HoldsAnyPassport(req.Target, req.Address, req.TypeIDs)
			},
			"isAllowlisted": func(st *state.State, req *types.QueryRequest) (any, error) {
				return st.IsAllowlisted(req.Target, req.TypeID, req.Address)
			},
			"nextTypeId": func(st *state.State, req *types.QueryRequest) (any, error) {
				return st.NextTypeID(req.Target)
			},
		},
	}
}

func NewVoteQuerier(db *state.StateDB, logger cmtlog.Logger) Querier {
	return &methodQuerier{
		db:     db,
		logger: logger.With("querier", "votes"),
		methods: map[string]queryFunc{
			"getVote": func(st *state.State, req *types.QueryRequest) (any, error) {
				return st.Vote(req.Target)
			},
			"getOptions": func(st *state.State, req *types.QueryRequest) (any, error) {
				return st.Options(req.Target)
			},
			"getRequiredCredentialTypes": func(st *state.State, req *types.QueryRequest) (any, error) {
				return st.RequiredTypes(req.Target)
			},
			"getResults": func(st *state.State, req *types.QueryRequest) (any, error) {
				return st.Results(req.Target)
			},
			"getWinner": func(st *state.State, req *types.QueryRequest) (any, error) {
				return st.Winner(req.Target)
			},
			"getBallot": func(st *state.State, req *types.QueryRequest) (any, error) {
				return st.Ballot(req.Target, req.Address)
			},
			"isActive": func(st *state.State, req *types.QueryRequest) (any, error) {
				return st.IsActive(req.Target)
			},
			"canVote": func(st *state.State, req *types.QueryRequest) (any, error) {
				return st.CanVote(req.Target, req.Address)
			},
			"timeRemaining": func(st *state.State, req *types.QueryRequest) (any, error) {
				return st.TimeRemaining(req.Target)
			},
			"isGated": func(st *state.State, req *types.QueryRequest) (any, error) {
				return st.IsGated(req.Target)
			},
		},
	}
}
