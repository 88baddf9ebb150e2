package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Emmo00/agora/config"
	"github.com/Emmo00/agora/crypto"
	"github.com/Emmo00/agora/state"
	"github.com/Emmo00/agora/tx"
	"github.com/Emmo00/agora/types"
	"github.com/cometbft/cometbft/rpc/client/http"
	"github.com/ethereum/go-ethereum/common"
)

type txArguments struct {
	Url    string
	Key    string
	Home   string
	Nonce  uint64
	NoSend bool
}

func (a *txArguments) keyPath() string {
	if a.Key != "" {
		return a.Key
	}
	return config.OwnerKeyPath(config.ExpandHome(a.Home))
}

func abciQuery(ctx context.Context, cli *http.HTTP, path string, req *types.QueryRequest, out any) (height int64, err error) {
	dat, err := json.Marshal(req)
	if err != nil {
		return
	}
	res, err := cli.ABCIQuery(ctx, path, dat)
	if err != nil {
		return
	}
	if res.Response.Code != 0 {
		err = fmt.Errorf("query %s %s: code %d: %s", path, req.Method, res.Response.Code, res.Response.Log)
		if res.Response.Codespace == state.Codespace {
			if e := state.CodeError(res.Response.Code); e != nil {
				err = fmt.Errorf("query %s %s: %w", path, req.Method, e)
			}
		}
		return
	}
	height = res.Response.Height
	if out != nil {
		err = json.Unmarshal(res.Response.Value, out)
	}
	return
}

func queryAccount(ctx context.Context, cli *http.HTTP, addr common.Address) (*state.Account, error) {
	var act state.Account
	_, err := abciQuery(ctx, cli, types.QueryPathAccounts, &types.QueryRequest{Address: addr}, &act)
	if err != nil {
		return nil, err
	}
	return &act, nil
}

// sendTx signs payload with the configured key and broadcasts it, waiting
// for the block that includes it.
func sendTx(args *txArguments, tp tx.AgoraTxType, payload any) error {
	cli, err := http.New(args.Url, "/websocket")
	if err != nil {
		return fmt.Errorf("new client: %w", err)
	}
	ctx := context.Background()
	gres, err := cli.Genesis(ctx)
	if err != nil {
		return fmt.Errorf("get chain genesis: %w", err)
	}
	chainId := gres.Genesis.ChainID
	key, err := crypto.LoadKey(args.keyPath())
	if err != nil {
		return err
	}
	nonce := args.Nonce
	if nonce == 0 {
		act, err := queryAccount(ctx, cli, key.Address())
		if err != nil {
			return fmt.Errorf("query account: %w", err)
		}
		nonce = act.Nonce
	}
	btx := &tx.AgoraTx{
		Version: tx.AgoraTxVersion1,
		Type:    tp,
		Nonce:   nonce,
		Tx:      payload,
	}
	if err = btx.Sign([]byte(chainId), key.PrivateKey()); err != nil {
		return fmt.Errorf("sign tx: %w", err)
	}
	dat, err := tx.MarshalAgoraTx(btx)
	if err != nil {
		return err
	}
	if args.NoSend {
		fmt.Println(string(dat))
		return nil
	}
	res, err := cli.BroadcastTxCommit(ctx, dat)
	if err != nil {
		return fmt.Errorf("broadcast tx: %w", err)
	}
	if res.CheckTx.Code != 0 {
		return fmt.Errorf("check tx: code %d: %s", res.CheckTx.Code, res.CheckTx.Log)
	}
	if res.TxResult.Code != 0 {
		return fmt.Errorf("%s failed at height %d: %s", tp, res.Height, res.TxResult.Log)
	}
	out, _ := json.MarshalIndent(struct {
		Hash   string `json:"hash"`
		Height int64  `json:"height"`
		Events any    `json:"events"`
	}{res.Hash.String(), res.Height, res.TxResult.Events}, "", "  ")
	fmt.Println(string(out))
	return nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

func parseAddresses(ss []string) ([]common.Address, error) {
	if len(ss) == 0 {
		return nil, errors.New("no address given")
	}
	res := make([]common.Address, 0, len(ss))
	for _, s := range ss {
		addr, err := parseAddress(s)
		if err != nil {
			return nil, err
		}
		res = append(res, addr)
	}
	return res, nil
}
