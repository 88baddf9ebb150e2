package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Emmo00/agora/types"
	"github.com/cometbft/cometbft/rpc/client/http"
	"github.com/spf13/cobra"
)

type queryArguments struct {
	Url     string
	Target  string
	Address string
	Index   uint64
	Offset  uint64
	Limit   uint64
	Count   uint64
	TypeID  uint64
	TypeIDs []uint
}

var queryArgs queryArguments

var queryCmd = &cobra.Command{
	Use:   "query <registry|units|credentials|votes|accounts> [method]",
	Short: "Run a read-only query against the node and print JSON",
	Example: `  agora query registry getRecentInstances --count 5
  agora query votes getResults --target 0x...
  agora query credentials holdsPassport --target <issuer> --address <holder> --type 1`,
	Args: cobra.RangeArgs(1, 2),
	RunE: queryRun,
}

func init() {
	urlFlag(queryCmd, &queryArgs.Url)
	queryCmd.Flags().StringVarP(&queryArgs.Target, "target", "t", "", "unit, issuer or vote address")
	queryCmd.Flags().StringVarP(&queryArgs.Address, "address", "a", "", "identity the query is about")
	queryCmd.Flags().Uint64Var(&queryArgs.Index, "index", 0, "index argument")
	queryCmd.Flags().Uint64Var(&queryArgs.Offset, "offset", 0, "page offset")
	queryCmd.Flags().Uint64Var(&queryArgs.Limit, "limit", 0, "page limit")
	queryCmd.Flags().Uint64Var(&queryArgs.Count, "count", 0, "number of recent instances")
	queryCmd.Flags().Uint64Var(&queryArgs.TypeID, "type", 0, "credential type id")
	queryCmd.Flags().UintSliceVar(&queryArgs.TypeIDs, "types", nil, "credential type ids")
}

func queryRun(cmd *cobra.Command, args []string) error {
	path := "/" + strings.Trim(args[0], "/") + "/"
	req := &types.QueryRequest{
		Index:   queryArgs.Index,
		Offset:  queryArgs.Offset,
		Limit:   queryArgs.Limit,
		Count:   queryArgs.Count,
		TypeID:  queryArgs.TypeID,
		TypeIDs: toUint64s(queryArgs.TypeIDs),
	}
	if len(args) > 1 {
		req.Method = args[1]
	}
	var err error
	if queryArgs.Target != "" {
		if req.Target, err = parseAddress(queryArgs.Target); err != nil {
			return err
		}
	}
	if queryArgs.Address != "" {
		if req.Address, err = parseAddress(queryArgs.Address); err != nil {
			return err
		}
	}
	cli, err := http.New(queryArgs.Url, "/websocket")
	if err != nil {
		return err
	}
	var out json.RawMessage
	height, err := abciQuery(context.Background(), cli, path, req, &out)
	if err != nil {
		return err
	}
	dat, _ := json.MarshalIndent(struct {
		Height int64           `json:"height"`
		Result json.RawMessage `json:"result"`
	}{height, out}, "", "  ")
	fmt.Println(string(dat))
	return nil
}
