package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cometbft/cometbft/rpc/client/http"
	"github.com/spf13/cobra"
)

type accountArguments struct {
	Url     string
	Address string
}

var accountArgs accountArguments

var accountCmd = &cobra.Command{
	Use:   "account <address>",
	Short: "Show the nonce of an account",
	Args:  cobra.ExactArgs(1),
	RunE:  accountRun,
}

func init() {
	urlFlag(accountCmd, &accountArgs.Url)
}

func accountRun(cmd *cobra.Command, args []string) error {
	addr, err := parseAddress(args[0])
	if err != nil {
		return err
	}
	cli, err := http.New(accountArgs.Url, "/websocket")
	if err != nil {
		return err
	}
	act, err := queryAccount(context.Background(), cli, addr)
	if err != nil {
		return err
	}
	dat, _ := json.MarshalIndent(act, "", "  ")
	fmt.Println(string(dat))
	return nil
}
