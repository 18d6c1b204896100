package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

var listtrades = cli.Command{
	Name:  "trades",
	Usage: "get a list of trades, optionally filtered by trader address or state",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "trader",
			Usage: "only list trades where this address is buyer or seller",
		},
		&cli.StringFlag{
			Name:  "state",
			Usage: "only list trades in this state, eg. escrow_funded",
		},
	},
	Action: listTradesAction,
}

func listTradesAction(ctx *cli.Context) error {
	urlPath := "/v1/trades"
	if trader := ctx.String("trader"); trader != "" {
		urlPath += "?trader=" + trader
	} else if state := ctx.String("state"); state != "" {
		urlPath += "?state=" + state
	}

	resp, err := callDaemon("GET", urlPath, nil)
	if err != nil {
		return err
	}

	printRespJSON(resp)

	return nil
}

var gettrade = cli.Command{
	Name:      "trade",
	Usage:     "get a single trade by id",
	ArgsUsage: "<id>",
	Action:    getTradeAction,
}

func getTradeAction(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return fmt.Errorf("trade id is missing")
	}

	resp, err := callDaemon("GET", "/v1/trades/"+ctx.Args().First(), nil)
	if err != nil {
		return err
	}

	printRespJSON(resp)

	return nil
}
