package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

var listarbitrators = cli.Command{
	Name:      "arbitrators",
	Usage:     "list the arbitrator pool for a fiat currency",
	ArgsUsage: "<fiat_currency>",
	Action:    listArbitratorsAction,
}

func listArbitratorsAction(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return fmt.Errorf("fiat currency is missing")
	}

	resp, err := callDaemon(
		"GET", "/v1/operator/arbitrators/"+ctx.Args().First(), nil,
	)
	if err != nil {
		return err
	}

	printRespJSON(resp)

	return nil
}

var registerarbitrator = cli.Command{
	Name:  "registerarbitrator",
	Usage: "register an arbitrator into a fiat currency pool",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "currency",
			Usage:    "fiat currency of the pool, eg. USD",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "address",
			Usage:    "address of the arbitrator",
			Required: true,
		},
		&cli.UintFlag{
			Name:  "max-cases",
			Usage: "maximum number of concurrent disputes",
			Value: 10,
		},
	},
	Action: registerArbitratorAction,
}

func registerArbitratorAction(ctx *cli.Context) error {
	resp, err := callDaemon("POST", "/v1/operator/arbitrators", map[string]interface{}{
		"fiatCurrency":       ctx.String("currency"),
		"address":            ctx.String("address"),
		"maxConcurrentCases": ctx.Uint("max-cases"),
	})
	if err != nil {
		return err
	}

	printRespJSON(resp)

	return nil
}

var setarbitratoractive = cli.Command{
	Name:  "setarbitratoractive",
	Usage: "activate or deactivate an arbitrator without losing its track record",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "currency",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "address",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "active",
			Usage: "whether the arbitrator accepts new cases",
		},
	},
	Action: setArbitratorActiveAction,
}

func setArbitratorActiveAction(ctx *cli.Context) error {
	urlPath := fmt.Sprintf(
		"/v1/operator/arbitrators/%s/%s/active",
		ctx.String("currency"), ctx.String("address"),
	)
	resp, err := callDaemon("PUT", urlPath, map[string]interface{}{
		"active": ctx.Bool("active"),
	})
	if err != nil {
		return err
	}

	printRespJSON(resp)

	return nil
}

var reassignarbitrator = cli.Command{
	Name:      "reassignarbitrator",
	Usage:     "replace the arbitrator of a stuck disputed trade",
	ArgsUsage: "<trade_id>",
	Action:    reassignArbitratorAction,
}

func reassignArbitratorAction(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return fmt.Errorf("trade id is missing")
	}

	resp, err := callDaemon(
		"POST", "/v1/operator/trades/"+ctx.Args().First()+"/reassign", nil,
	)
	if err != nil {
		return err
	}

	printRespJSON(resp)

	return nil
}
