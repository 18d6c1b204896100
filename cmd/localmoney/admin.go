package main

import (
	"github.com/urfave/cli/v2"
)

var pausecmd = cli.Command{
	Name:   "pause",
	Usage:  "halt all trade operations, eg. during an incident",
	Action: pauseAction,
}

func pauseAction(ctx *cli.Context) error {
	resp, err := callDaemon("POST", "/v1/operator/pause", nil)
	if err != nil {
		return err
	}

	printRespJSON(resp)

	return nil
}

var resumecmd = cli.Command{
	Name:   "resume",
	Usage:  "resume trade operations after a pause",
	Action: resumeAction,
}

func resumeAction(ctx *cli.Context) error {
	resp, err := callDaemon("POST", "/v1/operator/resume", nil)
	if err != nil {
		return err
	}

	printRespJSON(resp)

	return nil
}

var getprotocolconfig = cli.Command{
	Name:   "getconfig",
	Usage:  "print the protocol configuration currently in use",
	Action: getConfigAction,
}

func getConfigAction(ctx *cli.Context) error {
	resp, err := callDaemon("GET", "/v1/operator/config", nil)
	if err != nil {
		return err
	}

	printRespJSON(resp)

	return nil
}

var updatefees = cli.Command{
	Name:  "updatefees",
	Usage: "update the protocol fee rates, expressed in basis points",
	Flags: []cli.Flag{
		&cli.UintFlag{Name: "burn", Usage: "burn fee in bps"},
		&cli.UintFlag{Name: "chain", Usage: "chain fee in bps"},
		&cli.UintFlag{Name: "warchest", Usage: "warchest fee in bps"},
		&cli.UintFlag{Name: "conversion", Usage: "conversion fee in bps"},
		&cli.UintFlag{Name: "arbitrator", Usage: "arbitration fee in bps"},
	},
	Action: updateFeesAction,
}

func updateFeesAction(ctx *cli.Context) error {
	resp, err := callDaemon("PUT", "/v1/operator/config/fees", map[string]interface{}{
		"burnBps":       ctx.Uint("burn"),
		"chainBps":      ctx.Uint("chain"),
		"warchestBps":   ctx.Uint("warchest"),
		"conversionBps": ctx.Uint("conversion"),
		"arbitratorBps": ctx.Uint("arbitrator"),
	})
	if err != nil {
		return err
	}

	printRespJSON(resp)

	return nil
}
