package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/catmcgee/kit-go/client"
	"github.com/urfave/cli/v2"
)

func relayCommands() *cli.Command {
	return &cli.Command{
		Name:  "relay",
		Usage: "HTTP client commands for a hosted submission relay",
		Subcommands: []*cli.Command{
			relaySubmitCommand(),
			relayGetCommand(),
			relayListCommand(),
		},
	}
}

func relayURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "relay-url",
		Aliases:  []string{"r"},
		Usage:    "Submission relay base URL",
		EnvVars:  []string{"RELAY_URL"},
		Required: true,
	}
}

func jqFlag() *cli.StringSliceFlag {
	return &cli.StringSliceFlag{
		Name:    "jq",
		Aliases: []string{"q"},
		Usage:   "jq filter(s) applied to the JSON output",
	}
}

// newRelayClient builds the relay client from the --relay-url flag.
func newRelayClient(c *cli.Context) *client.Client {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	return client.NewClient(c.String("relay-url"), httpClient, newLogger(c.String("log-level")))
}

func relaySubmitCommand() *cli.Command {
	return &cli.Command{
		Name:      "submit",
		Usage:     "Hand a signed, base64-encoded transaction to the relay ('-' reads stdin)",
		ArgsUsage: "WIRE_BASE64",
		Flags: []cli.Flag{
			relayURLFlag(),
			jqFlag(),
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one wire payload argument")
			}
			wire, err := readWirePayload(c)
			if err != nil {
				return err
			}

			sub, err := newRelayClient(c).Submit(c.Context, wire, c.String("commitment"))
			if err != nil {
				return fmt.Errorf("failed to submit transaction to relay: %w", err)
			}
			return printJSON(sub, c.StringSlice("jq"))
		},
	}
}

func relayGetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Fetch the status of a relayed transaction by signature",
		ArgsUsage: "SIGNATURE",
		Flags: []cli.Flag{
			relayURLFlag(),
			jqFlag(),
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one signature argument")
			}

			sub, err := newRelayClient(c).Get(c.Context, c.Args().First())
			if err != nil {
				return fmt.Errorf("failed to fetch submission: %w", err)
			}
			return printJSON(sub, c.StringSlice("jq"))
		},
	}
}

func relayListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List relayed transactions for a fee payer",
		Flags: []cli.Flag{
			relayURLFlag(),
			jqFlag(),
			&cli.StringFlag{
				Name:     "fee-payer",
				Usage:    "Fee payer address to filter by",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			subs, err := newRelayClient(c).List(c.Context, c.String("fee-payer"))
			if err != nil {
				return fmt.Errorf("failed to list submissions: %w", err)
			}
			return printJSON(subs, c.StringSlice("jq"))
		},
	}
}
