package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "txkit",
		Usage: "Solana transaction preparation and submission CLI",
		Description: `A command-line tool for building, signing, and submitting Solana transactions.

Use this CLI to prepare transactions with compute budget instructions, inspect
the resolved transaction before signing, and submit signed payloads.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Commands: []*cli.Command{
			transferCommand(),
			prepareCommand(),
			sendWireCommand(),
			relayCommands(),
		},
		// Global flags available to all commands
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "rpc-url",
				Usage:   "Solana RPC endpoint URL",
				EnvVars: []string{"SOLANA_RPC_URL"},
			},
			&cli.StringFlag{
				Name:    "commitment",
				Value:   "confirmed",
				Usage:   "Commitment level (processed, confirmed, finalized)",
				EnvVars: []string{"SOLANA_COMMITMENT"},
			},
			&cli.StringFlag{
				Name:    "keypair",
				Usage:   "Path to a solana-keygen JSON keypair file",
				EnvVars: []string{"SOLANA_KEYPAIR_PATH"},
			},
			&cli.StringFlag{
				Name:    "nats-url",
				Usage:   "NATS URL for submission events (empty disables publishing)",
				EnvVars: []string{"NATS_URL"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
