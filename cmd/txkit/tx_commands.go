package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/catmcgee/kit-go/config"
	"github.com/catmcgee/kit-go/events"
	"github.com/catmcgee/kit-go/signer"
	"github.com/catmcgee/kit-go/txkit"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/itchyny/gojq"
	"github.com/urfave/cli/v2"
)

func transferCommand() *cli.Command {
	return &cli.Command{
		Name:      "transfer",
		Usage:     "Build, sign, and submit a SOL transfer",
		ArgsUsage: "RECIPIENT_ADDRESS",
		Flags: []cli.Flag{
			&cli.Uint64Flag{
				Name:     "lamports",
				Aliases:  []string{"l"},
				Usage:    "Amount to transfer in lamports",
				Required: true,
			},
			&cli.Uint64Flag{
				Name:  "cu-limit",
				Usage: "Compute unit limit to request (0 to omit)",
			},
			&cli.Uint64Flag{
				Name:  "cu-price",
				Usage: "Compute unit price in micro-lamports (0 to omit)",
			},
			&cli.Uint64Flag{
				Name:  "max-retries",
				Usage: "RPC-level send retries (passed through verbatim)",
			},
			&cli.BoolFlag{
				Name:  "skip-preflight",
				Usage: "Skip the preflight simulation",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Print the signed wire payload instead of submitting",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one recipient address")
			}
			recipient, err := solana.PublicKeyFromBase58(c.Args().First())
			if err != nil {
				return fmt.Errorf("invalid recipient address: %w", err)
			}

			preparer, publisher, cfg, err := newPreparer(c)
			if err != nil {
				return err
			}
			if publisher != nil {
				defer publisher.Close()
			}

			keypair, err := loadKeypair(cfg)
			if err != nil {
				return err
			}

			transfer := system.NewTransferInstruction(
				c.Uint64("lamports"),
				keypair.Address(),
				recipient,
			).Build()

			req := txkit.PrepareRequest{
				Instructions: []solana.Instruction{transfer},
				Authority:    txkit.AuthoritySigner(keypair),
				Commitment:   rpc.CommitmentType(cfg.Commitment),
			}
			if v := c.Uint64("cu-limit"); v > 0 {
				req.ComputeUnitLimit = txkit.ComputeUnits(v)
			}
			if v := c.Uint64("cu-price"); v > 0 {
				req.ComputeUnitPrice = txkit.ComputeUnits(v)
			}

			prepared, err := preparer.Prepare(c.Context, req)
			if err != nil {
				return fmt.Errorf("failed to prepare transaction: %w", err)
			}

			if c.Bool("dry-run") {
				wire, err := preparer.ToWire(c.Context, prepared, nil)
				if err != nil {
					return fmt.Errorf("failed to encode transaction: %w", err)
				}
				fmt.Println(wire)
				return nil
			}

			sig, err := preparer.Send(c.Context, prepared, sendOptions(c, cfg))
			if err != nil {
				return fmt.Errorf("failed to send transaction: %w", err)
			}

			fmt.Println(sig.String())
			return nil
		},
	}
}

func prepareCommand() *cli.Command {
	return &cli.Command{
		Name:      "prepare",
		Usage:     "Prepare a SOL transfer and print the resolved transaction as JSON",
		ArgsUsage: "RECIPIENT_ADDRESS",
		Flags: []cli.Flag{
			&cli.Uint64Flag{
				Name:     "lamports",
				Aliases:  []string{"l"},
				Usage:    "Amount to transfer in lamports",
				Required: true,
			},
			&cli.Uint64Flag{
				Name:  "cu-limit",
				Usage: "Compute unit limit to request (0 to omit)",
			},
			&cli.Uint64Flag{
				Name:  "cu-price",
				Usage: "Compute unit price in micro-lamports (0 to omit)",
			},
			jqFlag(),
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one recipient address")
			}
			recipient, err := solana.PublicKeyFromBase58(c.Args().First())
			if err != nil {
				return fmt.Errorf("invalid recipient address: %w", err)
			}

			preparer, publisher, cfg, err := newPreparer(c)
			if err != nil {
				return err
			}
			if publisher != nil {
				defer publisher.Close()
			}

			keypair, err := loadKeypair(cfg)
			if err != nil {
				return err
			}

			transfer := system.NewTransferInstruction(
				c.Uint64("lamports"),
				keypair.Address(),
				recipient,
			).Build()

			req := txkit.PrepareRequest{
				Instructions: []solana.Instruction{transfer},
				Authority:    txkit.AuthoritySigner(keypair),
				Commitment:   rpc.CommitmentType(cfg.Commitment),
			}
			if v := c.Uint64("cu-limit"); v > 0 {
				req.ComputeUnitLimit = txkit.ComputeUnits(v)
			}
			if v := c.Uint64("cu-price"); v > 0 {
				req.ComputeUnitPrice = txkit.ComputeUnits(v)
			}

			prepared, err := preparer.Prepare(c.Context, req)
			if err != nil {
				return fmt.Errorf("failed to prepare transaction: %w", err)
			}

			summary := map[string]interface{}{
				"fee_payer":               prepared.FeePayer().String(),
				"mode":                    string(prepared.Mode()),
				"version":                 prepared.Version().String(),
				"commitment":              string(prepared.Commitment()),
				"blockhash":               prepared.Lifetime().Blockhash.String(),
				"last_valid_block_height": prepared.Lifetime().LastValidBlockHeight,
				"instruction_count":       len(prepared.Instructions()),
			}
			if limit := prepared.ComputeUnitLimit(); limit != nil {
				summary["compute_unit_limit"] = *limit
			}
			if price := prepared.ComputeUnitPrice(); price != nil {
				summary["compute_unit_price"] = *price
			}

			return printJSON(summary, c.StringSlice("jq"))
		},
	}
}

func sendWireCommand() *cli.Command {
	return &cli.Command{
		Name:      "send-wire",
		Usage:     "Submit a signed, base64-encoded transaction ('-' reads stdin)",
		ArgsUsage: "WIRE_BASE64",
		Flags: []cli.Flag{
			&cli.Uint64Flag{
				Name:  "max-retries",
				Usage: "RPC-level send retries (passed through verbatim)",
			},
			&cli.BoolFlag{
				Name:  "skip-preflight",
				Usage: "Skip the preflight simulation",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one wire payload argument")
			}
			wire, err := readWirePayload(c)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			opts := sendOptions(c, cfg)
			txOpts := rpc.TransactionOpts{
				Encoding:            solana.EncodingBase64,
				SkipPreflight:       opts.SkipPreflight,
				PreflightCommitment: rpc.CommitmentType(cfg.Commitment),
			}
			if opts.MaxRetries != nil {
				retries := uint(min(*opts.MaxRetries, math.MaxUint))
				txOpts.MaxRetries = &retries
			}

			rpcClient := txkit.NewRPCClient(cfg.SolanaRPCURL)
			sig, err := rpcClient.SendEncodedTransactionWithOpts(c.Context, wire, txOpts)
			if err != nil {
				return fmt.Errorf("failed to send transaction: %w", err)
			}

			fmt.Println(sig.String())
			return nil
		},
	}
}

// loadConfig resolves the effective configuration. Explicit flag values are
// exported into the environment first, so config.Load's validation and
// defaults apply to flag and env input alike, with flags winning.
func loadConfig(c *cli.Context) (*config.Config, error) {
	flagEnv := map[string]string{
		"rpc-url":    "SOLANA_RPC_URL",
		"commitment": "SOLANA_COMMITMENT",
		"keypair":    "SOLANA_KEYPAIR_PATH",
		"nats-url":   "NATS_URL",
		"log-level":  "LOG_LEVEL",
	}
	for flagName, envName := range flagEnv {
		if v := c.String(flagName); v != "" {
			os.Setenv(envName, v)
		}
	}
	return config.Load()
}

// sendOptions merges per-command submission flags with configuration
// defaults. Flags win when set.
func sendOptions(c *cli.Context, cfg *config.Config) *txkit.SendOptions {
	opts := &txkit.SendOptions{
		SkipPreflight: cfg.SkipPreflight || c.Bool("skip-preflight"),
	}
	if v := c.Uint64("max-retries"); v > 0 {
		opts.MaxRetries = &v
	} else if cfg.MaxRetries > 0 {
		retries := uint64(cfg.MaxRetries)
		opts.MaxRetries = &retries
	}
	return opts
}

// readWirePayload returns the base64 payload from the first argument,
// reading stdin when the argument is "-".
func readWirePayload(c *cli.Context) (string, error) {
	wire := c.Args().First()
	if wire == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		wire = strings.TrimSpace(string(data))
	}
	return wire, nil
}

// loadKeypair loads the signing keypair from the resolved configuration.
func loadKeypair(cfg *config.Config) (*signer.Keypair, error) {
	if cfg.KeypairPath == "" {
		return nil, fmt.Errorf("keypair is required (set --keypair or SOLANA_KEYPAIR_PATH)")
	}
	return signer.KeypairFromFile(cfg.KeypairPath)
}

// newPreparer builds a Preparer from the resolved configuration. It also
// seeds the process-wide default commitment so library calls made without
// an explicit commitment agree with the CLI's. The returned publisher is
// nil unless a NATS URL was configured.
func newPreparer(c *cli.Context) (*txkit.Preparer, events.Publisher, *config.Config, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, nil, err
	}

	txkit.SetDefaultCommitment(rpc.CommitmentType(cfg.Commitment))
	logger := newLogger(cfg.LogLevel)

	var publisher events.Publisher
	if cfg.NATSURL != "" {
		p, err := events.NewPublisher(cfg.NATSURL, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create NATS publisher: %w", err)
		}
		publisher = p
	}

	preparer := txkit.NewPreparer(txkit.NewRPCClient(cfg.SolanaRPCURL), cfg.SolanaRPCURL, nil, publisher, logger)
	return preparer, publisher, cfg, nil
}

// newLogger creates a JSON logger writing to stderr so command output on
// stdout stays machine-readable.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// printJSON marshals v and prints it, optionally running each jq filter
// over the decoded document first.
func printJSON(v interface{}, jqFilters []string) error {
	if len(jqFilters) == 0 {
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal output: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	// gojq operates on generic JSON values; round-trip through encoding.
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to decode output: %w", err)
	}

	for _, filter := range jqFilters {
		query, err := gojq.Parse(filter)
		if err != nil {
			return fmt.Errorf("failed to parse jq filter %q: %w", filter, err)
		}
		code, err := gojq.Compile(query)
		if err != nil {
			return fmt.Errorf("failed to compile jq filter %q: %w", filter, err)
		}

		iter := code.Run(doc)
		for {
			result, ok := iter.Next()
			if !ok {
				break
			}
			if err, isErr := result.(error); isErr {
				return fmt.Errorf("jq filter %q failed: %w", filter, err)
			}
			out, err := json.Marshal(result)
			if err != nil {
				return fmt.Errorf("failed to marshal jq result: %w", err)
			}
			fmt.Println(string(out))
		}
	}
	return nil
}
