package main

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	xdr "github.com/nullstyle/go-xdr/xdr3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mpcith/ssith/config"
	"github.com/mpcith/ssith/proving"
	"github.com/mpcith/ssith/shared"
	"github.com/mpcith/ssith/verifying"
)

var (
	cfg = config.DefaultConfig()

	datadir   string
	proofName string
	logLevel  string

	weightsArg string
	targetArg  uint64
	witnessArg string

	inspectReps int
)

func main() {
	root := &cobra.Command{
		Use:           "ssithcli",
		Short:         "subset-sum MPC-in-the-head prover/verifier",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.UintVar(&cfg.Dimension, "dimension", cfg.Dimension, "subset-sum dimension")
	pf.UintVar(&cfg.Parties, "parties", cfg.Parties, "virtual parties per repetition")
	pf.UintVar(&cfg.Prepared, "prepared", cfg.Prepared, "prepared repetitions")
	pf.UintVar(&cfg.Executed, "executed", cfg.Executed, "executed repetitions")
	pf.UintVar(&cfg.ShareBits, "sharebits", cfg.ShareBits, "mask share bit width")
	pf.StringVar(&datadir, "datadir", defaultDataDir(), "filesystem datadir path")
	pf.StringVar(&proofName, "name", "demo", "name proofs are persisted under")
	pf.StringVar(&logLevel, "logLevel", "info", "log level (debug, info, warn, error)")

	proveCmd := &cobra.Command{
		Use:   "prove",
		Short: "generate a proof and persist it with its instance",
		RunE:  runProve,
	}
	proveCmd.Flags().StringVar(&weightsArg, "weights", "", "comma-separated weights (random instance if empty)")
	proveCmd.Flags().Uint64Var(&targetArg, "target", 0, "target value (with --weights)")
	proveCmd.Flags().StringVar(&witnessArg, "witness", "", "selection bit string, e.g. 1010 (with --weights)")

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "verify a persisted proof against its persisted instance",
		RunE:  runVerify,
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "dump the prover's internal per-repetition state",
		RunE:  runInspect,
	}
	inspectCmd.Flags().IntVar(&inspectReps, "reps", 1, "number of repetitions to dump")

	root.AddCommand(proveCmd, verifyCmd, inspectCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ssith"
	}
	return filepath.Join(home, ".ssith")
}

func newLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

func buildPair() (shared.Witness, *shared.Instance, error) {
	if weightsArg == "" {
		return shared.NewRandomPair(rand.Reader, cfg)
	}

	fields := strings.Split(weightsArg, ",")
	weights := make([]uint64, 0, len(fields))
	for _, f := range fields {
		w, err := strconv.ParseUint(strings.TrimSpace(f), 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing weight %q: %w", f, err)
		}
		weights = append(weights, w)
	}

	witness := make(shared.Witness, 0, len(witnessArg))
	for _, c := range witnessArg {
		switch c {
		case '0':
			witness = append(witness, 0)
		case '1':
			witness = append(witness, 1)
		default:
			return nil, nil, fmt.Errorf("witness must be a bit string, got %q", witnessArg)
		}
	}

	cfg.Dimension = uint(len(weights))
	return witness, shared.NewInstance(weights, targetArg), nil
}

func runProve(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	witness, instance, err := buildPair()
	if err != nil {
		return err
	}

	prover, err := proving.NewProver(cfg, instance, witness, proving.WithLogger(logger))
	if err != nil {
		return err
	}
	proof, err := prover.Generate(cmd.Context())
	if err != nil {
		return err
	}

	if err := persistInstance(instance); err != nil {
		return err
	}
	if err := shared.PersistProof(datadir, proofName, proof); err != nil {
		return err
	}

	data, err := proof.Bytes()
	if err != nil {
		return err
	}
	logger.Info("proof persisted",
		zap.String("datadir", datadir),
		zap.String("name", proofName),
		zap.Int("size", len(data)),
	)
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	instance, err := fetchInstance()
	if err != nil {
		return err
	}
	proof, err := shared.FetchProof(datadir, proofName)
	if err != nil {
		return err
	}

	if err := verifying.Verify(cfg, instance, proof, verifying.WithLogger(logger)); err != nil {
		logger.Warn("proof rejected", zap.Error(err))
		return err
	}
	logger.Info("proof accepted")
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	witness, instance, err := buildPair()
	if err != nil {
		return err
	}
	prover, err := proving.NewProver(cfg, instance, witness, proving.WithLogger(logger))
	if err != nil {
		return err
	}

	state, root, err := prover.Commit(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("commit root: %x\n", root)
	n := inspectReps
	if n > state.NumRepetitions() {
		n = state.NumRepetitions()
	}
	for e := 0; e < n; e++ {
		spew.Dump(state.DumpRepetition(e))
	}
	return nil
}

func instanceFilename() string {
	return filepath.Join(datadir, proofName+".instance")
}

func persistInstance(instance *shared.Instance) error {
	if err := os.MkdirAll(datadir, 0o700); err != nil {
		return err
	}
	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, instance); err != nil {
		return err
	}
	return os.WriteFile(instanceFilename(), buf.Bytes(), 0o600)
}

func fetchInstance() (*shared.Instance, error) {
	data, err := os.ReadFile(instanceFilename())
	if err != nil {
		return nil, err
	}
	instance := new(shared.Instance)
	if _, err := xdr.Unmarshal(bytes.NewReader(data), instance); err != nil {
		return nil, err
	}
	return instance, nil
}
