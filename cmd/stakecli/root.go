package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ligun0805/stake-console/internal/config"
	"github.com/ligun0805/stake-console/internal/logging"
	"github.com/ligun0805/stake-console/internal/metrics"
	"github.com/ligun0805/stake-console/internal/stakecore"
)

// app is what every subcommand runs against.
type app struct {
	cfg     config.Settings
	log     zerolog.Logger
	out     *printer
	mgr     *stakecore.Manager
	metrics *http.Server
}

type runFunc func(ctx context.Context, a *app, args []string) error

func newRootCmd() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:           "stakecli",
		Short:         "Inspect the STCEx stake contract and submit approve, swap, stake and withdraw transactions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "optional config file (yaml, toml or json)")
	pf.String("rpc", "", "RPC endpoint, overrides RPC_URL")
	pf.Int64("chain-id", 0, "required chain id, overrides CHAIN_ID")
	pf.String("keystore", "", "V3 keystore file, overrides KEYSTORE_PATH")
	pf.String("log-level", "", "trace, debug, info, warn or error; overrides LOG_LEVEL")

	with := func(fn runFunc) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, cfgPath)
			if err != nil {
				cmd.PrintErrln("Error:", err)
				return err
			}
			defer a.close()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return fn(ctx, a, args)
		}
	}

	root.AddCommand(
		&cobra.Command{Use: "config", Short: "Print the effective configuration", Args: cobra.NoArgs, RunE: with(runConfig)},
		&cobra.Command{Use: "status", Short: "Connect and print contract, balances and stake info", Args: cobra.NoArgs, RunE: with(runStatus)},
		&cobra.Command{Use: "approve-usdt AMOUNT", Short: "Approve USDT for the stake contract", Args: cobra.ExactArgs(1), RunE: with(runApproveUSDT)},
		&cobra.Command{Use: "swap AMOUNT", Short: "Swap USDT to STCEx (approves USDT first when needed)", Args: cobra.ExactArgs(1), RunE: with(runSwap)},
		&cobra.Command{Use: "approve-stcex AMOUNT", Short: "Approve STCEx for the stake contract", Args: cobra.ExactArgs(1), RunE: with(runApproveSTCEx)},
		&cobra.Command{Use: "stake AMOUNT", Short: "Stake STCEx (approves STCEx first when needed)", Args: cobra.ExactArgs(1), RunE: with(runStake)},
		&cobra.Command{Use: "withdraw", Short: "Withdraw principal and reward after maturity", Args: cobra.NoArgs, RunE: with(runWithdraw)},
		&cobra.Command{Use: "watch", Short: "Connect and follow the unlock countdown until interrupted", Args: cobra.NoArgs, RunE: with(runWatch)},
	)
	return root
}

func newApp(cmd *cobra.Command, cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath, cmd.Flags())
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	out := newPrinter(cmd.OutOrStdout())
	a := &app{cfg: cfg, log: log, out: out, metrics: metrics.Init(cfg.MetricsPort)}
	a.mgr = stakecore.NewManager(stakecore.Options{
		Settings: cfg,
		Display:  out,
		Logger:   log,
		Open:     stakecore.KeyedOpener(cfg, func() (string, error) { return readPassword(cmd.ErrOrStderr(), "Keystore password: ") }),
	})
	return a, nil
}

func (a *app) close() {
	a.mgr.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	metrics.Shutdown(ctx, a.metrics)
}

// connect shows the contract first so it is visible even when connecting fails.
func (a *app) connect(ctx context.Context) error {
	_ = a.mgr.RefreshStatic(ctx)
	if err := a.mgr.Connect(ctx); err != nil {
		a.out.snapshot()
		return err
	}
	return nil
}
