package main

import (
	"context"
	"fmt"

	"github.com/ligun0805/stake-console/internal/wallet"
)

func runConfig(_ context.Context, a *app, _ []string) error {
	c := a.cfg
	w := a.out.w
	fmt.Fprintln(w, "=== CONFIG ===")
	fmt.Fprintln(w, "RPC_URL           :", c.RPCURL)
	fmt.Fprintln(w, "SWITCH_RPC_URL    :", orDash(c.SwitchRPCURL))
	fmt.Fprintln(w, "CHAIN_ID          :", c.ChainID)
	fmt.Fprintln(w, "CHAIN_NAME        :", c.ChainName)
	fmt.Fprintln(w, "EXPLORER          :", c.Explorer)
	fmt.Fprintln(w, "CONTRACT          :", c.Contract)
	fmt.Fprintln(w, "USDT              :", c.USDT)
	fmt.Fprintln(w, "STCEX             :", c.STCEx)
	fmt.Fprintln(w, "STC               :", c.STC)
	fmt.Fprintln(w, "PRIVATE_KEY       :", secret(c.PrivateKeyHex))
	fmt.Fprintln(w, "KEYSTORE_PATH     :", orDash(c.KeystorePath))
	fmt.Fprintln(w, "KEYSTORE_PASSWORD :", secret(c.KeystorePassword))
	fmt.Fprintln(w, "TICK_INTERVAL     :", c.TickInterval)
	fmt.Fprintln(w, "TIMEZONE          :", c.Location())
	fmt.Fprintln(w, "LOG_LEVEL         :", c.LogLevel, "/", c.LogFormat)
	fmt.Fprintln(w, "METRICS_PORT      :", c.MetricsPort)
	fmt.Fprintln(w, "==============")
	return nil
}

func runStatus(ctx context.Context, a *app, _ []string) error {
	if err := a.connect(ctx); err != nil {
		return err
	}
	a.mgr.StopTicker()
	a.out.snapshot()
	return nil
}

func runApproveUSDT(ctx context.Context, a *app, args []string) error {
	return a.act(ctx, func() error { return a.mgr.ApproveUSDT(ctx, args[0]) })
}

func runSwap(ctx context.Context, a *app, args []string) error {
	return a.act(ctx, func() error { return a.mgr.Swap(ctx, args[0]) })
}

func runApproveSTCEx(ctx context.Context, a *app, args []string) error {
	return a.act(ctx, func() error { return a.mgr.ApproveSTCEx(ctx, args[0]) })
}

func runStake(ctx context.Context, a *app, args []string) error {
	return a.act(ctx, func() error { return a.mgr.Stake(ctx, args[0]) })
}

func runWithdraw(ctx context.Context, a *app, _ []string) error {
	return a.act(ctx, func() error { return a.mgr.WithdrawAll(ctx) })
}

// act connects, runs one handler and prints the resulting view.
func (a *app) act(ctx context.Context, fn func() error) error {
	if err := a.connect(ctx); err != nil {
		return err
	}
	a.mgr.StopTicker()
	err := fn()
	a.out.snapshot()
	return err
}

func runWatch(ctx context.Context, a *app, _ []string) error {
	if err := a.connect(ctx); err != nil {
		return err
	}
	a.out.snapshot()
	a.out.follow(true)
	fmt.Fprintln(a.out.w, "watching unlock countdown, Ctrl-C to stop")
	a.log.Debug().Dur("every", a.cfg.TickInterval).Msg("watch started")
	<-ctx.Done()
	a.mgr.StopTicker()
	a.log.Debug().Msg("watch stopped")
	a.out.follow(false)
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func secret(s string) string {
	if s == "" {
		return "-"
	}
	return wallet.MaskHex(s)
}
