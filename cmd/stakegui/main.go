package main

import (
	"context"
	"os"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/ligun0805/stake-console/internal/config"
	"github.com/ligun0805/stake-console/internal/logging"
	"github.com/ligun0805/stake-console/internal/metrics"
	"github.com/ligun0805/stake-console/internal/stakecore"
)

func main() {
	hideConsoleWindow()

	_ = godotenv.Load()
	_ = godotenv.Overload(".env.local")

	cfgPath := pflag.String("config", "", "optional config file (yaml, toml or json)")
	pflag.String("rpc", "", "RPC endpoint, overrides RPC_URL")
	pflag.Int64("chain-id", 0, "required chain id, overrides CHAIN_ID")
	pflag.String("keystore", "", "V3 keystore file, overrides KEYSTORE_PATH")
	pflag.String("log-level", "", "log level, overrides LOG_LEVEL")
	pflag.Parse()

	a := app.NewWithID("io.stcex.stakeconsole")
	curTheme := makeTheme("dark", false)
	a.Settings().SetTheme(curTheme)
	w := a.NewWindow("STCEx Stake Console")
	w.Resize(fyne.NewSize(980, 720))

	cfg, err := config.Load(*cfgPath, pflag.CommandLine)
	if err == nil {
		err = run(a, w, cfg, &curTheme)
	}
	if err != nil {
		w.SetContent(widget.NewLabel("Configuration error"))
		dialog.ShowError(err, w)
		w.SetOnClosed(a.Quit)
	}
	w.ShowAndRun()
}

func run(a fyne.App, w fyne.Window, cfg config.Settings, curTheme *fyne.Theme) error {
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr, logSink{})
	if err != nil {
		return err
	}
	srv := metrics.Init(cfg.MetricsPort)
	ctx, cancel := context.WithCancel(context.Background())

	status := widget.NewLabel("Not connected")
	status.Wrapping = fyne.TextWrapWord
	d := newGUIDisplay(status)

	passEntry := widget.NewPasswordEntry()
	passEntry.SetPlaceHolder("keystore password")
	mgr := stakecore.NewManager(stakecore.Options{
		Settings: cfg,
		Display:  d,
		Logger:   log,
		Open:     stakecore.KeyedOpener(cfg, func() (string, error) { return passEntry.Text, nil }),
	})

	contractCard := widget.NewCard("Contract", "", widget.NewForm(
		widget.NewFormItem("Address", container.NewHBox(d.label(stakecore.FieldContract), d.link(stakecore.FieldContractLink, "Explorer"))),
		widget.NewFormItem("Network", d.label(stakecore.FieldNetwork)),
		widget.NewFormItem("Owner", d.label(stakecore.FieldOwner)),
		widget.NewFormItem("STCEx per USDT", d.label(stakecore.FieldRateSTCExPerUSDT)),
		widget.NewFormItem("STC per STCEx", d.label(stakecore.FieldRateSTCPerSTCEx)),
		widget.NewFormItem("Min stake (STCEx)", d.label(stakecore.FieldMinStake)),
		widget.NewFormItem("Lock", d.label(stakecore.FieldLock)),
		widget.NewFormItem("Reward period", d.label(stakecore.FieldPeriod)),
		widget.NewFormItem("Reward (bps)", d.label(stakecore.FieldRewardBps)),
	))

	walletForm := widget.NewForm(
		widget.NewFormItem("Address", container.NewHBox(d.label(stakecore.FieldWallet), d.link(stakecore.FieldWalletLink, "Explorer"))),
		widget.NewFormItem("USDT", d.label(stakecore.FieldBalanceUSDT)),
		widget.NewFormItem("STCEx", d.label(stakecore.FieldBalanceSTCEx)),
		widget.NewFormItem("STC", d.label(stakecore.FieldBalanceSTC)),
	)
	if cfg.PrivateKeyHex == "" && cfg.KeystorePath != "" && cfg.KeystorePassword == "" {
		walletForm.Append("Keystore password", passEntry)
	}
	walletCard := widget.NewCard("Wallet", "", walletForm)

	stakeCard := widget.NewCard("Stake", "", widget.NewForm(
		widget.NewFormItem("Principal (STC)", d.label(stakecore.FieldPrincipal)),
		widget.NewFormItem("Accrued reward (STC)", d.label(stakecore.FieldAccrued)),
		widget.NewFormItem("Periods", d.label(stakecore.FieldPeriods)),
		widget.NewFormItem("Unlocks in", d.label(stakecore.FieldUnlockCountdown)),
		widget.NewFormItem("Unlock at", d.label(stakecore.FieldUnlockAt)),
		widget.NewFormItem("Matured", d.label(stakecore.FieldMatured)),
	))

	usdtIn := widget.NewEntry()
	usdtIn.SetPlaceHolder("USDT amount")
	stcexIn := widget.NewEntry()
	stcexIn.SetPlaceHolder("STCEx amount")

	// handlers block on confirmation, so each click runs off the UI goroutine
	async := func(fn func() error) func() { return func() { go func() { _ = fn() }() } }
	withAmount := func(e *widget.Entry, fn func(context.Context, string) error) func() {
		return func() {
			amt := e.Text
			go func() { _ = fn(ctx, amt) }()
		}
	}

	connectBtn := widget.NewButtonWithIcon("Connect", theme.LoginIcon(), async(func() error { return mgr.Connect(ctx) }))
	connectBtn.Importance = widget.HighImportance
	approveUSDTBtn := widget.NewButton("Approve USDT", withAmount(usdtIn, mgr.ApproveUSDT))
	swapBtn := widget.NewButtonWithIcon("Swap USDT → STCEx", theme.MediaReplayIcon(), withAmount(usdtIn, mgr.Swap))
	approveSTCExBtn := widget.NewButton("Approve STCEx", withAmount(stcexIn, mgr.ApproveSTCEx))
	stakeBtn := widget.NewButtonWithIcon("Stake STCEx", theme.UploadIcon(), withAmount(stcexIn, mgr.Stake))
	withdrawBtn := widget.NewButtonWithIcon("Withdraw All", theme.DownloadIcon(), async(func() error { return mgr.WithdrawAll(ctx) }))
	refreshBtn := widget.NewButtonWithIcon("Refresh", theme.ViewRefreshIcon(), async(func() error { return mgr.Refresh(ctx) }))
	logsBtn := widget.NewButtonWithIcon("Logs", theme.ListIcon(), func() { ensureLogWindow(a).Show() })

	d.actions = []*widget.Button{connectBtn, approveUSDTBtn, swapBtn, approveSTCExBtn, stakeBtn, refreshBtn}
	d.withdraw = withdrawBtn
	d.SetWithdrawEnabled(false)

	themeSelect := widget.NewSelect([]string{"Dark", "Light"}, func(s string) {
		mode := "dark"
		if s == "Light" {
			mode = "light"
		}
		*curTheme = makeTheme(mode, (*curTheme).(*appTheme).compact)
		a.Settings().SetTheme(*curTheme)
	})
	themeSelect.SetSelected("Dark")
	compactCheck := widget.NewCheck("Compact", func(b bool) {
		*curTheme = makeTheme((*curTheme).(*appTheme).mode, b)
		a.Settings().SetTheme(*curTheme)
	})

	actionsCard := widget.NewCard("Actions", "", container.NewVBox(
		container.NewBorder(nil, nil, nil, container.NewHBox(approveUSDTBtn, swapBtn), usdtIn),
		container.NewBorder(nil, nil, nil, container.NewHBox(approveSTCExBtn, stakeBtn), stcexIn),
		container.NewHBox(withdrawBtn, refreshBtn),
	))

	top := container.NewBorder(nil, nil, nil, container.NewHBox(themeSelect, compactCheck, logsBtn), connectBtn)
	footer := container.NewBorder(nil, nil, nil, d.link(stakecore.FieldLastTxLink, "Last transaction"), status)
	body := container.NewVScroll(container.NewVBox(
		container.NewGridWithColumns(2, contractCard, container.NewVBox(walletCard, stakeCard)),
		actionsCard,
	))
	w.SetContent(container.NewBorder(top, footer, nil, nil, body))

	w.SetOnClosed(func() {
		cancel()
		mgr.Close()
		sctx, scancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer scancel()
		metrics.Shutdown(sctx, srv)
		logMu.Lock()
		lw := logWin
		logMu.Unlock()
		if lw != nil {
			lw.Close()
		}
	})

	_ = mgr.RefreshStatic(ctx)
	return nil
}
