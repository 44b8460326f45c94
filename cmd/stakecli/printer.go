package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/ligun0805/stake-console/internal/stakecore"
)

var (
	pendingColor = color.New(color.FgYellow)
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed, color.Bold)
	headColor    = color.New(color.FgCyan, color.Bold)
)

type section struct {
	title  string
	fields []stakecore.Field
}

var sections = []section{
	{"Contract", []stakecore.Field{
		stakecore.FieldContract, stakecore.FieldContractLink, stakecore.FieldNetwork, stakecore.FieldOwner,
		stakecore.FieldRateSTCExPerUSDT, stakecore.FieldRateSTCPerSTCEx, stakecore.FieldMinStake,
		stakecore.FieldLock, stakecore.FieldPeriod, stakecore.FieldRewardBps,
	}},
	{"Wallet", []stakecore.Field{
		stakecore.FieldWallet, stakecore.FieldWalletLink,
		stakecore.FieldBalanceUSDT, stakecore.FieldBalanceSTCEx, stakecore.FieldBalanceSTC,
	}},
	{"Stake", []stakecore.Field{
		stakecore.FieldPrincipal, stakecore.FieldAccrued, stakecore.FieldPeriods,
		stakecore.FieldUnlockCountdown, stakecore.FieldUnlockAt, stakecore.FieldMatured,
	}},
	{"Last transaction", []stakecore.Field{stakecore.FieldLastTx, stakecore.FieldLastTxLink}},
}

var labels = map[stakecore.Field]string{
	stakecore.FieldContract:         "Address",
	stakecore.FieldContractLink:     "Explorer",
	stakecore.FieldNetwork:          "Network",
	stakecore.FieldOwner:            "Owner",
	stakecore.FieldRateSTCExPerUSDT: "STCEx per USDT",
	stakecore.FieldRateSTCPerSTCEx:  "STC per STCEx",
	stakecore.FieldMinStake:         "Min stake (STCEx)",
	stakecore.FieldLock:             "Lock",
	stakecore.FieldPeriod:           "Reward period",
	stakecore.FieldRewardBps:        "Reward (bps)",
	stakecore.FieldWallet:           "Address",
	stakecore.FieldWalletLink:       "Explorer",
	stakecore.FieldBalanceUSDT:      "USDT",
	stakecore.FieldBalanceSTCEx:     "STCEx",
	stakecore.FieldBalanceSTC:       "STC",
	stakecore.FieldPrincipal:        "Principal (STC)",
	stakecore.FieldAccrued:          "Accrued reward (STC)",
	stakecore.FieldPeriods:          "Periods",
	stakecore.FieldUnlockCountdown:  "Unlocks in",
	stakecore.FieldUnlockAt:         "Unlock at",
	stakecore.FieldMatured:          "Matured",
	stakecore.FieldLastTx:           "Hash",
	stakecore.FieldLastTxLink:       "Explorer",
}

// printer is the terminal display: status lines go out as they happen,
// fields are collected and printed by snapshot.
type printer struct {
	mu       sync.Mutex
	w        io.Writer
	fields   map[stakecore.Field]string
	withdraw bool
	live     bool
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w, fields: map[stakecore.Field]string{}}
}

func (p *printer) Set(f stakecore.Field, v string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	old, seen := p.fields[f]
	p.fields[f] = v
	if p.live && (!seen || old != v) && (f == stakecore.FieldUnlockCountdown || f == stakecore.FieldMatured) {
		fmt.Fprintf(p.w, "\r%-22s %s\n", labels[f]+":", v)
	}
}

func (p *printer) SetWithdrawEnabled(b bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.withdraw = b
}

// SetBusy is a no-op: a command runs one action at a time.
func (p *printer) SetBusy(bool) {}

func (p *printer) SetStatus(level stakecore.Level, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch level {
	case stakecore.LevelPending:
		pendingColor.Fprintln(p.w, "… "+text)
	case stakecore.LevelSuccess:
		successColor.Fprintln(p.w, "✓ "+text)
	case stakecore.LevelError:
		errorColor.Fprintln(p.w, "✗ "+text)
	default:
		fmt.Fprintln(p.w, text)
	}
}

// follow toggles printing countdown and maturity changes as they arrive.
func (p *printer) follow(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.live = on
}

func (p *printer) snapshot() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range sections {
		printed := false
		for _, f := range s.fields {
			v, ok := p.fields[f]
			if !ok {
				continue
			}
			if !printed {
				headColor.Fprintf(p.w, "\n== %s ==\n", s.title)
				printed = true
			}
			fmt.Fprintf(p.w, "%-22s %s\n", labels[f]+":", v)
		}
	}
	if _, ok := p.fields[stakecore.FieldMatured]; ok {
		state := "disabled"
		if p.withdraw {
			state = "enabled"
		}
		fmt.Fprintf(p.w, "%-22s %s\n", "Withdraw:", state)
	}
}
