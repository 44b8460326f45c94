package stakecore

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sourcegraph/conc"

	"github.com/ligun0805/stake-console/internal/contracts"
	"github.com/ligun0805/stake-console/internal/format"
)

// batch fans reads out and applies every successful one after all of them
// have finished. A failed read leaves its field untouched.
type batch struct {
	wg      conc.WaitGroup
	mu      sync.Mutex
	applies []func()
	errs    []error
}

func fetch[T any](b *batch, read func() (T, error), apply func(T)) {
	b.wg.Go(func() {
		v, err := read()
		b.mu.Lock()
		defer b.mu.Unlock()
		if err != nil {
			b.errs = append(b.errs, err)
			return
		}
		b.applies = append(b.applies, func() { apply(v) })
	})
}

// wait blocks until every read is done and joins their errors.
func (b *batch) wait() error {
	b.wg.Wait()
	return errors.Join(b.errs...)
}

func (b *batch) apply() {
	for _, f := range b.applies {
		f()
	}
}

func (b *batch) run() error {
	err := b.wait()
	b.apply()
	return err
}

// RefreshStatic shows the contract, network and fixed contract parameters.
// Without a session only the configured contract and network are shown.
func (m *Manager) RefreshStatic(ctx context.Context) error {
	m.display.Set(FieldContract, m.addrs.Stake.Hex())
	m.display.Set(FieldContractLink, m.addressLink(m.addrs.Stake))

	s := m.session.Load()
	if s == nil {
		m.display.Set(FieldNetwork, fmt.Sprintf("%s (%d)", m.cfg.ChainName, m.cfg.ChainID))
		return nil
	}
	m.display.Set(FieldWalletLink, m.addressLink(s.Account))
	m.display.Set(FieldNetwork, fmt.Sprintf("%s (%s)", m.cfg.ChainName, s.ChainID))

	st := s.Bindings.Stake
	b := &batch{}
	fetch(b, func() (common.Address, error) { return st.Owner(ctx) }, func(a common.Address) {
		m.display.Set(FieldOwner, a.Hex())
	})
	fetch(b, func() (*big.Int, error) { return st.StcexPerUsdt(ctx) }, m.setRaw(FieldRateSTCExPerUSDT))
	fetch(b, func() (*big.Int, error) { return st.StcPerStcex(ctx) }, m.setRaw(FieldRateSTCPerSTCEx))
	fetch(b, func() (*big.Int, error) { return st.MinStakeSTCEx(ctx) }, m.setUnits(FieldMinStake, s.Decimals.STCEx))
	fetch(b, func() (*big.Int, error) { return st.LockSeconds(ctx) }, m.setSeconds(FieldLock))
	fetch(b, func() (*big.Int, error) { return st.PeriodSeconds(ctx) }, m.setSeconds(FieldPeriod))
	fetch(b, func() (*big.Int, error) { return st.RewardBps(ctx) }, m.setRaw(FieldRewardBps))
	return b.run()
}

// RefreshBalances shows the three token balances of the connected account.
func (m *Manager) RefreshBalances(ctx context.Context) error {
	s := m.session.Load()
	if s == nil {
		return nil
	}
	bal := func(t Token) func() (*big.Int, error) {
		return func() (*big.Int, error) { return t.BalanceOf(ctx, s.Account) }
	}
	b := &batch{}
	fetch(b, bal(s.Bindings.USDT), m.setUnits(FieldBalanceUSDT, s.Decimals.USDT))
	fetch(b, bal(s.Bindings.STCEx), m.setUnits(FieldBalanceSTCEx, s.Decimals.STCEx))
	fetch(b, bal(s.Bindings.STC), m.setUnits(FieldBalanceSTC, s.Decimals.STC))
	return b.run()
}

// RefreshStakeInfo reads the stake record first, then the reward and unlock
// state in parallel. Withdraw is enabled exactly when the stake is matured.
func (m *Manager) RefreshStakeInfo(ctx context.Context) error {
	s := m.session.Load()
	if s == nil {
		return nil
	}
	st := s.Bindings.Stake
	u, err := st.Users(ctx, s.Account)
	if err != nil {
		return err
	}
	m.display.Set(FieldPrincipal, format.UnitsDefault(u.StakedSTC, s.Decimals.STC))

	b := &batch{}
	fetch(b, func() (contracts.Accrued, error) { return st.AccruedRewardSTC(ctx, s.Account) }, func(a contracts.Accrued) {
		m.display.Set(FieldAccrued, format.UnitsDefault(a.Reward, s.Decimals.STC))
		m.display.Set(FieldPeriods, bigString(a.Periods))
	})
	fetch(b, func() (*big.Int, error) { return st.TimeUntilUnlock(ctx, s.Account) }, m.setCountdown)
	fetch(b, func() (*big.Int, error) { return st.UnlockAt(ctx, s.Account) }, func(ts *big.Int) {
		m.display.Set(FieldUnlockAt, format.Unix(ts, m.loc))
	})
	fetch(b, func() (bool, error) { return st.Matured(ctx, s.Account) }, m.setMatured)
	return b.run()
}

// refreshAll runs the three refreshes in order, stopping at the first error.
func (m *Manager) refreshAll(ctx context.Context) error {
	return refreshInOrder(ctx, m.RefreshStatic, m.RefreshBalances, m.RefreshStakeInfo)
}

func refreshInOrder(ctx context.Context, fns ...func(context.Context) error) error {
	for _, f := range fns {
		if err := f(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) setRaw(f Field) func(*big.Int) {
	return func(v *big.Int) { m.display.Set(f, bigString(v)) }
}

func (m *Manager) setUnits(f Field, decimals int) func(*big.Int) {
	return func(v *big.Int) { m.display.Set(f, format.UnitsDefault(v, decimals)) }
}

func (m *Manager) setSeconds(f Field) func(*big.Int) {
	return func(v *big.Int) { m.display.Set(f, bigString(v)+" sec") }
}

func (m *Manager) setCountdown(v *big.Int) {
	m.display.Set(FieldUnlockCountdown, format.DurationBig(v))
}

func (m *Manager) setMatured(ok bool) {
	m.display.Set(FieldMatured, maturedLabel(ok))
	m.display.SetWithdrawEnabled(ok)
}

func bigString(v *big.Int) string {
	if v == nil {
		return format.Placeholder
	}
	return v.String()
}
