package stakecore

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/core/types"

	"github.com/ligun0805/stake-console/internal/format"
	"github.com/ligun0805/stake-console/internal/metrics"
)

// Action names used in status lines and metric labels.
const (
	OpConnect      = "connect"
	OpApproveUSDT  = "approve USDT"
	OpSwap         = "swap"
	OpApproveSTCEx = "approve STCEx"
	OpStake        = "stake"
	OpWithdraw     = "withdraw"
	OpRefresh      = "refresh"
)

// ApproveUSDT raises the USDT allowance of the stake contract to amount.
func (m *Manager) ApproveUSDT(ctx context.Context, amount string) error {
	return m.run(ctx, OpApproveUSDT, true, func(ctx context.Context, s *Session) error {
		return m.approveOnly(ctx, s, s.Bindings.USDT, amount, s.Decimals.USDT)
	})
}

// ApproveSTCEx raises the STCEx allowance of the stake contract to amount.
func (m *Manager) ApproveSTCEx(ctx context.Context, amount string) error {
	return m.run(ctx, OpApproveSTCEx, true, func(ctx context.Context, s *Session) error {
		return m.approveOnly(ctx, s, s.Bindings.STCEx, amount, s.Decimals.STCEx)
	})
}

func (m *Manager) approveOnly(ctx context.Context, s *Session, t Token, amount string, decimals int) error {
	amt, err := parseAmount(amount, decimals)
	if err != nil {
		return err
	}
	if err := m.ensureAllowance(ctx, s, t, amt); err != nil {
		return err
	}
	return m.refreshAfter(ctx, m.RefreshBalances)
}

// Swap converts USDT into STCEx, approving USDT first when needed.
func (m *Manager) Swap(ctx context.Context, amount string) error {
	return m.run(ctx, OpSwap, true, func(ctx context.Context, s *Session) error {
		amt, err := parseAmount(amount, s.Decimals.USDT)
		if err != nil {
			return err
		}
		if err := m.ensureAllowance(ctx, s, s.Bindings.USDT, amt); err != nil {
			return err
		}
		if err := m.submit(ctx, s, OpSwap, func() (*types.Transaction, error) {
			return s.Bindings.Stake.SwapUSDTToSTCEx(ctx, amt)
		}); err != nil {
			return err
		}
		m.status(LevelSuccess, "swap confirmed")
		return m.refreshAfter(ctx, m.RefreshBalances)
	})
}

// Stake locks STCEx in the contract, approving STCEx first when needed.
func (m *Manager) Stake(ctx context.Context, amount string) error {
	return m.run(ctx, OpStake, true, func(ctx context.Context, s *Session) error {
		amt, err := parseAmount(amount, s.Decimals.STCEx)
		if err != nil {
			return err
		}
		if err := m.ensureAllowance(ctx, s, s.Bindings.STCEx, amt); err != nil {
			return err
		}
		if err := m.submit(ctx, s, OpStake, func() (*types.Transaction, error) {
			return s.Bindings.Stake.StakeWithSTCEx(ctx, amt)
		}); err != nil {
			return err
		}
		m.status(LevelSuccess, "stake confirmed")
		return m.refreshAfter(ctx, m.RefreshBalances, m.RefreshStakeInfo)
	})
}

// WithdrawAll withdraws principal and reward once the stake has matured.
func (m *Manager) WithdrawAll(ctx context.Context) error {
	return m.run(ctx, OpWithdraw, true, func(ctx context.Context, s *Session) error {
		ok, err := s.Bindings.Stake.Matured(ctx, s.Account)
		if err != nil {
			return err
		}
		if !ok {
			return newError(KindPrecondition, "", ErrNotMatured)
		}
		if err := m.submit(ctx, s, OpWithdraw, func() (*types.Transaction, error) {
			return s.Bindings.Stake.WithdrawAllAfterMaturity(ctx)
		}); err != nil {
			return err
		}
		m.status(LevelSuccess, "withdraw confirmed (principal and reward)")
		return m.refreshAfter(ctx, m.RefreshBalances, m.RefreshStakeInfo)
	})
}

// Refresh re-reads everything, stopping at the first refresh that fails.
func (m *Manager) Refresh(ctx context.Context) error {
	return m.run(ctx, OpRefresh, true, func(ctx context.Context, _ *Session) error {
		if err := m.refreshAll(ctx); err != nil {
			return err
		}
		m.status(LevelSuccess, "data refreshed")
		return nil
	})
}

// ensureAllowance approves exactly amount for the stake contract when the
// current allowance is below it, and waits for the approval to be mined.
func (m *Manager) ensureAllowance(ctx context.Context, s *Session, t Token, amount *big.Int) error {
	spender := s.Bindings.Stake.Address()
	cur, err := t.Allowance(ctx, s.Account, spender)
	if err != nil {
		return err
	}
	if cur.Cmp(amount) >= 0 {
		m.log.Debug().Str("token", t.Name()).Str("allowance", cur.String()).Msg("allowance sufficient")
		return nil
	}
	if err := m.submit(ctx, s, "approve "+t.Name(), func() (*types.Transaction, error) {
		return t.Approve(ctx, spender, amount)
	}); err != nil {
		return err
	}
	m.status(LevelSuccess, "approve confirmed")
	return nil
}

// submit sends one transaction, reports its hash and link, and waits for it.
func (m *Manager) submit(ctx context.Context, s *Session, label string, send func() (*types.Transaction, error)) error {
	tx, err := send()
	if err != nil {
		return err
	}
	h := tx.Hash()
	m.log.Info().Str("tx", h.Hex()).Str("action", label).Msg("submitted")
	m.display.Set(FieldLastTx, h.Hex())
	m.display.Set(FieldLastTxLink, m.txLink(h))
	m.status(LevelPending, fmt.Sprintf("%s… %s", label, h.Hex()))

	start := time.Now()
	_, err = s.wallet.WaitMined(ctx, tx)
	metrics.ObserveConfirm(metricName(label), start, err)
	if err != nil {
		return fmt.Errorf("wait %s: %w", h.Hex(), err)
	}
	m.log.Info().Str("tx", h.Hex()).Dur("took", time.Since(start)).Msg("confirmed")
	return nil
}

func parseAmount(s string, decimals int) (*big.Int, error) {
	v, err := format.ParseUnits(s, decimals)
	if err != nil {
		return nil, newError(KindValidation, "", err)
	}
	return v, nil
}

// refreshAfter runs the refreshes that follow a confirmed action. A failure
// is reported as such so the action itself still reads as confirmed.
func (m *Manager) refreshAfter(ctx context.Context, fns ...func(context.Context) error) error {
	if err := refreshInOrder(ctx, fns...); err != nil {
		return &Error{Kind: KindOnChain, Msg: Message(err), Err: err, Confirmed: true}
	}
	return nil
}
