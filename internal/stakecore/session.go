// Package stakecore drives the connect, approve, act, confirm and refresh
// workflow against the stake contract and pushes results to a Display.
package stakecore

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/ligun0805/stake-console/internal/config"
	"github.com/ligun0805/stake-console/internal/metrics"
)

// Wallet is the provider surface a session is built from. *wallet.Provider
// satisfies it.
type Wallet interface {
	ChainID(ctx context.Context) (*big.Int, error)
	SwitchChain(ctx context.Context, want *big.Int) error
	Signer(ctx context.Context) (*bind.TransactOpts, error)
	Account() common.Address
	Backend() bind.ContractBackend
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
	Close()
}

// OpenFunc produces the wallet provider on connect.
type OpenFunc func(ctx context.Context) (Wallet, error)

// Session is one fully built connection. It is never mutated after publish.
type Session struct {
	Account  common.Address
	ChainID  *big.Int
	Signer   *bind.TransactOpts
	Bindings Bindings
	Decimals Decimals

	wallet Wallet
}

// Decimals caches the token decimals for the lifetime of a session.
type Decimals struct {
	USDT, STCEx, STC int
}

// Options configures a Manager.
type Options struct {
	Settings config.Settings
	Display  Display
	Logger   zerolog.Logger
	Open     OpenFunc
	// Binder builds the contract bindings; ContractBinder when nil.
	Binder Binder
}

// Manager owns the session, the busy guard and the countdown ticker.
type Manager struct {
	cfg     config.Settings
	addrs   config.Addresses
	loc     *time.Location
	display Display
	log     zerolog.Logger
	open    OpenFunc
	binder  Binder

	session atomic.Pointer[Session]
	busy    sync.Mutex

	tickMu sync.Mutex
	tick   *ticker
}

// NewManager returns a Manager with no session. Display and Binder default
// to NopDisplay and ContractBinder.
func NewManager(opts Options) *Manager {
	m := &Manager{
		cfg:     opts.Settings,
		addrs:   opts.Settings.Addresses(),
		loc:     opts.Settings.Location(),
		display: opts.Display,
		log:     opts.Logger.With().Str("component", "stakecore").Logger(),
		open:    opts.Open,
		binder:  opts.Binder,
	}
	if m.display == nil {
		m.display = NopDisplay{}
	}
	if m.binder == nil {
		m.binder = ContractBinder
	}
	return m
}

// Session returns the published session, or nil before the first connect.
func (m *Manager) Session() *Session { return m.session.Load() }

// Connect builds a new session and publishes it. The previous session, if
// any, stays in use until the new one is complete.
func (m *Manager) Connect(ctx context.Context) error {
	return m.run(ctx, OpConnect, false, func(ctx context.Context, _ *Session) error {
		return m.connect(ctx)
	})
}

func (m *Manager) connect(ctx context.Context) error {
	if m.open == nil {
		return errWalletNotFound()
	}
	w, err := m.open(ctx)
	if err != nil {
		return newError(KindEnvironment, "", err)
	}
	s, err := m.build(ctx, w)
	if err != nil {
		w.Close()
		return err
	}

	m.StopTicker()
	if old := m.session.Swap(s); old != nil && old.wallet != w {
		old.wallet.Close()
	}
	m.log.Info().Str("account", s.Account.Hex()).Str("chain", s.ChainID.String()).Msg("connected")
	m.status(LevelSuccess, "connected")
	m.display.Set(FieldWallet, s.Account.Hex())
	m.display.Set(FieldWalletLink, m.addressLink(s.Account))

	if err := m.refreshAll(ctx); err != nil {
		return err
	}
	m.StartTicker()
	return nil
}

// build runs everything up to publish. Nothing is visible to readers until
// it returns a complete session.
func (m *Manager) build(ctx context.Context, w Wallet) (*Session, error) {
	want := m.cfg.RequiredChainID()
	id, err := w.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain id: %w", err)
	}
	if id.Cmp(want) != 0 {
		m.log.Info().Str("have", id.String()).Str("want", want.String()).Msg("requesting chain switch")
		m.status(LevelPending, fmt.Sprintf("switching to %s (%s)…", m.cfg.ChainName, want))
		if err := w.SwitchChain(ctx, want); err != nil {
			return nil, newError(KindEnvironment, "", err)
		}
		if id, err = w.ChainID(ctx); err != nil {
			return nil, fmt.Errorf("chain id: %w", err)
		}
		if id.Cmp(want) != 0 {
			return nil, newError(KindEnvironment, "", fmt.Errorf("%w: on %s, want %s", ErrWrongChain, id, want))
		}
	}

	signer, err := w.Signer(ctx)
	if err != nil {
		return nil, newError(KindEnvironment, "", fmt.Errorf("signer: %w", err))
	}
	b := m.binder(m.addrs, w.Backend(), signer)

	dec, err := fetchDecimals(ctx, b)
	if err != nil {
		return nil, err
	}
	return &Session{
		Account:  w.Account(),
		ChainID:  id,
		Signer:   signer,
		Bindings: b,
		Decimals: dec,
		wallet:   w,
	}, nil
}

func fetchDecimals(ctx context.Context, b Bindings) (Decimals, error) {
	var (
		dec              Decimals
		errU, errE, errS error
		u, e, s          uint8
		wg               conc.WaitGroup
	)
	wg.Go(func() { u, errU = b.USDT.Decimals(ctx) })
	wg.Go(func() { e, errE = b.STCEx.Decimals(ctx) })
	wg.Go(func() { s, errS = b.STC.Decimals(ctx) })
	wg.Wait()
	for _, err := range []error{errU, errE, errS} {
		if err != nil {
			return dec, err
		}
	}
	dec.USDT, dec.STCEx, dec.STC = int(u), int(e), int(s)
	return dec, nil
}

// run is the common handler shape: reject if busy, require a session when
// needed, then report the outcome as one status line.
func (m *Manager) run(ctx context.Context, op string, needSession bool, fn func(context.Context, *Session) error) error {
	if !m.busy.TryLock() {
		return m.fail(op, newError(KindPrecondition, op, ErrBusy))
	}
	defer m.busy.Unlock()
	m.display.SetBusy(true)
	defer m.display.SetBusy(false)

	s := m.session.Load()
	if needSession && s == nil {
		return m.fail(op, newError(KindPrecondition, op, ErrNotConnected))
	}
	if err := fn(ctx, s); err != nil {
		return m.fail(op, err)
	}
	metrics.RecordAction(metricName(op), "", nil)
	return nil
}

func (m *Manager) fail(op string, err error) error {
	e := classify(op, err)
	m.log.Warn().Err(e.Err).Str("op", op).Stringer("kind", e.Kind).Msg("action failed")
	m.status(LevelError, e.Error())
	metrics.RecordAction(metricName(op), e.Kind.String(), e)
	return e
}

func (m *Manager) status(level Level, text string) { m.display.SetStatus(level, text) }

func (m *Manager) addressLink(a common.Address) string {
	return m.cfg.Explorer + "/address/" + a.Hex()
}

func (m *Manager) txLink(h common.Hash) string {
	return m.cfg.Explorer + "/tx/" + h.Hex()
}

// Close stops the ticker and releases the session's provider.
func (m *Manager) Close() {
	m.StopTicker()
	if s := m.session.Swap(nil); s != nil {
		s.wallet.Close()
	}
}
