package stakecore

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"

	"github.com/ligun0805/stake-console/internal/config"
	"github.com/ligun0805/stake-console/internal/contracts"
	"github.com/ligun0805/stake-console/internal/wallet"
)

var (
	stakeAddr = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	usdtAddr  = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	stcexAddr = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	stcAddr   = common.HexToAddress("0x00000000000000000000000000000000000000b3")
	account   = common.HexToAddress("0x1111111111111111111111111111111111111111")
	ownerAddr = common.HexToAddress("0x2222222222222222222222222222222222222222")
	errRPC    = errors.New("rpc unavailable")
)

// recorder keeps the ordered list of state-changing calls across fakes.
type recorder struct {
	mu     sync.Mutex
	events []string
	nonce  uint64
}

func (r *recorder) add(ev string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) tx(ev string) *types.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nonce++
	r.events = append(r.events, ev)
	return types.NewTx(&types.LegacyTx{Nonce: r.nonce})
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type fakeToken struct {
	mu        sync.Mutex
	rec       *recorder
	name      string
	addr      common.Address
	decimals  uint8
	balance   *big.Int
	allowance *big.Int
	errs      map[string]error

	balanceReads, allowanceReads int
}

func (t *fakeToken) err(method string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.errs[method]
}

func (t *fakeToken) setErr(method string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.errs == nil {
		t.errs = map[string]error{}
	}
	t.errs[method] = err
}

func (t *fakeToken) Name() string            { return t.name }
func (t *fakeToken) Address() common.Address { return t.addr }

func (t *fakeToken) Decimals(context.Context) (uint8, error) {
	if err := t.err("decimals"); err != nil {
		return 0, err
	}
	return t.decimals, nil
}

func (t *fakeToken) BalanceOf(context.Context, common.Address) (*big.Int, error) {
	t.mu.Lock()
	t.balanceReads++
	t.mu.Unlock()
	if err := t.err("balanceOf"); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return new(big.Int).Set(t.balance), nil
}

func (t *fakeToken) Allowance(context.Context, common.Address, common.Address) (*big.Int, error) {
	t.mu.Lock()
	t.allowanceReads++
	t.mu.Unlock()
	if err := t.err("allowance"); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return new(big.Int).Set(t.allowance), nil
}

func (t *fakeToken) Approve(_ context.Context, spender common.Address, amount *big.Int) (*types.Transaction, error) {
	if err := t.err("approve"); err != nil {
		return nil, err
	}
	if spender != stakeAddr {
		return nil, fmt.Errorf("unexpected spender %s", spender.Hex())
	}
	return t.rec.tx(fmt.Sprintf("approve %s %s", t.name, amount)), nil
}

func (t *fakeToken) reads() (balance, allowance int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balanceReads, t.allowanceReads
}

type fakeStake struct {
	mu      sync.Mutex
	rec     *recorder
	user    contracts.UserInfo
	accrued contracts.Accrued
	until   int64
	unlock  int64
	matured bool
	errs    map[string]error
	calls   map[string]int
}

func newFakeStake(rec *recorder) *fakeStake {
	return &fakeStake{
		rec:     rec,
		user:    contracts.UserInfo{StakedSTC: big.NewInt(2_500_000), StartTime: big.NewInt(1_700_000_000)},
		accrued: contracts.Accrued{Reward: big.NewInt(125_000), Periods: big.NewInt(3)},
		until:   90061,
		unlock:  1_700_000_000,
		errs:    map[string]error{},
		calls:   map[string]int{},
	}
}

func (s *fakeStake) hit(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[method]++
	return s.errs[method]
}

func (s *fakeStake) count(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *fakeStake) resetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = map[string]int{}
}

func (s *fakeStake) set(fn func(s *fakeStake)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

func (s *fakeStake) uintRead(method string, v int64) (*big.Int, error) {
	if err := s.hit(method); err != nil {
		return nil, err
	}
	return big.NewInt(v), nil
}

func (s *fakeStake) Address() common.Address { return stakeAddr }

func (s *fakeStake) Owner(context.Context) (common.Address, error) {
	if err := s.hit("owner"); err != nil {
		return common.Address{}, err
	}
	return ownerAddr, nil
}

func (s *fakeStake) StcexPerUsdt(context.Context) (*big.Int, error) { return s.uintRead("stcexPerUsdt", 10) }
func (s *fakeStake) StcPerStcex(context.Context) (*big.Int, error) { return s.uintRead("stcPerStcex", 2) }
func (s *fakeStake) MinStakeSTCEx(context.Context) (*big.Int, error) { return s.uintRead("minStakeSTCEx", 100_000_000) }
func (s *fakeStake) LockSeconds(context.Context) (*big.Int, error) { return s.uintRead("lockSeconds", 86400) }
func (s *fakeStake) PeriodSeconds(context.Context) (*big.Int, error) { return s.uintRead("periodSeconds", 3600) }
func (s *fakeStake) RewardBps(context.Context) (*big.Int, error) { return s.uintRead("rewardBps", 150) }

func (s *fakeStake) Users(context.Context, common.Address) (contracts.UserInfo, error) {
	if err := s.hit("users"); err != nil {
		return contracts.UserInfo{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user, nil
}

func (s *fakeStake) AccruedRewardSTC(context.Context, common.Address) (contracts.Accrued, error) {
	if err := s.hit("accruedRewardSTC"); err != nil {
		return contracts.Accrued{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accrued, nil
}

func (s *fakeStake) TimeUntilUnlock(context.Context, common.Address) (*big.Int, error) {
	if err := s.hit("timeUntilUnlock"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return big.NewInt(s.until), nil
}

func (s *fakeStake) UnlockAt(context.Context, common.Address) (*big.Int, error) {
	if err := s.hit("unlockAt"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return big.NewInt(s.unlock), nil
}

func (s *fakeStake) Matured(context.Context, common.Address) (bool, error) {
	if err := s.hit("matured"); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.matured, nil
}

func (s *fakeStake) SwapUSDTToSTCEx(_ context.Context, amount *big.Int) (*types.Transaction, error) {
	if err := s.hit("swapUSDTToSTCEx"); err != nil {
		return nil, err
	}
	return s.rec.tx("swap " + amount.String()), nil
}

func (s *fakeStake) StakeWithSTCEx(_ context.Context, amount *big.Int) (*types.Transaction, error) {
	if err := s.hit("stakeWithSTCEx"); err != nil {
		return nil, err
	}
	return s.rec.tx("stake " + amount.String()), nil
}

func (s *fakeStake) WithdrawAllAfterMaturity(context.Context) (*types.Transaction, error) {
	if err := s.hit("withdrawAllAfterMaturity"); err != nil {
		return nil, err
	}
	return s.rec.tx("withdraw"), nil
}

type fakeWallet struct {
	mu       sync.Mutex
	rec      *recorder
	chain    *big.Int
	switchTo *big.Int // chain after a successful switch; nil rejects
	chainErr error
	waitErr  error
	waitGate chan struct{}
	closed   bool
	switched bool
}

func (w *fakeWallet) ChainID(context.Context) (*big.Int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.chainErr != nil {
		return nil, w.chainErr
	}
	return new(big.Int).Set(w.chain), nil
}

func (w *fakeWallet) SwitchChain(_ context.Context, want *big.Int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.switchTo == nil {
		return fmt.Errorf("%w: no endpoint for %s", wallet.ErrChainSwitchRejected, want)
	}
	w.chain, w.switched = w.switchTo, true
	return nil
}

func (w *fakeWallet) Signer(context.Context) (*bind.TransactOpts, error) {
	return &bind.TransactOpts{From: account}, nil
}

func (w *fakeWallet) Account() common.Address       { return account }
func (w *fakeWallet) Backend() bind.ContractBackend { return nil }

func (w *fakeWallet) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	if w.waitGate != nil {
		select {
		case <-w.waitGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	w.rec.add(fmt.Sprintf("wait %d", tx.Nonce()))
	if w.waitErr != nil {
		return nil, w.waitErr
	}
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: tx.Hash()}, nil
}

func (w *fakeWallet) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
}

func (w *fakeWallet) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

type statusLine struct {
	level Level
	text  string
}

type fakeDisplay struct {
	mu       sync.Mutex
	fields   map[Field]string
	withdraw bool
	busy     bool
	busySeen []bool
	statuses []statusLine
}

func newFakeDisplay() *fakeDisplay { return &fakeDisplay{fields: map[Field]string{}} }

func (d *fakeDisplay) Set(f Field, v string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fields[f] = v
}

func (d *fakeDisplay) SetWithdrawEnabled(b bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.withdraw = b
}

func (d *fakeDisplay) SetBusy(b bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.busy = b
	d.busySeen = append(d.busySeen, b)
}

func (d *fakeDisplay) SetStatus(l Level, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.statuses = append(d.statuses, statusLine{l, text})
}

func (d *fakeDisplay) get(f Field) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fields[f]
}

func (d *fakeDisplay) withdrawEnabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.withdraw
}

func (d *fakeDisplay) isBusy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.busy
}

func (d *fakeDisplay) lastStatus() statusLine {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.statuses) == 0 {
		return statusLine{}
	}
	return d.statuses[len(d.statuses)-1]
}

func (d *fakeDisplay) statusTexts() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.statuses))
	for i, s := range d.statuses {
		out[i] = s.text
	}
	return out
}

// env is one manager wired to a full set of fakes.
type env struct {
	rec     *recorder
	wallet  *fakeWallet
	usdt    *fakeToken
	stcex   *fakeToken
	stc     *fakeToken
	stake   *fakeStake
	display *fakeDisplay
	m       *Manager
}

func testSettings() config.Settings {
	return config.Settings{
		ChainID:      56,
		ChainName:    "BNB Smart Chain",
		Explorer:     "https://bscscan.com",
		Contract:     stakeAddr.Hex(),
		USDT:         usdtAddr.Hex(),
		STCEx:        stcexAddr.Hex(),
		STC:          stcAddr.Hex(),
		TickInterval: time.Hour,
		Timezone:     "UTC",
	}
}

func newEnv(t *testing.T, tweak ...func(*config.Settings)) *env {
	t.Helper()
	rec := &recorder{}
	e := &env{
		rec:     rec,
		wallet:  &fakeWallet{rec: rec, chain: big.NewInt(56)},
		usdt:    &fakeToken{rec: rec, name: "USDT", addr: usdtAddr, decimals: 6, balance: big.NewInt(12_345_678), allowance: big.NewInt(0)},
		stcex:   &fakeToken{rec: rec, name: "STCEx", addr: stcexAddr, decimals: 6, balance: big.NewInt(1_000_000), allowance: big.NewInt(0)},
		stc:     &fakeToken{rec: rec, name: "STC", addr: stcAddr, decimals: 6, balance: big.NewInt(500_000), allowance: big.NewInt(0)},
		stake:   newFakeStake(rec),
		display: newFakeDisplay(),
	}
	cfg := testSettings()
	for _, f := range tweak {
		f(&cfg)
	}
	e.m = NewManager(Options{
		Settings: cfg,
		Display:  e.display,
		Logger:   zerolog.Nop(),
		Open:     func(context.Context) (Wallet, error) { return e.wallet, nil },
		Binder:   e.binder,
	})
	t.Cleanup(e.m.Close)
	return e
}

func (e *env) binder(config.Addresses, bind.ContractBackend, *bind.TransactOpts) Bindings {
	return Bindings{USDT: e.usdt, STCEx: e.stcex, STC: e.stc, Stake: e.stake}
}

// connected returns an env with a published session and a clean call log.
func connected(t *testing.T, tweak ...func(*config.Settings)) *env {
	t.Helper()
	e := newEnv(t, tweak...)
	if err := e.m.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	e.rec.reset()
	e.stake.resetCalls()
	for _, tok := range []*fakeToken{e.usdt, e.stcex, e.stc} {
		tok.mu.Lock()
		tok.balanceReads, tok.allowanceReads = 0, 0
		tok.mu.Unlock()
	}
	return e
}
