package stakecore

import (
	"context"
	"math/big"
	"time"

	"github.com/ligun0805/stake-console/internal/metrics"
)

type ticker struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartTicker starts the countdown ticker, stopping a running one first.
func (m *Manager) StartTicker() {
	m.tickMu.Lock()
	defer m.tickMu.Unlock()
	m.stopTickerLocked()

	every := m.cfg.TickInterval
	if every <= 0 {
		every = time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	t := &ticker{cancel: cancel, done: make(chan struct{})}
	m.tick = t
	go m.tickLoop(ctx, t.done, every)
}

// StopTicker stops the ticker and returns once its goroutine has exited. No
// display update from that ticker happens afterwards.
func (m *Manager) StopTicker() {
	m.tickMu.Lock()
	defer m.tickMu.Unlock()
	m.stopTickerLocked()
}

// TickerRunning reports whether a ticker is active.
func (m *Manager) TickerRunning() bool {
	m.tickMu.Lock()
	defer m.tickMu.Unlock()
	return m.tick != nil
}

func (m *Manager) stopTickerLocked() {
	if m.tick == nil {
		return
	}
	m.tick.cancel()
	<-m.tick.done
	m.tick = nil
}

func (m *Manager) tickLoop(ctx context.Context, done chan<- struct{}, every time.Duration) {
	defer close(done)
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.tickOnce(ctx)
		}
	}
}

// tickOnce re-reads only the countdown and the maturity flag.
func (m *Manager) tickOnce(ctx context.Context) {
	s := m.session.Load()
	if s == nil {
		return
	}
	st := s.Bindings.Stake
	b := &batch{}
	fetch(b, func() (*big.Int, error) { return st.TimeUntilUnlock(ctx, s.Account) }, m.setCountdown)
	fetch(b, func() (bool, error) { return st.Matured(ctx, s.Account) }, m.setMatured)
	err := b.wait()
	if ctx.Err() != nil {
		return
	}
	b.apply()
	if err != nil {
		metrics.TickFailed()
		m.log.Debug().Err(err).Msg("tick read failed")
	}
}
