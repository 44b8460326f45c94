package stakecore

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/ligun0805/stake-console/internal/format"
	"github.com/ligun0805/stake-console/internal/wallet"
)

// Kind classifies every failure a handler can report.
type Kind int

const (
	KindEnvironment  Kind = iota + 1 // no wallet, wrong or unswitchable chain
	KindValidation                   // empty or malformed amount
	KindPrecondition                 // not connected, busy, not matured
	KindOnChain                      // read, submission or confirmation failure
)

func (k Kind) String() string {
	switch k {
	case KindEnvironment:
		return "environment"
	case KindValidation:
		return "validation"
	case KindPrecondition:
		return "precondition"
	case KindOnChain:
		return "onchain"
	}
	return "unknown"
}

var (
	ErrNotConnected = errors.New("please connect wallet first")
	ErrBusy         = errors.New("another action is in progress")
	ErrNotMatured   = errors.New("contract not yet matured (principal and reward cannot be withdrawn yet)")
	ErrWrongChain   = errors.New("wallet is on the wrong chain")
)

// Error is what every handler returns on failure.
type Error struct {
	Kind Kind
	Op   string
	Msg  string // human-readable detail, shown on the status line
	Err  error

	// Confirmed is set when the action's transactions went through and only
	// the refresh after them failed.
	Confirmed bool
}

func (e *Error) Error() string {
	switch {
	case e.Op == "":
		return e.Msg
	case e.Confirmed:
		return e.Op + " confirmed; refresh failed: " + e.Msg
	}
	return e.Op + " failed: " + e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: Message(err), Err: err}
}

// classify turns any handler failure into an *Error for op.
func classify(op string, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		if e.Op == "" {
			e.Op = op
		}
		return e
	}
	switch {
	case errors.Is(err, wallet.ErrWalletNotFound), errors.Is(err, wallet.ErrChainSwitchRejected), errors.Is(err, ErrWrongChain):
		return newError(KindEnvironment, op, err)
	case errors.Is(err, format.ErrEmptyAmount), errors.Is(err, format.ErrBadAmount), errors.Is(err, format.ErrTooManyDecimals):
		return newError(KindValidation, op, err)
	case errors.Is(err, ErrNotConnected), errors.Is(err, ErrBusy), errors.Is(err, ErrNotMatured):
		return newError(KindPrecondition, op, err)
	}
	return newError(KindOnChain, op, err)
}

// KindOf returns the kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Message produces the short human-readable form of err: a decoded revert
// reason when the node sent one, else the trimmed error text.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if reason, ok := revertData(err); ok {
		return "execution reverted: " + reason
	}
	return revertReason(err)
}

func revertData(err error) (string, bool) {
	var de rpc.DataError
	if !errors.As(err, &de) {
		return "", false
	}
	s, ok := de.ErrorData().(string)
	if !ok {
		return "", false
	}
	raw, decErr := hexutil.Decode(s)
	if decErr != nil {
		return "", false
	}
	reason, unpackErr := abi.UnpackRevert(raw)
	if unpackErr != nil {
		return "", false
	}
	return reason, true
}

func revertReason(e error) string {
	s := e.Error()
	if i := strings.Index(s, "execution reverted"); i >= 0 {
		return s[i:]
	}
	return s
}

func errWalletNotFound() error { return newError(KindEnvironment, "", wallet.ErrWalletNotFound) }

func metricName(op string) string { return strings.ReplaceAll(op, " ", "_") }
