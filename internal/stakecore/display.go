package stakecore

// Field names one output slot of the display surface.
type Field int

const (
	FieldContract Field = iota
	FieldContractLink
	FieldWallet
	FieldWalletLink
	FieldNetwork
	FieldOwner
	FieldRateSTCExPerUSDT
	FieldRateSTCPerSTCEx
	FieldMinStake
	FieldLock
	FieldPeriod
	FieldRewardBps
	FieldBalanceUSDT
	FieldBalanceSTCEx
	FieldBalanceSTC
	FieldPrincipal
	FieldAccrued
	FieldPeriods
	FieldUnlockCountdown
	FieldUnlockAt
	FieldMatured
	FieldLastTx
	FieldLastTxLink
)

var fieldNames = [...]string{
	"contract", "contract_link", "wallet", "wallet_link", "network", "owner",
	"rate_stcex_per_usdt", "rate_stc_per_stcex", "min_stake", "lock", "period", "reward_bps",
	"balance_usdt", "balance_stcex", "balance_stc", "principal", "accrued", "periods",
	"unlock_countdown", "unlock_at", "matured", "last_tx", "last_tx_link",
}

func (f Field) String() string {
	if int(f) >= 0 && int(f) < len(fieldNames) {
		return fieldNames[f]
	}
	return "unknown"
}

// Fields lists every field in display order.
func Fields() []Field {
	out := make([]Field, len(fieldNames))
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// Level is the tone of a status line.
type Level int

const (
	LevelInfo Level = iota
	LevelPending
	LevelSuccess
	LevelError
)

// Display is the presentation boundary. Implementations must be safe for use
// from the ticker goroutine and a handler goroutine at the same time.
type Display interface {
	Set(f Field, value string)
	SetWithdrawEnabled(enabled bool)
	// SetBusy is true while an action holds the session; triggers should be
	// disabled meanwhile.
	SetBusy(busy bool)
	SetStatus(level Level, text string)
}

// NopDisplay discards everything.
type NopDisplay struct{}

func (NopDisplay) Set(Field, string) {}
func (NopDisplay) SetWithdrawEnabled(bool) {}
func (NopDisplay) SetBusy(bool) {}
func (NopDisplay) SetStatus(Level, string) {}

const (
	maturedYes = "YES"
	maturedNo  = "NO"
)

func maturedLabel(b bool) string {
	if b {
		return maturedYes
	}
	return maturedNo
}
