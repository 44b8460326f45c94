// Package format converts on-chain integers to display strings and user input
// back to scaled integers.
package format

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Placeholder is shown for values that cannot be formatted.
const Placeholder = "-"

// DefaultPrecision is the number of fraction digits used by UnitsDefault.
const DefaultPrecision = 6

// maxDecimals is the largest decimals() a uint8 token can report.
const maxDecimals = 255

var (
	ErrEmptyAmount     = errors.New("please enter an amount")
	ErrBadAmount       = errors.New("malformed amount")
	ErrTooManyDecimals = errors.New("too many fractional digits")
)

// Units renders v scaled down by 10^decimals with at most precision fraction
// digits and a grouped integer part ("1,234.5"). It never panics; bad input
// yields Placeholder.
func Units(v *big.Int, decimals, precision int) (out string) {
	defer func() {
		if recover() != nil {
			out = Placeholder
		}
	}()
	if v == nil || decimals < 0 || decimals > maxDecimals || precision < 0 {
		return Placeholder
	}
	d := decimal.NewFromBigInt(v, -int32(decimals)).Round(int32(precision))

	sign := ""
	if d.Sign() < 0 {
		sign = "-"
		d = d.Neg()
	}
	intPart := d.Truncate(0)
	frac := strings.TrimRight(d.Sub(intPart).StringFixed(int32(precision)), "0")
	frac = strings.TrimPrefix(frac, "0")
	if frac == "." {
		frac = ""
	}
	if d.IsZero() {
		sign = ""
	}
	return sign + humanize.BigComma(intPart.BigInt()) + frac
}

// UnitsDefault is Units with DefaultPrecision.
func UnitsDefault(v *big.Int, decimals int) string { return Units(v, decimals, DefaultPrecision) }

// ParseUnits converts a user-entered decimal string into an integer scaled by
// 10^decimals. Only plain non-negative decimals are accepted ("12", "0.5", ".5").
func ParseUnits(s string, decimals int) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmptyAmount
	}
	if decimals < 0 || decimals > maxDecimals {
		return nil, fmt.Errorf("%w: unsupported decimals %d", ErrBadAmount, decimals)
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	if (intPart == "" && fracPart == "") || !digits(intPart) || !digits(fracPart) {
		return nil, fmt.Errorf("%w: %q", ErrBadAmount, s)
	}
	if len(fracPart) > decimals {
		return nil, fmt.Errorf("%w: %q allows at most %d", ErrTooManyDecimals, s, decimals)
	}
	fracPart += strings.Repeat("0", decimals-len(fracPart))
	clean := strings.TrimLeft(intPart+fracPart, "0")
	if clean == "" {
		return big.NewInt(0), nil
	}
	v, ok := new(big.Int).SetString(clean, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBadAmount, s)
	}
	return v, nil
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Duration renders seconds as "[Dd ]HH:MM:SS". Zero and negative values give
// "00:00:00".
func Duration(sec int64) string {
	if sec <= 0 {
		return "00:00:00"
	}
	d := sec / 86400
	sec -= d * 86400
	h := sec / 3600
	sec -= h * 3600
	m := sec / 60
	sec -= m * 60
	out := fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
	if d > 0 {
		out = fmt.Sprintf("%dd %s", d, out)
	}
	return out
}

// DurationBig is Duration for contract values; values beyond int64 are
// clamped.
func DurationBig(sec *big.Int) string {
	if sec == nil || sec.Sign() <= 0 {
		return Duration(0)
	}
	if !sec.IsInt64() {
		return Duration(1<<63 - 1)
	}
	return Duration(sec.Int64())
}

// DateLayout is the layout produced by Unix.
const DateLayout = "2006-01-02 15:04:05 MST"

// Unix renders a unix timestamp in loc. Zero, nil, negative or out of range
// timestamps give Placeholder.
func Unix(ts *big.Int, loc *time.Location) string {
	if ts == nil || ts.Sign() <= 0 || !ts.IsInt64() {
		return Placeholder
	}
	sec := ts.Int64()
	// keep within what time.Time can print as a four digit year
	if sec > 253402300799 {
		return Placeholder
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Unix(sec, 0).In(loc).Format(DateLayout)
}
