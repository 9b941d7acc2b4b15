package utils

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// MicroPerUnit is the number of micro-units in one unit.
const MicroPerUnit = 1_000_000

// FormatMicro renders a micro-unit amount as a fixed six-place decimal string,
// e.g. 1500000 -> "1.500000".
func FormatMicro(v uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), -6).StringFixed(6)
}

// ParseMicro converts a decimal unit string ("1.5") into micro-units. It
// rejects negative values, more than six decimal places and values that do
// not fit in a uint64.
func ParseMicro(s string) (uint64, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return 0, false
	}
	micro := d.Shift(6)
	if !micro.Equal(micro.Truncate(0)) {
		return 0, false
	}
	bi := micro.BigInt()
	if !bi.IsUint64() {
		return 0, false
	}
	return bi.Uint64(), true
}
