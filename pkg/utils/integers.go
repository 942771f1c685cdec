package utils

import (
	"errors"
	"math/big"

	"github.com/shopspring/decimal"
)

// MaxExponent bounds the base-10 exponent of an accepted number. Without it
// a few bytes such as "1e2000000000" would expand to billions of digits.
const MaxExponent = 64

var (
	ErrNotInteger = errors.New("value must be a whole number")
	ErrNegative   = errors.New("value must not be negative")
	ErrOutOfRange = errors.New("value exponent out of range")
)

// NonNegativeInteger converts a decoded JSON number (quoted or not) into an
// unbounded integer. "12", 12 and 1.2e1 are accepted; 12.5 and -1 are not.
// The cost of the conversion stays proportional to the encoded length.
func NonNegativeInteger(d decimal.Decimal) (*big.Int, error) {
	// Checked before IsInteger, which loops once per negative exponent step.
	if exp := d.Exponent(); exp > MaxExponent || exp < -MaxExponent {
		return nil, ErrOutOfRange
	}
	if !d.IsInteger() {
		return nil, ErrNotInteger
	}
	if d.Sign() < 0 {
		return nil, ErrNegative
	}
	return d.BigInt(), nil
}
