package common

import (
	"io"

	"github.com/go-errors/errors"
	"github.com/privacybydesign/proxysig/big"
)

// Often we need to refer to the same small constant big numbers, no point in
// creating them again and again.
var (
	bigZERO = big.NewInt(0)
	bigONE  = big.NewInt(1)
	bigTWO  = big.NewInt(2)
)

var ErrNoModInverse = errors.New("modular inverse does not exist")

// ModPow computes x^y mod m. The exponent (y) can be negative, in which case it
// uses the modular inverse to compute the result (in contrast to Go's Exp
// function).
func ModPow(x, y, m *big.Int) (*big.Int, error) {
	if y.Sign() == -1 {
		t := new(big.Int).ModInverse(x, m)
		if t == nil {
			return nil, ErrNoModInverse
		}
		return t.Exp(t, new(big.Int).Neg(y), m), nil
	}
	return new(big.Int).Exp(x, y, m), nil
}

// RandomBelowBound draws uniformly random integers of bound.BitLen() bits and returns
// the first one in [2, bound-2]. Every call consumes fresh randomness from rnd.
func RandomBelowBound(rnd io.Reader, bound *big.Int) (*big.Int, error) {
	upper := new(big.Int).Sub(bound, bigTWO)
	if upper.Cmp(bigTWO) < 0 {
		return nil, errors.Errorf("no integers in [2, %s-2]", bound)
	}

	bitlen := uint(bound.BitLen())
	b := bitlen % 8
	if b == 0 {
		b = 8
	}
	bytes := make([]byte, (bitlen+7)/8)
	r := new(big.Int)
	for {
		if _, err := io.ReadFull(rnd, bytes); err != nil {
			return nil, errors.WrapPrefix(err, "random source failed", 0)
		}
		// Clear bits in the first byte to make sure the candidate has a size <= bitlen.
		bytes[0] &= uint8(int(1<<b) - 1)
		r.SetBytes(bytes)
		if r.Cmp(bigTWO) >= 0 && r.Cmp(upper) <= 0 {
			return r, nil
		}
	}
}

// Divides reports whether d divides n.
func Divides(d, n *big.Int) bool {
	return new(big.Int).Mod(n, d).Sign() == 0
}

// IsOne reports whether x == 1.
func IsOne(x *big.Int) bool {
	return x.Cmp(bigONE) == 0
}

// IsZero reports whether x == 0.
func IsZero(x *big.Int) bool {
	return x.Cmp(bigZERO) == 0
}
