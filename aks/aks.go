// Package aks implements the Agrawal–Kayal–Saxena primality test: a deterministic test,
// without error probability, running in time polynomial in the bit length of its input.
//
// In practice the polynomial congruence checks dominate, and the test is only fast
// enough for integers of a few tens of bits. Callers searching for primes should
// pre-screen candidates with a cheap probabilistic test and use IsPrime as the
// definitive check.
package aks

import (
	"math"
	"math/bits"

	"github.com/privacybydesign/proxysig/big"
	"github.com/privacybydesign/proxysig/factor"
)

var bigTWO = big.NewInt(2)

// IsPrime reports whether n is prime.
func IsPrime(n *big.Int) bool {
	if n.Cmp(bigTWO) < 0 {
		return false
	}
	if n.Cmp(bigTWO) == 0 {
		return true
	}
	if n.Bit(0) == 0 {
		return false
	}
	if IsPerfectPower(n) {
		return false
	}

	lg := log2(n)
	r := smallestR(n, lg)
	if hasSmallFactor(n, r) {
		return false
	}
	if n.Cmp(new(big.Int).SetUint64(r)) <= 0 {
		return true
	}

	phi := factor.Totient(new(big.Int).SetUint64(r))
	limit := uint64(math.Floor(math.Sqrt(float64(phi.Uint64())) * lg))
	return congruencesHold(newRing(n, r), limit)
}

// IsPerfectPower reports whether n = a^b for integers a and b > 1.
func IsPerfectPower(n *big.Int) bool {
	pow := new(big.Int)
	for b := 2; b <= n.BitLen(); b++ {
		root := nthRoot(n, b)
		if pow.Exp(root, big.NewInt(int64(b)), nil).Cmp(n) == 0 {
			return true
		}
	}
	return false
}

// nthRoot returns floor(n^(1/b)) for n >= 1, by binary search.
func nthRoot(n *big.Int, b int) *big.Int {
	exp := big.NewInt(int64(b))
	lo := big.NewInt(1)
	hi := new(big.Int).Lsh(big.NewInt(1), uint(n.BitLen()/b+1))
	mid, pow := new(big.Int), new(big.Int)
	for lo.Cmp(hi) < 0 {
		// mid = ceil((lo + hi) / 2)
		mid.Add(lo, hi)
		mid.Add(mid, big.NewInt(1))
		mid.Rsh(mid, 1)
		if pow.Exp(mid, exp, nil).Cmp(n) <= 0 {
			lo.Set(mid)
		} else {
			hi.Sub(mid, big.NewInt(1))
		}
	}
	return lo
}

// log2 returns the real-valued base 2 logarithm of n > 0.
func log2(n *big.Int) float64 {
	bitlen := n.BitLen()
	if bitlen <= 53 {
		return math.Log2(float64(n.Uint64()))
	}
	shift := uint(bitlen - 53)
	top := new(big.Int).Rsh(n, shift)
	return math.Log2(float64(top.Uint64())) + float64(shift)
}

// smallestR returns the smallest r such that the multiplicative order of n modulo r
// exceeds lg^2. Moduli not coprime to n have no such order and are skipped.
func smallestR(n *big.Int, lg float64) uint64 {
	maxK := uint64(math.Floor(lg * lg))
	rBig := new(big.Int)
	for r := uint64(2); ; r++ {
		nr := new(big.Int).Mod(n, rBig.SetUint64(r)).Uint64()
		if gcd(nr, r) != 1 {
			continue
		}
		if multiplicativeOrderExceeds(nr, r, maxK) {
			return r
		}
	}
}

// multiplicativeOrderExceeds reports whether x^k != 1 (mod r) for all 1 <= k <= maxK.
func multiplicativeOrderExceeds(x, r, maxK uint64) bool {
	acc := uint64(1)
	for k := uint64(1); k <= maxK; k++ {
		acc = mulMod(acc, x, r)
		if acc == 1 {
			return false
		}
	}
	return true
}

// hasSmallFactor reports whether some 2 <= a <= r shares a nontrivial factor with n.
func hasSmallFactor(n *big.Int, r uint64) bool {
	aBig := new(big.Int)
	rem := new(big.Int)
	for a := uint64(2); a <= r; a++ {
		g := gcd(a, rem.Mod(n, aBig.SetUint64(a)).Uint64())
		if g > 1 && n.Cmp(aBig.SetUint64(g)) > 0 {
			return true
		}
	}
	return false
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func mulMod(a, b, m uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	return bits.Rem64(hi, lo, m)
}
