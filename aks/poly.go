package aks

import (
	"math/bits"

	"github.com/privacybydesign/proxysig/big"
)

// ring is Z_n[X]/(X^r - 1), in which the congruences (X + a)^n = X^n + a are checked.
type ring interface {
	// congruenceHolds reports whether (X + a)^n = X^n + a in the ring.
	congruenceHolds(a uint64) bool
}

// newRing returns a word-sized implementation when all coefficient products of one
// multiplication can be accumulated in 128 bits, and a math/big one otherwise.
func newRing(n *big.Int, r uint64) ring {
	if n.BitLen() <= 63 && 2*n.BitLen()+bits.Len64(r) <= 127 {
		return newWordRing(n.Uint64(), int(r))
	}
	return newBigRing(n, int(r))
}

func congruencesHold(rg ring, limit uint64) bool {
	for a := uint64(1); a <= limit; a++ {
		if !rg.congruenceHolds(a) {
			return false
		}
	}
	return true
}

type wordRing struct {
	n      uint64
	r      int
	hi, lo []uint64 // 128-bit accumulators
}

func newWordRing(n uint64, r int) *wordRing {
	return &wordRing{n: n, r: r, hi: make([]uint64, r), lo: make([]uint64, r)}
}

// mul sets dst = x*y. dst may alias x or y.
func (w *wordRing) mul(dst, x, y []uint64) {
	for k := range w.lo {
		w.hi[k], w.lo[k] = 0, 0
	}
	for i, xi := range x {
		if xi == 0 {
			continue
		}
		k := i
		for _, yj := range y {
			if yj != 0 {
				h, l := bits.Mul64(xi, yj)
				var c uint64
				w.lo[k], c = bits.Add64(w.lo[k], l, 0)
				w.hi[k] += h + c
			}
			k++
			if k == w.r {
				k = 0
			}
		}
	}
	for k := range dst {
		dst[k] = bits.Rem64(w.hi[k], w.lo[k], w.n)
	}
}

func (w *wordRing) congruenceHolds(a uint64) bool {
	base := make([]uint64, w.r)
	base[0] = a % w.n
	base[1] = 1

	// Left-to-right square and multiply, starting from the top bit of n
	res := make([]uint64, w.r)
	copy(res, base)
	for i := bits.Len64(w.n) - 2; i >= 0; i-- {
		w.mul(res, res, res)
		if (w.n>>uint(i))&1 == 1 {
			w.mul(res, res, base)
		}
	}

	expected := make([]uint64, w.r)
	expected[0] = a % w.n
	xn := int(w.n % uint64(w.r))
	expected[xn] = (expected[xn] + 1) % w.n
	for k := range res {
		if res[k] != expected[k] {
			return false
		}
	}
	return true
}

type bigRing struct {
	n   *big.Int
	r   int
	acc []*big.Int
}

func newBigRing(n *big.Int, r int) *bigRing {
	acc := make([]*big.Int, r)
	for k := range acc {
		acc[k] = new(big.Int)
	}
	return &bigRing{n: n, r: r, acc: acc}
}

func (b *bigRing) newPoly() []*big.Int {
	p := make([]*big.Int, b.r)
	for k := range p {
		p[k] = new(big.Int)
	}
	return p
}

// mul sets dst = x*y. dst may alias x or y.
func (b *bigRing) mul(dst, x, y []*big.Int) {
	for k := range b.acc {
		b.acc[k].SetInt64(0)
	}
	tmp := new(big.Int)
	for i, xi := range x {
		if xi.Sign() == 0 {
			continue
		}
		k := i
		for _, yj := range y {
			if yj.Sign() != 0 {
				b.acc[k].Add(b.acc[k], tmp.Mul(xi, yj))
			}
			k++
			if k == b.r {
				k = 0
			}
		}
	}
	for k := range dst {
		dst[k].Mod(b.acc[k], b.n)
	}
}

func (b *bigRing) congruenceHolds(a uint64) bool {
	aBig := new(big.Int).SetUint64(a)
	aBig.Mod(aBig, b.n)

	base := b.newPoly()
	base[0].Set(aBig)
	base[1].SetInt64(1)

	res := b.newPoly()
	for k := range res {
		res[k].Set(base[k])
	}
	for i := b.n.BitLen() - 2; i >= 0; i-- {
		b.mul(res, res, res)
		if b.n.Bit(i) == 1 {
			b.mul(res, res, base)
		}
	}

	expected := b.newPoly()
	expected[0].Set(aBig)
	xn := int(new(big.Int).Mod(b.n, big.NewInt(int64(b.r))).Int64())
	expected[xn].Add(expected[xn], big.NewInt(1))
	expected[xn].Mod(expected[xn], b.n)
	for k := range res {
		if res[k].Cmp(expected[k]) != 0 {
			return false
		}
	}
	return true
}
