package keys

import (
	"crypto/rand"
	"io"

	"github.com/go-errors/errors"
	"github.com/privacybydesign/proxysig/aks"
	"github.com/privacybydesign/proxysig/big"
	"github.com/privacybydesign/proxysig/factor"
	"github.com/privacybydesign/proxysig/internal/common"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultBits is the bit length of p used by the command line tools.
	DefaultBits = 20
	// MinBits is the smallest bit length for which Build can find a usable domain.
	MinBits = 4

	// Rounds of Miller-Rabin applied to prime candidates before the AKS test.
	prescreenRounds = 20
)

var (
	bigONE  = big.NewInt(1)
	bigFIVE = big.NewInt(5)
)

// Domain holds the public parameters shared by a delegator, its proxies and all
// verifiers: a prime p, a prime factor q of p-1, and an element g of Z*_p of
// multiplicative order q.
type Domain struct {
	P *big.Int
	Q *big.Int
	G *big.Int
}

// Validate checks the structure of the domain: p and q (probably) prime, q | p-1,
// and g a nontrivial element with g^q = 1 mod p. The result wraps ErrMalformed.
func (d *Domain) Validate() error {
	if d.P == nil || d.Q == nil || d.G == nil {
		return common.Malformed("domain", errors.New("missing parameter"))
	}
	if d.P.Cmp(bigFIVE) < 0 || !d.P.ProbablyPrime(prescreenRounds) {
		return common.Malformed("domain", errors.Errorf("p = %s is not a prime >= 5", d.P))
	}
	pMinusOne := new(big.Int).Sub(d.P, bigONE)
	if d.Q.Cmp(bigONE) <= 0 || !d.Q.ProbablyPrime(prescreenRounds) || !common.Divides(d.Q, pMinusOne) {
		return common.Malformed("domain", errors.Errorf("q = %s is not a prime factor of p-1", d.Q))
	}
	if d.G.Cmp(bigONE) <= 0 || d.G.Cmp(d.P) >= 0 {
		return common.Malformed("domain", errors.Errorf("g = %s is not in [2, p)", d.G))
	}
	if !common.IsOne(new(big.Int).Exp(d.G, d.Q, d.P)) {
		return common.Malformed("domain", errors.Errorf("g = %s does not have order q", d.G))
	}
	return nil
}

// DomainBuilder constructs domains. The zero value is not usable; use NewDomainBuilder.
type DomainBuilder struct {
	// Random is the randomness source for prime candidates.
	Random io.Reader
	// Factorizer factors p-1. Builders may share one, together with its cache.
	Factorizer *factor.Factorizer
	// Follower is notified of the progress of GenP and GenG.
	Follower ProgressFollower
}

// NewDomainBuilder returns a builder drawing from crypto/rand with a fresh
// factorization cache and no progress reporting.
func NewDomainBuilder() *DomainBuilder {
	return &DomainBuilder{
		Random:     rand.Reader,
		Factorizer: factor.New(nil),
		Follower:   &EmptyFollower{},
	}
}

// GenP returns a random prime of exactly bits bits. Candidates that survive a
// Miller-Rabin pre-screen are confirmed with the AKS test.
func (b *DomainBuilder) GenP(bits int) (*big.Int, error) {
	if bits < 2 {
		return nil, errors.Errorf("cannot generate a prime of %d bits", bits)
	}

	b.Follower.StepStart("Searching p", 0)
	defer b.Follower.StepDone()

	bytes := make([]byte, (bits+7)/8)
	candidate := new(big.Int)
	for {
		if _, err := io.ReadFull(b.Random, bytes); err != nil {
			return nil, errors.WrapPrefix(err, "random source failed", 0)
		}
		b.Follower.Tick()

		// Clear the excess bits of the first byte, then force the top bit and oddness
		top := uint(bits-1) % 8
		bytes[0] &= uint8(int(1<<(top+1)) - 1)
		bytes[0] |= 1 << top
		bytes[len(bytes)-1] |= 1
		candidate.SetBytes(bytes)

		if !candidate.ProbablyPrime(prescreenRounds) {
			continue
		}
		if aks.IsPrime(candidate) {
			Logger.WithField("p", candidate).Trace("prime found")
			return new(big.Int).Set(candidate), nil
		}
		Logger.WithField("candidate", candidate).Warn("AKS rejected a Miller-Rabin survivor")
	}
}

// GenQ returns the largest prime factor of p-1.
func (b *DomainBuilder) GenQ(p *big.Int) *big.Int {
	return b.Factorizer.Largest(new(big.Int).Sub(p, bigONE))
}

// GenG returns the smallest num >= 2 with num != p-1 whose multiplicative order
// modulo p is exactly q: num^q = 1 and num^a != 1 for all 1 <= a < q.
func (b *DomainBuilder) GenG(p, q *big.Int) (*big.Int, error) {
	b.Follower.StepStart("Searching g", 0)
	defer b.Follower.StepDone()

	pMinusOne := new(big.Int).Sub(p, bigONE)
	pow := new(big.Int)
	for num := big.NewInt(2); num.Cmp(p) < 0; num.Add(num, bigONE) {
		b.Follower.Tick()
		if num.Cmp(pMinusOne) == 0 {
			continue
		}
		if !common.IsOne(pow.Exp(num, q, p)) {
			continue
		}
		if b.orderAtLeast(num, q, p) {
			return new(big.Int).Set(num), nil
		}
	}
	return nil, errors.Errorf("Z*_%s has no element of order %s", p, q)
}

// orderAtLeast reports whether num^a != 1 mod p for every 1 <= a < q.
func (b *DomainBuilder) orderAtLeast(num, q, p *big.Int) bool {
	acc := new(big.Int).Set(num)
	for a := big.NewInt(1); a.Cmp(q) < 0; a.Add(a, bigONE) {
		if common.IsOne(acc) {
			return false
		}
		acc.Mod(acc.Mul(acc, num), p)
	}
	return true
}

// Build generates a fresh domain with a prime p of the given bit length. Primes p for
// which q < 5 are redrawn, since such domains leave no room for the nonces in [2, q-2].
func (b *DomainBuilder) Build(bits int) (*Domain, error) {
	if bits < MinBits {
		return nil, errors.Errorf("a domain needs at least %d bits, got %d", MinBits, bits)
	}

	for {
		p, err := b.GenP(bits)
		if err != nil {
			return nil, err
		}
		q := b.GenQ(p)
		if q.Cmp(bigFIVE) < 0 {
			Logger.WithFields(logrus.Fields{"p": p, "q": q}).Debug("q too small, redrawing p")
			continue
		}
		g, err := b.GenG(p, q)
		if err != nil {
			return nil, err
		}

		Logger.WithFields(logrus.Fields{"p": p, "q": q, "g": g}).Debug("domain generated")
		return &Domain{P: p, Q: q, G: g}, nil
	}
}
