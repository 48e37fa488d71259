// Package factor factors integers by trial division. It is only tractable for
// integers with small prime factors (in practice p-1 for primes of a few tens of
// bits); callers that factor the same value repeatedly should share a Factorizer,
// which memoizes its results.
package factor

import (
	"sync"

	"github.com/privacybydesign/proxysig/big"
)

var (
	bigONE = big.NewInt(1)
	bigTWO = big.NewInt(2)
)

type (
	// Cache memoizes factorizations keyed by the factored value and the duplicates flag.
	// It is safe for concurrent use.
	Cache struct {
		mu      sync.Mutex
		entries map[cacheKey][]*big.Int
	}

	cacheKey struct {
		n          string
		duplicates bool
	}

	// Factorizer factors integers, consulting and filling its Cache.
	Factorizer struct {
		cache *Cache
	}
)

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: map[cacheKey][]*big.Int{}}
}

// Len returns the number of memoized factorizations.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) get(key cacheKey) ([]*big.Int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.entries[key]
	return f, ok
}

func (c *Cache) put(key cacheKey, f []*big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = f
}

// New returns a Factorizer memoizing into cache. A nil cache gets a fresh one.
func New(cache *Cache) *Factorizer {
	if cache == nil {
		cache = NewCache()
	}
	return &Factorizer{cache: cache}
}

// Cache returns the cache backing f.
func (f *Factorizer) Cache() *Cache {
	return f.cache
}

// Factorize returns the prime factors of n in ascending order, each prime once, or once
// per time it divides n if withDuplicates is set. The result is a fresh slice owned by
// the caller.
func (f *Factorizer) Factorize(n *big.Int, withDuplicates bool) []*big.Int {
	key := cacheKey{n: n.String(), duplicates: withDuplicates}
	if cached, ok := f.cache.get(key); ok {
		return clone(cached)
	}
	factors := Factorize(n, withDuplicates)
	f.cache.put(key, clone(factors))
	return factors
}

// Factorize is the uncached variant of Factorizer.Factorize.
func Factorize(n *big.Int, withDuplicates bool) []*big.Int {
	var factors []*big.Int
	rest := new(big.Int).Set(n)
	d := new(big.Int).Set(bigTWO)
	quo, rem, sq := new(big.Int), new(big.Int), new(big.Int)

	for sq.Mul(d, d).Cmp(rest) <= 0 {
		found := false
		for {
			quo.QuoRem(rest, d, rem)
			if rem.Sign() != 0 {
				break
			}
			if withDuplicates || !found {
				factors = append(factors, new(big.Int).Set(d))
				found = true
			}
			rest.Set(quo)
		}
		d.Add(d, bigONE)
	}
	// Whatever is left has no divisor below its square root
	if rest.Cmp(bigONE) > 0 {
		factors = append(factors, rest)
	}
	return factors
}

// Largest returns the largest distinct prime factor of n, or nil if n < 2.
func (f *Factorizer) Largest(n *big.Int) *big.Int {
	factors := f.Factorize(n, false)
	if len(factors) == 0 {
		return nil
	}
	return factors[len(factors)-1]
}

// Totient returns Euler's totient of n > 0.
func Totient(n *big.Int) *big.Int {
	phi := new(big.Int).Set(n)
	tmp := new(big.Int)
	for _, p := range Factorize(n, false) {
		// phi = phi / p * (p - 1)
		phi.Quo(phi, p)
		phi.Mul(phi, tmp.Sub(p, bigONE))
	}
	return phi
}

func clone(factors []*big.Int) []*big.Int {
	res := make([]*big.Int, len(factors))
	for i, f := range factors {
		res[i] = new(big.Int).Set(f)
	}
	return res
}
