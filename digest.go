package proxysig

import (
	"crypto/sha256"
	"hash"
	"sort"

	"github.com/go-errors/errors"
	"github.com/multiformats/go-multihash"
	"github.com/privacybydesign/proxysig/big"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// DefaultDigest is the digest used when none is configured.
const DefaultDigest = "sha2-256"

// Digest is a hash algorithm usable for signing, named and numbered as in multihash.
type Digest struct {
	Name string
	Code uint64
	New  func() hash.Hash
}

var digests = map[string]*Digest{}

func init() {
	register(multihash.SHA2_256, sha256.New)
	register(multihash.SHA3_256, sha3.New256)
	register(multihash.BLAKE2B_MIN+31, func() hash.Hash {
		h, err := blake2b.New256(nil)
		if err != nil {
			panic(err) // only fails for oversized keys
		}
		return h
	})
}

func register(code uint64, f func() hash.Hash) {
	name := multihash.Codes[code]
	digests[name] = &Digest{Name: name, Code: code, New: f}
}

// LookupDigest returns the digest with the given multihash name. The empty name
// selects DefaultDigest.
func LookupDigest(name string) (*Digest, error) {
	if name == "" {
		name = DefaultDigest
	}
	d, ok := digests[name]
	if !ok {
		return nil, errors.Errorf("%w: %q", ErrDigestUnavailable, name)
	}
	return d, nil
}

// Digests returns the names of all available digests, sorted.
func Digests() []string {
	names := make([]string, 0, len(digests))
	for name := range digests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Challenge hashes the message followed by the two's complement bytes of v, and
// returns the hash as an unsigned integer.
func (d *Digest) Challenge(msg []byte, v *big.Int) *big.Int {
	h := d.New()
	h.Write(msg)
	h.Write(v.SignedBytes())
	return new(big.Int).SetBytes(h.Sum(nil))
}

// Multihash returns the multihash of msg under this digest.
func (d *Digest) Multihash(msg []byte) (multihash.Multihash, error) {
	return multihash.Sum(msg, d.Code, -1)
}
