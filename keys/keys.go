// Package keys contains the domain parameters and key pairs of delegators, and their
// text encodings: public keys are stored as p#g#q#y and private keys as x, all in
// lowercase hexadecimal.
package keys

import (
	"io"
	"os"

	"github.com/go-errors/errors"
	"github.com/privacybydesign/proxysig/big"
	"github.com/privacybydesign/proxysig/internal/common"
)

type (
	// PublicKey represents a delegator's public key: the domain and y = g^x mod p.
	PublicKey struct {
		Domain
		Y *big.Int
	}

	// PrivateKey represents a delegator's private key x.
	PrivateKey struct {
		X *big.Int
	}
)

// GenX draws a private key uniformly from [2, p-2].
func GenX(rnd io.Reader, p *big.Int) (*big.Int, error) {
	return common.RandomBelowBound(rnd, p)
}

// GenY returns g^x mod p.
func GenY(g, x, p *big.Int) *big.Int {
	return new(big.Int).Exp(g, x, p)
}

// GenerateKeyPair generates a key pair within the given domain.
func GenerateKeyPair(rnd io.Reader, domain *Domain) (*PrivateKey, *PublicKey, error) {
	x, err := GenX(rnd, domain.P)
	if err != nil {
		return nil, nil, err
	}
	pk := &PublicKey{Domain: *domain, Y: GenY(domain.G, x, domain.P)}
	return &PrivateKey{X: x}, pk, nil
}

// MarshalText implements encoding.TextMarshaler.
func (pubk *PublicKey) MarshalText() ([]byte, error) {
	return common.JoinFields(pubk.P, pubk.G, pubk.Q, pubk.Y)
}

// UnmarshalText implements encoding.TextUnmarshaler. Parsed keys are validated.
func (pubk *PublicKey) UnmarshalText(text []byte) error {
	ints, err := common.SplitFields(text, 4)
	if err != nil {
		return common.Malformed("public key", err)
	}
	key := PublicKey{Domain: Domain{P: ints[0], G: ints[1], Q: ints[2]}, Y: ints[3]}
	if err = key.Validate(); err != nil {
		return err
	}
	*pubk = key
	return nil
}

// Validate checks the domain of the public key, and y to be an element of Z*_p.
func (pubk *PublicKey) Validate() error {
	if err := pubk.Domain.Validate(); err != nil {
		return err
	}
	if pubk.Y == nil || pubk.Y.Sign() <= 0 || pubk.Y.Cmp(pubk.P) >= 0 {
		return common.Malformed("public key", errors.Errorf("y = %v is not in [1, p)", pubk.Y))
	}
	return nil
}

// NewPublicKeyFromBytes parses a public key from its text encoding.
func NewPublicKeyFromBytes(bts []byte) (*PublicKey, error) {
	pubk := &PublicKey{}
	if err := pubk.UnmarshalText(bts); err != nil {
		return nil, err
	}
	return pubk, nil
}

// NewPublicKeyFromFile reads a public key file.
func NewPublicKeyFromFile(filename string) (*PublicKey, error) {
	bts, err := common.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return NewPublicKeyFromBytes(bts)
}

// WriteTo writes the text encoded public key to the given writer.
func (pubk *PublicKey) WriteTo(writer io.Writer) (int64, error) {
	bts, err := pubk.MarshalText()
	if err != nil {
		return 0, err
	}
	n, err := writer.Write(bts)
	return int64(n), err
}

// WriteToFile writes the public key to a file. If any existing file with
// the same filename should be overwritten, set forceOverwrite to true.
func (pubk *PublicKey) WriteToFile(filename string, forceOverwrite bool) (int64, error) {
	bts, err := pubk.MarshalText()
	if err != nil {
		return 0, err
	}
	return common.WriteFile(filename, bts, 0644, forceOverwrite)
}

// MarshalText implements encoding.TextMarshaler.
func (privk *PrivateKey) MarshalText() ([]byte, error) {
	return common.JoinFields(privk.X)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (privk *PrivateKey) UnmarshalText(text []byte) error {
	ints, err := common.SplitFields(text, 1)
	if err != nil {
		return common.Malformed("private key", err)
	}
	privk.X = ints[0]
	return nil
}

// NewPrivateKeyFromFile reads a private key file.
func NewPrivateKeyFromFile(filename string) (*PrivateKey, error) {
	bts, err := common.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	privk := &PrivateKey{}
	if err = privk.UnmarshalText(bts); err != nil {
		return nil, err
	}
	return privk, nil
}

// WriteToFile writes the private key to a file readable only by its owner. If any
// existing file with the same filename should be overwritten, set forceOverwrite to true.
func (privk *PrivateKey) WriteToFile(filename string, forceOverwrite bool) (int64, error) {
	bts, err := privk.MarshalText()
	if err != nil {
		return 0, err
	}
	n, err := common.WriteFile(filename, bts, 0600, forceOverwrite)
	if err != nil {
		return n, err
	}
	// An overwritten file keeps its old mode
	return n, os.Chmod(filename, 0600)
}

// Matches reports whether privk is the private key belonging to pubk.
func (privk *PrivateKey) Matches(pubk *PublicKey) bool {
	return GenY(pubk.G, privk.X, pubk.P).Cmp(pubk.Y) == 0
}
