package proxysig

import (
	"crypto/rand"
	"io"

	"github.com/go-errors/errors"
	"github.com/privacybydesign/proxysig/big"
	"github.com/privacybydesign/proxysig/internal/common"
	"github.com/privacybydesign/proxysig/keys"
	"github.com/sirupsen/logrus"
)

// ProxyKey is the credential a delegator hands to a proxy: r = g^k mod p and
// s = x + k*r mod q, for a one-time nonce k.
type ProxyKey struct {
	R *big.Int
	S *big.Int
}

// Delegator issues proxy keys under its own key pair.
type Delegator struct {
	sk  *keys.PrivateKey
	pk  *keys.PublicKey
	grp *group

	// Random is the source of the delegation nonces.
	Random io.Reader
}

// NewDelegator creates a delegator for the given key pair, drawing nonces from
// crypto/rand.
func NewDelegator(sk *keys.PrivateKey, pk *keys.PublicKey) *Delegator {
	return &Delegator{sk: sk, pk: pk, grp: newGroup(&pk.Domain), Random: rand.Reader}
}

// Delegate issues a fresh proxy key. The key is checked against the delegator's
// public key before it is returned; if the check fails, ErrDelegationVerification
// is returned instead, which happens when the private key does not belong to the
// public key.
func (d *Delegator) Delegate() (*ProxyKey, error) {
	k, err := common.RandomBelowBound(d.Random, d.grp.Q)
	if err != nil {
		return nil, errors.WrapPrefix(err, "cannot draw delegation nonce", 0)
	}

	r := d.grp.expG(k)
	s := new(big.Int).Mul(k, r)
	s.Add(s, d.sk.X)
	s.Mod(s, d.grp.Q)
	key := &ProxyKey{R: r, S: s}

	if !d.grp.delegationHolds(d.pk.Y, key) {
		return nil, ErrDelegationVerification
	}
	Logger.WithFields(logrus.Fields{"r": r}).Debug("proxy key issued")
	return key, nil
}

// Verify reports whether the proxy key was issued under pk, that is,
// whether g^s = y * r^r mod p.
func (key *ProxyKey) Verify(pk *keys.PublicKey) bool {
	return newGroup(&pk.Domain).delegationHolds(pk.Y, key)
}

// MarshalText implements encoding.TextMarshaler, encoding the key as r#s.
func (key *ProxyKey) MarshalText() ([]byte, error) {
	return common.JoinFields(key.R, key.S)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (key *ProxyKey) UnmarshalText(text []byte) error {
	ints, err := common.SplitFields(text, 2)
	if err != nil {
		return common.Malformed("proxy key", err)
	}
	key.R, key.S = ints[0], ints[1]
	return nil
}

// NewProxyKeyFromFile reads a proxy key file.
func NewProxyKeyFromFile(filename string) (*ProxyKey, error) {
	bts, err := common.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	key := &ProxyKey{}
	if err = key.UnmarshalText(bts); err != nil {
		return nil, err
	}
	return key, nil
}

// WriteToFile writes the proxy key to a file readable only by its owner. If any
// existing file with the same filename should be overwritten, set forceOverwrite to true.
func (key *ProxyKey) WriteToFile(filename string, forceOverwrite bool) (int64, error) {
	bts, err := key.MarshalText()
	if err != nil {
		return 0, err
	}
	return common.WriteFile(filename, bts, 0600, forceOverwrite)
}
