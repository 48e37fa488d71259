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

// Signature is a proxy signature (sp, e, r) on a message. The r of the proxy key is
// carried along, so that verifiers need only the delegator's public key.
type Signature struct {
	SP *big.Int
	E  *big.Int
	R  *big.Int
}

// ProxySigner signs messages on behalf of a delegator, using a proxy key.
type ProxySigner struct {
	pk     *keys.PublicKey
	key    *ProxyKey
	digest *Digest
	grp    *group

	// Random is the source of the signing nonces.
	Random io.Reader
}

// NewProxySigner creates a signer for the given delegator public key and proxy key.
// A nil digest selects DefaultDigest.
func NewProxySigner(pk *keys.PublicKey, key *ProxyKey, digest *Digest) *ProxySigner {
	if digest == nil {
		digest = digests[DefaultDigest]
	}
	return &ProxySigner{pk: pk, key: key, digest: digest, grp: newGroup(&pk.Domain), Random: rand.Reader}
}

// Sign computes a proxy signature on msg: with a fresh nonce l, rp = g^l mod p,
// e = H(msg || rp) and sp = l + s*e mod q. A proxy key that was not issued under
// the public key is refused with ErrInvalidProxyKey.
func (ps *ProxySigner) Sign(msg []byte) (*Signature, error) {
	if !ps.grp.delegationHolds(ps.pk.Y, ps.key) {
		return nil, ErrInvalidProxyKey
	}

	l, err := common.RandomBelowBound(ps.Random, ps.grp.Q)
	if err != nil {
		return nil, errors.WrapPrefix(err, "cannot draw signing nonce", 0)
	}

	rp := ps.grp.expG(l)
	e := ps.digest.Challenge(msg, rp)
	sp := new(big.Int).Mul(ps.key.S, e)
	sp.Add(sp, l)
	sp.Mod(sp, ps.grp.Q)

	Logger.WithFields(logrus.Fields{"rp": rp, "e": e, "sp": sp}).Debug("message signed")
	return &Signature{SP: sp, E: e, R: new(big.Int).Set(ps.key.R)}, nil
}

// MarshalText implements encoding.TextMarshaler, encoding the signature as sp#e#r.
func (sig *Signature) MarshalText() ([]byte, error) {
	return common.JoinFields(sig.SP, sig.E, sig.R)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (sig *Signature) UnmarshalText(text []byte) error {
	ints, err := common.SplitFields(text, 3)
	if err != nil {
		return common.Malformed("signature", err)
	}
	sig.SP, sig.E, sig.R = ints[0], ints[1], ints[2]
	return nil
}

// NewSignatureFromFile reads a signature file.
func NewSignatureFromFile(filename string) (*Signature, error) {
	bts, err := common.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	sig := &Signature{}
	if err = sig.UnmarshalText(bts); err != nil {
		return nil, err
	}
	return sig, nil
}

// WriteToFile writes the signature to a file. If any existing file with the same
// filename should be overwritten, set forceOverwrite to true.
func (sig *Signature) WriteToFile(filename string, forceOverwrite bool) (int64, error) {
	bts, err := sig.MarshalText()
	if err != nil {
		return 0, err
	}
	return common.WriteFile(filename, bts, 0644, forceOverwrite)
}
