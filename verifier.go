package proxysig

import (
	"github.com/go-errors/errors"
	"github.com/privacybydesign/proxysig/big"
	"github.com/privacybydesign/proxysig/keys"
	"github.com/sirupsen/logrus"
)

// Verifier checks proxy signatures made on behalf of the owner of a public key.
type Verifier struct {
	pk     *keys.PublicKey
	digest *Digest
	grp    *group
}

// NewVerifier creates a verifier for the given delegator public key. The digest must
// be the one the signer used; nil selects DefaultDigest.
func NewVerifier(pk *keys.PublicKey, digest *Digest) *Verifier {
	if digest == nil {
		digest = digests[DefaultDigest]
	}
	return &Verifier{pk: pk, digest: digest, grp: newGroup(&pk.Domain)}
}

// Verify reports whether sig is a valid proxy signature on msg. It recomputes
// rp = g^sp * y^-e * r^(-r*e) mod p and accepts iff H(msg || rp) = e.
// A signature that does not verify yields false and a nil error; errors are
// reserved for signatures whose values admit no computation at all.
func (v *Verifier) Verify(msg []byte, sig *Signature) (bool, error) {
	if sig == nil || sig.SP == nil || sig.E == nil || sig.R == nil {
		return false, errors.Errorf("%w: incomplete signature", ErrMalformed)
	}

	negE := new(big.Int).Neg(sig.E)
	yPart, err := v.grp.exp(v.pk.Y, negE)
	if err != nil {
		return false, err
	}
	rPart, err := v.grp.exp(sig.R, new(big.Int).Mul(negE, sig.R))
	if err != nil {
		return false, err
	}

	value := v.grp.expG(sig.SP)
	value.Mul(value, yPart)
	value.Mod(value, v.grp.P)
	value.Mul(value, rPart)
	value.Mod(value, v.grp.P)

	ok := v.digest.Challenge(msg, value).Cmp(sig.E) == 0
	Logger.WithFields(logrus.Fields{"rp": value, "valid": ok}).Debug("signature verified")
	return ok, nil
}
