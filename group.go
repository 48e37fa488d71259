package proxysig

import (
	"github.com/bwesterb/go-exptable"
	"github.com/go-errors/errors"
	"github.com/privacybydesign/proxysig/big"
	"github.com/privacybydesign/proxysig/internal/common"
	"github.com/privacybydesign/proxysig/keys"
)

// group is the subgroup of Z*_p generated by g, with a precomputed table for
// exponentiations of g.
type group struct {
	keys.Domain

	gTable exptable.Table
}

func newGroup(d *keys.Domain) *group {
	grp := &group{Domain: *d}
	grp.gTable.Compute(d.G.Go(), d.P.Go(), 7)
	return grp
}

// expG returns g^exp mod p. Exponents in [0, q) use the table.
func (grp *group) expG(exp *big.Int) *big.Int {
	ret := new(big.Int)
	if exp.Sign() < 0 || exp.Cmp(grp.Q) >= 0 {
		return ret.Exp(grp.G, exp, grp.P)
	}
	if exp.Sign() == 0 {
		return ret.SetInt64(1)
	}
	grp.gTable.Exp(ret.Go(), exp.Go())
	return ret
}

// exp returns base^exp mod p, with negative exponents through the modular inverse.
func (grp *group) exp(base, exp *big.Int) (*big.Int, error) {
	ret, err := common.ModPow(base, exp, grp.P)
	if err != nil {
		return nil, errors.Errorf("%w: %s has no inverse modulo p", err, base)
	}
	return ret, nil
}

// delegationHolds reports whether g^s = y * r^r mod p.
func (grp *group) delegationHolds(y *big.Int, key *ProxyKey) bool {
	if key.R == nil || key.S == nil || key.R.Sign() <= 0 || key.S.Sign() < 0 {
		return false
	}
	lhs := grp.expG(key.S)
	rhs := new(big.Int).Exp(key.R, key.R, grp.P)
	rhs.Mul(rhs, new(big.Int).Mod(y, grp.P))
	rhs.Mod(rhs, grp.P)
	return lhs.Cmp(rhs) == 0
}
