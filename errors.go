package proxysig

import (
	"github.com/go-errors/errors"
	"github.com/privacybydesign/proxysig/internal/common"
)

var (
	// ErrDelegationVerification is returned when a freshly computed proxy key does
	// not satisfy g^s = y * r^r mod p. The proxy key is discarded.
	ErrDelegationVerification = errors.New("proxy key failed its self-check")
	// ErrInvalidProxyKey is returned when a proxy is asked to sign with a proxy key
	// that was not issued under the given public key.
	ErrInvalidProxyKey = errors.New("proxy key does not belong to the public key")
	// ErrDigestUnavailable is returned for unknown digest algorithms.
	ErrDigestUnavailable = errors.New("digest algorithm unavailable")

	ErrInputIO   = common.ErrInputIO
	ErrMalformed = common.ErrMalformed
)
