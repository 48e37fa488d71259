package proxysig

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/go-errors/errors"
	"github.com/privacybydesign/proxysig/big"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundle(t *testing.T) {
	pk, sig := smallSignature(t)
	b, err := NewBundle(pk, sig, nil, testMessage)
	require.NoError(t, err)
	assert.Equal(t, DefaultDigest, b.Digest)

	bts, err := b.MarshalBinary()
	require.NoError(t, err)

	// Deterministic encoding
	again, err := b.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, bts, again)

	parsed, err := ParseBundle(bts)
	require.NoError(t, err)
	assert.Zero(t, parsed.PublicKey.Y.Cmp(pk.Y))
	assert.Zero(t, parsed.PublicKey.P.Cmp(pk.P))
	assert.Zero(t, parsed.Signature.E.Cmp(sig.E))

	ok, err := parsed.Verify(testMessage)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = parsed.Verify([]byte("another message"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBundleOtherDigest(t *testing.T) {
	sk, pk := randomSetup(t, 12, 50)
	digest, err := LookupDigest("blake2b-256")
	require.NoError(t, err)

	key, err := NewDelegator(sk, pk).Delegate()
	require.NoError(t, err)
	sig, err := NewProxySigner(pk, key, digest).Sign(testMessage)
	require.NoError(t, err)

	b, err := NewBundle(pk, sig, digest, testMessage)
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = b.WriteTo(&buf)
	require.NoError(t, err)

	parsed, err := ReadBundle(&buf)
	require.NoError(t, err)
	assert.Equal(t, "blake2b-256", parsed.Digest)
	ok, err := parsed.Verify(testMessage)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestParseBundleInvalid(t *testing.T) {
	pk, sig := smallSignature(t)

	_, err := ParseBundle([]byte{0xff, 0x00})
	assert.True(t, errors.Is(err, ErrMalformed))

	b, err := NewBundle(pk, sig, nil, testMessage)
	require.NoError(t, err)

	unknown := *b
	unknown.Digest = "md5"
	bts, err := unknown.MarshalBinary()
	require.NoError(t, err)
	_, err = ParseBundle(bts)
	assert.True(t, errors.Is(err, ErrDigestUnavailable))

	mismatch := *b
	mismatch.Digest = "sha3-256"
	bts, err = mismatch.MarshalBinary()
	require.NoError(t, err)
	_, err = ParseBundle(bts)
	assert.True(t, errors.Is(err, ErrMalformed))

	keyCopy := *pk
	keyCopy.Y = big.NewInt(0)
	badKey := *b
	badKey.PublicKey = &keyCopy
	bts, err = badKey.MarshalBinary()
	require.NoError(t, err)
	_, err = ParseBundle(bts)
	assert.True(t, errors.Is(err, ErrMalformed))

	noSig := *b
	noSig.Signature = nil
	bts, err = noSig.MarshalBinary()
	require.NoError(t, err)
	_, err = ParseBundle(bts)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestBundleFile(t *testing.T) {
	pk, sig := smallSignature(t)
	b, err := NewBundle(pk, sig, nil, testMessage)
	require.NoError(t, err)

	filename := filepath.Join(t.TempDir(), "message.bundle")
	_, err = b.WriteToFile(filename, false)
	require.NoError(t, err)

	parsed, err := NewBundleFromFile(filename)
	require.NoError(t, err)
	ok, err := parsed.Verify(testMessage)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = NewBundleFromFile(filename + ".missing")
	assert.True(t, errors.Is(err, ErrInputIO))
}
