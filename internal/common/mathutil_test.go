package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-errors/errors"
	"github.com/privacybydesign/proxysig/big"
	"github.com/privacybydesign/proxysig/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModPow(t *testing.T) {
	p := big.NewInt(23)

	r, err := ModPow(big.NewInt(2), big.NewInt(11), p)
	require.NoError(t, err)
	assert.Equal(t, int64(1), r.Int64())

	// 18^-1 = 9 (mod 23), since 18*9 = 162 = 7*23 + 1
	r, err = ModPow(big.NewInt(18), big.NewInt(-1), p)
	require.NoError(t, err)
	assert.Equal(t, int64(9), r.Int64())

	// x^-e * x^e = 1
	pos, err := ModPow(big.NewInt(8), big.NewInt(17), p)
	require.NoError(t, err)
	neg, err := ModPow(big.NewInt(8), big.NewInt(-17), p)
	require.NoError(t, err)
	assert.Equal(t, int64(1), new(big.Int).Mod(new(big.Int).Mul(pos, neg), p).Int64())

	_, err = ModPow(big.NewInt(23), big.NewInt(-1), p)
	require.True(t, errors.Is(err, ErrNoModInverse))
}

func TestRandomBelowBound(t *testing.T) {
	rnd := testutil.NewCPRNG(1)
	bound := big.NewInt(11)
	seen := map[int64]bool{}
	for i := 0; i < 500; i++ {
		r, err := RandomBelowBound(rnd, bound)
		require.NoError(t, err)
		require.True(t, r.Int64() >= 2 && r.Int64() <= 9, "out of range: %s", r)
		seen[r.Int64()] = true
	}
	assert.Len(t, seen, 8, "every value in [2, 9] should eventually be drawn")
}

func TestRandomBelowBoundFixed(t *testing.T) {
	// 4-bit draws for bound 11: 0x0f and 0x0a are rejected, 0x03 accepted.
	r, err := RandomBelowBound(testutil.NewBytesReader(0x0f, 0x0a, 0x03), big.NewInt(11))
	require.NoError(t, err)
	assert.Equal(t, int64(3), r.Int64())
}

func TestRandomBelowBoundEmpty(t *testing.T) {
	for _, b := range []int64{0, 1, 2, 3} {
		_, err := RandomBelowBound(testutil.NewCPRNG(1), big.NewInt(b))
		require.Error(t, err)
	}
	r, err := RandomBelowBound(testutil.NewCPRNG(1), big.NewInt(4))
	require.NoError(t, err)
	assert.Equal(t, int64(2), r.Int64())
}

func TestFields(t *testing.T) {
	bts, err := JoinFields(big.NewInt(23), big.NewInt(2), big.NewInt(11), big.NewInt(18))
	require.NoError(t, err)
	assert.Equal(t, "17#2#b#12", string(bts))

	ints, err := SplitFields([]byte("17#2#B#12\n"), 4)
	require.NoError(t, err)
	require.Len(t, ints, 4)
	assert.Equal(t, int64(11), ints[2].Int64())

	_, err = SplitFields([]byte("17#2#b"), 4)
	require.Error(t, err)
	_, err = SplitFields([]byte("17#zz#b#12"), 4)
	require.Error(t, err)
	_, err = SplitFields([]byte(""), 1)
	require.Error(t, err)

	_, err = JoinFields(big.NewInt(1), nil)
	require.Error(t, err)
}

func TestReadWriteFile(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "private.key")

	_, err := ReadFile(filename)
	require.True(t, errors.Is(err, ErrInputIO))

	n, err := WriteFile(filename, []byte("6"), 0600, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	testutil.AssertFilePerm(t, filename, 0600)

	_, err = WriteFile(filename, []byte("7"), 0600, false)
	require.Error(t, err, "existing file must not be overwritten")

	_, err = WriteFile(filename, []byte("8"), 0600, true)
	require.NoError(t, err)

	bts, err := ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, "8", string(bts))

	_, err = ReadFile(dir)
	require.True(t, errors.Is(err, ErrInputIO))
	require.NoError(t, os.Remove(filename))
}

func TestMalformed(t *testing.T) {
	err := Malformed("public key", errors.New("bad"))
	require.True(t, errors.Is(err, ErrMalformed))
	assert.Contains(t, err.Error(), "public key")
}
