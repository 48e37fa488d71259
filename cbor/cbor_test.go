package cbor

import (
	"bytes"
	"testing"

	"github.com/privacybydesign/proxysig/big"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Name  string   `cbor:"name"`
	Value *big.Int `cbor:"value"`
}

func TestRoundTrip(t *testing.T) {
	src := envelope{Name: "x", Value: big.NewInt(0x1234)}
	bts, err := Marshal(&src)
	require.NoError(t, err)

	var dst envelope
	require.NoError(t, Unmarshal(bts, &dst))
	assert.Equal(t, "x", dst.Name)
	assert.Equal(t, int64(0x1234), dst.Value.Int64())
}

func TestDeterministicMapOrder(t *testing.T) {
	a, err := Marshal(map[string]int{"b": 1, "a": 2, "c": 3})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		b, err := Marshal(map[string]int{"c": 3, "a": 2, "b": 1})
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestRejects(t *testing.T) {
	var dst envelope

	// {"name": "x", "name": "y"}
	dup := []byte{0xa2, 0x64, 'n', 'a', 'm', 'e', 0x61, 'x', 0x64, 'n', 'a', 'm', 'e', 0x61, 'y'}
	assert.Error(t, Unmarshal(dup, &dst))

	// {"other": 1}
	unknown := []byte{0xa1, 0x65, 'o', 't', 'h', 'e', 'r', 0x01}
	assert.Error(t, Unmarshal(unknown, &dst))

	// Indefinite length map
	assert.Error(t, Unmarshal([]byte{0xbf, 0xff}, &dst))
}

func TestEncoderDecoder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewEncoder(&buf).Encode(&envelope{Name: "a", Value: big.NewInt(7)}))
	require.NoError(t, NewEncoder(&buf).Encode(&envelope{Name: "b", Value: big.NewInt(8)}))

	dec := NewDecoder(&buf)
	var first, second envelope
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))
	assert.Equal(t, "a", first.Name)
	assert.Equal(t, int64(8), second.Value.Int64())
}
